package models

import (
	"time"

	"github.com/amirphl/dental-clinic/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Setting is one site configuration entry. Value holds arbitrary JSON.
type Setting struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Key       string         `gorm:"type:varchar(128);not null;uniqueIndex:uk_settings_key" json:"key"`
	Value     datatypes.JSON `gorm:"not null" json:"value"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }

func (s *Setting) BeforeCreate(tx *gorm.DB) error {
	now := utils.UTCNow()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}
	return nil
}

// SettingFilter represents filter criteria for settings queries
type SettingFilter struct {
	ID   *uint    `json:"id,omitempty"`
	Key  *string  `json:"key,omitempty"`
	Keys []string `json:"keys,omitempty"`
}

// SettingPreset is a named snapshot of every setting at capture time.
// Snapshot is a JSON object mapping key to value.
type SettingPreset struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"type:varchar(100);not null;uniqueIndex:uk_setting_presets_name" json:"name"`
	Description *string        `gorm:"type:text" json:"description,omitempty"`
	Snapshot    datatypes.JSON `gorm:"not null" json:"snapshot"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (SettingPreset) TableName() string { return "setting_presets" }

func (p *SettingPreset) BeforeCreate(tx *gorm.DB) error {
	now := utils.UTCNow()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	return nil
}

// SettingPresetFilter represents filter criteria for preset queries
type SettingPresetFilter struct {
	ID   *uint   `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
}
