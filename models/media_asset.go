package models

import (
	"time"

	"github.com/amirphl/dental-clinic/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaAsset represents an uploaded image referenced by site content.
type MediaAsset struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID              uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	UploadedByAdminID *uint     `gorm:"index" json:"uploaded_by_admin_id,omitempty"`
	OriginalFilename  string    `gorm:"type:varchar(255);not null" json:"original_filename"`
	StoredPath        string    `gorm:"type:text;not null" json:"stored_path"`
	URL               string    `gorm:"type:text;not null" json:"url"`
	Backend           string    `gorm:"type:varchar(20);not null" json:"backend"`
	SizeBytes         int64     `gorm:"type:bigint;not null" json:"size_bytes"`
	MimeType          string    `gorm:"type:varchar(100);not null" json:"mime_type"`
	Width             int       `gorm:"not null;default:0" json:"width"`
	Height            int       `gorm:"not null;default:0" json:"height"`
	CreatedAt         time.Time `gorm:"not null;index" json:"created_at"`
}

func (MediaAsset) TableName() string { return "media_assets" }

// BeforeCreate ensures UUID and timestamps are set.
func (m *MediaAsset) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == uuid.Nil {
		m.UUID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = utils.UTCNow()
	}
	return nil
}

// MediaAssetFilter represents filter criteria for media asset queries.
type MediaAssetFilter struct {
	ID                *uint      `json:"id,omitempty"`
	UUID              *uuid.UUID `json:"uuid,omitempty"`
	UploadedByAdminID *uint      `json:"uploaded_by_admin_id,omitempty"`
	CreatedAfter      *time.Time `json:"created_after,omitempty"`
}
