package models

import "time"

// BackgroundType is how a section background value is interpreted.
type BackgroundType string

const (
	BackgroundTypeColor    BackgroundType = "color"
	BackgroundTypeImage    BackgroundType = "image"
	BackgroundTypeGradient BackgroundType = "gradient"
)

// Valid checks if the background type is known.
func (t BackgroundType) Valid() bool {
	switch t {
	case BackgroundTypeColor, BackgroundTypeImage, BackgroundTypeGradient:
		return true
	default:
		return false
	}
}

type SectionBackground struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	SectionKey     string         `gorm:"type:varchar(100);not null;uniqueIndex:uk_section_backgrounds_section_key" json:"section_key"`
	BackgroundType BackgroundType `gorm:"type:varchar(20);not null" json:"background_type"`
	Value          string         `gorm:"type:text;not null" json:"value"`
	OverlayOpacity float64        `gorm:"not null;default:0" json:"overlay_opacity"`
	DisplayOrder   int            `gorm:"not null;default:0" json:"display_order"`
	IsActive       *bool          `gorm:"not null;default:true;index:idx_section_backgrounds_is_active" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (SectionBackground) TableName() string { return "section_backgrounds" }
