package models

import (
	"time"

	"github.com/lib/pq"
)

type Doctor struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string         `gorm:"type:varchar(150);not null" json:"name"`
	Position     string         `gorm:"type:varchar(150);not null" json:"position"`
	Experience   *string        `gorm:"type:varchar(100)" json:"experience,omitempty"`
	Bio          *string        `gorm:"type:text" json:"bio,omitempty"`
	ImageURL     *string        `gorm:"type:text" json:"image_url,omitempty"`
	Specialties  pq.StringArray `gorm:"type:text[]" json:"specialties"`
	DisplayOrder int            `gorm:"not null;default:0;index:idx_doctors_display_order" json:"display_order"`
	IsActive     *bool          `gorm:"not null;default:true;index:idx_doctors_is_active" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (Doctor) TableName() string { return "doctors" }
