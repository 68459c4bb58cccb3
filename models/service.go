package models

import (
	"time"

	"github.com/lib/pq"
)

// Service is a treatment offered by the clinic.
type Service struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string         `gorm:"type:varchar(200);not null" json:"title"`
	Description  *string        `gorm:"type:text" json:"description,omitempty"`
	Price        *string        `gorm:"type:varchar(100)" json:"price,omitempty"`
	Icon         *string        `gorm:"type:varchar(100)" json:"icon,omitempty"`
	ImageURL     *string        `gorm:"type:text" json:"image_url,omitempty"`
	Features     pq.StringArray `gorm:"type:text[]" json:"features"`
	DisplayOrder int            `gorm:"not null;default:0;index:idx_services_display_order" json:"display_order"`
	IsActive     *bool          `gorm:"not null;default:true;index:idx_services_is_active" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (Service) TableName() string { return "services" }
