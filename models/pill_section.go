package models

import (
	"time"

	"github.com/lib/pq"
)

// PillSection is a pricing block rendered as a card with pill shaped tags.
type PillSection struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string         `gorm:"type:varchar(200);not null" json:"title"`
	Subtitle     *string        `gorm:"type:text" json:"subtitle,omitempty"`
	Price        *string        `gorm:"type:varchar(100)" json:"price,omitempty"`
	OldPrice     *string        `gorm:"type:varchar(100)" json:"old_price,omitempty"`
	Pills        pq.StringArray `gorm:"type:text[]" json:"pills"`
	ButtonText   *string        `gorm:"type:varchar(100)" json:"button_text,omitempty"`
	DisplayOrder int            `gorm:"not null;default:0;index:idx_pill_sections_display_order" json:"display_order"`
	IsActive     *bool          `gorm:"not null;default:true;index:idx_pill_sections_is_active" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (PillSection) TableName() string { return "pill_sections" }
