package models

import "time"

type ValueStackingItem struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string    `gorm:"type:varchar(200);not null" json:"title"`
	Description  *string   `gorm:"type:text" json:"description,omitempty"`
	Value        *string   `gorm:"type:varchar(100)" json:"value,omitempty"`
	Icon         *string   `gorm:"type:varchar(100)" json:"icon,omitempty"`
	DisplayOrder int       `gorm:"not null;default:0;index:idx_value_stacking_items_display_order" json:"display_order"`
	IsActive     *bool     `gorm:"not null;default:true;index:idx_value_stacking_items_is_active" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (ValueStackingItem) TableName() string { return "value_stacking_items" }
