package models

import "time"

type FAQ struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Question     string    `gorm:"type:text;not null" json:"question"`
	Answer       string    `gorm:"type:text;not null" json:"answer"`
	DisplayOrder int       `gorm:"not null;default:0;index:idx_faqs_display_order" json:"display_order"`
	IsActive     *bool     `gorm:"not null;default:true;index:idx_faqs_is_active" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (FAQ) TableName() string { return "faqs" }
