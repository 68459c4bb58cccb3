package models

import "time"

// FinalCTA is the closing call-to-action block of the landing page.
type FinalCTA struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title              string    `gorm:"type:varchar(255);not null" json:"title"`
	Subtitle           *string   `gorm:"type:text" json:"subtitle,omitempty"`
	ButtonText         string    `gorm:"type:varchar(100);not null" json:"button_text"`
	ButtonLink         *string   `gorm:"type:text" json:"button_link,omitempty"`
	BackgroundImageURL *string   `gorm:"type:text" json:"background_image_url,omitempty"`
	DisplayOrder       int       `gorm:"not null;default:0" json:"display_order"`
	IsActive           *bool     `gorm:"not null;default:true;index:idx_final_ctas_is_active" json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (FinalCTA) TableName() string { return "final_ctas" }
