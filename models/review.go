package models

import "time"

// Review is a patient testimonial. Public submissions stay hidden until approved.
type Review struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorName   string    `gorm:"type:varchar(150);not null" json:"author_name"`
	Rating       int       `gorm:"not null;default:5" json:"rating"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	ImageURL     *string   `gorm:"type:text" json:"image_url,omitempty"`
	VideoURL     *string   `gorm:"type:text" json:"video_url,omitempty"`
	DisplayOrder int       `gorm:"not null;default:0;index:idx_reviews_display_order" json:"display_order"`
	IsApproved   *bool     `gorm:"not null;default:false;index:idx_reviews_is_approved" json:"is_approved"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Review) TableName() string { return "reviews" }
