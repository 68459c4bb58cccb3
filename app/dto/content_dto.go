package dto

import (
	"github.com/amirphl/dental-clinic/models"
	"github.com/lib/pq"
)

// ContentPayload is a create/replace body for one content collection.
// ApplyTo copies the editable fields onto the entity; a nil DisplayOrder or
// visibility flag keeps the entity's current value.
type ContentPayload[T any] interface {
	ApplyTo(entity *T)
}

// ReorderRequest lists item ids in their new display order
type ReorderRequest struct {
	IDs []uint `json:"ids" validate:"required,min=1,dive,gt=0"`
}

type DoctorRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=150"`
	Position     string   `json:"position" validate:"required,min=1,max=150"`
	Experience   *string  `json:"experience,omitempty" validate:"omitempty,max=100"`
	Bio          *string  `json:"bio,omitempty" validate:"omitempty,max=5000"`
	ImageURL     *string  `json:"image_url,omitempty" validate:"omitempty,max=2048"`
	Specialties  []string `json:"specialties,omitempty" validate:"omitempty,max=30,dive,min=1,max=100"`
	DisplayOrder *int     `json:"display_order,omitempty" validate:"omitempty,gte=0"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

func (r DoctorRequest) ApplyTo(d *models.Doctor) {
	d.Name = r.Name
	d.Position = r.Position
	d.Experience = r.Experience
	d.Bio = r.Bio
	d.ImageURL = r.ImageURL
	d.Specialties = pq.StringArray(nonNil(r.Specialties))
	if r.DisplayOrder != nil {
		d.DisplayOrder = *r.DisplayOrder
	}
	if r.IsActive != nil {
		d.IsActive = r.IsActive
	}
}

type ReviewRequest struct {
	AuthorName   string  `json:"author_name" validate:"required,min=1,max=150"`
	Rating       int     `json:"rating" validate:"required,min=1,max=5"`
	Text         string  `json:"text" validate:"required,min=1,max=5000"`
	ImageURL     *string `json:"image_url,omitempty" validate:"omitempty,max=2048"`
	VideoURL     *string `json:"video_url,omitempty" validate:"omitempty,max=2048"`
	DisplayOrder *int    `json:"display_order,omitempty" validate:"omitempty,gte=0"`
	IsApproved   *bool   `json:"is_approved,omitempty"`
}

func (r ReviewRequest) ApplyTo(v *models.Review) {
	v.AuthorName = r.AuthorName
	v.Rating = r.Rating
	v.Text = r.Text
	v.ImageURL = r.ImageURL
	v.VideoURL = r.VideoURL
	if r.DisplayOrder != nil {
		v.DisplayOrder = *r.DisplayOrder
	}
	if r.IsApproved != nil {
		v.IsApproved = r.IsApproved
	}
}

// SubmitReviewRequest is a public testimonial; it always starts unapproved
type SubmitReviewRequest struct {
	AuthorName string `json:"author_name" validate:"required,min=1,max=150"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Text       string `json:"text" validate:"required,min=1,max=2000"`
}

func (r SubmitReviewRequest) ApplyTo(v *models.Review) {
	approved := false
	v.AuthorName = r.AuthorName
	v.Rating = r.Rating
	v.Text = r.Text
	v.IsApproved = &approved
}

type FAQRequest struct {
	Question     string `json:"question" validate:"required,min=1,max=1000"`
	Answer       string `json:"answer" validate:"required,min=1,max=5000"`
	DisplayOrder *int   `json:"display_order,omitempty" validate:"omitempty,gte=0"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

func (r FAQRequest) ApplyTo(f *models.FAQ) {
	f.Question = r.Question
	f.Answer = r.Answer
	if r.DisplayOrder != nil {
		f.DisplayOrder = *r.DisplayOrder
	}
	if r.IsActive != nil {
		f.IsActive = r.IsActive
	}
}

type ServiceRequest struct {
	Title        string   `json:"title" validate:"required,min=1,max=200"`
	Description  *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price        *string  `json:"price,omitempty" validate:"omitempty,max=100"`
	Icon         *string  `json:"icon,omitempty" validate:"omitempty,max=100"`
	ImageURL     *string  `json:"image_url,omitempty" validate:"omitempty,max=2048"`
	Features     []string `json:"features,omitempty" validate:"omitempty,max=30,dive,min=1,max=200"`
	DisplayOrder *int     `json:"display_order,omitempty" validate:"omitempty,gte=0"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

func (r ServiceRequest) ApplyTo(s *models.Service) {
	s.Title = r.Title
	s.Description = r.Description
	s.Price = r.Price
	s.Icon = r.Icon
	s.ImageURL = r.ImageURL
	s.Features = pq.StringArray(nonNil(r.Features))
	if r.DisplayOrder != nil {
		s.DisplayOrder = *r.DisplayOrder
	}
	if r.IsActive != nil {
		s.IsActive = r.IsActive
	}
}

type PillSectionRequest struct {
	Title        string   `json:"title" validate:"required,min=1,max=200"`
	Subtitle     *string  `json:"subtitle,omitempty" validate:"omitempty,max=2000"`
	Price        *string  `json:"price,omitempty" validate:"omitempty,max=100"`
	OldPrice     *string  `json:"old_price,omitempty" validate:"omitempty,max=100"`
	Pills        []string `json:"pills,omitempty" validate:"omitempty,max=30,dive,min=1,max=100"`
	ButtonText   *string  `json:"button_text,omitempty" validate:"omitempty,max=100"`
	DisplayOrder *int     `json:"display_order,omitempty" validate:"omitempty,gte=0"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

func (r PillSectionRequest) ApplyTo(p *models.PillSection) {
	p.Title = r.Title
	p.Subtitle = r.Subtitle
	p.Price = r.Price
	p.OldPrice = r.OldPrice
	p.Pills = pq.StringArray(nonNil(r.Pills))
	p.ButtonText = r.ButtonText
	if r.DisplayOrder != nil {
		p.DisplayOrder = *r.DisplayOrder
	}
	if r.IsActive != nil {
		p.IsActive = r.IsActive
	}
}

type ValueStackingItemRequest struct {
	Title        string  `json:"title" validate:"required,min=1,max=200"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Value        *string `json:"value,omitempty" validate:"omitempty,max=100"`
	Icon         *string `json:"icon,omitempty" validate:"omitempty,max=100"`
	DisplayOrder *int    `json:"display_order,omitempty" validate:"omitempty,gte=0"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func (r ValueStackingItemRequest) ApplyTo(v *models.ValueStackingItem) {
	v.Title = r.Title
	v.Description = r.Description
	v.Value = r.Value
	v.Icon = r.Icon
	if r.DisplayOrder != nil {
		v.DisplayOrder = *r.DisplayOrder
	}
	if r.IsActive != nil {
		v.IsActive = r.IsActive
	}
}

type SectionBackgroundRequest struct {
	SectionKey     string   `json:"section_key" validate:"required,min=1,max=100"`
	BackgroundType string   `json:"background_type" validate:"required,oneof=color image gradient"`
	Value          string   `json:"value" validate:"required,min=1,max=2048"`
	OverlayOpacity *float64 `json:"overlay_opacity,omitempty" validate:"omitempty,gte=0,lte=1"`
	DisplayOrder   *int     `json:"display_order,omitempty" validate:"omitempty,gte=0"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

func (r SectionBackgroundRequest) ApplyTo(b *models.SectionBackground) {
	b.SectionKey = r.SectionKey
	b.BackgroundType = models.BackgroundType(r.BackgroundType)
	b.Value = r.Value
	if r.OverlayOpacity != nil {
		b.OverlayOpacity = *r.OverlayOpacity
	}
	if r.DisplayOrder != nil {
		b.DisplayOrder = *r.DisplayOrder
	}
	if r.IsActive != nil {
		b.IsActive = r.IsActive
	}
}

type FinalCTARequest struct {
	Title              string  `json:"title" validate:"required,min=1,max=255"`
	Subtitle           *string `json:"subtitle,omitempty" validate:"omitempty,max=2000"`
	ButtonText         string  `json:"button_text" validate:"required,min=1,max=100"`
	ButtonLink         *string `json:"button_link,omitempty" validate:"omitempty,max=2048"`
	BackgroundImageURL *string `json:"background_image_url,omitempty" validate:"omitempty,max=2048"`
	DisplayOrder       *int    `json:"display_order,omitempty" validate:"omitempty,gte=0"`
	IsActive           *bool   `json:"is_active,omitempty"`
}

func (r FinalCTARequest) ApplyTo(c *models.FinalCTA) {
	c.Title = r.Title
	c.Subtitle = r.Subtitle
	c.ButtonText = r.ButtonText
	c.ButtonLink = r.ButtonLink
	c.BackgroundImageURL = r.BackgroundImageURL
	if r.DisplayOrder != nil {
		c.DisplayOrder = *r.DisplayOrder
	}
	if r.IsActive != nil {
		c.IsActive = r.IsActive
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
