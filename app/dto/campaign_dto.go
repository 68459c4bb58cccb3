package dto

import "time"

// CampaignLinkDTO is the admin view of a campaign link
type CampaignLinkDTO struct {
	ID           uint    `json:"id" example:"1"`
	UUID         string  `json:"uuid" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	CampaignName string  `json:"campaign_name" example:"Instagram spring promo"`
	UniqueCode   string  `json:"unique_code" example:"ig-promo"`
	Description  *string `json:"description,omitempty"`
	IsActive     bool    `json:"is_active" example:"true"`
	IsExpired    bool    `json:"is_expired" example:"false"`
	ExpiryDate   *string `json:"expiry_date,omitempty" example:"2026-12-31T23:59:59Z"`
	ClickCount   int64   `json:"click_count" example:"42"`
	ShareURL     string  `json:"share_url" example:"https://clinic.uz/?source=ig-promo"`
	CreatedAt    string  `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt    string  `json:"updated_at" example:"2026-01-15T10:30:00Z"`
}

// PublicCampaignDTO is what the public site may learn about a campaign
type PublicCampaignDTO struct {
	CampaignName string  `json:"campaign_name" example:"Instagram spring promo"`
	UniqueCode   string  `json:"unique_code" example:"ig-promo"`
	IsActive     bool    `json:"is_active" example:"true"`
	IsExpired    bool    `json:"is_expired" example:"false"`
	ExpiryDate   *string `json:"expiry_date,omitempty" example:"2026-12-31T23:59:59Z"`
}

// IncrementClickRequest carries the campaign code of a tracked visit
type IncrementClickRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type IncrementClickResponse struct {
	Code    string `json:"code" example:"ig-promo"`
	Counted bool   `json:"counted" example:"true"`
}

type CreateCampaignLinkRequest struct {
	CampaignName string     `json:"campaign_name" validate:"required,min=1,max=255"`
	UniqueCode   string     `json:"unique_code" validate:"required,min=1,max=64"`
	Description  *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsActive     *bool      `json:"is_active,omitempty"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
}

// UpdateCampaignLinkRequest changes editable fields; the code and the click
// counter are immutable. ClearExpiry removes the expiry date.
type UpdateCampaignLinkRequest struct {
	CampaignName *string    `json:"campaign_name,omitempty" validate:"omitempty,min=1,max=255"`
	Description  *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsActive     *bool      `json:"is_active,omitempty"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	ClearExpiry  bool       `json:"clear_expiry,omitempty"`
}

type ListCampaignLinksRequest struct {
	Page     int    `query:"page"`
	PerPage  int    `query:"perPage"`
	Search   string `query:"search"`
	IsActive *bool  `query:"is_active"`
}

type ListCampaignLinksResponse struct {
	Data       []CampaignLinkDTO `json:"data"`
	Pagination Pagination        `json:"pagination"`
}
