package dto

import "encoding/json"

type SettingDTO struct {
	Key       string          `json:"key" example:"site_name"`
	Value     json.RawMessage `json:"value" swaggertype:"object"`
	UpdatedAt string          `json:"updated_at" example:"2026-01-15T10:30:00Z"`
}

// UpsertSettingRequest is the body of PUT /api/settings/:key
type UpsertSettingRequest struct {
	Value json.RawMessage `json:"value" validate:"required" swaggertype:"object"`
}

// BulkSettingItem is one entry of the bulk upsert array
type BulkSettingItem struct {
	Key   string          `json:"key" validate:"required,max=128"`
	Value json.RawMessage `json:"value" validate:"required" swaggertype:"object"`
}

type BulkUpsertSettingsResponse struct {
	Updated int `json:"updated" example:"4"`
}

// SiteSettings is the typed view of the public site settings
type SiteSettings struct {
	SiteName                string   `json:"site_name"`
	Tagline                 string   `json:"tagline"`
	HeroTitle               string   `json:"hero_title"`
	HeroSubtitle            string   `json:"hero_subtitle"`
	HeroImageURL            string   `json:"hero_image_url"`
	PhonePrimary            string   `json:"phone_primary"`
	PhoneSecondary          string   `json:"phone_secondary"`
	Address                 string   `json:"address"`
	WorkingHours            string   `json:"working_hours"`
	MapEmbedURL             string   `json:"map_embed_url"`
	TelegramURL             string   `json:"telegram_url"`
	InstagramURL            string   `json:"instagram_url"`
	PrimaryColor            string   `json:"primary_color"`
	ShowReviews             bool     `json:"show_reviews"`
	ShowDoctors             bool     `json:"show_doctors"`
	ShowPillSections        bool     `json:"show_pill_sections"`
	ConsultationFormEnabled bool     `json:"consultation_form_enabled"`
	YearsOfExperience       float64  `json:"years_of_experience"`
	HappyPatients           float64  `json:"happy_patients"`
	Languages               []string `json:"languages"`
	SEO                     SEOMeta  `json:"seo"`
}

type SEOMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

type SiteSettingsResponse struct {
	Settings SiteSettings `json:"settings"`
	// Defaulted lists keys that were missing or stored with the wrong type
	Defaulted []string `json:"defaulted"`
}

type SettingPresetDTO struct {
	ID          uint    `json:"id" example:"3"`
	Name        string  `json:"name" example:"Ramadan campaign"`
	Description *string `json:"description,omitempty"`
	KeyCount    int     `json:"key_count" example:"18"`
	CreatedAt   string  `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt   string  `json:"updated_at" example:"2026-01-15T10:30:00Z"`
}

type CreateSettingPresetRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

type ApplySettingPresetResponse struct {
	PresetID uint  `json:"preset_id" example:"3"`
	Applied  int   `json:"applied" example:"18"`
	Removed  int64 `json:"removed" example:"2"`
}
