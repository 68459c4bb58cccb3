package dto

// CaptureAttributionRequest is sent by the site on page load. URL is the
// current page URL; the response carries it back without the source parameter.
type CaptureAttributionRequest struct {
	Source *string `json:"source,omitempty" validate:"omitempty,max=256"`
	URL    string  `json:"url,omitempty" validate:"omitempty,max=4096"`
}

// AttributionResultDTO reports how a capture attempt ended
type AttributionResultDTO struct {
	Result       string `json:"result" example:"captured"`
	Reason       string `json:"reason,omitempty" example:"campaign_expired"`
	Code         string `json:"code,omitempty" example:"ig-promo"`
	CapturedAt   int64  `json:"captured_at,omitempty" example:"1767225600000"`
	ClickCounted bool   `json:"click_counted" example:"true"`
	CleanURL     string `json:"clean_url,omitempty" example:"https://clinic.uz/"`
}

// StoredSourceDTO is the visitor's live attribution, if any
type StoredSourceDTO struct {
	Present   bool   `json:"present" example:"true"`
	Code      string `json:"code,omitempty" example:"ig-promo"`
	Timestamp int64  `json:"timestamp,omitempty" example:"1767225600000"`
}
