package dto

type StatusBreakdownItem struct {
	LeadStatus string `json:"lead_status" example:"Yangi"`
	Count      int64  `json:"count" example:"12"`
}

type SourceBreakdownItem struct {
	Source     string `json:"source" example:"ig-promo"`
	Count      int64  `json:"count" example:"12"`
	Percentage int    `json:"percentage" example:"40"`
}

type CampaignStatsItem struct {
	CampaignName   string `json:"campaign_name" example:"Instagram spring promo"`
	UniqueCode     string `json:"unique_code" example:"ig-promo"`
	Clicks         int64  `json:"clicks" example:"6"`
	Submissions    int64  `json:"submissions" example:"1"`
	ConversionRate int    `json:"conversion_rate" example:"16"`
	IsActive       bool   `json:"is_active" example:"true"`
	IsExpired      bool   `json:"is_expired" example:"false"`
}

// DashboardResponse aggregates leads and campaigns for the CRM home page
type DashboardResponse struct {
	TotalLeads      int64                 `json:"total_leads" example:"30"`
	TodayLeads      int64                 `json:"today_leads" example:"3"`
	WeekLeads       int64                 `json:"week_leads" example:"11"`
	TotalClicks     int64                 `json:"total_clicks" example:"420"`
	StatusBreakdown []StatusBreakdownItem `json:"status_breakdown"`
	SourceBreakdown []SourceBreakdownItem `json:"source_breakdown"`
	Campaigns       []CampaignStatsItem   `json:"campaigns"`
	Timezone        string                `json:"timezone" example:"Asia/Tashkent"`
	GeneratedAt     string                `json:"generated_at" example:"2026-01-15T10:30:00Z"`
}
