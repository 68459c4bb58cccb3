package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for admin and CRM access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// VisitorCookieMaxAge is the lifetime of the visitor_id cookie in seconds (30 days)
	VisitorCookieMaxAge = 30 * 24 * 60 * 60
)

// Attribution constants
const (
	// DefaultAttributionWindow is how long a captured campaign source stays valid
	DefaultAttributionWindow = 30 * 24 * time.Hour

	// DefaultLeadSource is recorded on leads submitted without a valid attribution
	DefaultLeadSource = "Direct Visit"

	// SourceQueryParam is the query parameter carrying a campaign code
	SourceQueryParam = "source"

	// DefaultClinicTimezone is used for day boundaries in dashboards
	DefaultClinicTimezone = "Asia/Tashkent"

	// DefaultPhoneRegion is the region assumed for phone numbers without a country code
	DefaultPhoneRegion = "UZ"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Request context keys shared by middleware and handlers
const (
	RequestIDKey = "request_id"
	AdminIDKey   = "admin_id"
	CRMUserIDKey = "crm_user_id"
	VisitorIDKey = "visitor_id"
	AuthRoleKey  = "auth_role"
	IPAddressKey = "ip_address"
	UserAgentKey = "user_agent"
	EndpointKey  = "endpoint"
	TimeoutKey   = "timeout"
)
