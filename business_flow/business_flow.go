package businessflow

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/utils"
)

// ClientMetadata holds request information recorded with public submissions
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the visitor session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

func (cm *ClientMetadata) ipPtr() *string {
	if cm == nil || cm.IPAddress == "" {
		return nil
	}
	return utils.ToPtr(cm.IPAddress)
}

// maxUserAgentBytes bounds the stored user agent; the cut never splits a rune.
const maxUserAgentBytes = 512

func (cm *ClientMetadata) userAgentPtr() *string {
	if cm == nil || cm.UserAgent == "" {
		return nil
	}
	ua := cm.UserAgent
	if len(ua) > maxUserAgentBytes {
		ua = strings.ToValidUTF8(ua[:maxUserAgentBytes], "")
	}
	return &ua
}

func (cm *ClientMetadata) sessionID() string {
	if cm == nil {
		return ""
	}
	return cm.SessionID
}

func (cm *ClientMetadata) ip() string {
	if cm == nil {
		return ""
	}
	return cm.IPAddress
}

func (cm *ClientMetadata) requestID() string {
	if cm == nil {
		return ""
	}
	return cm.RequestID
}

// Paging defaults shared by list endpoints
const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// normalizePaging applies defaults to zero values and rejects out of range values.
func normalizePaging(page, perPage int) (int, int, error) {
	if page == 0 {
		page = DefaultPage
	}
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		return 0, 0, NewBusinessError("INVALID_PAGE", "page must be greater than 0", ErrInvalidPage)
	}
	if perPage < 1 || perPage > MaxPerPage {
		return 0, 0, NewBusinessError("INVALID_PAGE_SIZE", "perPage must be between 1 and 100", ErrInvalidPageSize)
	}
	return page, perPage, nil
}

func newPagination(page, perPage int, total int64) dto.Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(perPage)))
	}
	return dto.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalCount: total,
		TotalPages: totalPages,
	}
}

// parseDateRange parses optional from/to bounds; date-only values cover the whole day in loc.
func parseDateRange(from, to string, loc *time.Location) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if v := strings.TrimSpace(from); v != "" {
		t, err := utils.ParseDateBound(v, loc, false)
		if err != nil {
			return nil, nil, NewBusinessError("INVALID_DATE", "dateFrom must be YYYY-MM-DD or RFC3339", ErrInvalidDate)
		}
		start = &t
	}
	if v := strings.TrimSpace(to); v != "" {
		t, err := utils.ParseDateBound(v, loc, true)
		if err != nil {
			return nil, nil, NewBusinessError("INVALID_DATE", "dateTo must be YYYY-MM-DD or RFC3339", ErrInvalidDate)
		}
		end = &t
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, NewBusinessError("INVALID_DATE_RANGE", "dateFrom must be before dateTo", ErrStartDateAfterEndDate)
	}
	return start, end, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return utils.ToPtr(formatTime(*t))
}

// detach keeps request values but drops cancellation.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
