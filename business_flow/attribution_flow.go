package businessflow

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/app/services"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/repository"
	"github.com/amirphl/dental-clinic/utils"
)

// AttributionOutcome is the kind of an AttributionResult
type AttributionOutcome string

const (
	AttributionCaptured AttributionOutcome = "captured"
	AttributionRejected AttributionOutcome = "rejected"
	AttributionSkipped  AttributionOutcome = "skipped"
)

// Rejection reasons
const (
	ReasonInvalidCode      = "invalid_code"
	ReasonCampaignNotFound = "campaign_not_found"
	ReasonLookupFailed     = "lookup_failed"
	ReasonCampaignExpired  = "campaign_expired"
	ReasonStoreFailed      = "store_failed"
)

// AttributionResult is the outcome of one capture attempt. Only Captured
// results carry Code and CapturedAt; only Rejected results carry Reason.
// Callers proceed with the page whatever the outcome.
type AttributionResult struct {
	Outcome      AttributionOutcome
	Reason       string
	Code         string
	CapturedAt   time.Time
	ClickCounted bool
	CleanURL     string
}

// DTO converts the result into its API shape
func (r AttributionResult) DTO() dto.AttributionResultDTO {
	out := dto.AttributionResultDTO{
		Result:       string(r.Outcome),
		Reason:       r.Reason,
		Code:         r.Code,
		ClickCounted: r.ClickCounted,
		CleanURL:     r.CleanURL,
	}
	if !r.CapturedAt.IsZero() {
		out.CapturedAt = r.CapturedAt.UnixMilli()
	}
	return out
}

func captured(code string, at time.Time, counted bool) AttributionResult {
	return AttributionResult{Outcome: AttributionCaptured, Code: code, CapturedAt: at, ClickCounted: counted}
}

func rejected(reason string) AttributionResult {
	return AttributionResult{Outcome: AttributionRejected, Reason: reason}
}

func skipped() AttributionResult {
	return AttributionResult{Outcome: AttributionSkipped}
}

var campaignCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidCampaignCode reports whether code is a well formed campaign slug
func ValidCampaignCode(code string) bool {
	return campaignCodePattern.MatchString(code)
}

// AttributionFlow attributes visitor sessions to campaigns and hands the
// attribution to lead submission
type AttributionFlow interface {
	CaptureAttribution(ctx context.Context, sessionID string, sourceParam *string, pageURL string) AttributionResult
	GetStoredSource(ctx context.Context, sessionID string) (string, bool)
	StoredSource(ctx context.Context, sessionID string) *dto.StoredSourceDTO
	ResolveLeadSource(ctx context.Context, sessionID string, explicitSource *string) string
	IncrementCampaignClick(ctx context.Context, code string) (*dto.IncrementClickResponse, error)
	GetCampaign(ctx context.Context, code string) (*dto.PublicCampaignDTO, error)
	DefaultSource() string
}

// AttributionFlowImpl implements AttributionFlow
type AttributionFlowImpl struct {
	campaignRepo  repository.CampaignLinkRepository
	store         services.SessionAttributionStore
	defaultSource string
	now           func() time.Time
	log           logger.Logger
}

// NewAttributionFlow creates a new attribution flow
func NewAttributionFlow(
	campaignRepo repository.CampaignLinkRepository,
	store services.SessionAttributionStore,
	defaultSource string,
	now func() time.Time,
	log logger.Logger,
) AttributionFlow {
	if defaultSource == "" {
		defaultSource = utils.DefaultLeadSource
	}
	if now == nil {
		now = utils.UTCNow
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AttributionFlowImpl{
		campaignRepo:  campaignRepo,
		store:         store,
		defaultSource: defaultSource,
		now:           now,
		log:           log.With("component", "attribution"),
	}
}

// CaptureAttribution validates the source parameter of a page load, records it
// for the session and counts the click. It never fails; problems are reported
// as a Rejected result and logged.
func (f *AttributionFlowImpl) CaptureAttribution(ctx context.Context, sessionID string, sourceParam *string, pageURL string) AttributionResult {
	result := f.capture(ctx, sessionID, sourceParam)
	if pageURL != "" {
		result.CleanURL = utils.StripQueryParam(pageURL, utils.SourceQueryParam)
	}
	attributionOutcomes.WithLabelValues(string(result.Outcome), result.Reason).Inc()
	return result
}

func (f *AttributionFlowImpl) capture(ctx context.Context, sessionID string, sourceParam *string) AttributionResult {
	if sourceParam == nil || strings.TrimSpace(*sourceParam) == "" {
		return skipped()
	}
	code := strings.TrimSpace(*sourceParam)
	if !ValidCampaignCode(code) {
		return rejected(ReasonInvalidCode)
	}

	campaign, err := f.campaignRepo.ActiveByUniqueCode(ctx, code)
	if err != nil {
		f.log.Warn("campaign lookup failed", "code", code, "error", err)
		return rejected(ReasonLookupFailed)
	}
	if campaign == nil {
		return rejected(ReasonCampaignNotFound)
	}

	now := f.now()
	if campaign.IsExpiredAt(now) {
		return rejected(ReasonCampaignExpired)
	}

	stored, err := f.store.Set(ctx, sessionID, campaign.UniqueCode)
	if err != nil {
		f.log.Warn("failed to store attribution", "code", code, "error", err)
		return rejected(ReasonStoreFailed)
	}

	counted, err := f.campaignRepo.IncrementClickCount(ctx, campaign.UniqueCode, &now)
	switch {
	case err != nil:
		f.log.Warn("click increment failed", "code", code, "error", err)
		campaignClicks.WithLabelValues("error").Inc()
	case !counted:
		f.log.Info("click increment matched no campaign", "code", code)
		campaignClicks.WithLabelValues("miss").Inc()
	default:
		campaignClicks.WithLabelValues("counted").Inc()
	}

	return captured(stored.Code, stored.Timestamp, err == nil && counted)
}

// GetStoredSource returns the session's live attribution code. Store errors
// count as no attribution.
func (f *AttributionFlowImpl) GetStoredSource(ctx context.Context, sessionID string) (string, bool) {
	src, err := f.store.Get(ctx, sessionID)
	if err != nil {
		f.log.Warn("failed to read attribution", "error", err)
		return "", false
	}
	if src == nil || src.Code == "" {
		return "", false
	}
	return src.Code, true
}

// StoredSource reports the visitor's live attribution; Present is false when
// nothing is stored, it expired or the store failed.
func (f *AttributionFlowImpl) StoredSource(ctx context.Context, sessionID string) *dto.StoredSourceDTO {
	src, err := f.store.Get(ctx, sessionID)
	if err != nil || src == nil {
		return &dto.StoredSourceDTO{Present: false}
	}
	return &dto.StoredSourceDTO{
		Present:   true,
		Code:      src.Code,
		Timestamp: src.Timestamp.UnixMilli(),
	}
}

// DefaultSource is the source recorded on leads without a live attribution
func (f *AttributionFlowImpl) DefaultSource() string {
	return f.defaultSource
}

// ResolveLeadSource picks the source snapshotted onto a new lead: an explicit
// source from the form, else the stored attribution, else the default.
func (f *AttributionFlowImpl) ResolveLeadSource(ctx context.Context, sessionID string, explicitSource *string) string {
	if v := utils.TrimmedPtr(explicitSource); v != nil {
		return *v
	}
	if code, ok := f.GetStoredSource(ctx, sessionID); ok {
		return code
	}
	return f.defaultSource
}

// IncrementCampaignClick counts one click for an active, unexpired campaign
func (f *AttributionFlowImpl) IncrementCampaignClick(ctx context.Context, code string) (*dto.IncrementClickResponse, error) {
	code = strings.TrimSpace(code)
	if !ValidCampaignCode(code) {
		return nil, NewBusinessError("INVALID_CAMPAIGN_CODE", "campaign code must be 1-64 letters, digits, '-' or '_'", ErrInvalidCampaignCode)
	}

	now := f.now()
	counted, err := f.campaignRepo.IncrementClickCount(ctx, code, &now)
	if err != nil {
		campaignClicks.WithLabelValues("error").Inc()
		return nil, NewBusinessError("CLICK_INCREMENT_FAILED", "failed to record click", err)
	}
	if !counted {
		campaignClicks.WithLabelValues("miss").Inc()
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "campaign not found", ErrCampaignNotFound)
	}
	campaignClicks.WithLabelValues("counted").Inc()

	return &dto.IncrementClickResponse{Code: code, Counted: true}, nil
}

// GetCampaign returns the public view of a campaign, active or not
func (f *AttributionFlowImpl) GetCampaign(ctx context.Context, code string) (*dto.PublicCampaignDTO, error) {
	code = strings.TrimSpace(code)
	if !ValidCampaignCode(code) {
		return nil, NewBusinessError("INVALID_CAMPAIGN_CODE", "campaign code must be 1-64 letters, digits, '-' or '_'", ErrInvalidCampaignCode)
	}

	campaign, err := f.campaignRepo.ByUniqueCode(ctx, code)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "failed to load campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "campaign not found", ErrCampaignNotFound)
	}

	return toPublicCampaignDTO(campaign, f.now()), nil
}

func toPublicCampaignDTO(c *models.CampaignLink, now time.Time) *dto.PublicCampaignDTO {
	return &dto.PublicCampaignDTO{
		CampaignName: c.CampaignName,
		UniqueCode:   c.UniqueCode,
		IsActive:     utils.IsTrue(c.IsActive),
		IsExpired:    c.IsExpiredAt(now),
		ExpiryDate:   formatTimePtr(c.ExpiryDate),
	}
}
