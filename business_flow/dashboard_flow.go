package businessflow

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/repository"
	"github.com/amirphl/dental-clinic/utils"
)

// ConversionRate is the integer percentage of clicks that became leads,
// truncated toward zero. It is 0 when there were no clicks.
func ConversionRate(submissions, clicks int64) int {
	if clicks <= 0 || submissions <= 0 {
		return 0
	}
	return int(submissions * 100 / clicks)
}

// Percentage is count/total as a rounded integer percentage, 0 for an empty total.
func Percentage(count, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// BuildSourceBreakdown orders per-source counts by count desc then source asc
// and attaches each source's share of the total.
func BuildSourceBreakdown(counts []models.SourceCount) []dto.SourceBreakdownItem {
	var total int64
	for _, c := range counts {
		total += c.Count
	}

	items := make([]dto.SourceBreakdownItem, 0, len(counts))
	for _, c := range counts {
		items = append(items, dto.SourceBreakdownItem{
			Source:     c.Source,
			Count:      c.Count,
			Percentage: Percentage(c.Count, total),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Source < items[j].Source
	})
	return items
}

// LeadMetricsSnapshot is what the periodic metrics job observed
type LeadMetricsSnapshot struct {
	ByStatus    map[models.LeadStatus]int64
	StaleNew    int64
	StaleCutoff time.Time
	CollectedAt time.Time
}

// DashboardFlow aggregates leads and campaigns
type DashboardFlow interface {
	GetDashboard(ctx context.Context) (*dto.DashboardResponse, error)
	RefreshLeadMetrics(ctx context.Context) (*LeadMetricsSnapshot, error)
}

// DashboardFlowImpl implements DashboardFlow
type DashboardFlowImpl struct {
	leadRepo     repository.ConsultationFormRepository
	campaignRepo repository.CampaignLinkRepository
	location     *time.Location
	staleAfter   time.Duration
	now          func() time.Time
	log          logger.Logger
}

// NewDashboardFlow creates a new dashboard flow. Day boundaries are taken in
// location; new leads untouched for staleAfter are reported as stale.
func NewDashboardFlow(
	leadRepo repository.ConsultationFormRepository,
	campaignRepo repository.CampaignLinkRepository,
	location *time.Location,
	staleAfter time.Duration,
	now func() time.Time,
	log logger.Logger,
) DashboardFlow {
	if location == nil {
		location = time.UTC
	}
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}
	if now == nil {
		now = utils.UTCNow
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardFlowImpl{
		leadRepo:     leadRepo,
		campaignRepo: campaignRepo,
		location:     location,
		staleAfter:   staleAfter,
		now:          now,
		log:          log.With("component", "dashboard"),
	}
}

func (f *DashboardFlowImpl) GetDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	now := f.now()

	total, err := f.leadRepo.Count(ctx, models.ConsultationFormFilter{})
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "failed to count leads", err)
	}

	startOfDay := utils.StartOfDay(now, f.location).UTC()
	today, err := f.leadRepo.Count(ctx, models.ConsultationFormFilter{CreatedAfter: &startOfDay})
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "failed to count today's leads", err)
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	week, err := f.leadRepo.Count(ctx, models.ConsultationFormFilter{CreatedAfter: &weekAgo})
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "failed to count this week's leads", err)
	}

	statusCounts, err := f.leadRepo.CountByStatus(ctx, models.ConsultationFormFilter{})
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "failed to count leads by status", err)
	}

	sourceCounts, err := f.leadRepo.CountBySource(ctx, models.ConsultationFormFilter{})
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "failed to count leads by source", err)
	}

	campaigns, err := f.campaignRepo.ByFilter(ctx, models.CampaignLinkFilter{}, "created_at DESC, id DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "failed to load campaigns", err)
	}

	bySource := make(map[string]int64, len(sourceCounts))
	for _, c := range sourceCounts {
		bySource[c.Source] = c.Count
	}

	var totalClicks int64
	stats := make([]dto.CampaignStatsItem, 0, len(campaigns))
	for _, c := range campaigns {
		submissions := bySource[c.UniqueCode]
		totalClicks += c.ClickCount
		stats = append(stats, dto.CampaignStatsItem{
			CampaignName:   c.CampaignName,
			UniqueCode:     c.UniqueCode,
			Clicks:         c.ClickCount,
			Submissions:    submissions,
			ConversionRate: ConversionRate(submissions, c.ClickCount),
			IsActive:       utils.IsTrue(c.IsActive),
			IsExpired:      c.IsExpiredAt(now),
		})
	}

	return &dto.DashboardResponse{
		TotalLeads:      total,
		TodayLeads:      today,
		WeekLeads:       week,
		TotalClicks:     totalClicks,
		StatusBreakdown: statusBreakdown(statusCounts),
		SourceBreakdown: BuildSourceBreakdown(sourceCounts),
		Campaigns:       stats,
		Timezone:        f.location.String(),
		GeneratedAt:     formatTime(now),
	}, nil
}

// RefreshLeadMetrics updates the lead gauges and reports new leads that
// nobody has called within the stale window.
func (f *DashboardFlowImpl) RefreshLeadMetrics(ctx context.Context) (*LeadMetricsSnapshot, error) {
	now := f.now()

	counts, err := f.leadRepo.CountByStatus(ctx, models.ConsultationFormFilter{})
	if err != nil {
		return nil, err
	}

	cutoff := now.Add(-f.staleAfter)
	newStatus := models.LeadStatusNew
	stale, err := f.leadRepo.Count(ctx, models.ConsultationFormFilter{LeadStatus: &newStatus, CreatedBefore: &cutoff})
	if err != nil {
		return nil, err
	}

	snapshot := &LeadMetricsSnapshot{
		ByStatus:    make(map[models.LeadStatus]int64, len(models.LeadStatuses)),
		StaleNew:    stale,
		StaleCutoff: cutoff,
		CollectedAt: now,
	}
	for _, item := range statusBreakdown(counts) {
		snapshot.ByStatus[models.LeadStatus(item.LeadStatus)] = item.Count
		leadsByStatus.WithLabelValues(item.LeadStatus).Set(float64(item.Count))
	}
	staleNewLeads.Set(float64(stale))

	if stale > 0 {
		f.log.Warn("new leads waiting for a call", "count", stale, "older_than", f.staleAfter.String())
	}
	return snapshot, nil
}

// statusBreakdown returns one entry per workflow status, in workflow order,
// zero-filled. Unknown statuses in storage are ignored.
func statusBreakdown(counts []models.StatusCount) []dto.StatusBreakdownItem {
	byStatus := make(map[models.LeadStatus]int64, len(counts))
	for _, c := range counts {
		byStatus[c.LeadStatus] += c.Count
	}
	items := make([]dto.StatusBreakdownItem, 0, len(models.LeadStatuses))
	for _, s := range models.LeadStatuses {
		items = append(items, dto.StatusBreakdownItem{LeadStatus: string(s), Count: byStatus[s]})
	}
	return items
}
