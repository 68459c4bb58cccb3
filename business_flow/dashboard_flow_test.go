package businessflow

import (
	"testing"
	"time"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/repository"
	testingutil "github.com/amirphl/dental-clinic/testing"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversionRate(t *testing.T) {
	tests := []struct {
		name        string
		submissions int64
		clicks      int64
		want        int
	}{
		{"one of six", 1, 6, 16},
		{"no clicks", 3, 0, 0},
		{"no submissions", 0, 10, 0},
		{"half", 5, 10, 50},
		{"more leads than clicks", 4, 2, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConversionRate(tt.submissions, tt.clicks))
		})
	}
}

func TestBuildSourceBreakdown(t *testing.T) {
	items := BuildSourceBreakdown([]models.SourceCount{
		{Source: "tg-channel", Count: 1},
		{Source: "ig-promo", Count: 4},
		{Source: "Direct Visit", Count: 1},
	})

	assert.Equal(t, []dto.SourceBreakdownItem{
		{Source: "ig-promo", Count: 4, Percentage: 67},
		{Source: "Direct Visit", Count: 1, Percentage: 17},
		{Source: "tg-channel", Count: 1, Percentage: 17},
	}, items)

	assert.Empty(t, BuildSourceBreakdown(nil))
	assert.Equal(t, 0, Percentage(3, 0))
}

func TestDashboardCampaignFunnel(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		env := newLeadTestEnv(testDB)
		campaignRepo := repository.NewCampaignLinkRepository(testDB.DB)
		dashboard := NewDashboardFlow(env.leadRepo, campaignRepo, utils.LoadLocationOrUTC("Asia/Tashkent"), 0, env.clock.Now, logger.Nop())

		_, err := fixtures.CreateTestCampaign("ig-promo", true, nil, 5)
		require.NoError(t, err)
		_, err = fixtures.CreateTestCampaign("old", true, utils.ToPtr(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)), 9)
		require.NoError(t, err)

		// visitor from the instagram link
		result := env.attribution.CaptureAttribution(ctx, "visitor-ig", utils.ToPtr("ig-promo"), "https://clinic.uz/?source=ig-promo")
		require.Equal(t, AttributionCaptured, result.Outcome)
		submitted, err := env.flow.Submit(ctx, &dto.SubmitConsultationFormRequest{FullName: "Aziza", Phone: "+998901234567"}, visitor("visitor-ig"))
		require.NoError(t, err)
		assert.Equal(t, "ig-promo", submitted.Source)

		// visitor from an expired link
		result = env.attribution.CaptureAttribution(ctx, "visitor-old", utils.ToPtr("old"), "https://clinic.uz/?source=old")
		require.Equal(t, AttributionRejected, result.Outcome)
		submitted, err = env.flow.Submit(ctx, &dto.SubmitConsultationFormRequest{FullName: "Bekzod", Phone: "+998907777777"}, visitor("visitor-old"))
		require.NoError(t, err)
		assert.Equal(t, "Direct Visit", submitted.Source)

		resp, err := dashboard.GetDashboard(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(2), resp.TotalLeads)
		assert.Equal(t, int64(15), resp.TotalClicks)
		assert.Equal(t, "Asia/Tashkent", resp.Timezone)

		stats := map[string]dto.CampaignStatsItem{}
		for _, c := range resp.Campaigns {
			stats[c.UniqueCode] = c
		}
		require.Len(t, stats, 2)
		assert.Equal(t, int64(6), stats["ig-promo"].Clicks)
		assert.Equal(t, int64(1), stats["ig-promo"].Submissions)
		assert.Equal(t, 16, stats["ig-promo"].ConversionRate)
		assert.False(t, stats["ig-promo"].IsExpired)

		assert.Equal(t, int64(9), stats["old"].Clicks)
		assert.Equal(t, int64(0), stats["old"].Submissions)
		assert.Equal(t, 0, stats["old"].ConversionRate)
		assert.True(t, stats["old"].IsExpired)

		assert.Equal(t, []dto.SourceBreakdownItem{
			{Source: "Direct Visit", Count: 1, Percentage: 50},
			{Source: "ig-promo", Count: 1, Percentage: 50},
		}, resp.SourceBreakdown)
		return nil
	})
	require.NoError(t, err)
}

func TestDashboardLeadCounters(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		now := utils.UTCNow()

		leadRepo := repository.NewConsultationFormRepository(testDB.DB)
		campaignRepo := repository.NewCampaignLinkRepository(testDB.DB)
		dashboard := NewDashboardFlow(leadRepo, campaignRepo, utils.LoadLocationOrUTC("Asia/Tashkent"), 24*time.Hour, func() time.Time { return now }, logger.Nop())

		_, err := fixtures.CreateTestLead("ig-promo", models.LeadStatusNew, now)
		require.NoError(t, err)
		_, err = fixtures.CreateTestLead("ig-promo", models.LeadStatusNew, now.Add(-3*24*time.Hour))
		require.NoError(t, err)
		_, err = fixtures.CreateTestLead("Direct Visit", models.LeadStatusRejected, now.Add(-10*24*time.Hour))
		require.NoError(t, err)

		t.Run("counters", func(t *testing.T) {
			resp, err := dashboard.GetDashboard(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(3), resp.TotalLeads)
			assert.Equal(t, int64(1), resp.TodayLeads)
			assert.Equal(t, int64(2), resp.WeekLeads)
			assert.Empty(t, resp.Campaigns)
			assert.Equal(t, int64(0), resp.TotalClicks)
		})

		t.Run("status breakdown is zero filled in workflow order", func(t *testing.T) {
			resp, err := dashboard.GetDashboard(ctx)
			require.NoError(t, err)
			require.Len(t, resp.StatusBreakdown, len(models.LeadStatuses))
			for i, s := range models.LeadStatuses {
				assert.Equal(t, string(s), resp.StatusBreakdown[i].LeadStatus)
			}
			assert.Equal(t, int64(2), resp.StatusBreakdown[0].Count)
			assert.Equal(t, int64(0), resp.StatusBreakdown[1].Count)
			assert.Equal(t, int64(1), resp.StatusBreakdown[3].Count)
		})

		t.Run("stale new leads", func(t *testing.T) {
			snapshot, err := dashboard.RefreshLeadMetrics(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(1), snapshot.StaleNew)
			assert.Equal(t, int64(2), snapshot.ByStatus[models.LeadStatusNew])
			assert.Equal(t, now.Add(-24*time.Hour), snapshot.StaleCutoff)

			assert.Equal(t, float64(1), testutil.ToFloat64(staleNewLeads))
			assert.Equal(t, float64(1), testutil.ToFloat64(leadsByStatus.WithLabelValues(string(models.LeadStatusRejected))))
		})

		return nil
	})
	require.NoError(t, err)
}
