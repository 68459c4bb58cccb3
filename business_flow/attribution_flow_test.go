package businessflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirphl/dental-clinic/app/services"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/repository"
	testingutil "github.com/amirphl/dental-clinic/testing"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestClock() *testClock {
	return &testClock{now: utils.UTCNow()}
}

type failingStore struct {
	services.SessionAttributionStore
}

func (failingStore) Set(ctx context.Context, sessionID, code string) (*services.StoredSource, error) {
	return nil, errors.New("redis: connection refused")
}

func (failingStore) Get(ctx context.Context, sessionID string) (*services.StoredSource, error) {
	return nil, errors.New("redis: connection refused")
}

func clicksOf(t *testing.T, repo repository.CampaignLinkRepository, code string) int64 {
	t.Helper()
	c, err := repo.ByUniqueCode(context.Background(), code)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c.ClickCount
}

func TestCaptureAttribution(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		repo := repository.NewCampaignLinkRepository(testDB.DB)
		clock := newTestClock()
		store := services.NewMemoryAttributionStore(services.DefaultAttributionExpiryPolicy(), clock.Now)
		flow := NewAttributionFlow(repo, store, "", clock.Now, logger.Nop())

		_, err := fixtures.CreateTestCampaign("ig-promo", true, nil, 5)
		require.NoError(t, err)
		_, err = fixtures.CreateTestCampaign("paused", false, nil, 3)
		require.NoError(t, err)
		_, err = fixtures.CreateTestCampaign("old", true, utils.ToPtr(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)), 9)
		require.NoError(t, err)

		t.Run("absent parameter is skipped", func(t *testing.T) {
			_, err := store.Set(ctx, "visitor-skip", "ig-promo")
			require.NoError(t, err)

			for _, param := range []*string{nil, utils.ToPtr(""), utils.ToPtr("   ")} {
				result := flow.CaptureAttribution(ctx, "visitor-skip", param, "")
				assert.Equal(t, AttributionSkipped, result.Outcome)
			}

			code, ok := flow.GetStoredSource(ctx, "visitor-skip")
			assert.True(t, ok)
			assert.Equal(t, "ig-promo", code)
		})

		t.Run("malformed code is rejected", func(t *testing.T) {
			for _, code := range []string{"ig promo", "promo!", "<script>", "a/b"} {
				result := flow.CaptureAttribution(ctx, "visitor-bad", utils.ToPtr(code), "")
				assert.Equal(t, AttributionRejected, result.Outcome, code)
				assert.Equal(t, ReasonInvalidCode, result.Reason, code)
			}
			_, ok := flow.GetStoredSource(ctx, "visitor-bad")
			assert.False(t, ok)
		})

		t.Run("unknown and inactive campaigns are not stored", func(t *testing.T) {
			for _, code := range []string{"nope", "paused"} {
				result := flow.CaptureAttribution(ctx, "visitor-unknown", utils.ToPtr(code), "")
				assert.Equal(t, AttributionRejected, result.Outcome)
				assert.Equal(t, ReasonCampaignNotFound, result.Reason)
			}
			_, ok := flow.GetStoredSource(ctx, "visitor-unknown")
			assert.False(t, ok)
			assert.Equal(t, int64(3), clicksOf(t, repo, "paused"))
		})

		t.Run("expired campaign neither counts nor stores", func(t *testing.T) {
			result := flow.CaptureAttribution(ctx, "visitor-old", utils.ToPtr("old"), "")
			assert.Equal(t, AttributionRejected, result.Outcome)
			assert.Equal(t, ReasonCampaignExpired, result.Reason)

			assert.Equal(t, int64(9), clicksOf(t, repo, "old"))
			_, ok := flow.GetStoredSource(ctx, "visitor-old")
			assert.False(t, ok)
			assert.Equal(t, utils.DefaultLeadSource, flow.ResolveLeadSource(ctx, "visitor-old", nil))
		})

		t.Run("valid campaign is stored and counted", func(t *testing.T) {
			result := flow.CaptureAttribution(ctx, "visitor-ig", utils.ToPtr(" ig-promo "), "https://clinic.uz/?source=ig-promo&lang=uz")
			assert.Equal(t, AttributionCaptured, result.Outcome)
			assert.Equal(t, "ig-promo", result.Code)
			assert.True(t, result.ClickCounted)
			assert.True(t, clock.now.Equal(result.CapturedAt))
			assert.Equal(t, "https://clinic.uz/?lang=uz", result.CleanURL)

			assert.Equal(t, int64(6), clicksOf(t, repo, "ig-promo"))
			code, ok := flow.GetStoredSource(ctx, "visitor-ig")
			assert.True(t, ok)
			assert.Equal(t, "ig-promo", code)

			dtoResult := result.DTO()
			assert.Equal(t, "captured", dtoResult.Result)
			assert.Equal(t, clock.now.UnixMilli(), dtoResult.CapturedAt)
		})

		t.Run("store failure does not count the click", func(t *testing.T) {
			failing := NewAttributionFlow(repo, failingStore{}, "", clock.Now, logger.Nop())
			before := clicksOf(t, repo, "ig-promo")

			result := failing.CaptureAttribution(ctx, "visitor-x", utils.ToPtr("ig-promo"), "")
			assert.Equal(t, AttributionRejected, result.Outcome)
			assert.Equal(t, ReasonStoreFailed, result.Reason)
			assert.Equal(t, before, clicksOf(t, repo, "ig-promo"))

			// reads fail open
			assert.Equal(t, utils.DefaultLeadSource, failing.ResolveLeadSource(ctx, "visitor-x", nil))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestResolveLeadSource(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := services.NewMemoryAttributionStore(services.DefaultAttributionExpiryPolicy(), clock.Now)
	flow := NewAttributionFlow(nil, store, "", clock.Now, logger.Nop())

	t.Run("no attribution falls back to direct visit", func(t *testing.T) {
		assert.Equal(t, "Direct Visit", flow.ResolveLeadSource(ctx, "visitor-1", nil))
		assert.Equal(t, "Direct Visit", flow.ResolveLeadSource(ctx, "", nil))
	})

	t.Run("stored attribution is used", func(t *testing.T) {
		_, err := store.Set(ctx, "visitor-2", "summer-promo")
		require.NoError(t, err)
		assert.Equal(t, "summer-promo", flow.ResolveLeadSource(ctx, "visitor-2", nil))
	})

	t.Run("explicit source wins", func(t *testing.T) {
		assert.Equal(t, "tg-channel", flow.ResolveLeadSource(ctx, "visitor-2", utils.ToPtr(" tg-channel ")))
		assert.Equal(t, "summer-promo", flow.ResolveLeadSource(ctx, "visitor-2", utils.ToPtr("  ")))
	})

	t.Run("attribution older than thirty days is ignored", func(t *testing.T) {
		_, err := store.Set(ctx, "visitor-3", "winter-promo")
		require.NoError(t, err)
		clock.now = clock.now.Add(30*24*time.Hour + time.Minute)

		_, ok := flow.GetStoredSource(ctx, "visitor-3")
		assert.False(t, ok)
		assert.Equal(t, "Direct Visit", flow.ResolveLeadSource(ctx, "visitor-3", nil))

		stored := flow.StoredSource(ctx, "visitor-3")
		assert.False(t, stored.Present)
	})
}

func TestIncrementCampaignClick(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		repo := repository.NewCampaignLinkRepository(testDB.DB)
		clock := newTestClock()
		flow := NewAttributionFlow(repo, services.NewMemoryAttributionStore(services.DefaultAttributionExpiryPolicy(), clock.Now), "", clock.Now, logger.Nop())

		_, err := fixtures.CreateTestCampaign("fb-ads", true, nil, 0)
		require.NoError(t, err)
		_, err = fixtures.CreateTestCampaign("paused", false, nil, 0)
		require.NoError(t, err)
		_, err = fixtures.CreateTestCampaign("old", true, utils.ToPtr(clock.now.Add(-time.Hour)), 4)
		require.NoError(t, err)

		t.Run("each call adds exactly one", func(t *testing.T) {
			for i := 1; i <= 3; i++ {
				resp, err := flow.IncrementCampaignClick(ctx, "fb-ads")
				require.NoError(t, err)
				assert.True(t, resp.Counted)
				assert.Equal(t, int64(i), clicksOf(t, repo, "fb-ads"))
			}
		})

		t.Run("not found cases", func(t *testing.T) {
			for _, code := range []string{"missing", "paused", "old"} {
				_, err := flow.IncrementCampaignClick(ctx, code)
				assert.True(t, IsCampaignNotFound(err), code)
			}
			assert.Equal(t, int64(0), clicksOf(t, repo, "paused"))
			assert.Equal(t, int64(4), clicksOf(t, repo, "old"))
		})

		t.Run("malformed code", func(t *testing.T) {
			_, err := flow.IncrementCampaignClick(ctx, "bad code")
			assert.True(t, IsInvalidCampaignCode(err))
		})

		t.Run("get campaign", func(t *testing.T) {
			c, err := flow.GetCampaign(ctx, "old")
			require.NoError(t, err)
			assert.True(t, c.IsActive)
			assert.True(t, c.IsExpired)
			require.NotNil(t, c.ExpiryDate)

			c, err = flow.GetCampaign(ctx, "paused")
			require.NoError(t, err)
			assert.False(t, c.IsActive)

			_, err = flow.GetCampaign(ctx, "missing")
			assert.True(t, IsCampaignNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestValidCampaignCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"ig-promo", true},
		{"IG_2026", true},
		{"a", true},
		{"", false},
		{"has space", false},
		{"dot.code", false},
		{"ünïcode", false},
		{string(make([]byte, 65)), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidCampaignCode(tt.code), tt.code)
	}
}
