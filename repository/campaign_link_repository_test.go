package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/amirphl/dental-clinic/models"
	testingutil "github.com/amirphl/dental-clinic/testing"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignLinkRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := NewCampaignLinkRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		now := utils.UTCNow()

		_, err := fixtures.CreateTestCampaign("ig-promo", true, nil, 5)
		require.NoError(t, err)
		_, err = fixtures.CreateTestCampaign("paused", false, nil, 2)
		require.NoError(t, err)
		_, err = fixtures.CreateTestCampaign("old", true, utils.ToPtr(now.Add(-48*time.Hour)), 7)
		require.NoError(t, err)

		t.Run("ByUniqueCode", func(t *testing.T) {
			c, err := repo.ByUniqueCode(ctx, "paused")
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.False(t, utils.IsTrue(c.IsActive))

			missing, err := repo.ByUniqueCode(ctx, "nope")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("ActiveByUniqueCodeSkipsInactive", func(t *testing.T) {
			c, err := repo.ActiveByUniqueCode(ctx, "paused")
			require.NoError(t, err)
			assert.Nil(t, c)

			c, err = repo.ActiveByUniqueCode(ctx, "ig-promo")
			require.NoError(t, err)
			require.NotNil(t, c)
			assert.Equal(t, int64(5), c.ClickCount)
		})

		t.Run("IncrementAddsExactlyOne", func(t *testing.T) {
			ok, err := repo.IncrementClickCount(ctx, "ig-promo", &now)
			require.NoError(t, err)
			assert.True(t, ok)

			c, err := repo.ByUniqueCode(ctx, "ig-promo")
			require.NoError(t, err)
			assert.Equal(t, int64(6), c.ClickCount)
		})

		t.Run("IncrementIgnoresInactive", func(t *testing.T) {
			ok, err := repo.IncrementClickCount(ctx, "paused", &now)
			require.NoError(t, err)
			assert.False(t, ok)

			c, err := repo.ByUniqueCode(ctx, "paused")
			require.NoError(t, err)
			assert.Equal(t, int64(2), c.ClickCount)
		})

		t.Run("IncrementIgnoresExpired", func(t *testing.T) {
			ok, err := repo.IncrementClickCount(ctx, "old", &now)
			require.NoError(t, err)
			assert.False(t, ok)

			c, err := repo.ByUniqueCode(ctx, "old")
			require.NoError(t, err)
			assert.Equal(t, int64(7), c.ClickCount)
		})

		t.Run("IncrementUnknownCode", func(t *testing.T) {
			ok, err := repo.IncrementClickCount(ctx, "ghost", &now)
			require.NoError(t, err)
			assert.False(t, ok)
		})

		t.Run("ConcurrentIncrementsAreNotLost", func(t *testing.T) {
			_, err := fixtures.CreateTestCampaign("busy", true, nil, 0)
			require.NoError(t, err)

			const visits = 25
			var wg sync.WaitGroup
			for i := 0; i < visits; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _ = repo.IncrementClickCount(ctx, "busy", nil)
				}()
			}
			wg.Wait()

			c, err := repo.ByUniqueCode(ctx, "busy")
			require.NoError(t, err)
			assert.Equal(t, int64(visits), c.ClickCount)
		})

		t.Run("SearchAndExpiredFilter", func(t *testing.T) {
			rows, err := repo.ByFilter(ctx, models.CampaignLinkFilter{Search: utils.ToPtr("IG-")}, "id ASC", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "ig-promo", rows[0].UniqueCode)

			count, err := repo.Count(ctx, models.CampaignLinkFilter{ExpiredBefore: &now})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})

		t.Run("UpdateKeepsClickCount", func(t *testing.T) {
			stale, err := repo.ByUniqueCode(ctx, "ig-promo")
			require.NoError(t, err)
			_, err = repo.IncrementClickCount(ctx, "ig-promo", nil)
			require.NoError(t, err)

			stale.CampaignName = "Renamed"
			stale.IsActive = utils.ToPtr(false)
			stale.UniqueCode = "hijacked"
			require.NoError(t, repo.Update(ctx, stale))

			c, err := repo.ByID(ctx, stale.ID)
			require.NoError(t, err)
			assert.Equal(t, "Renamed", c.CampaignName)
			assert.False(t, utils.IsTrue(c.IsActive))
			assert.Equal(t, "ig-promo", c.UniqueCode)
			assert.Equal(t, stale.ClickCount+1, c.ClickCount)
		})

		return nil
	})
	require.NoError(t, err)
}
