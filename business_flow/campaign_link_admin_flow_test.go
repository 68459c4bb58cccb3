package businessflow

import (
	"errors"
	"testing"
	"time"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/repository"
	testingutil "github.com/amirphl/dental-clinic/testing"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignLinkAdminFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewCampaignLinkRepository(testDB.DB)
		flow := NewCampaignLinkAdminFlow(repo, "https://clinic.uz/", logger.Nop())
		ctx := testingutil.CreateTestContext()

		var created *dto.CampaignLinkDTO

		t.Run("create", func(t *testing.T) {
			var err error
			created, err = flow.Create(ctx, &dto.CreateCampaignLinkRequest{
				CampaignName: " Instagram spring promo ",
				UniqueCode:   "ig-promo",
			})
			require.NoError(t, err)
			assert.Equal(t, "Instagram spring promo", created.CampaignName)
			assert.True(t, created.IsActive)
			assert.Equal(t, int64(0), created.ClickCount)
			assert.Equal(t, "https://clinic.uz/?source=ig-promo", created.ShareURL)
			assert.NotEmpty(t, created.UUID)
		})

		t.Run("create validation", func(t *testing.T) {
			tests := []struct {
				name  string
				req   dto.CreateCampaignLinkRequest
				check func(error) bool
			}{
				{"duplicate code", dto.CreateCampaignLinkRequest{CampaignName: "Again", UniqueCode: "ig-promo"}, IsCampaignCodeExists},
				{"code with spaces", dto.CreateCampaignLinkRequest{CampaignName: "Bad", UniqueCode: "ig promo"}, IsInvalidCampaignCode},
				{"blank name", dto.CreateCampaignLinkRequest{CampaignName: "  ", UniqueCode: "tg"}, func(err error) bool { return errors.Is(err, ErrCampaignNameRequired) }},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					_, err := flow.Create(ctx, &tt.req)
					require.Error(t, err)
					assert.True(t, tt.check(err))
				})
			}
		})

		t.Run("update keeps code and clicks", func(t *testing.T) {
			for i := 0; i < 3; i++ {
				_, err := repo.IncrementClickCount(ctx, "ig-promo", nil)
				require.NoError(t, err)
			}
			expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

			updated, err := flow.Update(ctx, created.ID, &dto.UpdateCampaignLinkRequest{
				CampaignName: utils.ToPtr("IG summer"),
				IsActive:     utils.ToPtr(false),
				ExpiryDate:   &expiry,
			})
			require.NoError(t, err)
			assert.Equal(t, "IG summer", updated.CampaignName)
			assert.False(t, updated.IsActive)
			assert.Equal(t, "2030-01-01T00:00:00Z", utils.Deref(updated.ExpiryDate))
			assert.Equal(t, "ig-promo", updated.UniqueCode)
			assert.Equal(t, int64(3), updated.ClickCount)

			cleared, err := flow.Update(ctx, created.ID, &dto.UpdateCampaignLinkRequest{ClearExpiry: true})
			require.NoError(t, err)
			assert.Nil(t, cleared.ExpiryDate)
			assert.Equal(t, "IG summer", cleared.CampaignName)

			_, err = flow.Update(ctx, created.ID, &dto.UpdateCampaignLinkRequest{ClearExpiry: true, ExpiryDate: &expiry})
			assert.ErrorIs(t, err, ErrCampaignExpiryConflict)
		})

		t.Run("list", func(t *testing.T) {
			_, err := flow.Create(ctx, &dto.CreateCampaignLinkRequest{CampaignName: "Telegram", UniqueCode: "tg_channel"})
			require.NoError(t, err)

			resp, err := flow.List(ctx, &dto.ListCampaignLinksRequest{})
			require.NoError(t, err)
			assert.Equal(t, int64(2), resp.Pagination.TotalCount)

			resp, err = flow.List(ctx, &dto.ListCampaignLinksRequest{IsActive: utils.ToPtr(true)})
			require.NoError(t, err)
			require.Len(t, resp.Data, 1)
			assert.Equal(t, "tg_channel", resp.Data[0].UniqueCode)

			resp, err = flow.List(ctx, &dto.ListCampaignLinksRequest{Search: "summer"})
			require.NoError(t, err)
			require.Len(t, resp.Data, 1)
			assert.Equal(t, "ig-promo", resp.Data[0].UniqueCode)
		})

		t.Run("delete", func(t *testing.T) {
			require.NoError(t, flow.Delete(ctx, created.ID))
			assert.True(t, IsCampaignNotFound(flow.Delete(ctx, created.ID)))

			_, err := flow.Get(ctx, created.ID)
			assert.True(t, IsCampaignNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
