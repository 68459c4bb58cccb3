package repository

import (
	"testing"

	"github.com/amirphl/dental-clinic/models"
	testingutil "github.com/amirphl/dental-clinic/testing"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := NewContentRepository[models.FAQ](testDB.DB, models.VisibilityIsActive)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		first, err := fixtures.CreateTestFAQ(2, true)
		require.NoError(t, err)
		second, err := fixtures.CreateTestFAQ(1, true)
		require.NoError(t, err)
		hidden, err := fixtures.CreateTestFAQ(0, false)
		require.NoError(t, err)

		t.Run("VisibleItemsInDisplayOrder", func(t *testing.T) {
			rows, err := repo.ByFilter(ctx, models.ContentFilter{Visible: utils.ToPtr(true)}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, second.ID, rows[0].ID)
			assert.Equal(t, first.ID, rows[1].ID)
		})

		t.Run("AllItems", func(t *testing.T) {
			count, err := repo.Count(ctx, models.ContentFilter{})
			require.NoError(t, err)
			assert.Equal(t, int64(3), count)
		})

		t.Run("Reorder", func(t *testing.T) {
			require.NoError(t, repo.UpdateDisplayOrder(ctx, []uint{first.ID, hidden.ID, second.ID}))

			rows, err := repo.ByFilter(ctx, models.ContentFilter{}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 3)
			assert.Equal(t, []uint{first.ID, hidden.ID, second.ID}, []uint{rows[0].ID, rows[1].ID, rows[2].ID})
		})

		t.Run("UpdateAndDelete", func(t *testing.T) {
			item, err := repo.ByID(ctx, hidden.ID)
			require.NoError(t, err)
			item.IsActive = utils.ToPtr(true)
			item.Answer = "Ha, bepul konsultatsiya mavjud."
			require.NoError(t, repo.Update(ctx, item))

			got, err := repo.ByID(ctx, hidden.ID)
			require.NoError(t, err)
			assert.True(t, utils.IsTrue(got.IsActive))
			assert.Equal(t, "Ha, bepul konsultatsiya mavjud.", got.Answer)

			ok, err := repo.DeleteByID(ctx, hidden.ID)
			require.NoError(t, err)
			assert.True(t, ok)

			got, err = repo.ByID(ctx, hidden.ID)
			require.NoError(t, err)
			assert.Nil(t, got)
		})

		t.Run("ReviewsUseApprovalColumn", func(t *testing.T) {
			reviews := NewContentRepository[models.Review](testDB.DB, models.VisibilityIsApproved)
			require.NoError(t, reviews.Save(ctx, &models.Review{AuthorName: "Dilnoza", Rating: 5, Text: "Zo'r", IsApproved: utils.ToPtr(false)}))
			require.NoError(t, reviews.Save(ctx, &models.Review{AuthorName: "Jasur", Rating: 4, Text: "Yaxshi", IsApproved: utils.ToPtr(true)}))

			rows, err := reviews.ByFilter(ctx, models.ContentFilter{Visible: utils.ToPtr(true)}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "Jasur", rows[0].AuthorName)
		})

		return nil
	})
	require.NoError(t, err)
}
