package repository

import (
	"testing"

	"github.com/amirphl/dental-clinic/models"
	testingutil "github.com/amirphl/dental-clinic/testing"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := NewSettingRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestSetting("primary_color", `"#0ea5e9"`)
		require.NoError(t, err)
		_, err = fixtures.CreateTestSetting("show_reviews", `true`)
		require.NoError(t, err)

		t.Run("ByKey", func(t *testing.T) {
			s, err := repo.ByKey(ctx, "primary_color")
			require.NoError(t, err)
			require.NotNil(t, s)
			assert.JSONEq(t, `"#0ea5e9"`, string(s.Value))

			missing, err := repo.ByKey(ctx, "nope")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("UpsertManyInsertsAndOverwrites", func(t *testing.T) {
			now := utils.UTCNow()
			err := repo.UpsertMany(ctx, []*models.Setting{
				{Key: "primary_color", Value: []byte(`"#111827"`), UpdatedAt: now},
				{Key: "hero_title", Value: []byte(`{"uz":"Tabassum","ru":"Улыбка"}`), UpdatedAt: now},
			})
			require.NoError(t, err)

			s, err := repo.ByKey(ctx, "primary_color")
			require.NoError(t, err)
			assert.JSONEq(t, `"#111827"`, string(s.Value))

			s, err = repo.ByKey(ctx, "hero_title")
			require.NoError(t, err)
			require.NotNil(t, s)
			assert.JSONEq(t, `{"uz":"Tabassum","ru":"Улыбка"}`, string(s.Value))

			count, err := repo.Count(ctx, models.SettingFilter{})
			require.NoError(t, err)
			assert.Equal(t, int64(3), count)
		})

		t.Run("FilterByKeys", func(t *testing.T) {
			rows, err := repo.ByFilter(ctx, models.SettingFilter{Keys: []string{"show_reviews", "hero_title"}}, "id ASC", 0, 0)
			require.NoError(t, err)
			assert.Len(t, rows, 2)
		})

		t.Run("DeleteKeysNotIn", func(t *testing.T) {
			deleted, err := repo.DeleteKeysNotIn(ctx, []string{"primary_color", "hero_title"})
			require.NoError(t, err)
			assert.Equal(t, int64(1), deleted)

			exists, err := repo.Exists(ctx, models.SettingFilter{Key: utils.ToPtr("show_reviews")})
			require.NoError(t, err)
			assert.False(t, exists)
		})

		t.Run("DeleteByKey", func(t *testing.T) {
			ok, err := repo.DeleteByKey(ctx, "hero_title")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = repo.DeleteByKey(ctx, "hero_title")
			require.NoError(t, err)
			assert.False(t, ok)
		})

		return nil
	})
	require.NoError(t, err)
}
