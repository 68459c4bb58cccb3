package repository

import (
	"testing"
	"time"

	"github.com/amirphl/dental-clinic/models"
	testingutil "github.com/amirphl/dental-clinic/testing"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsultationFormRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := NewConsultationFormRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		now := utils.UTCNow()

		seed := []struct {
			source string
			status models.LeadStatus
			age    time.Duration
		}{
			{"ig-promo", models.LeadStatusNew, time.Hour},
			{"ig-promo", models.LeadStatusCalled, 2 * time.Hour},
			{utils.DefaultLeadSource, models.LeadStatusNew, 3 * 24 * time.Hour},
			{"tg-ads", models.LeadStatusAgreed, 10 * 24 * time.Hour},
		}
		for _, s := range seed {
			_, err := fixtures.CreateTestLead(s.source, s.status, now.Add(-s.age))
			require.NoError(t, err)
		}

		t.Run("DefaultsOnCreate", func(t *testing.T) {
			lead := &models.ConsultationForm{FullName: "Aziza Karimova", Phone: "+998901234567"}
			require.NoError(t, repo.Save(ctx, lead))
			assert.Equal(t, models.LeadStatusNew, lead.LeadStatus)
			assert.Equal(t, utils.DefaultLeadSource, lead.Source)
			assert.False(t, lead.CreatedAt.IsZero())
		})

		t.Run("SearchByNameAndPhone", func(t *testing.T) {
			rows, err := repo.ByFilter(ctx, models.ConsultationFormFilter{Search: utils.ToPtr("aziza")}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)

			rows, err = repo.ByFilter(ctx, models.ConsultationFormFilter{Search: utils.ToPtr("90 123 45")}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "Aziza Karimova", rows[0].FullName)
		})

		t.Run("SearchKeepsTextAndPhoneApart", func(t *testing.T) {
			tests := []struct {
				name   string
				search string
				want   int
			}{
				{"formatted phone", "+998 (90) 123-45-67", 1},
				{"name with digit does not match phones", "aziza 2", 0},
				{"percent is literal", "%", 0},
				{"underscore is literal", "_", 0},
				{"backslash is literal", `\`, 0},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					rows, err := repo.ByFilter(ctx, models.ConsultationFormFilter{Search: utils.ToPtr(tt.search)}, "", 0, 0)
					require.NoError(t, err)
					assert.Len(t, rows, tt.want)
				})
			}
		})

		t.Run("FilterBySourceStatusAndDate", func(t *testing.T) {
			count, err := repo.Count(ctx, models.ConsultationFormFilter{Source: utils.ToPtr("ig-promo")})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)

			status := models.LeadStatusNew
			count, err = repo.Count(ctx, models.ConsultationFormFilter{LeadStatus: &status})
			require.NoError(t, err)
			assert.Equal(t, int64(3), count)

			weekAgo := now.Add(-7 * 24 * time.Hour)
			count, err = repo.Count(ctx, models.ConsultationFormFilter{CreatedAfter: &weekAgo})
			require.NoError(t, err)
			assert.Equal(t, int64(4), count)
		})

		t.Run("PaginationOrdersNewestFirst", func(t *testing.T) {
			rows, err := repo.ByFilter(ctx, models.ConsultationFormFilter{}, "created_at DESC", 2, 3)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, utils.DefaultLeadSource, rows[0].Source)
			assert.Equal(t, "tg-ads", rows[1].Source)
		})

		t.Run("UpdateStatusAndNotesOnly", func(t *testing.T) {
			lead, err := fixtures.CreateTestLead("summer-promo", models.LeadStatusNew, now.Add(-time.Minute))
			require.NoError(t, err)

			status := models.LeadStatusAgreed
			later := now.Add(time.Minute)
			ok, err := repo.UpdateStatusAndNotes(ctx, lead.ID, &status, utils.ToPtr("call back on monday"), later)
			require.NoError(t, err)
			assert.True(t, ok)

			got, err := repo.ByID(ctx, lead.ID)
			require.NoError(t, err)
			assert.Equal(t, models.LeadStatusAgreed, got.LeadStatus)
			assert.Equal(t, "call back on monday", *got.Notes)
			assert.Equal(t, "summer-promo", got.Source)
			assert.True(t, got.UpdatedAt.After(got.CreatedAt))

			ok, err = repo.UpdateStatusAndNotes(ctx, 999999, &status, nil, later)
			require.NoError(t, err)
			assert.False(t, ok)
		})

		t.Run("DistinctSources", func(t *testing.T) {
			sources, err := repo.DistinctSources(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{utils.DefaultLeadSource, "ig-promo", "summer-promo", "tg-ads"}, sources)
		})

		t.Run("CountBySourceAndStatus", func(t *testing.T) {
			bySource, err := repo.CountBySource(ctx, models.ConsultationFormFilter{})
			require.NoError(t, err)
			require.NotEmpty(t, bySource)
			assert.Equal(t, models.SourceCount{Source: utils.DefaultLeadSource, Count: 2}, bySource[0])

			byStatus, err := repo.CountByStatus(ctx, models.ConsultationFormFilter{})
			require.NoError(t, err)
			counts := map[models.LeadStatus]int64{}
			for _, row := range byStatus {
				counts[row.LeadStatus] = row.Count
			}
			assert.Equal(t, int64(3), counts[models.LeadStatusNew])
			assert.Equal(t, int64(2), counts[models.LeadStatusAgreed])
		})

		return nil
	})
	require.NoError(t, err)
}

func TestConsultationFormSearchMatchesMetacharactersLiterally(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := NewConsultationFormRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		promo := &models.ConsultationForm{FullName: "Promo_50% Guest", Phone: "+998935554433"}
		require.NoError(t, repo.Save(ctx, promo))
		require.NoError(t, repo.Save(ctx, &models.ConsultationForm{FullName: "Promo 500 Guest", Phone: "+998935550000"}))

		rows, err := repo.ByFilter(ctx, models.ConsultationFormFilter{Search: utils.ToPtr("o_50%")}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, promo.ID, rows[0].ID)

		rows, err = repo.ByFilter(ctx, models.ConsultationFormFilter{Search: utils.ToPtr("93 555")}, "", 0, 0)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
		return nil
	})
	require.NoError(t, err)
}
