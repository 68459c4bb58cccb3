package businessflow

import (
	"encoding/json"
	"testing"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/repository"
	testingutil "github.com/amirphl/dental-clinic/testing"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsFlow(testDB *testingutil.TestDB) SettingsFlow {
	return NewSettingsFlow(
		repository.NewSettingRepository(testDB.DB),
		repository.NewSettingPresetRepository(testDB.DB),
		testDB.DB,
		logger.Nop(),
	)
}

func TestSiteSettingsFallback(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newSettingsFlow(testDB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := fixtures.CreateTestSetting("site_name", `"Smile Tashkent"`)
		require.NoError(t, err)
		_, err = fixtures.CreateTestSetting("show_reviews", `false`)
		require.NoError(t, err)
		_, err = fixtures.CreateTestSetting("happy_patients", `"a lot"`)
		require.NoError(t, err)
		_, err = fixtures.CreateTestSetting("languages", `["uz","ru","en"]`)
		require.NoError(t, err)
		_, err = fixtures.CreateTestSetting("seo", `{"title":"Smile","description":"Implants"}`)
		require.NoError(t, err)

		resp, err := flow.GetSiteSettings(ctx)
		require.NoError(t, err)

		defaults := DefaultSiteSettings()
		assert.Equal(t, "Smile Tashkent", resp.Settings.SiteName)
		assert.False(t, resp.Settings.ShowReviews)
		assert.Equal(t, defaults.HappyPatients, resp.Settings.HappyPatients)
		assert.Equal(t, []string{"uz", "ru", "en"}, resp.Settings.Languages)
		assert.Equal(t, "Smile", resp.Settings.SEO.Title)
		assert.Equal(t, defaults.PrimaryColor, resp.Settings.PrimaryColor)

		assert.Contains(t, resp.Defaulted, "happy_patients")
		assert.Contains(t, resp.Defaulted, "primary_color")
		assert.NotContains(t, resp.Defaulted, "site_name")
		assert.Len(t, resp.Defaulted, len(SiteSettingKeys())-4)
		return nil
	})
	require.NoError(t, err)
}

func TestSettingsCRUD(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newSettingsFlow(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("upsert and get", func(t *testing.T) {
			saved, err := flow.Upsert(ctx, "hero_title", json.RawMessage(`"Implants in one day"`))
			require.NoError(t, err)
			assert.JSONEq(t, `"Implants in one day"`, string(saved.Value))

			saved, err = flow.Upsert(ctx, "hero_title", json.RawMessage(`"Braces"`))
			require.NoError(t, err)
			assert.JSONEq(t, `"Braces"`, string(saved.Value))

			// keys outside the typed schema take any JSON
			_, err = flow.Upsert(ctx, "promo_banner", json.RawMessage(`{"text":"-20%","until":"2026-12-31"}`))
			require.NoError(t, err)

			got, err := flow.Get(ctx, "promo_banner")
			require.NoError(t, err)
			assert.JSONEq(t, `{"text":"-20%","until":"2026-12-31"}`, string(got.Value))
		})

		t.Run("upsert validation", func(t *testing.T) {
			tests := []struct {
				name  string
				key   string
				value string
				err   error
			}{
				{"wrong type for typed key", "show_doctors", `"yes"`, ErrSettingTypeMismatch},
				{"null for typed key", "site_name", `null`, ErrSettingTypeMismatch},
				{"unknown seo field", "seo", `{"title":"x","robots":"noindex"}`, ErrSettingTypeMismatch},
				{"invalid json", "anything", `{"a":`, ErrSettingValueInvalid},
				{"blank key", "  ", `1`, ErrSettingKeyRequired},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					_, err := flow.Upsert(ctx, tt.key, json.RawMessage(tt.value))
					assert.ErrorIs(t, err, tt.err)
				})
			}
		})

		t.Run("missing key", func(t *testing.T) {
			_, err := flow.Get(ctx, "nope")
			assert.True(t, IsSettingNotFound(err))
			assert.True(t, IsSettingNotFound(flow.Delete(ctx, "nope")))
		})

		t.Run("bulk upsert, last duplicate wins", func(t *testing.T) {
			resp, err := flow.BulkUpsert(ctx, []dto.BulkSettingItem{
				{Key: "phone_primary", Value: json.RawMessage(`"+998 90 111 22 33"`)},
				{Key: "hero_title", Value: json.RawMessage(`"Whitening"`)},
				{Key: "phone_primary", Value: json.RawMessage(`"+998 90 999 88 77"`)},
			})
			require.NoError(t, err)
			assert.Equal(t, 2, resp.Updated)

			got, err := flow.Get(ctx, "phone_primary")
			require.NoError(t, err)
			assert.JSONEq(t, `"+998 90 999 88 77"`, string(got.Value))
		})

		t.Run("bulk upsert is all or nothing", func(t *testing.T) {
			_, err := flow.BulkUpsert(ctx, []dto.BulkSettingItem{
				{Key: "tagline", Value: json.RawMessage(`"ok"`)},
				{Key: "years_of_experience", Value: json.RawMessage(`"ten"`)},
			})
			assert.True(t, IsSettingTypeMismatch(err))

			_, err = flow.Get(ctx, "tagline")
			assert.True(t, IsSettingNotFound(err))
		})

		t.Run("list is sorted by key", func(t *testing.T) {
			all, err := flow.List(ctx)
			require.NoError(t, err)
			keys := make([]string, 0, len(all))
			for _, s := range all {
				keys = append(keys, s.Key)
			}
			assert.Equal(t, []string{"hero_title", "phone_primary", "promo_banner"}, keys)
		})

		t.Run("delete", func(t *testing.T) {
			require.NoError(t, flow.Delete(ctx, "promo_banner"))
			_, err := flow.Get(ctx, "promo_banner")
			assert.True(t, IsSettingNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSettingPresets(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newSettingsFlow(testDB)
		ctx := testingutil.CreateTestContext()

		_, err := flow.BulkUpsert(ctx, []dto.BulkSettingItem{
			{Key: "hero_title", Value: json.RawMessage(`"Spring"`)},
			{Key: "primary_color", Value: json.RawMessage(`"#22C55E"`)},
		})
		require.NoError(t, err)

		preset, err := flow.CreatePreset(ctx, &dto.CreateSettingPresetRequest{Name: "Spring", Description: utils.ToPtr("spring look")})
		require.NoError(t, err)
		assert.Equal(t, 2, preset.KeyCount)

		_, err = flow.CreatePreset(ctx, &dto.CreateSettingPresetRequest{Name: "Spring"})
		assert.ErrorIs(t, err, ErrPresetNameExists)

		// drift away from the snapshot
		_, err = flow.Upsert(ctx, "hero_title", json.RawMessage(`"Summer"`))
		require.NoError(t, err)
		_, err = flow.Upsert(ctx, "promo_banner", json.RawMessage(`"summer sale"`))
		require.NoError(t, err)
		require.NoError(t, flow.Delete(ctx, "primary_color"))

		applied, err := flow.ApplyPreset(ctx, preset.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, applied.Applied)
		assert.Equal(t, int64(1), applied.Removed)

		all, err := flow.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "hero_title", all[0].Key)
		assert.JSONEq(t, `"Spring"`, string(all[0].Value))
		assert.Equal(t, "primary_color", all[1].Key)

		presets, err := flow.ListPresets(ctx)
		require.NoError(t, err)
		require.Len(t, presets, 1)
		assert.Equal(t, "spring look", utils.Deref(presets[0].Description))

		require.NoError(t, flow.DeletePreset(ctx, preset.ID))
		assert.True(t, IsPresetNotFound(flow.DeletePreset(ctx, preset.ID)))
		_, err = flow.ApplyPreset(ctx, preset.ID)
		assert.True(t, IsPresetNotFound(err))
		return nil
	})
	require.NoError(t, err)
}
