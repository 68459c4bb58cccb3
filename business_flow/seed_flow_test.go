package businessflow

import (
	"encoding/json"
	"testing"

	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/repository"
	testingutil "github.com/amirphl/dental-clinic/testing"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestEmbeddedSeedDocumentIsValid(t *testing.T) {
	doc, err := ParseSeedDocument(defaultSeedYAML)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Settings)
	assert.Len(t, doc.Doctors, 3)
	assert.Len(t, doc.SectionBackgrounds, 2)

	for key, value := range doc.Settings {
		raw, err := json.Marshal(value)
		require.NoError(t, err, key)
		_, err = checkSiteSettingType(key, raw)
		assert.NoError(t, err, key)
	}
}

func TestSeedFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		fixtures := testingutil.NewTestFixtures(testDB)

		_, err := fixtures.CreateTestSetting("site_name", `"Smile Tashkent"`)
		require.NoError(t, err)
		_, err = fixtures.CreateTestFAQ(0, true)
		require.NoError(t, err)

		flow := NewSeedFlow(testDB.DB, SeedConfig{
			AdminEmail:    " Owner@Clinic.uz ",
			AdminPassword: "owner-pass-1",
			AdminFullName: "Clinic Owner",
			CRMUsername:   "callcenter",
			CRMPassword:   "crm-pass-1",
			BcryptCost:    bcrypt.MinCost,
		}, logger.Nop())

		report, err := flow.Seed(ctx)
		require.NoError(t, err)
		assert.True(t, report.AdminCreated)
		assert.True(t, report.CRMUserCreated)
		assert.NotContains(t, report.SettingsInserted, "site_name")
		assert.Contains(t, report.SettingsInserted, "hero_title")
		assert.Contains(t, report.SettingsInserted, "consultation_form_questions")
		assert.Equal(t, 3, report.ContentInserted[CollectionDoctors])
		assert.Equal(t, 2, report.ContentInserted[CollectionReviews])
		assert.Equal(t, 1, report.ContentInserted[CollectionFinalCTA])
		_, faqsSeeded := report.ContentInserted[CollectionFAQs]
		assert.False(t, faqsSeeded, "non-empty collection must be left alone")

		admin, err := repository.NewAdminRepository(testDB.DB).ByEmail(ctx, "owner@clinic.uz")
		require.NoError(t, err)
		require.NotNil(t, admin)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("owner-pass-1")))

		stored, err := repository.NewSettingRepository(testDB.DB).ByKey(ctx, "site_name")
		require.NoError(t, err)
		assert.JSONEq(t, `"Smile Tashkent"`, string(stored.Value))

		reviews := repository.NewContentRepository[models.Review](testDB.DB, models.VisibilityIsApproved)
		approved, err := reviews.Count(ctx, models.ContentFilter{Visible: utils.ToPtr(true)})
		require.NoError(t, err)
		assert.Equal(t, int64(2), approved)

		backgrounds, err := repository.NewContentRepository[models.SectionBackground](testDB.DB, models.VisibilityIsActive).
			ByFilter(ctx, models.ContentFilter{}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, backgrounds, 2)
		assert.Equal(t, models.BackgroundTypeGradient, backgrounds[0].BackgroundType)
		assert.InDelta(t, 0.4, backgrounds[1].OverlayOpacity, 1e-9)

		again, err := flow.Seed(ctx)
		require.NoError(t, err)
		assert.False(t, again.AdminCreated)
		assert.False(t, again.CRMUserCreated)
		assert.Empty(t, again.SettingsInserted)
		assert.Empty(t, again.ContentInserted)
		return nil
	})
	require.NoError(t, err)
}

func TestSeedFlowRejectsBadDocument(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()

		flow := NewSeedFlowWithDocument(testDB.DB, SeedConfig{}, []byte("settings:\n  show_reviews: \"yes\"\n"), nil)
		_, err := flow.Seed(ctx)
		assert.ErrorIs(t, err, ErrSettingTypeMismatch)

		flow = NewSeedFlowWithDocument(testDB.DB, SeedConfig{}, []byte("reviews:\n  - author_name: A\n    rating: 9\n    text: hi\n"), nil)
		_, err = flow.Seed(ctx)
		assert.Error(t, err)

		count, err := repository.NewSettingRepository(testDB.DB).Count(ctx, models.SettingFilter{})
		require.NoError(t, err)
		assert.Zero(t, count, "failed seed must roll back")

		flow = NewSeedFlowWithDocument(testDB.DB, SeedConfig{AdminEmail: "a@b.uz", AdminPassword: "short"}, []byte("{}"), nil)
		_, err = flow.Seed(ctx)
		assert.ErrorIs(t, err, ErrPasswordTooShort)
		return nil
	})
	require.NoError(t, err)
}
