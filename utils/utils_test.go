package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryParam(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{"present", "https://clinic.uz/?source=ig-promo&lang=uz", "ig-promo", true},
		{"empty value", "https://clinic.uz/?source=", "", true},
		{"absent", "https://clinic.uz/services?lang=uz", "", false},
		{"relative", "/?source=tg", "tg", true},
		{"empty url", "", "", false},
		{"unparseable", "http://[::1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := QueryParam(tt.url, SourceQueryParam)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripQueryParam(t *testing.T) {
	assert.Equal(t, "https://clinic.uz/?lang=uz", StripQueryParam("https://clinic.uz/?lang=uz&source=ig-promo", SourceQueryParam))
	assert.Equal(t, "https://clinic.uz/", StripQueryParam("https://clinic.uz/?source=ig-promo", SourceQueryParam))
	assert.Equal(t, "https://clinic.uz/?lang=uz", StripQueryParam("https://clinic.uz/?lang=uz", SourceQueryParam))
	assert.Equal(t, "http://[::1", StripQueryParam("http://[::1", SourceQueryParam))
	assert.Equal(t, "", StripQueryParam("", SourceQueryParam))
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"international with spaces", "+998 90 123 45 67", "+998901234567", false},
		{"national", "90 123 45 67", "+998901234567", false},
		{"padded", "  +998901234567  ", "+998901234567", false},
		{"too short", "12", "", true},
		{"letters", "call me", "", true},
		{"empty", "   ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw, "")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPhoneNumber)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDateBound(t *testing.T) {
	tashkent := time.FixedZone("UZT", 5*60*60)

	start, err := ParseDateBound("2026-03-10", tashkent, false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 9, 19, 0, 0, 0, time.UTC), start)

	end, err := ParseDateBound("2026-03-10", tashkent, true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 18, 59, 59, 999999999, time.UTC), end)

	exact, err := ParseDateBound("2026-03-10T12:00:00+05:00", tashkent, true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC), exact)

	_, err = ParseDateBound("10/03/2026", tashkent, false)
	assert.Error(t, err)
}

func TestTimeHelpers(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	assert.False(t, IsExpiredAt(nil, now))
	assert.True(t, IsExpiredAt(&past, now))
	assert.False(t, IsExpiredAt(&now, now))
	assert.False(t, IsExpiredAt(&future, now))

	tashkent := time.FixedZone("UZT", 5*60*60)
	lateEvening := time.Date(2026, 3, 10, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, tashkent), StartOfDay(lateEvening, tashkent))

	assert.Equal(t, time.UTC, LoadLocationOrUTC(""))
	assert.Equal(t, time.UTC, LoadLocationOrUTC("Mars/Olympus"))
}

func TestPointerHelpers(t *testing.T) {
	assert.Nil(t, TrimmedPtr(nil))
	assert.Nil(t, TrimmedPtr(ToPtr("   ")))
	assert.Equal(t, "caries", *TrimmedPtr(ToPtr("  caries ")))

	assert.True(t, IsTrue(ToPtr(true)))
	assert.False(t, IsTrue(nil))
	assert.Equal(t, 0, Deref[int](nil))
	assert.Equal(t, 7, Deref(ToPtr(7)))
}
