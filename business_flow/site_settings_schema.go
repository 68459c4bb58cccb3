package businessflow

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/amirphl/dental-clinic/app/dto"
)

// DefaultSiteSettings is what the public site renders when nothing is stored
func DefaultSiteSettings() dto.SiteSettings {
	return dto.SiteSettings{
		SiteName:                "Dental Clinic",
		Tagline:                 "Sog'lom tabassum uchun",
		HeroTitle:               "Modern dentistry in Tashkent",
		HeroSubtitle:            "Free consultation and a treatment plan on the first visit",
		PhonePrimary:            "+998 90 000 00 00",
		Address:                 "Tashkent, Uzbekistan",
		WorkingHours:            "Mon-Sat 09:00-20:00",
		PrimaryColor:            "#0EA5E9",
		ShowReviews:             true,
		ShowDoctors:             true,
		ShowPillSections:        true,
		ConsultationFormEnabled: true,
		YearsOfExperience:       10,
		HappyPatients:           5000,
		Languages:               []string{"uz", "ru"},
		SEO: dto.SEOMeta{
			Title:       "Dental Clinic",
			Description: "Dental treatment, implants and orthodontics in Tashkent",
		},
	}
}

// siteSettingFields maps every typed site setting key to the field it decodes into
func siteSettingFields(s *dto.SiteSettings) map[string]any {
	return map[string]any{
		"site_name":                 &s.SiteName,
		"tagline":                   &s.Tagline,
		"hero_title":                &s.HeroTitle,
		"hero_subtitle":             &s.HeroSubtitle,
		"hero_image_url":            &s.HeroImageURL,
		"phone_primary":             &s.PhonePrimary,
		"phone_secondary":           &s.PhoneSecondary,
		"address":                   &s.Address,
		"working_hours":             &s.WorkingHours,
		"map_embed_url":             &s.MapEmbedURL,
		"telegram_url":              &s.TelegramURL,
		"instagram_url":             &s.InstagramURL,
		"primary_color":             &s.PrimaryColor,
		"show_reviews":              &s.ShowReviews,
		"show_doctors":              &s.ShowDoctors,
		"show_pill_sections":        &s.ShowPillSections,
		"consultation_form_enabled": &s.ConsultationFormEnabled,
		"years_of_experience":       &s.YearsOfExperience,
		"happy_patients":            &s.HappyPatients,
		"languages":                 &s.Languages,
		"seo":                       &s.SEO,
	}
}

// SiteSettingKeys lists the typed keys in a stable order
func SiteSettingKeys() []string {
	fields := siteSettingFields(&dto.SiteSettings{})
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// decodeSettingValue decodes raw into target. null, unknown object fields and
// type mismatches are rejected.
func decodeSettingValue(raw []byte, target any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrSettingTypeMismatch
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return err
	}
	return nil
}

// checkSiteSettingType reports whether value fits the declared type of key.
// Keys outside the typed schema accept any JSON.
func checkSiteSettingType(key string, value []byte) (bool, error) {
	var scratch dto.SiteSettings
	target, known := siteSettingFields(&scratch)[key]
	if !known {
		return false, nil
	}
	return true, decodeSettingValue(value, target)
}
