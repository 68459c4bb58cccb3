package models

// AllModels returns every persisted entity in migration order.
func AllModels() []any {
	return []any{
		&Admin{},
		&CRMUser{},
		&CampaignLink{},
		&ConsultationForm{},
		&Setting{},
		&SettingPreset{},
		&Doctor{},
		&Review{},
		&FAQ{},
		&Service{},
		&PillSection{},
		&ValueStackingItem{},
		&SectionBackground{},
		&FinalCTA{},
		&Appointment{},
		&MediaAsset{},
	}
}
