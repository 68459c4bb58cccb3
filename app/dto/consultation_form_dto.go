package dto

// SubmitConsultationFormRequest is the public lead form payload.
// Source is optional; when absent the visitor's stored attribution is used.
type SubmitConsultationFormRequest struct {
	FullName                 string  `json:"full_name" validate:"required,min=1,max=150"`
	Phone                    string  `json:"phone" validate:"required,max=32"`
	LivesInTashkent          *string `json:"lives_in_tashkent,omitempty" validate:"omitempty,max=100"`
	LastDentistVisit         *string `json:"last_dentist_visit,omitempty" validate:"omitempty,max=255"`
	CurrentProblems          *string `json:"current_problems,omitempty" validate:"omitempty,max=2000"`
	PreviousClinicExperience *string `json:"previous_clinic_experience,omitempty" validate:"omitempty,max=2000"`
	MissingTeeth             *string `json:"missing_teeth,omitempty" validate:"omitempty,max=255"`
	PreferredCallTime        *string `json:"preferred_call_time,omitempty" validate:"omitempty,max=100"`
	Source                   *string `json:"source,omitempty" validate:"omitempty,max=100"`
	TimeSpentSeconds         int     `json:"time_spent_seconds" validate:"gte=0"`
}

type SubmitConsultationFormResponse struct {
	ID        uint   `json:"id" example:"17"`
	Source    string `json:"source" example:"ig-promo"`
	CreatedAt string `json:"created_at" example:"2026-01-15T10:30:00Z"`
}

type ConsultationFormDTO struct {
	ID                       uint    `json:"id" example:"17"`
	FullName                 string  `json:"full_name" example:"Aziza Karimova"`
	Phone                    string  `json:"phone" example:"+998901234567"`
	LivesInTashkent          *string `json:"lives_in_tashkent,omitempty"`
	LastDentistVisit         *string `json:"last_dentist_visit,omitempty"`
	CurrentProblems          *string `json:"current_problems,omitempty"`
	PreviousClinicExperience *string `json:"previous_clinic_experience,omitempty"`
	MissingTeeth             *string `json:"missing_teeth,omitempty"`
	PreferredCallTime        *string `json:"preferred_call_time,omitempty"`
	Source                   string  `json:"source" example:"ig-promo"`
	TimeSpentSeconds         int     `json:"time_spent_seconds" example:"95"`
	LeadStatus               string  `json:"lead_status" example:"Yangi"`
	Notes                    *string `json:"notes,omitempty"`
	CreatedAt                string  `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt                string  `json:"updated_at" example:"2026-01-15T10:30:00Z"`
}

// ListConsultationFormsRequest holds the list and export query parameters
type ListConsultationFormsRequest struct {
	Page         int    `query:"page"`
	PerPage      int    `query:"perPage"`
	Search       string `query:"search"`
	SourceFilter string `query:"sourceFilter"`
	StatusFilter string `query:"statusFilter"`
	DateFrom     string `query:"dateFrom"`
	DateTo       string `query:"dateTo"`
}

type ListConsultationFormsResponse struct {
	Data       []ConsultationFormDTO `json:"data"`
	Pagination Pagination            `json:"pagination"`
}

// UpdateConsultationFormRequest patches the CRM fields of a lead
type UpdateConsultationFormRequest struct {
	LeadStatus *string `json:"lead_status,omitempty" validate:"omitempty,max=32"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

type DistinctSourcesResponse struct {
	Sources []string `json:"sources"`
}
