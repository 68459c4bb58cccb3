package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/dental-clinic/utils"
	"gorm.io/gorm"
)

// LeadStatus is the CRM workflow state of a consultation form.
type LeadStatus string

const (
	LeadStatusNew      LeadStatus = "Yangi"
	LeadStatusCalled   LeadStatus = "Qo'ng'iroq qilindi"
	LeadStatusAgreed   LeadStatus = "Kelishildi"
	LeadStatusRejected LeadStatus = "Rad etildi"
	LeadStatusWaiting  LeadStatus = "Kutmoqda"
)

// LeadStatuses lists every status in workflow order.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusCalled,
	LeadStatusAgreed,
	LeadStatusRejected,
	LeadStatusWaiting,
}

// Valid checks if the status is one of the workflow states.
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew,
		LeadStatusCalled,
		LeadStatusAgreed,
		LeadStatusRejected,
		LeadStatusWaiting:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for LeadStatus.
func (s *LeadStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = LeadStatus(v)
	case []byte:
		*s = LeadStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into LeadStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for LeadStatus.
func (s LeadStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid LeadStatus: %s", s)
	}
	return string(s), nil
}

// ConsultationForm is a lead captured by the public consultation form.
// Source is a snapshot taken at submission time and never rewritten.
type ConsultationForm struct {
	ID                       uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName                 string     `gorm:"type:varchar(150);not null" json:"full_name"`
	Phone                    string     `gorm:"type:varchar(32);not null;index:idx_consultation_forms_phone" json:"phone"`
	LivesInTashkent          *string    `gorm:"type:varchar(100)" json:"lives_in_tashkent,omitempty"`
	LastDentistVisit         *string    `gorm:"type:varchar(255)" json:"last_dentist_visit,omitempty"`
	CurrentProblems          *string    `gorm:"type:text" json:"current_problems,omitempty"`
	PreviousClinicExperience *string    `gorm:"type:text" json:"previous_clinic_experience,omitempty"`
	MissingTeeth             *string    `gorm:"type:varchar(255)" json:"missing_teeth,omitempty"`
	PreferredCallTime        *string    `gorm:"type:varchar(100)" json:"preferred_call_time,omitempty"`
	Source                   string     `gorm:"type:varchar(100);not null;index:idx_consultation_forms_source" json:"source"`
	TimeSpentSeconds         int        `gorm:"not null;default:0" json:"time_spent_seconds"`
	LeadStatus               LeadStatus `gorm:"type:varchar(32);not null;index:idx_consultation_forms_lead_status" json:"lead_status"`
	Notes                    *string    `gorm:"type:text" json:"notes,omitempty"`
	IPAddress                *string    `gorm:"type:varchar(64)" json:"-"`
	UserAgent                *string    `gorm:"type:text" json:"-"`
	CreatedAt                time.Time  `gorm:"not null;index:idx_consultation_forms_created_at" json:"created_at"`
	UpdatedAt                time.Time  `gorm:"not null" json:"updated_at"`
}

func (ConsultationForm) TableName() string { return "consultation_forms" }

// BeforeCreate applies the default status, source and timestamps.
func (f *ConsultationForm) BeforeCreate(tx *gorm.DB) error {
	if f.LeadStatus == "" {
		f.LeadStatus = LeadStatusNew
	}
	if f.Source == "" {
		f.Source = utils.DefaultLeadSource
	}
	now := utils.UTCNow()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = now
	}
	return nil
}

// ConsultationFormFilter represents filter criteria for lead queries.
// Search matches full name or phone, case-insensitively.
type ConsultationFormFilter struct {
	ID            *uint       `json:"id,omitempty"`
	Search        *string     `json:"search,omitempty"`
	Source        *string     `json:"source,omitempty"`
	LeadStatus    *LeadStatus `json:"lead_status,omitempty"`
	CreatedAfter  *time.Time  `json:"created_after,omitempty"`
	CreatedBefore *time.Time  `json:"created_before,omitempty"`
}

// SourceCount is a per-source lead count row.
type SourceCount struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// StatusCount is a per-status lead count row.
type StatusCount struct {
	LeadStatus LeadStatus `json:"lead_status"`
	Count      int64      `json:"count"`
}
