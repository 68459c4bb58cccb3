package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/amirphl/dental-clinic/utils"
	"gorm.io/gorm"
)

// AppointmentStatus represents the lifecycle of a booking request.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Valid checks if the status is valid.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending,
		AppointmentStatusConfirmed,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for AppointmentStatus.
func (s *AppointmentStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = AppointmentStatus(v)
	case []byte:
		*s = AppointmentStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into AppointmentStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for AppointmentStatus.
func (s AppointmentStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid AppointmentStatus: %s", s)
	}
	return string(s), nil
}

// Appointment is a booking request left on the public site.
type Appointment struct {
	ID            uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName      string            `gorm:"type:varchar(150);not null" json:"full_name"`
	Phone         string            `gorm:"type:varchar(32);not null;index:idx_appointments_phone" json:"phone"`
	PreferredDate *time.Time        `json:"preferred_date,omitempty"`
	Service       *string           `gorm:"type:varchar(200)" json:"service,omitempty"`
	Message       *string           `gorm:"type:text" json:"message,omitempty"`
	Status        AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_appointments_status" json:"status"`
	DisplayOrder  int               `gorm:"not null;default:0" json:"display_order"`
	IsActive      *bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time         `gorm:"not null;index:idx_appointments_created_at" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null" json:"updated_at"`
}

func (Appointment) TableName() string { return "appointments" }

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = AppointmentStatusPending
	}
	if a.IsActive == nil {
		a.IsActive = utils.ToPtr(true)
	}
	now := utils.UTCNow()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	return nil
}

// AppointmentFilter represents filter criteria for appointment queries
type AppointmentFilter struct {
	ID            *uint              `json:"id,omitempty"`
	Status        *AppointmentStatus `json:"status,omitempty"`
	IsActive      *bool              `json:"is_active,omitempty"`
	CreatedAfter  *time.Time         `json:"created_after,omitempty"`
	CreatedBefore *time.Time         `json:"created_before,omitempty"`
}
