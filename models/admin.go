package models

import (
	"time"

	"github.com/amirphl/dental-clinic/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admin is a content-panel operator authenticated by email and password.
type Admin struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_admins_uuid" json:"uuid"`
	Email        string     `gorm:"size:255;not null;uniqueIndex:uk_admins_email" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	FullName     *string    `gorm:"size:255" json:"full_name,omitempty"`
	IsActive     *bool      `gorm:"not null;default:true;index:idx_admins_is_active" json:"is_active"`
	CreatedAt    time.Time  `gorm:"not null;index:idx_admins_created_at" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
	LastLoginAt  *time.Time `gorm:"index:idx_admins_last_login_at" json:"last_login_at,omitempty"`
}

func (Admin) TableName() string {
	return "admins"
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
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

// AdminFilter represents filter criteria for admin queries
type AdminFilter struct {
	ID       *uint
	UUID     *uuid.UUID
	Email    *string
	IsActive *bool
}
