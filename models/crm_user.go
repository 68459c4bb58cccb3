package models

import (
	"time"

	"github.com/amirphl/dental-clinic/utils"
	"gorm.io/gorm"
)

// CRMUser is a call-center operator of the lead dashboard. CRM users are
// authenticated independently from admins.
type CRMUser struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:100;not null;uniqueIndex:uk_crm_users_username" json:"username"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	DisplayName  *string    `gorm:"size:255" json:"display_name,omitempty"`
	IsActive     *bool      `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (CRMUser) TableName() string { return "crm_users" }

func (u *CRMUser) BeforeCreate(tx *gorm.DB) error {
	if u.IsActive == nil {
		u.IsActive = utils.ToPtr(true)
	}
	now := utils.UTCNow()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	return nil
}

// CRMUserFilter represents filter criteria for CRM user queries
type CRMUserFilter struct {
	ID       *uint
	Username *string
	IsActive *bool
}
