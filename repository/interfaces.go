// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/dental-clinic/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AdminRepository defines operations for admins
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByEmail(ctx context.Context, email string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
}

// CRMUserRepository defines operations for CRM users
type CRMUserRepository interface {
	Repository[models.CRMUser, models.CRMUserFilter]
	ByUsername(ctx context.Context, username string) (*models.CRMUser, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
}

// CampaignLinkRepository defines operations for campaign links
type CampaignLinkRepository interface {
	Repository[models.CampaignLink, models.CampaignLinkFilter]
	Update(ctx context.Context, campaign *models.CampaignLink) error
	DeleteByID(ctx context.Context, id uint) (bool, error)
	ByUniqueCode(ctx context.Context, code string) (*models.CampaignLink, error)
	ActiveByUniqueCode(ctx context.Context, code string) (*models.CampaignLink, error)
	// IncrementClickCount adds one click to an active campaign and reports
	// whether a row matched. Expired campaigns are skipped when notExpiredAt is set.
	IncrementClickCount(ctx context.Context, code string, notExpiredAt *time.Time) (bool, error)
}

// ConsultationFormRepository defines operations for consultation form leads
type ConsultationFormRepository interface {
	Repository[models.ConsultationForm, models.ConsultationFormFilter]
	UpdateStatusAndNotes(ctx context.Context, id uint, status *models.LeadStatus, notes *string, at time.Time) (bool, error)
	DistinctSources(ctx context.Context) ([]string, error)
	CountBySource(ctx context.Context, filter models.ConsultationFormFilter) ([]models.SourceCount, error)
	CountByStatus(ctx context.Context, filter models.ConsultationFormFilter) ([]models.StatusCount, error)
}

// SettingRepository defines operations for the key/value settings store
type SettingRepository interface {
	Repository[models.Setting, models.SettingFilter]
	ByKey(ctx context.Context, key string) (*models.Setting, error)
	UpsertMany(ctx context.Context, settings []*models.Setting) error
	DeleteByKey(ctx context.Context, key string) (bool, error)
	DeleteKeysNotIn(ctx context.Context, keys []string) (int64, error)
}

// SettingPresetRepository defines operations for settings presets
type SettingPresetRepository interface {
	Repository[models.SettingPreset, models.SettingPresetFilter]
	ByName(ctx context.Context, name string) (*models.SettingPreset, error)
	DeleteByID(ctx context.Context, id uint) (bool, error)
}

// ContentRepository defines operations shared by every site content collection
type ContentRepository[T any] interface {
	Repository[T, models.ContentFilter]
	Update(ctx context.Context, entity *T) error
	DeleteByID(ctx context.Context, id uint) (bool, error)
	UpdateDisplayOrder(ctx context.Context, ids []uint) error
	VisibilityColumn() string
}

// AppointmentRepository defines operations for appointment requests
type AppointmentRepository interface {
	Repository[models.Appointment, models.AppointmentFilter]
	UpdateStatus(ctx context.Context, id uint, status models.AppointmentStatus, at time.Time) (bool, error)
	DeleteByID(ctx context.Context, id uint) (bool, error)
}

// MediaAssetRepository defines operations for uploaded media
type MediaAssetRepository interface {
	Repository[models.MediaAsset, models.MediaAssetFilter]
}
