package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/dental-clinic/models"
	"gorm.io/gorm"
)

type CRMUserRepositoryImpl struct {
	*BaseRepository[models.CRMUser, models.CRMUserFilter]
}

func NewCRMUserRepository(db *gorm.DB) CRMUserRepository {
	return &CRMUserRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CRMUser, models.CRMUserFilter](db),
	}
}

func (r *CRMUserRepositoryImpl) ByUsername(ctx context.Context, username string) (*models.CRMUser, error) {
	rows, err := r.ByFilter(ctx, models.CRMUserFilter{Username: &username}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *CRMUserRepositoryImpl) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	db := r.getDB(ctx)
	err := db.Model(&models.CRMUser{}).Where("id = ?", id).
		Updates(map[string]any{"last_login_at": at, "updated_at": at}).Error
	if err != nil {
		return fmt.Errorf("failed to update crm user last login: %w", err)
	}
	return nil
}

func (r *CRMUserRepositoryImpl) applyFilter(query *gorm.DB, filter models.CRMUserFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Username != nil {
		query = query.Where("username = ?", *filter.Username)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

func (r *CRMUserRepositoryImpl) ByFilter(ctx context.Context, filter models.CRMUserFilter, orderBy string, limit, offset int) ([]*models.CRMUser, error) {
	db := r.getDB(ctx)
	query := paginate(r.applyFilter(db.Model(&models.CRMUser{}), filter), orderBy, limit, offset)
	var rows []*models.CRMUser
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CRMUserRepositoryImpl) Count(ctx context.Context, filter models.CRMUserFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.CRMUser{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CRMUserRepositoryImpl) Exists(ctx context.Context, filter models.CRMUserFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
