package repository

import (
	"context"

	"github.com/amirphl/dental-clinic/models"
	"gorm.io/gorm"
)

type SettingPresetRepositoryImpl struct {
	*BaseRepository[models.SettingPreset, models.SettingPresetFilter]
}

func NewSettingPresetRepository(db *gorm.DB) SettingPresetRepository {
	return &SettingPresetRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SettingPreset, models.SettingPresetFilter](db),
	}
}

func (r *SettingPresetRepositoryImpl) ByName(ctx context.Context, name string) (*models.SettingPreset, error) {
	rows, err := r.ByFilter(ctx, models.SettingPresetFilter{Name: &name}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *SettingPresetRepositoryImpl) applyFilter(query *gorm.DB, filter models.SettingPresetFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	return query
}

func (r *SettingPresetRepositoryImpl) ByFilter(ctx context.Context, filter models.SettingPresetFilter, orderBy string, limit, offset int) ([]*models.SettingPreset, error) {
	db := r.getDB(ctx)
	query := paginate(r.applyFilter(db.Model(&models.SettingPreset{}), filter), orderBy, limit, offset)
	var rows []*models.SettingPreset
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SettingPresetRepositoryImpl) Count(ctx context.Context, filter models.SettingPresetFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.SettingPreset{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SettingPresetRepositoryImpl) Exists(ctx context.Context, filter models.SettingPresetFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
