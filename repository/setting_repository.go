package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/dental-clinic/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepositoryImpl implements SettingRepository.
// The key column is referenced through clause expressions so it is always quoted.
type SettingRepositoryImpl struct {
	*BaseRepository[models.Setting, models.SettingFilter]
}

// NewSettingRepository creates a new settings repository.
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &SettingRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Setting, models.SettingFilter](db),
	}
}

// ByKey retrieves a setting by key, returning nil when it does not exist.
func (r *SettingRepositoryImpl) ByKey(ctx context.Context, key string) (*models.Setting, error) {
	rows, err := r.ByFilter(ctx, models.SettingFilter{Key: &key}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// UpsertMany inserts settings or overwrites the value of existing keys in one statement.
func (r *SettingRepositoryImpl) UpsertMany(ctx context.Context, settings []*models.Setting) error {
	if len(settings) == 0 {
		return nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&settings).Error
	if err != nil {
		err = fmt.Errorf("failed to upsert settings: %w", err)
	}
	return finish(db, shouldCommit, err)
}

// DeleteByKey removes a single key and reports whether it existed.
func (r *SettingRepositoryImpl) DeleteByKey(ctx context.Context, key string) (bool, error) {
	db := r.getDB(ctx)
	res := db.Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: key}).Delete(&models.Setting{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete setting %s: %w", key, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteKeysNotIn removes every setting whose key is absent from keys.
func (r *SettingRepositoryImpl) DeleteKeysNotIn(ctx context.Context, keys []string) (int64, error) {
	db := r.getDB(ctx)
	query := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	if len(keys) > 0 {
		values := make([]any, len(keys))
		for i, k := range keys {
			values[i] = k
		}
		query = query.Where(clause.Not(clause.IN{Column: clause.Column{Name: "key"}, Values: values}))
	}
	res := query.Delete(&models.Setting{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete stale settings: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *SettingRepositoryImpl) applyFilter(query *gorm.DB, filter models.SettingFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Key != nil {
		query = query.Where(clause.Eq{Column: clause.Column{Name: "key"}, Value: *filter.Key})
	}
	if len(filter.Keys) > 0 {
		values := make([]any, len(filter.Keys))
		for i, k := range filter.Keys {
			values[i] = k
		}
		query = query.Where(clause.IN{Column: clause.Column{Name: "key"}, Values: values})
	}
	return query
}

func (r *SettingRepositoryImpl) ByFilter(ctx context.Context, filter models.SettingFilter, orderBy string, limit, offset int) ([]*models.Setting, error) {
	db := r.getDB(ctx)
	query := paginate(r.applyFilter(db.Model(&models.Setting{}), filter), orderBy, limit, offset)
	var rows []*models.Setting
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *SettingRepositoryImpl) Count(ctx context.Context, filter models.SettingFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.Setting{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SettingRepositoryImpl) Exists(ctx context.Context, filter models.SettingFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
