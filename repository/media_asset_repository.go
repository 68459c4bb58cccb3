package repository

import (
	"context"

	"github.com/amirphl/dental-clinic/models"
	"gorm.io/gorm"
)

// MediaAssetRepositoryImpl implements MediaAssetRepository.
type MediaAssetRepositoryImpl struct {
	*BaseRepository[models.MediaAsset, models.MediaAssetFilter]
}

// NewMediaAssetRepository creates a new media asset repository.
func NewMediaAssetRepository(db *gorm.DB) MediaAssetRepository {
	return &MediaAssetRepositoryImpl{
		BaseRepository: NewBaseRepository[models.MediaAsset, models.MediaAssetFilter](db),
	}
}

func (r *MediaAssetRepositoryImpl) applyFilter(query *gorm.DB, filter models.MediaAssetFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.UploadedByAdminID != nil {
		query = query.Where("uploaded_by_admin_id = ?", *filter.UploadedByAdminID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	return query
}

// ByFilter retrieves media assets by filter.
func (r *MediaAssetRepositoryImpl) ByFilter(ctx context.Context, filter models.MediaAssetFilter, orderBy string, limit, offset int) ([]*models.MediaAsset, error) {
	db := r.getDB(ctx)
	query := paginate(r.applyFilter(db.Model(&models.MediaAsset{}), filter), orderBy, limit, offset)
	var rows []*models.MediaAsset
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count counts media assets by filter.
func (r *MediaAssetRepositoryImpl) Count(ctx context.Context, filter models.MediaAssetFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.MediaAsset{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any media asset matches the filter.
func (r *MediaAssetRepositoryImpl) Exists(ctx context.Context, filter models.MediaAssetFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
