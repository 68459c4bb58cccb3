package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/dental-clinic/models"
	"gorm.io/gorm"
)

// ContentRepositoryImpl implements ContentRepository for any ordered site
// content table. visibility names the boolean column that hides an item from
// the public site.
type ContentRepositoryImpl[T any] struct {
	*BaseRepository[T, models.ContentFilter]
	visibility string
}

// NewContentRepository creates a repository for a content collection
func NewContentRepository[T any](db *gorm.DB, visibilityColumn string) ContentRepository[T] {
	return &ContentRepositoryImpl[T]{
		BaseRepository: NewBaseRepository[T, models.ContentFilter](db),
		visibility:     visibilityColumn,
	}
}

func (r *ContentRepositoryImpl[T]) VisibilityColumn() string {
	return r.visibility
}

// UpdateDisplayOrder assigns display_order = position for every id in ids
func (r *ContentRepositoryImpl[T]) UpdateDisplayOrder(ctx context.Context, ids []uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	for i, id := range ids {
		if err = db.Model(new(T)).Where("id = ?", id).UpdateColumn("display_order", i).Error; err != nil {
			err = fmt.Errorf("failed to reorder item %d: %w", id, err)
			break
		}
	}
	return finish(db, shouldCommit, err)
}

func (r *ContentRepositoryImpl[T]) applyFilter(db *gorm.DB, f models.ContentFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if len(f.IDs) > 0 {
		db = db.Where("id IN ?", f.IDs)
	}
	if f.Visible != nil {
		db = db.Where(fmt.Sprintf("%s = ?", r.visibility), *f.Visible)
	}
	return db
}

func (r *ContentRepositoryImpl[T]) ByFilter(ctx context.Context, filter models.ContentFilter, orderBy string, limit, offset int) ([]*T, error) {
	if orderBy == "" {
		orderBy = "display_order ASC, id ASC"
	}
	db := r.getDB(ctx)
	query := paginate(r.applyFilter(db.Model(new(T)), filter), orderBy, limit, offset)
	var rows []*T
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ContentRepositoryImpl[T]) Count(ctx context.Context, filter models.ContentFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(new(T)), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ContentRepositoryImpl[T]) Exists(ctx context.Context, filter models.ContentFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
