package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/dental-clinic/models"
	"gorm.io/gorm"
)

// AppointmentRepositoryImpl implements AppointmentRepository
type AppointmentRepositoryImpl struct {
	*BaseRepository[models.Appointment, models.AppointmentFilter]
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &AppointmentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Appointment, models.AppointmentFilter](db),
	}
}

func (r *AppointmentRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status models.AppointmentStatus, at time.Time) (bool, error) {
	db := r.getDB(ctx)
	res := db.Model(&models.Appointment{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": at})
	if res.Error != nil {
		return false, fmt.Errorf("failed to update appointment %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *AppointmentRepositoryImpl) applyFilter(db *gorm.DB, f models.AppointmentFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.Status != nil {
		db = db.Where("status = ?", string(*f.Status))
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *f.CreatedBefore)
	}
	return db
}

func (r *AppointmentRepositoryImpl) ByFilter(ctx context.Context, filter models.AppointmentFilter, orderBy string, limit, offset int) ([]*models.Appointment, error) {
	db := r.getDB(ctx)
	query := paginate(r.applyFilter(db.Model(&models.Appointment{}), filter), orderBy, limit, offset)
	var rows []*models.Appointment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepositoryImpl) Count(ctx context.Context, filter models.AppointmentFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	if err := r.applyFilter(db.Model(&models.Appointment{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AppointmentRepositoryImpl) Exists(ctx context.Context, filter models.AppointmentFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
