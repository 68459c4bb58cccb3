package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/dental-clinic/models"
	"gorm.io/gorm"
)

// CampaignLinkRepositoryImpl implements CampaignLinkRepository
type CampaignLinkRepositoryImpl struct {
	*BaseRepository[models.CampaignLink, models.CampaignLinkFilter]
}

func NewCampaignLinkRepository(db *gorm.DB) CampaignLinkRepository {
	return &CampaignLinkRepositoryImpl{BaseRepository: NewBaseRepository[models.CampaignLink, models.CampaignLinkFilter](db)}
}

func (r *CampaignLinkRepositoryImpl) ByUniqueCode(ctx context.Context, code string) (*models.CampaignLink, error) {
	rows, err := r.ByFilter(ctx, models.CampaignLinkFilter{UniqueCode: &code}, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ActiveByUniqueCode returns the campaign only when it is flagged active
func (r *CampaignLinkRepositoryImpl) ActiveByUniqueCode(ctx context.Context, code string) (*models.CampaignLink, error) {
	active := true
	rows, err := r.ByFilter(ctx, models.CampaignLinkFilter{UniqueCode: &code, IsActive: &active}, "id DESC", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// IncrementClickCount runs a single atomic UPDATE so concurrent visits never lose clicks.
// A campaign deactivated after lookup is not matched.
func (r *CampaignLinkRepositoryImpl) IncrementClickCount(ctx context.Context, code string, notExpiredAt *time.Time) (bool, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CampaignLink{}).
		Where("unique_code = ? AND is_active = ?", code, true)
	if notExpiredAt != nil {
		query = query.Where("(expiry_date IS NULL OR expiry_date >= ?)", *notExpiredAt)
	}
	res := query.UpdateColumn("click_count", gorm.Expr("click_count + ?", 1))
	if res.Error != nil {
		return false, fmt.Errorf("failed to increment click count for %s: %w", code, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Update writes the editable columns only. click_count and unique_code are
// never touched here.
func (r *CampaignLinkRepositoryImpl) Update(ctx context.Context, campaign *models.CampaignLink) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	err = db.Model(campaign).
		Select("campaign_name", "description", "is_active", "expiry_date", "updated_at").
		Updates(campaign).Error
	if err != nil {
		err = fmt.Errorf("failed to update campaign link %d: %w", campaign.ID, err)
	}
	return finish(db, shouldCommit, err)
}

func (r *CampaignLinkRepositoryImpl) applyFilter(db *gorm.DB, f models.CampaignLinkFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UUID != nil {
		db = db.Where("uuid = ?", *f.UUID)
	}
	if f.UniqueCode != nil {
		db = db.Where("unique_code = ?", *f.UniqueCode)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.Search != nil && strings.TrimSpace(*f.Search) != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(*f.Search)) + "%"
		db = db.Where("(LOWER(campaign_name) LIKE ? OR LOWER(unique_code) LIKE ?)", pattern, pattern)
	}
	if f.ExpiredBefore != nil {
		db = db.Where("expiry_date IS NOT NULL AND expiry_date < ?", *f.ExpiredBefore)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *CampaignLinkRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignLinkFilter, orderBy string, limit, offset int) ([]*models.CampaignLink, error) {
	db := r.getDB(ctx)
	query := paginate(r.applyFilter(db.Model(&models.CampaignLink{}), filter), orderBy, limit, offset)
	var rows []*models.CampaignLink
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CampaignLinkRepositoryImpl) Count(ctx context.Context, filter models.CampaignLinkFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.CampaignLink{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CampaignLinkRepositoryImpl) Exists(ctx context.Context, filter models.CampaignLinkFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
