package repository

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/amirphl/dental-clinic/models"
	"gorm.io/gorm"
)

// ConsultationFormRepositoryImpl implements ConsultationFormRepository
type ConsultationFormRepositoryImpl struct {
	*BaseRepository[models.ConsultationForm, models.ConsultationFormFilter]
}

func NewConsultationFormRepository(db *gorm.DB) ConsultationFormRepository {
	return &ConsultationFormRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ConsultationForm, models.ConsultationFormFilter](db),
	}
}

// UpdateStatusAndNotes changes only the CRM-owned columns of a lead
func (r *ConsultationFormRepositoryImpl) UpdateStatusAndNotes(ctx context.Context, id uint, status *models.LeadStatus, notes *string, at time.Time) (bool, error) {
	updates := map[string]any{"updated_at": at}
	if status != nil {
		updates["lead_status"] = *status
	}
	if notes != nil {
		updates["notes"] = *notes
	}

	db := r.getDB(ctx)
	res := db.Model(&models.ConsultationForm{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update consultation form %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ConsultationFormRepositoryImpl) DistinctSources(ctx context.Context) ([]string, error) {
	db := r.getDB(ctx)
	var sources []string
	err := db.Model(&models.ConsultationForm{}).
		Distinct("source").
		Order("source ASC").
		Pluck("source", &sources).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct sources: %w", err)
	}
	return sources, nil
}

func (r *ConsultationFormRepositoryImpl) CountBySource(ctx context.Context, filter models.ConsultationFormFilter) ([]models.SourceCount, error) {
	db := r.getDB(ctx)
	var rows []models.SourceCount
	err := r.applyFilter(db.Model(&models.ConsultationForm{}), filter).
		Select("source, COUNT(*) AS count").
		Group("source").
		Order("count DESC, source ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count leads by source: %w", err)
	}
	return rows, nil
}

func (r *ConsultationFormRepositoryImpl) CountByStatus(ctx context.Context, filter models.ConsultationFormFilter) ([]models.StatusCount, error) {
	db := r.getDB(ctx)
	var rows []models.StatusCount
	err := r.applyFilter(db.Model(&models.ConsultationForm{}), filter).
		Select("lead_status, COUNT(*) AS count").
		Group("lead_status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count leads by status: %w", err)
	}
	return rows, nil
}

func (r *ConsultationFormRepositoryImpl) applyFilter(db *gorm.DB, f models.ConsultationFormFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.Search != nil {
		if term := strings.ToLower(strings.TrimSpace(*f.Search)); term != "" {
			phoneTerm := term
			if looksLikePhone(term) {
				phoneTerm = digitsOnly(term)
			}
			db = db.Where(`(LOWER(full_name) LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\')`,
				"%"+escapeLike(term)+"%", "%"+escapeLike(phoneTerm)+"%")
		}
	}
	if f.Source != nil {
		db = db.Where("source = ?", *f.Source)
	}
	if f.LeadStatus != nil {
		db = db.Where("lead_status = ?", string(*f.LeadStatus))
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *f.CreatedBefore)
	}
	return db
}

// looksLikePhone reports whether s holds digits and nothing but phone punctuation
func looksLikePhone(s string) bool {
	hasDigit := false
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(" +-().", r):
		default:
			return false
		}
	}
	return hasDigit
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (r *ConsultationFormRepositoryImpl) ByFilter(ctx context.Context, filter models.ConsultationFormFilter, orderBy string, limit, offset int) ([]*models.ConsultationForm, error) {
	db := r.getDB(ctx)
	query := paginate(r.applyFilter(db.Model(&models.ConsultationForm{}), filter), orderBy, limit, offset)
	var rows []*models.ConsultationForm
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ConsultationFormRepositoryImpl) Count(ctx context.Context, filter models.ConsultationFormFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ConsultationForm{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ConsultationFormRepositoryImpl) Exists(ctx context.Context, filter models.ConsultationFormFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
