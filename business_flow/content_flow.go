package businessflow

import (
	"context"
	"errors"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/repository"
	"gorm.io/gorm"
)

// Collection names as they appear in the API paths
const (
	CollectionDoctors            = "doctors"
	CollectionReviews            = "reviews"
	CollectionFAQs               = "faqs"
	CollectionServices           = "services"
	CollectionPillSections       = "pill-sections"
	CollectionValueStackingItems = "value-stacking-items"
	CollectionSectionBackgrounds = "section-backgrounds"
	CollectionFinalCTA           = "final-cta"
)

// ContentFlow is the CRUD surface shared by every site content collection.
// Items are always listed by display_order then id.
type ContentFlow[T any] interface {
	Collection() string
	ListPublic(ctx context.Context) ([]*T, error)
	ListAdmin(ctx context.Context, visible *bool) ([]*T, error)
	Get(ctx context.Context, id uint, visibleOnly bool) (*T, error)
	Create(ctx context.Context, payload dto.ContentPayload[T]) (*T, error)
	Update(ctx context.Context, id uint, payload dto.ContentPayload[T]) (*T, error)
	Delete(ctx context.Context, id uint) error
	Reorder(ctx context.Context, ids []uint) error
}

// ContentFlowImpl implements ContentFlow for one collection
type ContentFlowImpl[T any] struct {
	collection string
	repo       repository.ContentRepository[T]
	db         *gorm.DB
	log        logger.Logger
}

// NewContentFlow creates the flow of one content collection, e.g. "doctors"
func NewContentFlow[T any](collection string, repo repository.ContentRepository[T], db *gorm.DB, log logger.Logger) ContentFlow[T] {
	if log == nil {
		log = logger.Nop()
	}
	return &ContentFlowImpl[T]{
		collection: collection,
		repo:       repo,
		db:         db,
		log:        log.With("component", "content", "collection", collection),
	}
}

func (f *ContentFlowImpl[T]) Collection() string {
	return f.collection
}

func (f *ContentFlowImpl[T]) ListPublic(ctx context.Context) ([]*T, error) {
	visible := true
	return f.list(ctx, &visible)
}

func (f *ContentFlowImpl[T]) ListAdmin(ctx context.Context, visible *bool) ([]*T, error) {
	return f.list(ctx, visible)
}

func (f *ContentFlowImpl[T]) list(ctx context.Context, visible *bool) ([]*T, error) {
	rows, err := f.repo.ByFilter(ctx, models.ContentFilter{Visible: visible}, "", 0, 0)
	if err != nil {
		return nil, NewBusinessErrorf("CONTENT_LIST_FAILED", "failed to list %s", err, f.collection)
	}
	if rows == nil {
		rows = []*T{}
	}
	return rows, nil
}

// Get returns one item. With visibleOnly a hidden item is reported as missing.
func (f *ContentFlowImpl[T]) Get(ctx context.Context, id uint, visibleOnly bool) (*T, error) {
	filter := models.ContentFilter{ID: &id}
	if visibleOnly {
		visible := true
		filter.Visible = &visible
	}
	rows, err := f.repo.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, NewBusinessErrorf("CONTENT_LOOKUP_FAILED", "failed to load %s item", err, f.collection)
	}
	if len(rows) == 0 {
		return nil, f.notFound()
	}
	return rows[0], nil
}

func (f *ContentFlowImpl[T]) Create(ctx context.Context, payload dto.ContentPayload[T]) (*T, error) {
	entity := new(T)
	payload.ApplyTo(entity)
	if err := f.repo.Save(ctx, entity); err != nil {
		return nil, f.writeError("CONTENT_CREATE_FAILED", err)
	}
	f.log.Info("content item created")
	return entity, nil
}

// Update replaces the editable fields of an existing item
func (f *ContentFlowImpl[T]) Update(ctx context.Context, id uint, payload dto.ContentPayload[T]) (*T, error) {
	entity, err := f.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	payload.ApplyTo(entity)
	if err := f.repo.Update(ctx, entity); err != nil {
		return nil, f.writeError("CONTENT_UPDATE_FAILED", err)
	}
	return f.Get(ctx, id, false)
}

func (f *ContentFlowImpl[T]) Delete(ctx context.Context, id uint) error {
	deleted, err := f.repo.DeleteByID(ctx, id)
	if err != nil {
		return NewBusinessErrorf("CONTENT_DELETE_FAILED", "failed to delete %s item", err, f.collection)
	}
	if !deleted {
		return f.notFound()
	}
	f.log.Info("content item deleted", "id", id)
	return nil
}

// Reorder sets display_order to each id's position in ids. Every id must
// exist and appear once.
func (f *ContentFlowImpl[T]) Reorder(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return NewBusinessError("REORDER_IDS_REQUIRED", "ids are required", ErrReorderIDsRequired)
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == 0 {
			return NewBusinessErrorf("REORDER_UNKNOWN_ID", "id %d is repeated or invalid", ErrReorderUnknownID, id)
		}
		seen[id] = struct{}{}
	}

	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		count, err := f.repo.Count(txCtx, models.ContentFilter{IDs: ids})
		if err != nil {
			return err
		}
		if count != int64(len(ids)) {
			return NewBusinessErrorf("REORDER_UNKNOWN_ID", "ids contain an unknown %s item", ErrReorderUnknownID, f.collection)
		}
		return f.repo.UpdateDisplayOrder(txCtx, ids)
	})
	if err != nil {
		if _, ok := AsBusinessError(err); ok {
			return err
		}
		return NewBusinessErrorf("REORDER_FAILED", "failed to reorder %s", err, f.collection)
	}
	return nil
}

func (f *ContentFlowImpl[T]) notFound() error {
	return NewBusinessErrorf("CONTENT_NOT_FOUND", "%s item not found", ErrContentNotFound, f.collection)
}

func (f *ContentFlowImpl[T]) writeError(code string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewBusinessErrorf("CONTENT_CONFLICT", "%s item conflicts with an existing one", ErrContentConflict, f.collection)
	}
	return NewBusinessErrorf(code, "failed to save %s item", err, f.collection)
}
