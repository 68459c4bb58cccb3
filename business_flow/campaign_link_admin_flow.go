package businessflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/repository"
	"github.com/amirphl/dental-clinic/utils"
	"gorm.io/gorm"
)

// CampaignLinkAdminFlow manages campaign links from the admin panel
type CampaignLinkAdminFlow interface {
	List(ctx context.Context, req *dto.ListCampaignLinksRequest) (*dto.ListCampaignLinksResponse, error)
	Get(ctx context.Context, id uint) (*dto.CampaignLinkDTO, error)
	Create(ctx context.Context, req *dto.CreateCampaignLinkRequest) (*dto.CampaignLinkDTO, error)
	Update(ctx context.Context, id uint, req *dto.UpdateCampaignLinkRequest) (*dto.CampaignLinkDTO, error)
	Delete(ctx context.Context, id uint) error
}

// CampaignLinkAdminFlowImpl implements CampaignLinkAdminFlow
type CampaignLinkAdminFlowImpl struct {
	campaignRepo repository.CampaignLinkRepository
	siteURL      string
	now          func() time.Time
	log          logger.Logger
}

// NewCampaignLinkAdminFlow creates a new campaign link admin flow. siteURL is
// the public origin used to build share links.
func NewCampaignLinkAdminFlow(campaignRepo repository.CampaignLinkRepository, siteURL string, log logger.Logger) CampaignLinkAdminFlow {
	if log == nil {
		log = logger.Nop()
	}
	return &CampaignLinkAdminFlowImpl{
		campaignRepo: campaignRepo,
		siteURL:      strings.TrimRight(siteURL, "/"),
		now:          utils.UTCNow,
		log:          log.With("component", "campaign_links"),
	}
}

func (f *CampaignLinkAdminFlowImpl) List(ctx context.Context, req *dto.ListCampaignLinksRequest) (*dto.ListCampaignLinksResponse, error) {
	page, perPage, err := normalizePaging(req.Page, req.PerPage)
	if err != nil {
		return nil, err
	}

	filter := models.CampaignLinkFilter{IsActive: req.IsActive}
	if s := strings.TrimSpace(req.Search); s != "" {
		filter.Search = &s
	}

	total, err := f.campaignRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "failed to count campaign links", err)
	}
	rows, err := f.campaignRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", perPage, (page-1)*perPage)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "failed to list campaign links", err)
	}

	now := f.now()
	data := make([]dto.CampaignLinkDTO, 0, len(rows))
	for _, row := range rows {
		data = append(data, f.toDTO(row, now))
	}
	return &dto.ListCampaignLinksResponse{Data: data, Pagination: newPagination(page, perPage, total)}, nil
}

func (f *CampaignLinkAdminFlowImpl) Get(ctx context.Context, id uint) (*dto.CampaignLinkDTO, error) {
	campaign, err := f.getCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	out := f.toDTO(campaign, f.now())
	return &out, nil
}

// Create registers a new campaign link with a zero click counter
func (f *CampaignLinkAdminFlowImpl) Create(ctx context.Context, req *dto.CreateCampaignLinkRequest) (*dto.CampaignLinkDTO, error) {
	name := strings.TrimSpace(req.CampaignName)
	if name == "" {
		return nil, NewBusinessError("CAMPAIGN_NAME_REQUIRED", "campaign_name is required", ErrCampaignNameRequired)
	}
	code := strings.TrimSpace(req.UniqueCode)
	if !ValidCampaignCode(code) {
		return nil, NewBusinessError("INVALID_CAMPAIGN_CODE", "unique_code may contain letters, digits, '-' and '_' (max 64)", ErrInvalidCampaignCode)
	}

	existing, err := f.campaignRepo.ByUniqueCode(ctx, code)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "failed to check campaign code", err)
	}
	if existing != nil {
		return nil, NewBusinessErrorf("CAMPAIGN_CODE_EXISTS", "campaign code %q is already used", ErrCampaignCodeExists, code)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	campaign := &models.CampaignLink{
		CampaignName: name,
		UniqueCode:   code,
		Description:  utils.TrimmedPtr(req.Description),
		IsActive:     &isActive,
		ExpiryDate:   utcPtr(req.ExpiryDate),
	}
	if err := f.campaignRepo.Save(ctx, campaign); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewBusinessErrorf("CAMPAIGN_CODE_EXISTS", "campaign code %q is already used", ErrCampaignCodeExists, code)
		}
		return nil, NewBusinessError("CAMPAIGN_CREATE_FAILED", "failed to create campaign link", err)
	}

	f.log.Info("campaign link created", "id", campaign.ID, "code", code)
	out := f.toDTO(campaign, f.now())
	return &out, nil
}

// Update edits name, description, activity and expiry
func (f *CampaignLinkAdminFlowImpl) Update(ctx context.Context, id uint, req *dto.UpdateCampaignLinkRequest) (*dto.CampaignLinkDTO, error) {
	if req.ClearExpiry && req.ExpiryDate != nil {
		return nil, NewBusinessError("CAMPAIGN_EXPIRY_CONFLICT", "expiry_date and clear_expiry cannot be combined", ErrCampaignExpiryConflict)
	}

	campaign, err := f.getCampaign(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CampaignName != nil {
		name := strings.TrimSpace(*req.CampaignName)
		if name == "" {
			return nil, NewBusinessError("CAMPAIGN_NAME_REQUIRED", "campaign_name is required", ErrCampaignNameRequired)
		}
		campaign.CampaignName = name
	}
	if req.Description != nil {
		campaign.Description = utils.TrimmedPtr(req.Description)
	}
	if req.IsActive != nil {
		campaign.IsActive = utils.ToPtr(*req.IsActive)
	}
	if req.ExpiryDate != nil {
		campaign.ExpiryDate = utcPtr(req.ExpiryDate)
	}
	if req.ClearExpiry {
		campaign.ExpiryDate = nil
	}
	campaign.UpdatedAt = f.now()

	if err := f.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_FAILED", "failed to update campaign link", err)
	}
	return f.Get(ctx, id)
}

func (f *CampaignLinkAdminFlowImpl) Delete(ctx context.Context, id uint) error {
	deleted, err := f.campaignRepo.DeleteByID(ctx, id)
	if err != nil {
		return NewBusinessError("CAMPAIGN_DELETE_FAILED", "failed to delete campaign link", err)
	}
	if !deleted {
		return NewBusinessError("CAMPAIGN_NOT_FOUND", "campaign link not found", ErrCampaignNotFound)
	}
	f.log.Info("campaign link deleted", "id", id)
	return nil
}

func (f *CampaignLinkAdminFlowImpl) getCampaign(ctx context.Context, id uint) (*models.CampaignLink, error) {
	campaign, err := f.campaignRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "failed to load campaign link", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "campaign link not found", ErrCampaignNotFound)
	}
	return campaign, nil
}

func (f *CampaignLinkAdminFlowImpl) toDTO(c *models.CampaignLink, now time.Time) dto.CampaignLinkDTO {
	return dto.CampaignLinkDTO{
		ID:           c.ID,
		UUID:         c.UUID.String(),
		CampaignName: c.CampaignName,
		UniqueCode:   c.UniqueCode,
		Description:  c.Description,
		IsActive:     utils.IsTrue(c.IsActive),
		IsExpired:    c.IsExpiredAt(now),
		ExpiryDate:   formatTimePtr(c.ExpiryDate),
		ClickCount:   c.ClickCount,
		ShareURL:     f.siteURL + "/?" + utils.SourceQueryParam + "=" + c.UniqueCode,
		CreatedAt:    formatTime(c.CreatedAt),
		UpdatedAt:    formatTime(c.UpdatedAt),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return utils.ToPtr(t.UTC())
}
