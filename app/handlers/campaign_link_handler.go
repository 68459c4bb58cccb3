package handlers

import (
	"github.com/amirphl/dental-clinic/app/dto"
	businessflow "github.com/amirphl/dental-clinic/business_flow"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/gofiber/fiber/v3"
)

// CampaignLinkHandler serves campaign link administration
type CampaignLinkHandler struct {
	baseHandler
	flow businessflow.CampaignLinkAdminFlow
}

func NewCampaignLinkHandler(flow businessflow.CampaignLinkAdminFlow, log logger.Logger) *CampaignLinkHandler {
	return &CampaignLinkHandler{
		baseHandler: newBaseHandler(log, "campaign_link_handler"),
		flow:        flow,
	}
}

// List returns one page of campaign links
// @Summary List campaign links
// @Tags Campaign Links
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param perPage query int false "Page size (default 20, max 100)"
// @Param search query string false "Substring of name or code"
// @Param is_active query bool false "Active filter"
// @Success 200 {object} dto.APIResponse{data=[]dto.CampaignLinkDTO} "Campaign links"
// @Router /api/admin/campaign-links [get]
func (h *CampaignLinkHandler) List(c fiber.Ctx) error {
	var req dto.ListCampaignLinksRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := h.requestContext(c, "/api/admin/campaign-links")
	defer cancel()

	resp, err := h.flow.List(ctx, &req)
	if err != nil {
		return h.HandleError(c, err, "Failed to list campaign links")
	}
	return h.PagedResponse(c, "Campaign links retrieved", resp.Data, resp.Pagination)
}

// Get returns one campaign link
// @Summary Get campaign link
// @Tags Campaign Links
// @Produce json
// @Security BearerAuth
// @Param id path int true "Campaign link ID"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignLinkDTO} "Campaign link"
// @Failure 404 {object} dto.APIResponse "Campaign link not found"
// @Router /api/admin/campaign-links/{id} [get]
func (h *CampaignLinkHandler) Get(c fiber.Ctx) error {
	id, ok, err := h.idParam(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/admin/campaign-links/:id")
	defer cancel()

	link, err := h.flow.Get(ctx, id)
	if err != nil {
		return h.HandleError(c, err, "Failed to load campaign link")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign link retrieved", link)
}

// Create adds a campaign link
// @Summary Create campaign link
// @Tags Campaign Links
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCampaignLinkRequest true "Campaign link"
// @Success 201 {object} dto.APIResponse{data=dto.CampaignLinkDTO} "Campaign link created"
// @Failure 400 {object} dto.APIResponse "Validation error or malformed code"
// @Failure 409 {object} dto.APIResponse "Code already used"
// @Router /api/admin/campaign-links [post]
func (h *CampaignLinkHandler) Create(c fiber.Ctx) error {
	var req dto.CreateCampaignLinkRequest
	if ok, err := h.decode(c, &req); !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/admin/campaign-links")
	defer cancel()

	link, err := h.flow.Create(ctx, &req)
	if err != nil {
		return h.HandleError(c, err, "Failed to create campaign link")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Campaign link created", link)
}

// Update changes the editable fields of a campaign link
// @Summary Update campaign link
// @Description The code and the click counter cannot be changed. clear_expiry removes the expiry date.
// @Tags Campaign Links
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Campaign link ID"
// @Param request body dto.UpdateCampaignLinkRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignLinkDTO} "Campaign link updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Campaign link not found"
// @Router /api/admin/campaign-links/{id} [put]
func (h *CampaignLinkHandler) Update(c fiber.Ctx) error {
	id, ok, err := h.idParam(c, "id")
	if !ok {
		return err
	}
	var req dto.UpdateCampaignLinkRequest
	if ok, err := h.decode(c, &req); !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/admin/campaign-links/:id")
	defer cancel()

	link, err := h.flow.Update(ctx, id, &req)
	if err != nil {
		return h.HandleError(c, err, "Failed to update campaign link")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign link updated", link)
}

// Delete removes a campaign link. Leads keep their source snapshot.
// @Summary Delete campaign link
// @Tags Campaign Links
// @Produce json
// @Security BearerAuth
// @Param id path int true "Campaign link ID"
// @Success 200 {object} dto.APIResponse "Campaign link deleted"
// @Failure 404 {object} dto.APIResponse "Campaign link not found"
// @Router /api/admin/campaign-links/{id} [delete]
func (h *CampaignLinkHandler) Delete(c fiber.Ctx) error {
	id, ok, err := h.idParam(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/admin/campaign-links/:id")
	defer cancel()

	if err := h.flow.Delete(ctx, id); err != nil {
		return h.HandleError(c, err, "Failed to delete campaign link")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign link deleted", nil)
}
