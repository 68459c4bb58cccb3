package handlers

import (
	"strings"

	"github.com/amirphl/dental-clinic/app/dto"
	businessflow "github.com/amirphl/dental-clinic/business_flow"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/gofiber/fiber/v3"
)

// AttributionHandlerInterface defines the contract for the public campaign endpoints
type AttributionHandlerInterface interface {
	Capture(c fiber.Ctx) error
	StoredSource(c fiber.Ctx) error
	GetCampaign(c fiber.Ctx) error
	IncrementClick(c fiber.Ctx) error
}

// AttributionHandler serves the visitor side of the attribution pipeline
type AttributionHandler struct {
	baseHandler
	flow businessflow.AttributionFlow
}

func NewAttributionHandler(flow businessflow.AttributionFlow, log logger.Logger) *AttributionHandler {
	return &AttributionHandler{
		baseHandler: newBaseHandler(log, "attribution_handler"),
		flow:        flow,
	}
}

// Capture records the campaign a visitor arrived from
// @Summary Capture campaign attribution
// @Description Validates the campaign code of a page load, stores it for the visitor session and counts the click. Always answers 200; the result tells whether the source was captured, rejected or skipped. When source is omitted it is read from the ?source= parameter of url.
// @Tags Attribution
// @Accept json
// @Produce json
// @Param request body dto.CaptureAttributionRequest false "Source and current page URL"
// @Success 200 {object} dto.APIResponse{data=dto.AttributionResultDTO} "Attribution processed"
// @Router /api/attribution/capture [post]
func (h *AttributionHandler) Capture(c fiber.Ctx) error {
	var req dto.CaptureAttributionRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			h.log.Debug("ignoring malformed capture body", "error", err)
			req = dto.CaptureAttributionRequest{}
		}
	}
	if req.Source == nil {
		if v, ok := utils.QueryParam(req.URL, utils.SourceQueryParam); ok {
			req.Source = &v
		} else if v := c.Query(utils.SourceQueryParam); v != "" {
			req.Source = &v
		}
	}
	if len(req.URL) > 4096 {
		req.URL = ""
	}

	ctx, cancel := h.requestContext(c, "/api/attribution/capture")
	defer cancel()

	result := h.flow.CaptureAttribution(ctx, h.clientMetadata(c).SessionID, req.Source, req.URL)
	return h.SuccessResponse(c, fiber.StatusOK, "Attribution processed", result.DTO())
}

// StoredSource returns the visitor's live attribution
// @Summary Current attribution
// @Description Returns the campaign code stored for the visitor session. data is omitted when there is none or it expired.
// @Tags Attribution
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.StoredSourceDTO} "Stored source"
// @Router /api/attribution [get]
func (h *AttributionHandler) StoredSource(c fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "/api/attribution")
	defer cancel()

	stored := h.flow.StoredSource(ctx, h.clientMetadata(c).SessionID)
	if stored == nil || !stored.Present {
		return h.SuccessResponse(c, fiber.StatusOK, "No attribution stored", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Attribution stored", stored)
}

// GetCampaign returns the public view of a campaign
// @Summary Get campaign by code
// @Tags Campaigns
// @Produce json
// @Param code path string true "Campaign unique code"
// @Success 200 {object} dto.APIResponse{data=dto.PublicCampaignDTO} "Campaign"
// @Failure 400 {object} dto.APIResponse "Malformed code"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/campaigns/{code} [get]
func (h *AttributionHandler) GetCampaign(c fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "/api/campaigns/:code")
	defer cancel()

	campaign, err := h.flow.GetCampaign(ctx, strings.TrimSpace(c.Params("code")))
	if err != nil {
		return h.HandleError(c, err, "Failed to load campaign")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign retrieved", campaign)
}

// IncrementClick counts one click of an active campaign
// @Summary Increment campaign clicks
// @Description Atomically adds one click to an active, unexpired campaign. Every call counts.
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param request body dto.IncrementClickRequest true "Campaign code"
// @Success 200 {object} dto.APIResponse{data=dto.IncrementClickResponse} "Click counted"
// @Failure 400 {object} dto.APIResponse "Malformed code"
// @Failure 404 {object} dto.APIResponse "Campaign not found, inactive or expired"
// @Router /api/campaigns/increment-click [post]
func (h *AttributionHandler) IncrementClick(c fiber.Ctx) error {
	var req dto.IncrementClickRequest
	if ok, err := h.decode(c, &req); !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/campaigns/increment-click")
	defer cancel()

	resp, err := h.flow.IncrementCampaignClick(ctx, strings.TrimSpace(req.Code))
	if err != nil {
		return h.HandleError(c, err, "Failed to count click")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Click counted", resp)
}
