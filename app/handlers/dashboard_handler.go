package handlers

import (
	businessflow "github.com/amirphl/dental-clinic/business_flow"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/gofiber/fiber/v3"
)

// DashboardHandler serves the CRM dashboard
type DashboardHandler struct {
	baseHandler
	flow businessflow.DashboardFlow
}

func NewDashboardHandler(flow businessflow.DashboardFlow, log logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		baseHandler: newBaseHandler(log, "dashboard_handler"),
		flow:        flow,
	}
}

// GetDashboard returns lead counters, the source breakdown and campaign funnels
// @Summary CRM dashboard
// @Description Total, today (clinic timezone) and last 7 days lead counts, counts per status and source, and clicks, submissions and conversion rate per campaign.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse} "Dashboard"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/crm/dashboard [get]
func (h *DashboardHandler) GetDashboard(c fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "/api/crm/dashboard")
	defer cancel()

	resp, err := h.flow.GetDashboard(ctx)
	if err != nil {
		return h.HandleError(c, err, "Failed to load dashboard")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Dashboard retrieved", resp)
}
