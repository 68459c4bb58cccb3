package handlers

import (
	"github.com/amirphl/dental-clinic/app/dto"
	businessflow "github.com/amirphl/dental-clinic/business_flow"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/gofiber/fiber/v3"
)

// AppointmentHandler serves appointment requests
type AppointmentHandler struct {
	baseHandler
	flow businessflow.AppointmentFlow
}

func NewAppointmentHandler(flow businessflow.AppointmentFlow, log logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		baseHandler: newBaseHandler(log, "appointment_handler"),
		flow:        flow,
	}
}

// Create stores an appointment request from the public site
// @Summary Request an appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param request body dto.CreateAppointmentRequest true "Appointment request"
// @Success 201 {object} dto.APIResponse{data=dto.CreateAppointmentResponse} "Appointment requested"
// @Failure 400 {object} dto.APIResponse "Validation error, invalid phone or date"
// @Failure 429 {object} dto.APIResponse "Too many requests"
// @Router /api/appointments [post]
func (h *AppointmentHandler) Create(c fiber.Ctx) error {
	var req dto.CreateAppointmentRequest
	if ok, err := h.decode(c, &req); !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/appointments")
	defer cancel()

	resp, err := h.flow.Create(ctx, &req, h.clientMetadata(c))
	if err != nil {
		return h.HandleError(c, err, "Failed to request appointment")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Appointment requested", resp)
}

// List returns one page of appointments
// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param perPage query int false "Page size (default 20, max 100)"
// @Param status query string false "pending, confirmed, completed or cancelled"
// @Success 200 {object} dto.APIResponse{data=[]dto.AppointmentDTO} "Appointments"
// @Failure 400 {object} dto.APIResponse "Invalid filter"
// @Router /api/admin/appointments [get]
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	var req dto.ListAppointmentsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := h.requestContext(c, "/api/admin/appointments")
	defer cancel()

	resp, err := h.flow.List(ctx, &req)
	if err != nil {
		return h.HandleError(c, err, "Failed to list appointments")
	}
	return h.PagedResponse(c, "Appointments retrieved", resp.Data, resp.Pagination)
}

// UpdateStatus moves an appointment through its workflow
// @Summary Update appointment status
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param request body dto.UpdateAppointmentStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.AppointmentDTO} "Appointment updated"
// @Failure 400 {object} dto.APIResponse "Invalid status"
// @Failure 404 {object} dto.APIResponse "Appointment not found"
// @Router /api/admin/appointments/{id} [patch]
func (h *AppointmentHandler) UpdateStatus(c fiber.Ctx) error {
	id, ok, err := h.idParam(c, "id")
	if !ok {
		return err
	}
	var req dto.UpdateAppointmentStatusRequest
	if ok, err := h.decode(c, &req); !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/admin/appointments/:id")
	defer cancel()

	appointment, err := h.flow.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return h.HandleError(c, err, "Failed to update appointment")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Appointment updated", appointment)
}

// Delete removes an appointment
// @Summary Delete appointment
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} dto.APIResponse "Appointment deleted"
// @Failure 404 {object} dto.APIResponse "Appointment not found"
// @Router /api/admin/appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c fiber.Ctx) error {
	id, ok, err := h.idParam(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/admin/appointments/:id")
	defer cancel()

	if err := h.flow.Delete(ctx, id); err != nil {
		return h.HandleError(c, err, "Failed to delete appointment")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Appointment deleted", nil)
}
