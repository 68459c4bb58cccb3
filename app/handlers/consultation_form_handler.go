package handlers

import (
	"fmt"

	"github.com/amirphl/dental-clinic/app/dto"
	businessflow "github.com/amirphl/dental-clinic/business_flow"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/gofiber/fiber/v3"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ConsultationFormHandlerInterface defines the contract for lead handlers
type ConsultationFormHandlerInterface interface {
	Submit(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Sources(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// ConsultationFormHandler serves lead capture and the CRM lead list
type ConsultationFormHandler struct {
	baseHandler
	flow businessflow.ConsultationFormFlow
}

func NewConsultationFormHandler(flow businessflow.ConsultationFormFlow, log logger.Logger) *ConsultationFormHandler {
	return &ConsultationFormHandler{
		baseHandler: newBaseHandler(log, "consultation_form_handler"),
		flow:        flow,
	}
}

// Submit stores a consultation request from the public site
// @Summary Submit consultation form
// @Description Creates a lead with status Yangi. The source is the explicit source of the payload, else the visitor's stored attribution, else "Direct Visit".
// @Tags Consultation Forms
// @Accept json
// @Produce json
// @Param request body dto.SubmitConsultationFormRequest true "Lead data"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitConsultationFormResponse} "Lead created"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid phone"
// @Failure 429 {object} dto.APIResponse "Too many submissions"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/consultation-forms [post]
func (h *ConsultationFormHandler) Submit(c fiber.Ctx) error {
	var req dto.SubmitConsultationFormRequest
	if ok, err := h.decode(c, &req); !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/consultation-forms")
	defer cancel()

	resp, err := h.flow.Submit(ctx, &req, h.clientMetadata(c))
	if err != nil {
		return h.HandleError(c, err, "Failed to submit consultation form")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Consultation form submitted", resp)
}

// List returns one page of leads
// @Summary List consultation forms
// @Tags Consultation Forms
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param perPage query int false "Page size (default 20, max 100)"
// @Param search query string false "Substring of name or phone"
// @Param sourceFilter query string false "Exact source, 'all' for any"
// @Param statusFilter query string false "Lead status, 'all' for any"
// @Param dateFrom query string false "YYYY-MM-DD or RFC3339"
// @Param dateTo query string false "YYYY-MM-DD or RFC3339"
// @Success 200 {object} dto.APIResponse{data=[]dto.ConsultationFormDTO} "Leads"
// @Failure 400 {object} dto.APIResponse "Invalid filter"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/consultation-forms [get]
func (h *ConsultationFormHandler) List(c fiber.Ctx) error {
	var req dto.ListConsultationFormsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := h.requestContext(c, "/api/consultation-forms")
	defer cancel()

	resp, err := h.flow.List(ctx, &req)
	if err != nil {
		return h.HandleError(c, err, "Failed to list consultation forms")
	}
	return h.PagedResponse(c, "Consultation forms retrieved", resp.Data, resp.Pagination)
}

// Get returns one lead
// @Summary Get consultation form
// @Tags Consultation Forms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Success 200 {object} dto.APIResponse{data=dto.ConsultationFormDTO} "Lead"
// @Failure 404 {object} dto.APIResponse "Lead not found"
// @Router /api/consultation-forms/{id} [get]
func (h *ConsultationFormHandler) Get(c fiber.Ctx) error {
	id, ok, err := h.idParam(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/consultation-forms/:id")
	defer cancel()

	lead, err := h.flow.Get(ctx, id)
	if err != nil {
		return h.HandleError(c, err, "Failed to load consultation form")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Consultation form retrieved", lead)
}

// Update changes the status and notes of a lead
// @Summary Update consultation form
// @Description Patches lead_status and/or notes. Last write wins.
// @Tags Consultation Forms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Param request body dto.UpdateConsultationFormRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.ConsultationFormDTO} "Lead updated"
// @Failure 400 {object} dto.APIResponse "Empty update or unknown status"
// @Failure 404 {object} dto.APIResponse "Lead not found"
// @Router /api/consultation-forms/{id} [patch]
func (h *ConsultationFormHandler) Update(c fiber.Ctx) error {
	id, ok, err := h.idParam(c, "id")
	if !ok {
		return err
	}
	var req dto.UpdateConsultationFormRequest
	if ok, err := h.decode(c, &req); !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/consultation-forms/:id")
	defer cancel()

	lead, err := h.flow.Update(ctx, id, &req)
	if err != nil {
		return h.HandleError(c, err, "Failed to update consultation form")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Consultation form updated", lead)
}

// Sources lists every distinct lead source
// @Summary Distinct lead sources
// @Tags Consultation Forms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DistinctSourcesResponse} "Sources"
// @Router /api/consultation-forms/sources [get]
func (h *ConsultationFormHandler) Sources(c fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "/api/consultation-forms/sources")
	defer cancel()

	resp, err := h.flow.DistinctSources(ctx)
	if err != nil {
		return h.HandleError(c, err, "Failed to list sources")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Sources retrieved", resp)
}

// Export downloads the filtered leads as an XLSX workbook
// @Summary Export consultation forms
// @Tags Consultation Forms
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param search query string false "Substring of name or phone"
// @Param sourceFilter query string false "Exact source"
// @Param statusFilter query string false "Lead status"
// @Param dateFrom query string false "YYYY-MM-DD or RFC3339"
// @Param dateTo query string false "YYYY-MM-DD or RFC3339"
// @Success 200 {file} file "XLSX workbook"
// @Failure 400 {object} dto.APIResponse "Invalid filter"
// @Router /api/consultation-forms/export [get]
func (h *ConsultationFormHandler) Export(c fiber.Ctx) error {
	var req dto.ListConsultationFormsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	ctx, cancel := h.requestContext(c, "/api/consultation-forms/export")
	defer cancel()

	filename, content, err := h.flow.Export(ctx, &req)
	if err != nil {
		return h.HandleError(c, err, "Failed to export consultation forms")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Status(fiber.StatusOK).Send(content)
}
