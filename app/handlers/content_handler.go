package handlers

import (
	"strconv"

	"github.com/amirphl/dental-clinic/app/dto"
	businessflow "github.com/amirphl/dental-clinic/business_flow"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/gofiber/fiber/v3"
)

// ContentHandler serves one content collection. T is the stored entity and P
// the create/replace payload bound from the request body.
type ContentHandler[T any, P dto.ContentPayload[T]] struct {
	baseHandler
	flow businessflow.ContentFlow[T]
}

func NewContentHandler[T any, P dto.ContentPayload[T]](flow businessflow.ContentFlow[T], log logger.Logger) *ContentHandler[T, P] {
	return &ContentHandler[T, P]{
		baseHandler: newBaseHandler(log, "content_handler:"+flow.Collection()),
		flow:        flow,
	}
}

// Collection is the path segment the handler is mounted under
func (h *ContentHandler[T, P]) Collection() string {
	return h.flow.Collection()
}

func (h *ContentHandler[T, P]) endpoint(suffix string) string {
	return "/api/" + h.flow.Collection() + suffix
}

// ListPublic returns the visible items
// @Summary List visible content items
// @Description Collections: doctors, reviews, faqs, services, pill-sections, value-stacking-items, section-backgrounds, final-cta. Ordered by display_order then id.
// @Tags Content
// @Produce json
// @Param collection path string true "Collection name"
// @Success 200 {object} dto.APIResponse "Items"
// @Router /api/{collection} [get]
func (h *ContentHandler[T, P]) ListPublic(c fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, h.endpoint(""))
	defer cancel()

	items, err := h.flow.ListPublic(ctx)
	if err != nil {
		return h.HandleError(c, err, "Failed to list items")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Items retrieved", items)
}

// ListAdmin returns all items, optionally filtered by visibility
// @Summary List all content items
// @Tags Content Admin
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection name"
// @Param is_active query bool false "Visibility filter"
// @Param is_approved query bool false "Visibility filter of reviews"
// @Success 200 {object} dto.APIResponse "Items"
// @Failure 400 {object} dto.APIResponse "Invalid filter"
// @Router /api/admin/{collection} [get]
func (h *ContentHandler[T, P]) ListAdmin(c fiber.Ctx) error {
	var visible *bool
	for _, param := range []string{models.VisibilityIsActive, models.VisibilityIsApproved} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, param+" must be true or false", "INVALID_FILTER", nil)
		}
		visible = &v
	}

	ctx, cancel := h.requestContext(c, "/api/admin/"+h.flow.Collection())
	defer cancel()

	items, err := h.flow.ListAdmin(ctx, visible)
	if err != nil {
		return h.HandleError(c, err, "Failed to list items")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Items retrieved", items)
}

// Get returns one visible item
// @Summary Get content item
// @Tags Content
// @Produce json
// @Param collection path string true "Collection name"
// @Param id path int true "Item ID"
// @Success 200 {object} dto.APIResponse "Item"
// @Failure 404 {object} dto.APIResponse "Item not found or hidden"
// @Router /api/{collection}/{id} [get]
func (h *ContentHandler[T, P]) Get(c fiber.Ctx) error {
	return h.get(c, true)
}

// AdminGet returns one item whatever its visibility
// @Summary Get content item (admin)
// @Tags Content Admin
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection name"
// @Param id path int true "Item ID"
// @Success 200 {object} dto.APIResponse "Item"
// @Failure 404 {object} dto.APIResponse "Item not found"
// @Router /api/admin/{collection}/{id} [get]
func (h *ContentHandler[T, P]) AdminGet(c fiber.Ctx) error {
	return h.get(c, false)
}

func (h *ContentHandler[T, P]) get(c fiber.Ctx, visibleOnly bool) error {
	id, ok, err := h.idParam(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, h.endpoint("/:id"))
	defer cancel()

	item, err := h.flow.Get(ctx, id, visibleOnly)
	if err != nil {
		return h.HandleError(c, err, "Failed to load item")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Item retrieved", item)
}

// Create adds an item
// @Summary Create content item
// @Tags Content Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection name"
// @Success 201 {object} dto.APIResponse "Item created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Conflicts with an existing item"
// @Router /api/{collection} [post]
func (h *ContentHandler[T, P]) Create(c fiber.Ctx) error {
	var payload P
	if ok, err := h.decode(c, &payload); !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, h.endpoint(""))
	defer cancel()

	item, err := h.flow.Create(ctx, payload)
	if err != nil {
		return h.HandleError(c, err, "Failed to create item")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Item created", item)
}

// Update replaces the editable fields of an item
// @Summary Update content item
// @Tags Content Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection name"
// @Param id path int true "Item ID"
// @Success 200 {object} dto.APIResponse "Item updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Item not found"
// @Router /api/{collection}/{id} [put]
func (h *ContentHandler[T, P]) Update(c fiber.Ctx) error {
	id, ok, err := h.idParam(c, "id")
	if !ok {
		return err
	}
	var payload P
	if ok, err := h.decode(c, &payload); !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, h.endpoint("/:id"))
	defer cancel()

	item, err := h.flow.Update(ctx, id, payload)
	if err != nil {
		return h.HandleError(c, err, "Failed to update item")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Item updated", item)
}

// Delete removes an item
// @Summary Delete content item
// @Tags Content Admin
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection name"
// @Param id path int true "Item ID"
// @Success 200 {object} dto.APIResponse "Item deleted"
// @Failure 404 {object} dto.APIResponse "Item not found"
// @Router /api/{collection}/{id} [delete]
func (h *ContentHandler[T, P]) Delete(c fiber.Ctx) error {
	id, ok, err := h.idParam(c, "id")
	if !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, h.endpoint("/:id"))
	defer cancel()

	if err := h.flow.Delete(ctx, id); err != nil {
		return h.HandleError(c, err, "Failed to delete item")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Item deleted", nil)
}

// Reorder assigns display_order from the position of each id
// @Summary Reorder content items
// @Tags Content Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection name"
// @Param request body dto.ReorderRequest true "Item IDs in display order"
// @Success 200 {object} dto.APIResponse "Items reordered"
// @Failure 400 {object} dto.APIResponse "Unknown or repeated id"
// @Router /api/admin/{collection}/reorder [put]
func (h *ContentHandler[T, P]) Reorder(c fiber.Ctx) error {
	var req dto.ReorderRequest
	if ok, err := h.decode(c, &req); !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/admin/"+h.flow.Collection()+"/reorder")
	defer cancel()

	if err := h.flow.Reorder(ctx, req.IDs); err != nil {
		return h.HandleError(c, err, "Failed to reorder items")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Items reordered", nil)
}

// ReviewSubmissionHandler accepts testimonials from the public site
type ReviewSubmissionHandler struct {
	baseHandler
	flow businessflow.ContentFlow[models.Review]
}

func NewReviewSubmissionHandler(flow businessflow.ContentFlow[models.Review], log logger.Logger) *ReviewSubmissionHandler {
	return &ReviewSubmissionHandler{
		baseHandler: newBaseHandler(log, "review_submission_handler"),
		flow:        flow,
	}
}

// Submit stores an unapproved review
// @Summary Submit a review
// @Description The review stays hidden until an admin approves it.
// @Tags Content
// @Accept json
// @Produce json
// @Param request body dto.SubmitReviewRequest true "Review"
// @Success 201 {object} dto.APIResponse "Review submitted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 429 {object} dto.APIResponse "Too many submissions"
// @Router /api/reviews/submit [post]
func (h *ReviewSubmissionHandler) Submit(c fiber.Ctx) error {
	var req dto.SubmitReviewRequest
	if ok, err := h.decode(c, &req); !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/reviews/submit")
	defer cancel()

	review, err := h.flow.Create(ctx, req)
	if err != nil {
		return h.HandleError(c, err, "Failed to submit review")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Review submitted", fiber.Map{"id": review.ID})
}
