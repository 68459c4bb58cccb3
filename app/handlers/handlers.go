// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/amirphl/dental-clinic/app/dto"
	businessflow "github.com/amirphl/dental-clinic/business_flow"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// DefaultRequestTimeout bounds the business call of every request
const DefaultRequestTimeout = 30 * time.Second

// baseHandler carries what every handler needs to answer a request
type baseHandler struct {
	validator *validator.Validate
	log       logger.Logger
	timeout   time.Duration
}

func newBaseHandler(log logger.Logger, component string) baseHandler {
	if log == nil {
		log = logger.Nop()
	}
	return baseHandler{
		validator: validator.New(),
		log:       log.With("component", component),
		timeout:   DefaultRequestTimeout,
	}
}

// ErrorResponse standard JSON error
func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse standard JSON success
func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// PagedResponse is a success response carrying a pagination block
func (h *baseHandler) PagedResponse(c fiber.Ctx, message string, data any, pagination dto.Pagination) error {
	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: &pagination,
	})
}

// errorStatus maps a business error to its HTTP status
func errorStatus(err error) int {
	switch {
	case businessflow.IsTooManyAttempts(err):
		return fiber.StatusTooManyRequests
	case businessflow.IsUnauthorized(err):
		return fiber.StatusUnauthorized
	case businessflow.IsValidationError(err):
		return fiber.StatusBadRequest
	case businessflow.IsNotFound(err):
		return fiber.StatusNotFound
	case businessflow.IsConflict(err):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// HandleError answers with the status of err. Server errors are logged,
// reported to Sentry and hidden behind fallbackMessage.
func (h *baseHandler) HandleError(c fiber.Ctx, err error, fallbackMessage string) error {
	status := errorStatus(err)
	be, isBusiness := businessflow.AsBusinessError(err)

	if status == fiber.StatusInternalServerError {
		h.log.Error(fallbackMessage,
			"error", err,
			"method", c.Method(),
			"path", c.Path(),
			"request_id", requestID(c),
		)
		sentry.CaptureException(err)
		return h.ErrorResponse(c, status, fallbackMessage, "INTERNAL_ERROR", nil)
	}

	if !isBusiness {
		return h.ErrorResponse(c, status, err.Error(), "REQUEST_FAILED", nil)
	}
	return h.ErrorResponse(c, status, be.Message, be.Code, nil)
}

// decode binds the JSON body into req and validates it. When it returns false
// the 400 response has already been written and err must be returned as is.
func (h *baseHandler) decode(c fiber.Ctx, req any) (bool, error) {
	if err := c.Bind().JSON(req); err != nil {
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	return h.validate(c, req)
}

func (h *baseHandler) validate(c fiber.Ctx, req any) (bool, error) {
	err := h.validator.Struct(req)
	if err == nil {
		return true, nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, getValidationErrorMessage(fe))
	}
	return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", messages)
}

// idParam parses a positive numeric path parameter. When it returns false the
// 400 response has already been written.
func (h *baseHandler) idParam(c fiber.Ctx, name string) (uint, bool, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false, h.ErrorResponse(c, fiber.StatusBadRequest, fmt.Sprintf("%s must be a positive integer", name), "INVALID_ID", nil)
	}
	return uint(id), true, nil
}

// requestContext derives the context of the business call from the request.
// The caller must call cancel.
func (h *baseHandler) requestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, requestID(c))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, h.timeout)
	return ctx, cancel
}

func (h *baseHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	md := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	md.SetRequestID(requestID(c))
	if visitorID, ok := c.Locals(utils.VisitorIDKey).(string); ok {
		md.SetSessionID(visitorID)
	}
	return md
}

func requestID(c fiber.Ctx) string {
	if id, ok := c.Locals(utils.RequestIDKey).(string); ok && id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}

func adminID(c fiber.Ctx) uint {
	id, _ := c.Locals(utils.AdminIDKey).(uint)
	return id
}

func crmUserID(c fiber.Ctx) uint {
	id, _ := c.Locals(utils.CRMUserIDKey).(uint)
	return id
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
