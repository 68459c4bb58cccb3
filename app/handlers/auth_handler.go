package handlers

import (
	"github.com/amirphl/dental-clinic/app/dto"
	businessflow "github.com/amirphl/dental-clinic/business_flow"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/gofiber/fiber/v3"
)

// AuthHandler serves admin and CRM authentication
type AuthHandler struct {
	baseHandler
	admin businessflow.AdminAuthFlow
	crm   businessflow.CRMAuthFlow
}

func NewAuthHandler(admin businessflow.AdminAuthFlow, crm businessflow.CRMAuthFlow, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(log, "auth_handler"),
		admin:       admin,
		crm:         crm,
	}
}

// Captcha issues a rotate captcha challenge for the admin login
// @Summary Admin login captcha
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CaptchaChallengeResponse} "Captcha challenge"
// @Failure 404 {object} dto.APIResponse "Captcha is disabled"
// @Router /api/auth/captcha [get]
func (h *AuthHandler) Captcha(c fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "/api/auth/captcha")
	defer cancel()

	challenge, err := h.admin.Captcha(ctx)
	if err != nil {
		return h.HandleError(c, err, "Failed to create captcha")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Captcha created", challenge)
}

// AdminLogin authenticates an admin by email and password
// @Summary Admin login
// @Description Returns a bearer token valid for 24 hours. Unknown email and wrong password give the same answer.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AdminLoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid captcha"
// @Failure 401 {object} dto.APIResponse "Invalid credentials or inactive account"
// @Failure 429 {object} dto.APIResponse "Too many attempts"
// @Router /api/auth/login [post]
func (h *AuthHandler) AdminLogin(c fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if ok, err := h.decode(c, &req); !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/auth/login")
	defer cancel()

	resp, err := h.admin.Login(ctx, &req, h.clientMetadata(c))
	if err != nil {
		return h.HandleError(c, err, "Login failed")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", resp)
}

// AdminMe returns the authenticated admin
// @Summary Current admin
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AdminDTO} "Admin profile"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/auth/me [get]
func (h *AuthHandler) AdminMe(c fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "/api/auth/me")
	defer cancel()

	admin, err := h.admin.Me(ctx, adminID(c))
	if err != nil {
		return h.HandleError(c, err, "Failed to load profile")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Profile retrieved", admin)
}

// CRMLogin authenticates a CRM operator
// @Summary CRM login
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.CRMLoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.CRMLoginResponse} "Login successful"
// @Failure 401 {object} dto.APIResponse "Invalid credentials or inactive account"
// @Failure 429 {object} dto.APIResponse "Too many attempts"
// @Router /api/crm-login [post]
func (h *AuthHandler) CRMLogin(c fiber.Ctx) error {
	var req dto.CRMLoginRequest
	if ok, err := h.decode(c, &req); !ok {
		return err
	}

	ctx, cancel := h.requestContext(c, "/api/crm-login")
	defer cancel()

	resp, err := h.crm.Login(ctx, &req, h.clientMetadata(c))
	if err != nil {
		return h.HandleError(c, err, "Login failed")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", resp)
}

// CRMMe returns the authenticated CRM operator
// @Summary Current CRM user
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CRMUserDTO} "CRM user profile"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/crm/me [get]
func (h *AuthHandler) CRMMe(c fiber.Ctx) error {
	ctx, cancel := h.requestContext(c, "/api/crm/me")
	defer cancel()

	user, err := h.crm.Me(ctx, crmUserID(c))
	if err != nil {
		return h.HandleError(c, err, "Failed to load profile")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Profile retrieved", user)
}
