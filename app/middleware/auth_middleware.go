// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/app/services"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/gofiber/fiber/v3"
)

// Auth roles stored under utils.AuthRoleKey
const (
	RoleAdmin = "admin"
	RoleCRM   = "crm"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

func unauthorized(c fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: code},
	})
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
// When ok is false the 401 response has already been written.
func bearerToken(c fiber.Ctx) (token string, ok bool, err error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false, unauthorized(c, "MISSING_AUTHORIZATION_HEADER", "Authorization header is required")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false, unauthorized(c, "INVALID_AUTHORIZATION_FORMAT", "Invalid authorization header format. Expected 'Bearer <token>'")
	}

	token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false, unauthorized(c, "INVALID_AUTHORIZATION_FORMAT", "Access token is required")
	}
	return token, true, nil
}

func tokenError(c fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrTokenExpired) {
		return unauthorized(c, "TOKEN_EXPIRED", "Access token has expired")
	}
	return unauthorized(c, "TOKEN_INVALID", "Invalid access token")
}

// AdminAuthenticate validates admin JWTs and sets admin_id
func (m *AuthMiddleware) AdminAuthenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok, err := bearerToken(c)
		if !ok {
			return err
		}

		claims, err := m.tokenService.ValidateAdminToken(token)
		if err != nil {
			return tokenError(c, err)
		}

		c.Locals(utils.AdminIDKey, claims.AdminID)
		c.Locals(utils.AuthRoleKey, RoleAdmin)
		return c.Next()
	}
}

// CRMAuthenticate validates CRM JWTs and sets crm_user_id
func (m *AuthMiddleware) CRMAuthenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok, err := bearerToken(c)
		if !ok {
			return err
		}

		claims, err := m.tokenService.ValidateCRMToken(token)
		if err != nil {
			return tokenError(c, err)
		}

		c.Locals(utils.CRMUserIDKey, claims.CRMUserID)
		c.Locals(utils.AuthRoleKey, RoleCRM)
		return c.Next()
	}
}

// AdminOrCRM accepts either an admin or a CRM token. Admin and CRM tokens
// are signed with different secrets, so at most one validation succeeds.
func (m *AuthMiddleware) AdminOrCRM() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok, err := bearerToken(c)
		if !ok {
			return err
		}

		adminClaims, adminErr := m.tokenService.ValidateAdminToken(token)
		if adminErr == nil {
			c.Locals(utils.AdminIDKey, adminClaims.AdminID)
			c.Locals(utils.AuthRoleKey, RoleAdmin)
			return c.Next()
		}

		crmClaims, crmErr := m.tokenService.ValidateCRMToken(token)
		if crmErr == nil {
			c.Locals(utils.CRMUserIDKey, crmClaims.CRMUserID)
			c.Locals(utils.AuthRoleKey, RoleCRM)
			return c.Next()
		}

		if errors.Is(adminErr, services.ErrTokenExpired) || errors.Is(crmErr, services.ErrTokenExpired) {
			return tokenError(c, services.ErrTokenExpired)
		}
		return tokenError(c, crmErr)
	}
}
