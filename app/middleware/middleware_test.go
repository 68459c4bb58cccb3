package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirphl/dental-clinic/app/services"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAdminSecret = "admin-secret-0123456789"
	testCRMSecret   = "crm-secret-0123456789"
	testIssuer      = "clinic-test"
)

func newTestAuth(t *testing.T) (*AuthMiddleware, services.TokenService) {
	tokens, err := services.NewTokenService(time.Hour, testIssuer, testAdminSecret, testCRMSecret)
	require.NoError(t, err)
	return NewAuthMiddleware(tokens), tokens
}

func newAuthApp(auth *AuthMiddleware) *fiber.App {
	app := fiber.New()
	whoami := func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"role":        c.Locals(utils.AuthRoleKey),
			"admin_id":    c.Locals(utils.AdminIDKey),
			"crm_user_id": c.Locals(utils.CRMUserIDKey),
		})
	}
	app.Get("/admin", auth.AdminAuthenticate(), whoami)
	app.Get("/crm", auth.CRMAuthenticate(), whoami)
	app.Get("/leads", auth.AdminOrCRM(), whoami)
	return app
}

type authBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
	Role      string `json:"role"`
	AdminID   uint   `json:"admin_id"`
	CRMUserID uint   `json:"crm_user_id"`
}

func call(t *testing.T, app *fiber.App, path, authorization string) (int, authBody) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body authBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func expiredToken(t *testing.T, secret, audience string) string {
	past := time.Now().Add(-2 * time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_id":   1,
		"token_type": "access",
		"jti":        "expired",
		"iat":        past.Add(-time.Hour).Unix(),
		"exp":        past.Unix(),
		"iss":        testIssuer,
		"aud":        audience,
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	auth, tokens := newTestAuth(t)
	app := newAuthApp(auth)

	adminToken, _, err := tokens.GenerateAdminToken(7)
	require.NoError(t, err)
	crmToken, _, err := tokens.GenerateCRMToken(3)
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		header  string
		status  int
		code    string
		role    string
		adminID uint
		crmUser uint
	}{
		{name: "missing header", path: "/admin", status: 401, code: "MISSING_AUTHORIZATION_HEADER"},
		{name: "basic scheme", path: "/admin", header: "Basic abc", status: 401, code: "INVALID_AUTHORIZATION_FORMAT"},
		{name: "empty bearer", path: "/admin", header: "Bearer ", status: 401, code: "INVALID_AUTHORIZATION_FORMAT"},
		{name: "garbage token", path: "/admin", header: "Bearer not-a-jwt", status: 401, code: "TOKEN_INVALID"},
		{name: "expired admin token", path: "/admin", header: "Bearer " + expiredToken(t, testAdminSecret, services.AudienceAdmin), status: 401, code: "TOKEN_EXPIRED"},
		{name: "admin token", path: "/admin", header: "Bearer " + adminToken, status: 200, role: RoleAdmin, adminID: 7},
		{name: "crm token on admin route", path: "/admin", header: "Bearer " + crmToken, status: 401, code: "TOKEN_INVALID"},
		{name: "admin token on crm route", path: "/crm", header: "Bearer " + adminToken, status: 401, code: "TOKEN_INVALID"},
		{name: "crm token", path: "/crm", header: "Bearer " + crmToken, status: 200, role: RoleCRM, crmUser: 3},
		{name: "either accepts admin", path: "/leads", header: "Bearer " + adminToken, status: 200, role: RoleAdmin, adminID: 7},
		{name: "either accepts crm", path: "/leads", header: "Bearer " + crmToken, status: 200, role: RoleCRM, crmUser: 3},
		{name: "either rejects garbage", path: "/leads", header: "Bearer x.y.z", status: 401, code: "TOKEN_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, tt.path, tt.header)
			assert.Equal(t, tt.status, status)
			if tt.code != "" {
				assert.False(t, body.Success)
				assert.Equal(t, tt.code, body.Error.Code)
				return
			}
			assert.Equal(t, tt.role, body.Role)
			assert.Equal(t, tt.adminID, body.AdminID)
			assert.Equal(t, tt.crmUser, body.CRMUserID)
		})
	}
}

func TestVisitorCookie(t *testing.T) {
	app := fiber.New()
	app.Use(Visitor(VisitorConfig{}))
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString(VisitorID(c))
	})

	t.Run("issues a cookie", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		cookies := resp.Cookies()
		require.Len(t, cookies, 1)
		c := cookies[0]
		assert.Equal(t, DefaultVisitorCookieName, c.Name)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, utils.VisitorCookieMaxAge, c.MaxAge)
		_, err = uuid.Parse(c.Value)
		assert.NoError(t, err)
	})

	t.Run("keeps a valid cookie", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultVisitorCookieName, Value: id})
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Empty(t, resp.Cookies())
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, id, string(body))
	})

	t.Run("replaces a forged cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultVisitorCookieName, Value: "../../etc"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Len(t, resp.Cookies(), 1)
		assert.NotEqual(t, "../../etc", resp.Cookies()[0].Value)
	})
}
