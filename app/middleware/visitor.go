package middleware

import (
	"github.com/amirphl/dental-clinic/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// DefaultVisitorCookieName is the cookie that keys a visitor's attribution session
const DefaultVisitorCookieName = "visitor_id"

// VisitorConfig configures the visitor session cookie
type VisitorConfig struct {
	CookieName string
	Secure     bool
}

// Visitor makes sure every request carries a visitor session id. A missing or
// malformed cookie is replaced by a fresh UUID valid for 30 days. The id is
// available as c.Locals(utils.VisitorIDKey).
func Visitor(cfg VisitorConfig) fiber.Handler {
	name := cfg.CookieName
	if name == "" {
		name = DefaultVisitorCookieName
	}

	return func(c fiber.Ctx) error {
		visitorID := c.Cookies(name)
		if _, err := uuid.Parse(visitorID); err != nil {
			visitorID = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     name,
				Value:    visitorID,
				Path:     "/",
				MaxAge:   utils.VisitorCookieMaxAge,
				Secure:   cfg.Secure,
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		c.Locals(utils.VisitorIDKey, visitorID)
		return c.Next()
	}
}

// VisitorID returns the session id set by Visitor, or "" outside of it
func VisitorID(c fiber.Ctx) string {
	id, _ := c.Locals(utils.VisitorIDKey).(string)
	return id
}
