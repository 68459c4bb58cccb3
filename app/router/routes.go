// Package router provides HTTP routing, middleware configuration, and server setup for the clinic API
package router

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/app/handlers"
	"github.com/amirphl/dental-clinic/app/middleware"
	"github.com/amirphl/dental-clinic/app/services"
	"github.com/amirphl/dental-clinic/docs"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	Shutdown(ctx context.Context) error
	GetApp() *fiber.App
}

// RateLimit allows Max requests per Window and client IP. Max 0 disables it.
type RateLimit struct {
	Max    int
	Window time.Duration
}

// Config holds the HTTP server settings
type Config struct {
	AppName           string
	BodyLimit         int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	CORSOrigins       []string
	VisitorCookieName string
	SecureCookies     bool
	GeneralRateLimit  RateLimit
	FormRateLimit     RateLimit
	LoginRateLimit    RateLimit
	MetricsEnabled    bool
	SwaggerEnabled    bool
	RequestLogging    bool
}

// ContentRoutes is the route set of one content collection
type ContentRoutes interface {
	Collection() string
	ListPublic(c fiber.Ctx) error
	ListAdmin(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	AdminGet(c fiber.Ctx) error
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	Reorder(c fiber.Ctx) error
}

// Handlers groups every handler the router mounts
type Handlers struct {
	Attribution       handlers.AttributionHandlerInterface
	ConsultationForms handlers.ConsultationFormHandlerInterface
	Dashboard         *handlers.DashboardHandler
	Settings          *handlers.SettingsHandler
	CampaignLinks     *handlers.CampaignLinkHandler
	Appointments      *handlers.AppointmentHandler
	Auth              *handlers.AuthHandler
	Uploads           *handlers.UploadHandler
	ReviewSubmissions *handlers.ReviewSubmissionHandler
	Content           []ContentRoutes
}

// Dependencies are the non-handler collaborators of the router
type Dependencies struct {
	Auth *middleware.AuthMiddleware
	// LocalMedia serves /uploads/* when uploads are stored on disk
	LocalMedia *services.LocalMediaStorage
	// Health reports the readiness of the backing stores
	Health func(ctx context.Context) error
	Log    logger.Logger
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app      *fiber.App
	cfg      Config
	handlers Handlers
	deps     Dependencies
	log      logger.Logger
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(cfg Config, h Handlers, deps Dependencies) Router {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "router")

	if cfg.AppName == "" {
		cfg.AppName = "Dental Clinic API"
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 12 * 1024 * 1024
	}

	r := &FiberRouter{
		cfg:      cfg,
		handlers: h,
		deps:     deps,
		log:      log,
	}
	r.app = fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: "dental-clinic",
		ErrorHandler: r.errorHandler,
		BodyLimit:    cfg.BodyLimit,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
	return r
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	r.setupMiddleware()

	r.app.Get("/health", r.healthCheck)
	if r.cfg.MetricsEnabled {
		r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}
	if r.cfg.SwaggerEnabled {
		r.app.Get("/swagger/doc.json", cache.New(cache.Config{
			Expiration:          time.Hour,
			DisableCacheControl: false,
		}), r.serveSwaggerJSON)
	}
	if r.deps.LocalMedia != nil {
		r.app.Get("/uploads/*", r.serveUpload)
	}

	api := r.app.Group("/api")
	if r.cfg.MetricsEnabled {
		api.Use(middleware.Metrics())
	}
	if h := r.rateLimit(r.cfg.GeneralRateLimit); h != nil {
		api.Use(h)
	}
	api.Use(middleware.Visitor(middleware.VisitorConfig{
		CookieName: r.cfg.VisitorCookieName,
		Secure:     r.cfg.SecureCookies,
	}))

	r.setupAuthRoutes(api)
	r.setupAttributionRoutes(api)
	r.setupLeadRoutes(api)
	r.setupSettingsRoutes(api)
	r.setupContentRoutes(api)
	r.setupAppointmentRoutes(api)
	r.setupAdminRoutes(api)

	r.app.Use(r.notFoundHandler)

	r.log.Info("Routes configured")
}

// limitedPost registers a POST route guarded by the limiter of rl
func (r *FiberRouter) limitedPost(router fiber.Router, rl RateLimit, path string, handler fiber.Handler) {
	if lim := r.rateLimit(rl); lim != nil {
		router.Post(path, lim, handler)
		return
	}
	router.Post(path, handler)
}

func (r *FiberRouter) setupAuthRoutes(api fiber.Router) {
	h := r.handlers.Auth
	if h == nil {
		return
	}
	auth := r.deps.Auth

	api.Get("/auth/captcha", h.Captcha)
	r.limitedPost(api, r.cfg.LoginRateLimit, "/auth/login", h.AdminLogin)
	api.Get("/auth/me", auth.AdminAuthenticate(), h.AdminMe)

	r.limitedPost(api, r.cfg.LoginRateLimit, "/crm-login", h.CRMLogin)
	api.Get("/crm/me", auth.CRMAuthenticate(), h.CRMMe)
}

func (r *FiberRouter) setupAttributionRoutes(api fiber.Router) {
	h := r.handlers.Attribution
	if h == nil {
		return
	}
	api.Post("/attribution/capture", h.Capture)
	api.Get("/attribution", h.StoredSource)
	api.Post("/campaigns/increment-click", h.IncrementClick)
	api.Get("/campaigns/:code", h.GetCampaign)
}

func (r *FiberRouter) setupLeadRoutes(api fiber.Router) {
	staff := r.deps.Auth.AdminOrCRM()

	if h := r.handlers.Dashboard; h != nil {
		api.Get("/crm/dashboard", staff, h.GetDashboard)
	}

	h := r.handlers.ConsultationForms
	if h == nil {
		return
	}
	r.limitedPost(api, r.cfg.FormRateLimit, "/consultation-forms", h.Submit)
	api.Get("/consultation-forms", staff, h.List)
	api.Get("/consultation-forms/sources", staff, h.Sources)
	api.Get("/consultation-forms/export", staff, h.Export)
	api.Get("/consultation-forms/:id", staff, h.Get)
	api.Patch("/consultation-forms/:id", staff, h.Update)
}

func (r *FiberRouter) setupSettingsRoutes(api fiber.Router) {
	h := r.handlers.Settings
	if h == nil {
		return
	}
	admin := r.deps.Auth.AdminAuthenticate()

	// static segments before :key
	api.Get("/settings", h.List)
	api.Get("/settings/site", h.SiteSettings)
	api.Get("/settings/presets", admin, h.ListPresets)
	api.Post("/settings/presets", admin, h.CreatePreset)
	api.Post("/settings/presets/:id/apply", admin, h.ApplyPreset)
	api.Delete("/settings/presets/:id", admin, h.DeletePreset)
	api.Post("/settings/bulk", admin, h.BulkUpsert)
	api.Get("/settings/:key", h.Get)
	api.Put("/settings/:key", admin, h.Upsert)
	api.Delete("/settings/:key", admin, h.Delete)
}

func (r *FiberRouter) setupContentRoutes(api fiber.Router) {
	admin := r.deps.Auth.AdminAuthenticate()

	if h := r.handlers.ReviewSubmissions; h != nil {
		r.limitedPost(api, r.cfg.FormRateLimit, "/reviews/submit", h.Submit)
	}

	for _, h := range r.handlers.Content {
		public := "/" + h.Collection()
		adminPath := "/admin/" + h.Collection()

		api.Put(adminPath+"/reorder", admin, h.Reorder)
		api.Get(adminPath, admin, h.ListAdmin)
		api.Get(adminPath+"/:id", admin, h.AdminGet)

		api.Get(public, h.ListPublic)
		api.Post(public, admin, h.Create)
		api.Get(public+"/:id", h.Get)
		api.Put(public+"/:id", admin, h.Update)
		api.Delete(public+"/:id", admin, h.Delete)
	}
}

func (r *FiberRouter) setupAppointmentRoutes(api fiber.Router) {
	h := r.handlers.Appointments
	if h == nil {
		return
	}
	admin := r.deps.Auth.AdminAuthenticate()

	r.limitedPost(api, r.cfg.FormRateLimit, "/appointments", h.Create)
	api.Get("/admin/appointments", admin, h.List)
	api.Patch("/admin/appointments/:id", admin, h.UpdateStatus)
	api.Delete("/admin/appointments/:id", admin, h.Delete)
}

func (r *FiberRouter) setupAdminRoutes(api fiber.Router) {
	admin := r.deps.Auth.AdminAuthenticate()

	if h := r.handlers.CampaignLinks; h != nil {
		api.Get("/admin/campaign-links", admin, h.List)
		api.Post("/admin/campaign-links", admin, h.Create)
		api.Get("/admin/campaign-links/:id", admin, h.Get)
		api.Put("/admin/campaign-links/:id", admin, h.Update)
		api.Delete("/admin/campaign-links/:id", admin, h.Delete)
	}
	if h := r.handlers.Uploads; h != nil {
		api.Post("/admin/uploads", admin, h.Upload)
	}
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: generateRequestID,
	}))
	r.app.Use(func(c fiber.Ctx) error {
		c.Locals(utils.RequestIDKey, requestid.FromContext(c))
		return c.Next()
	})

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000,
		ContentSecurityPolicy:     "default-src 'self'; img-src 'self' data: https:; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "unsafe-none",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	origins := r.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch,
			fiber.MethodDelete, fiber.MethodHead, fiber.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		// credentials cannot be combined with a wildcard origin
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           utils.CORSMaxAge,
	}))

	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/uploads/")
		},
	}))

	if r.cfg.RequestLogging {
		r.app.Use(fiberlogger.New(fiberlogger.Config{
			Format:     `{"time":"${time}","request_id":"${respHeader:X-Request-ID}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/health" || c.Path() == "/metrics"
			},
		}))
	}

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			r.log.Error("panic recovered",
				"error", e,
				"request_id", c.Locals(utils.RequestIDKey),
				"path", c.Path(),
				"method", c.Method(),
			)
		},
	}))
}

func (r *FiberRouter) rateLimit(rl RateLimit) fiber.Handler {
	if rl.Max <= 0 {
		return nil
	}
	window := rl.Window
	if window <= 0 {
		window = time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        rl.Max,
		Expiration: window,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
	})
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	r.log.Info("Starting server", "address", address)
	return r.app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting connections and waits for in-flight requests
func (r *FiberRouter) Shutdown(ctx context.Context) error {
	return r.app.ShutdownWithContext(ctx)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	data := fiber.Map{
		"status":    "ok",
		"timestamp": utils.UTCNow().Unix(),
		"service":   "dental-clinic-api",
	}
	if r.deps.Health != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.deps.Health(ctx); err != nil {
			r.log.Warn("health check failed", "error", err)
			data["status"] = "degraded"
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.APIResponse{
				Success: false,
				Message: "Service is unavailable",
				Data:    data,
				Error:   dto.ErrorDetail{Code: "SERVICE_UNAVAILABLE"},
			})
		}
	}
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data:    data,
	})
}

func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := docs.ReadDoc()
	if err != nil {
		return r.errorHandler(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.SendString(doc)
}

// serveUpload sends a locally stored upload. Keys escaping the upload
// directory are answered with 404.
func (r *FiberRouter) serveUpload(c fiber.Ctx) error {
	path, err := r.deps.LocalMedia.ResolvePath(c.Params("*"))
	if err != nil {
		return r.notFoundHandler(c)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return r.notFoundHandler(c)
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.SendFile(path)
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": c.Locals(utils.RequestIDKey),
			},
		},
	})
}

// errorHandler answers errors that escaped the handlers. Server errors are
// reported to Sentry and never expose their cause.
func (r *FiberRouter) errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	if code >= fiber.StatusInternalServerError {
		r.log.Error("request failed",
			"error", err,
			"status", code,
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.Locals(utils.RequestIDKey),
		)
		sentry.CaptureException(err)
		return c.Status(code).JSON(dto.APIResponse{
			Success: false,
			Message: "An internal server error occurred",
			Error: dto.ErrorDetail{
				Code: "INTERNAL_ERROR",
				Details: fiber.Map{
					"request_id": c.Locals(utils.RequestIDKey),
				},
			},
		})
	}

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: fe.Message,
		Error: dto.ErrorDetail{
			Code: strings.ToUpper(strings.ReplaceAll(http.StatusText(code), " ", "_")),
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
