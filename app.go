package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirphl/dental-clinic/app/dto"
	"github.com/amirphl/dental-clinic/app/handlers"
	"github.com/amirphl/dental-clinic/app/middleware"
	"github.com/amirphl/dental-clinic/app/router"
	"github.com/amirphl/dental-clinic/app/scheduler"
	"github.com/amirphl/dental-clinic/app/services"
	businessflow "github.com/amirphl/dental-clinic/business_flow"
	"github.com/amirphl/dental-clinic/config"
	"github.com/amirphl/dental-clinic/logger"
	"github.com/amirphl/dental-clinic/models"
	"github.com/amirphl/dental-clinic/repository"
	"github.com/amirphl/dental-clinic/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	scheduler *scheduler.Scheduler
	log       logger.Logger
	closers   []func()
}

// Close releases the connections opened by initializeApplication
func (a *Application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func initializeLogger(cfg config.LoggingConfig) logger.Logger {
	return logger.New(logger.Config{
		Level:      cfg.Level,
		Format:     cfg.Format,
		FilePath:   cfg.FilePath,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
}

// initializeDatabase opens the postgres pool. Queries slower than
// SlowQueryTime are logged as warnings.
func initializeDatabase(cfg config.DatabaseConfig, log logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(slog.NewLogLogger(log.Slog().Handler(), slog.LevelWarn), gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryTime,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established",
		"max_open_conns", cfg.MaxOpenConns,
		"max_idle_conns", cfg.MaxIdleConns,
	)
	return db, nil
}

func closeDatabase(db *gorm.DB, log logger.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", "error", err)
	}
}

func migrate(db *gorm.DB, log logger.Logger) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Info("Database schema migrated", "models", len(models.AllModels()))
	return nil
}

// initializeCache connects to Redis. It returns nil when the cache is disabled.
func initializeCache(cfg config.CacheConfig, log logger.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rc := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connection established", "addr", opt.Addr, "db", opt.DB)
	return rc, nil
}

func initializeAttributionStore(cfg *config.ProductionConfig, rc *redis.Client) services.SessionAttributionStore {
	policy := services.AttributionExpiryPolicy{Window: cfg.Attribution.Window}
	if rc == nil {
		return services.NewMemoryAttributionStore(policy, utils.UTCNow)
	}
	return services.NewRedisAttributionStore(rc, cfg.Cache.KeyPrefix+"attribution:", policy, utils.UTCNow)
}

// initializeMediaStorage returns the upload backend and, for the local
// backend, the storage that /uploads/* serves from.
func initializeMediaStorage(ctx context.Context, cfg config.UploadConfig) (services.MediaStorage, *services.LocalMediaStorage, error) {
	if cfg.Backend == config.UploadBackendS3 {
		s3cfg := services.S3StorageConfig{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			KeyPrefix:       cfg.S3KeyPrefix,
			PublicBaseURL:   cfg.PublicBaseURL,
		}
		client, err := services.NewS3Client(ctx, s3cfg)
		if err != nil {
			return nil, nil, err
		}
		storage, err := services.NewS3MediaStorage(client, s3cfg)
		if err != nil {
			return nil, nil, err
		}
		return storage, nil, nil
	}

	local, err := services.NewLocalMediaStorage(cfg.Dir, cfg.PublicBaseURL)
	if err != nil {
		return nil, nil, err
	}
	return local, local, nil
}

func seedConfig(cfg *config.ProductionConfig) businessflow.SeedConfig {
	return businessflow.SeedConfig{
		AdminEmail:     cfg.Admin.Email,
		AdminPassword:  cfg.Admin.Password,
		AdminFullName:  cfg.Admin.FullName,
		CRMUsername:    cfg.CRM.Username,
		CRMPassword:    cfg.CRM.Password,
		CRMDisplayName: cfg.CRM.DisplayName,
		BcryptCost:     cfg.Admin.BcryptCost,
	}
}

// newContentRoutes builds the flow and handler of one content collection
func newContentRoutes[T any, P dto.ContentPayload[T]](db *gorm.DB, collection, visibility string, log logger.Logger) (*handlers.ContentHandler[T, P], businessflow.ContentFlow[T]) {
	flow := businessflow.NewContentFlow[T](collection, repository.NewContentRepository[T](db, visibility), db, log)
	return handlers.NewContentHandler[T, P](flow, log), flow
}

// initializeApplication initializes the main application components
func initializeApplication(ctx context.Context, cfg *config.ProductionConfig) (*Application, error) {
	log := initializeLogger(cfg.Logging)
	app := &Application{log: log}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	db, err := initializeDatabase(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() { closeDatabase(db, log) })

	if cfg.Database.AutoMigrate {
		if err := migrate(db, log); err != nil {
			return nil, err
		}
	}
	if cfg.Seed.AutoSeed {
		seedCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		_, err := businessflow.NewSeedFlow(db, seedConfig(cfg), log).Seed(seedCtx)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("auto seed failed: %w", err)
		}
	}

	rc, err := initializeCache(cfg.Cache, log)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		app.closers = append(app.closers, func() { _ = rc.Close() })
	}

	location := utils.LoadLocationOrUTC(cfg.Attribution.Timezone)

	// Services
	tokens, err := services.NewTokenService(cfg.JWT.AccessTokenTTL, cfg.JWT.Issuer, cfg.JWT.AdminSecret, cfg.JWT.CRMSecret)
	if err != nil {
		return nil, err
	}
	var captcha services.CaptchaService
	if cfg.Captcha.Enabled {
		if captcha, err = services.NewCaptchaServiceRotate(cfg.Captcha.TTL, cfg.Captcha.Padding, cfg.Captcha.ImageSize); err != nil {
			return nil, err
		}
	}
	mediaStorage, localMedia, err := initializeMediaStorage(ctx, cfg.Upload)
	if err != nil {
		return nil, err
	}
	attributionStore := initializeAttributionStore(cfg, rc)

	// Repositories
	campaignRepo := repository.NewCampaignLinkRepository(db)
	leadRepo := repository.NewConsultationFormRepository(db)

	// Flows
	attributionFlow := businessflow.NewAttributionFlow(campaignRepo, attributionStore, cfg.Attribution.DefaultSource, utils.UTCNow, log)
	leadFlow := businessflow.NewConsultationFormFlow(leadRepo, attributionFlow, cfg.Attribution.PhoneRegion, location, log)
	dashboardFlow := businessflow.NewDashboardFlow(leadRepo, campaignRepo, location, cfg.Attribution.StaleLeadAfter, utils.UTCNow, log)
	settingsFlow := businessflow.NewSettingsFlow(repository.NewSettingRepository(db), repository.NewSettingPresetRepository(db), db, log)
	campaignLinkFlow := businessflow.NewCampaignLinkAdminFlow(campaignRepo, cfg.SiteURL, log)
	appointmentFlow := businessflow.NewAppointmentFlow(repository.NewAppointmentRepository(db), cfg.Attribution.PhoneRegion, location, log)
	adminAuthFlow := businessflow.NewAdminAuthFlow(
		repository.NewAdminRepository(db),
		tokens,
		captcha,
		services.NewLoginThrottle(cfg.RateLimit.LoginBurst, cfg.RateLimit.LoginWindow),
		log,
	)
	crmAuthFlow := businessflow.NewCRMAuthFlow(
		repository.NewCRMUserRepository(db),
		tokens,
		services.NewLoginThrottle(cfg.RateLimit.LoginBurst, cfg.RateLimit.LoginWindow),
		log,
	)
	mediaFlow := businessflow.NewMediaFlow(repository.NewMediaAssetRepository(db), mediaStorage, cfg.Upload.MaxBytes, cfg.Upload.MaxWidth, log)

	// Content collections
	doctors, _ := newContentRoutes[models.Doctor, dto.DoctorRequest](db, businessflow.CollectionDoctors, models.VisibilityIsActive, log)
	reviews, reviewFlow := newContentRoutes[models.Review, dto.ReviewRequest](db, businessflow.CollectionReviews, models.VisibilityIsApproved, log)
	faqs, _ := newContentRoutes[models.FAQ, dto.FAQRequest](db, businessflow.CollectionFAQs, models.VisibilityIsActive, log)
	clinicServices, _ := newContentRoutes[models.Service, dto.ServiceRequest](db, businessflow.CollectionServices, models.VisibilityIsActive, log)
	pillSections, _ := newContentRoutes[models.PillSection, dto.PillSectionRequest](db, businessflow.CollectionPillSections, models.VisibilityIsActive, log)
	valueStacking, _ := newContentRoutes[models.ValueStackingItem, dto.ValueStackingItemRequest](db, businessflow.CollectionValueStackingItems, models.VisibilityIsActive, log)
	backgrounds, _ := newContentRoutes[models.SectionBackground, dto.SectionBackgroundRequest](db, businessflow.CollectionSectionBackgrounds, models.VisibilityIsActive, log)
	finalCTA, _ := newContentRoutes[models.FinalCTA, dto.FinalCTARequest](db, businessflow.CollectionFinalCTA, models.VisibilityIsActive, log)

	h := router.Handlers{
		Attribution:       handlers.NewAttributionHandler(attributionFlow, log),
		ConsultationForms: handlers.NewConsultationFormHandler(leadFlow, log),
		Dashboard:         handlers.NewDashboardHandler(dashboardFlow, log),
		Settings:          handlers.NewSettingsHandler(settingsFlow, log),
		CampaignLinks:     handlers.NewCampaignLinkHandler(campaignLinkFlow, log),
		Appointments:      handlers.NewAppointmentHandler(appointmentFlow, log),
		Auth:              handlers.NewAuthHandler(adminAuthFlow, crmAuthFlow, log),
		Uploads:           handlers.NewUploadHandler(mediaFlow, log),
		ReviewSubmissions: handlers.NewReviewSubmissionHandler(reviewFlow, log),
		Content: []router.ContentRoutes{
			doctors, reviews, faqs, clinicServices, pillSections, valueStacking, backgrounds, finalCTA,
		},
	}

	app.router = router.NewFiberRouter(routerConfig(cfg), h, router.Dependencies{
		Auth:       middleware.NewAuthMiddleware(tokens),
		LocalMedia: localMedia,
		Health:     healthCheck(db, rc),
		Log:        log,
	})

	if cfg.Scheduler.Enabled {
		app.scheduler = scheduler.New(dashboardFlow, location, log)
		if err := app.scheduler.SetupJobs(cfg.Scheduler.LeadMetricsSpec); err != nil {
			return nil, err
		}
	}

	ok = true
	return app, nil
}

func routerConfig(cfg *config.ProductionConfig) router.Config {
	return router.Config{
		BodyLimit:         cfg.Server.BodyLimit,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		CORSOrigins:       cfg.Server.CORSOrigins,
		VisitorCookieName: cfg.Attribution.CookieName,
		SecureCookies:     cfg.Server.SecureCookies,
		GeneralRateLimit:  router.RateLimit{Max: cfg.RateLimit.GlobalMax, Window: cfg.RateLimit.Window},
		FormRateLimit:     router.RateLimit{Max: cfg.RateLimit.FormMax, Window: cfg.RateLimit.Window},
		LoginRateLimit:    router.RateLimit{Max: cfg.RateLimit.LoginMax, Window: cfg.RateLimit.Window},
		MetricsEnabled:    cfg.Metrics.Enabled,
		SwaggerEnabled:    cfg.Server.EnableSwagger,
		RequestLogging:    cfg.Server.RequestLogging,
	}
}

func healthCheck(db *gorm.DB, rc *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		var errs []error
		if err := sqlDB.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
		if rc != nil {
			if err := rc.Ping(ctx).Err(); err != nil {
				errs = append(errs, fmt.Errorf("redis: %w", err))
			}
		}
		return errors.Join(errs...)
	}
}
