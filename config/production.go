// Package config provides configuration management and environment variable handling for the application
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Upload backends
const (
	UploadBackendLocal = "local"
	UploadBackendS3    = "s3"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Server      ServerConfig      `json:"server"`
	Database    DatabaseConfig    `json:"database"`
	Cache       CacheConfig       `json:"cache"`
	JWT         JWTConfig         `json:"jwt"`
	Admin       AdminConfig       `json:"admin"`
	CRM         CRMConfig         `json:"crm"`
	Attribution AttributionConfig `json:"attribution"`
	Upload      UploadConfig      `json:"upload"`
	RateLimit   RateLimitConfig   `json:"rate_limit"`
	Captcha     CaptchaConfig     `json:"captcha"`
	Logging     LoggingConfig     `json:"logging"`
	Metrics     MetricsConfig     `json:"metrics"`
	Scheduler   SchedulerConfig   `json:"scheduler"`
	Sentry      SentryConfig      `json:"sentry"`
	Seed        SeedConfig        `json:"seed"`

	// SiteURL is the public site that campaign share links point to
	SiteURL     string `json:"site_url"`
	Environment string `json:"environment"`
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	BodyLimit       int           `json:"body_limit"`
	CORSOrigins     []string      `json:"cors_origins"`
	SecureCookies   bool          `json:"secure_cookies"`
	RequestLogging  bool          `json:"request_logging"`
	EnableSwagger   bool          `json:"enable_swagger"`
}

// Address is the listen address of the HTTP server
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// URL takes precedence over the discrete fields when set
	URL             string        `json:"-"`
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"-"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	SlowQueryTime   time.Duration `json:"slow_query_time"`
	AutoMigrate     bool          `json:"auto_migrate"`
}

// DSN returns the postgres connection string
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type CacheConfig struct {
	Enabled   bool   `json:"enabled"`
	RedisURL  string `json:"-"`
	KeyPrefix string `json:"key_prefix"`
}

type JWTConfig struct {
	AdminSecret    string        `json:"-"`
	CRMSecret      string        `json:"-"`
	AccessTokenTTL time.Duration `json:"access_token_ttl"`
	Issuer         string        `json:"issuer"`
}

// AdminConfig is the administrator created by the seed
type AdminConfig struct {
	Email      string `json:"email"`
	Password   string `json:"-"`
	FullName   string `json:"full_name"`
	BcryptCost int    `json:"bcrypt_cost"`
}

// CRMConfig is the CRM operator created by the seed
type CRMConfig struct {
	Username    string `json:"username"`
	Password    string `json:"-"`
	DisplayName string `json:"display_name"`
}

type AttributionConfig struct {
	Window        time.Duration `json:"window"`
	DefaultSource string        `json:"default_source"`
	CookieName    string        `json:"cookie_name"`
	Timezone      string        `json:"timezone"`
	PhoneRegion   string        `json:"phone_region"`

	// StaleLeadAfter is how long a new lead may wait for a call before the
	// dashboard and the scheduler flag it
	StaleLeadAfter time.Duration `json:"stale_lead_after"`
}

type UploadConfig struct {
	Backend       string `json:"backend"`
	Dir           string `json:"dir"`
	PublicBaseURL string `json:"public_base_url"`
	MaxBytes      int64  `json:"max_bytes"`
	MaxWidth      int    `json:"max_width"`
	S3Bucket      string `json:"s3_bucket"`
	S3Region      string `json:"s3_region"`
	S3Endpoint    string `json:"s3_endpoint"`
	S3AccessKey   string `json:"-"`
	S3SecretKey   string `json:"-"`
	S3KeyPrefix   string `json:"s3_key_prefix"`
}

type RateLimitConfig struct {
	GlobalMax   int           `json:"global_max"`
	FormMax     int           `json:"form_max"`
	LoginMax    int           `json:"login_max"`
	Window      time.Duration `json:"window"`
	LoginBurst  int           `json:"login_burst"`
	LoginWindow time.Duration `json:"login_window"`
}

type CaptchaConfig struct {
	Enabled   bool          `json:"enabled"`
	TTL       time.Duration `json:"ttl"`
	Padding   int           `json:"padding"`
	ImageSize int           `json:"image_size"`
}

type LoggingConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	FilePath   string `json:"file_path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

type MetricsConfig struct {
	Enabled bool `json:"enabled"`
}

type SchedulerConfig struct {
	Enabled         bool   `json:"enabled"`
	LeadMetricsSpec string `json:"lead_metrics_spec"`
}

type SentryConfig struct {
	DSN              string  `json:"-"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
}

type SeedConfig struct {
	AutoSeed bool `json:"auto_seed"`
}

// LoadProductionConfig reads the configuration from the environment. A .env
// file in the working directory is loaded first; it never overrides variables
// that are already set.
func LoadProductionConfig() (*ProductionConfig, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	environment := getEnvString("APP_ENV", "production")
	cfg := &ProductionConfig{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:       getEnvInt("SERVER_BODY_LIMIT", 12*1024*1024),
			CORSOrigins:     getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			SecureCookies:   getEnvBool("SECURE_COOKIES", environment == "production"),
			RequestLogging:  getEnvBool("REQUEST_LOGGING", true),
			EnableSwagger:   getEnvBool("ENABLE_SWAGGER", environment != "production"),
		},
		Database: DatabaseConfig{
			URL:             getEnvString("DATABASE_URL", ""),
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "clinic"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
			SlowQueryTime:   getEnvDuration("DB_SLOW_QUERY_TIME", time.Second),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Cache: CacheConfig{
			Enabled:   getEnvBool("CACHE_ENABLED", false),
			RedisURL:  getEnvString("REDIS_URL", "redis://localhost:6379/0"),
			KeyPrefix: getEnvString("CACHE_KEY_PREFIX", "clinic:"),
		},
		JWT: JWTConfig{
			AdminSecret:    getEnvString("JWT_SECRET", ""),
			CRMSecret:      getEnvString("CRM_JWT_SECRET", ""),
			AccessTokenTTL: getEnvDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),
			Issuer:         getEnvString("JWT_ISSUER", "dental-clinic"),
		},
		Admin: AdminConfig{
			Email:      getEnvString("ADMIN_EMAIL", ""),
			Password:   getEnvString("ADMIN_PASSWORD", ""),
			FullName:   getEnvString("ADMIN_FULL_NAME", "Administrator"),
			BcryptCost: getEnvInt("BCRYPT_COST", 12),
		},
		CRM: CRMConfig{
			Username:    getEnvString("CRM_USERNAME", ""),
			Password:    getEnvString("CRM_PASSWORD", ""),
			DisplayName: getEnvString("CRM_DISPLAY_NAME", "CRM"),
		},
		Attribution: AttributionConfig{
			Window:         getEnvDuration("ATTRIBUTION_WINDOW", 30*24*time.Hour),
			DefaultSource:  getEnvString("ATTRIBUTION_DEFAULT_SOURCE", "Direct Visit"),
			CookieName:     getEnvString("VISITOR_COOKIE_NAME", "visitor_id"),
			Timezone:       getEnvString("CLINIC_TIMEZONE", "Asia/Tashkent"),
			PhoneRegion:    getEnvString("PHONE_DEFAULT_REGION", "UZ"),
			StaleLeadAfter: getEnvDuration("STALE_LEAD_AFTER", 24*time.Hour),
		},
		Upload: UploadConfig{
			Backend:       strings.ToLower(getEnvString("UPLOAD_BACKEND", UploadBackendLocal)),
			Dir:           getEnvString("UPLOAD_DIR", "./uploads"),
			PublicBaseURL: getEnvString("UPLOAD_PUBLIC_BASE_URL", "/uploads"),
			MaxBytes:      int64(getEnvInt("UPLOAD_MAX_BYTES", 10*1024*1024)),
			MaxWidth:      getEnvInt("UPLOAD_MAX_WIDTH", 1920),
			S3Bucket:      getEnvString("S3_BUCKET", ""),
			S3Region:      getEnvString("S3_REGION", "us-east-1"),
			S3Endpoint:    getEnvString("S3_ENDPOINT", ""),
			S3AccessKey:   getEnvString("S3_ACCESS_KEY_ID", ""),
			S3SecretKey:   getEnvString("S3_SECRET_ACCESS_KEY", ""),
			S3KeyPrefix:   getEnvString("S3_KEY_PREFIX", "uploads"),
		},
		RateLimit: RateLimitConfig{
			GlobalMax:   getEnvInt("GLOBAL_RATE_LIMIT", 600),
			FormMax:     getEnvInt("FORM_RATE_LIMIT", 10),
			LoginMax:    getEnvInt("LOGIN_RATE_LIMIT", 20),
			Window:      getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
			LoginBurst:  getEnvInt("LOGIN_THROTTLE_BURST", 5),
			LoginWindow: getEnvDuration("LOGIN_THROTTLE_WINDOW", 15*time.Minute),
		},
		Captcha: CaptchaConfig{
			Enabled:   getEnvBool("CAPTCHA_ENABLED", false),
			TTL:       getEnvDuration("CAPTCHA_TTL", 2*time.Minute),
			Padding:   getEnvInt("CAPTCHA_PADDING", 10),
			ImageSize: getEnvInt("CAPTCHA_IMAGE_SIZE", 220),
		},
		Logging: LoggingConfig{
			Level:      strings.ToLower(getEnvString("LOG_LEVEL", "info")),
			Format:     strings.ToLower(getEnvString("LOG_FORMAT", "json")),
			FilePath:   getEnvString("LOG_FILE_PATH", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
		Scheduler: SchedulerConfig{
			Enabled:         getEnvBool("SCHEDULER_ENABLED", true),
			LeadMetricsSpec: getEnvString("LEAD_METRICS_CRON", "@every 5m"),
		},
		Sentry: SentryConfig{
			DSN:              getEnvString("SENTRY_DSN", ""),
			Environment:      getEnvString("SENTRY_ENVIRONMENT", environment),
			TracesSampleRate: getEnvFloat("SENTRY_TRACES_SAMPLE_RATE", 0),
		},
		Seed: SeedConfig{
			AutoSeed: getEnvBool("AUTO_SEED", false),
		},
		SiteURL:     getEnvString("SITE_URL", "http://localhost:3000"),
		Environment: environment,
	}

	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateProductionConfig checks every group and reports all problems at once
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		add("SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		add("SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		add("SERVER_WRITE_TIMEOUT must be positive")
	}
	if cfg.Server.BodyLimit <= 0 {
		add("SERVER_BODY_LIMIT must be positive")
	}
	if cfg.Upload.MaxBytes > int64(cfg.Server.BodyLimit) {
		add("UPLOAD_MAX_BYTES must not exceed SERVER_BODY_LIMIT")
	}

	if cfg.Database.URL == "" {
		if cfg.Database.Host == "" {
			add("DB_HOST is required")
		}
		if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
			add("DB_PORT must be between 1 and 65535")
		}
		if cfg.Database.Name == "" {
			add("DB_NAME is required")
		}
		if cfg.Database.User == "" {
			add("DB_USER is required")
		}
	}

	if cfg.Cache.Enabled {
		if _, err := url.Parse(cfg.Cache.RedisURL); err != nil || cfg.Cache.RedisURL == "" {
			add("REDIS_URL must be a valid URL when CACHE_ENABLED is true")
		}
	}

	if len(cfg.JWT.AdminSecret) < 32 {
		add("JWT_SECRET must be at least 32 characters long")
	}
	if len(cfg.JWT.CRMSecret) < 32 {
		add("CRM_JWT_SECRET must be at least 32 characters long")
	}
	if cfg.JWT.AdminSecret != "" && cfg.JWT.AdminSecret == cfg.JWT.CRMSecret {
		add("CRM_JWT_SECRET must differ from JWT_SECRET")
	}
	if cfg.JWT.AccessTokenTTL <= 0 {
		add("JWT_ACCESS_TOKEN_TTL must be positive")
	}
	if cfg.JWT.Issuer == "" {
		add("JWT_ISSUER is required")
	}
	if cfg.Admin.BcryptCost < 10 || cfg.Admin.BcryptCost > 14 {
		add("BCRYPT_COST must be between 10 and 14")
	}

	if cfg.Attribution.Window <= 0 {
		add("ATTRIBUTION_WINDOW must be positive")
	}
	if _, err := time.LoadLocation(cfg.Attribution.Timezone); err != nil {
		add("CLINIC_TIMEZONE %q is not a known time zone", cfg.Attribution.Timezone)
	}
	if cfg.Attribution.CookieName == "" {
		add("VISITOR_COOKIE_NAME is required")
	}

	switch cfg.Upload.Backend {
	case UploadBackendLocal:
		if cfg.Upload.Dir == "" {
			add("UPLOAD_DIR is required for the local upload backend")
		}
	case UploadBackendS3:
		if cfg.Upload.S3Bucket == "" {
			add("S3_BUCKET is required for the s3 upload backend")
		}
	default:
		add("UPLOAD_BACKEND must be one of: %s, %s", UploadBackendLocal, UploadBackendS3)
	}
	if cfg.Upload.MaxBytes <= 0 {
		add("UPLOAD_MAX_BYTES must be positive")
	}
	if cfg.Upload.MaxWidth <= 0 {
		add("UPLOAD_MAX_WIDTH must be positive")
	}

	if cfg.RateLimit.GlobalMax < 0 || cfg.RateLimit.FormMax < 0 || cfg.RateLimit.LoginMax < 0 {
		add("rate limits must not be negative")
	}
	if cfg.RateLimit.Window <= 0 {
		add("RATE_LIMIT_WINDOW must be positive")
	}

	if validLevels := []string{"debug", "info", "warn", "error"}; !slices.Contains(validLevels, cfg.Logging.Level) {
		add("LOG_LEVEL must be one of: %v", validLevels)
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		add("LOG_FORMAT must be json or text")
	}

	if cfg.Scheduler.Enabled && cfg.Scheduler.LeadMetricsSpec == "" {
		add("LEAD_METRICS_CRON is required when the scheduler is enabled")
	}
	if cfg.Sentry.TracesSampleRate < 0 || cfg.Sentry.TracesSampleRate > 1 {
		add("SENTRY_TRACES_SAMPLE_RATE must be between 0 and 1")
	}

	if _, err := url.ParseRequestURI(cfg.SiteURL); err != nil {
		add("SITE_URL must be an absolute URL")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}
