package config

import (
	"os"
	"strconv"
	"time"
)

// DefaultThumbnailURL is the stock image used when an article is submitted without one.
const DefaultThumbnailURL = "https://sun9-14.userapi.com/c851336/v851336298/154110/Q_2YL1-RMoA.jpg"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // text or json; empty picks by environment

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string // sqlite://path/to/file.sqlite or postgres://...

	// TLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string
	TLSCAFile   string // Enables mTLS when set

	// Session
	SessionSecret string // Used for encrypting cookies (min 32 chars)
	RedisURL      string // Optional shared session storage

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Rate limiting (requests per minute per IP)
	RateLimitMax int

	// Moderator promotion job
	ReconcileInterval time.Duration

	// Articles
	DefaultThumbnailURL string

	// OIDC single sign-on (optional)
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// SMTP notifications (optional)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // none, starttls, tls

	// Site Branding
	SiteTitle   string // env: SITE_TITLE, default: "Bad UI collection"
	SiteTagline string
	SiteFooter  string

	// ConfigFile is the optional YAML file with page content.
	ConfigFile string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", ""),
		ServerAddr:          getEnv("SERVER_ADDR", ":3000"),
		BaseURL:             getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL:         getEnv("DATABASE_URL", "sqlite://db/bad_ui.sqlite"),
		TLSEnabled:          getEnv("TLS_ENABLED", "") != "",
		TLSCertFile:         getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:          getEnv("TLS_KEY_FILE", ""),
		TLSCAFile:           getEnv("TLS_CA_FILE", ""),
		SessionSecret:       getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		RedisURL:            getEnv("REDIS_URL", ""),
		CORSOrigins:         getEnv("CORS_ORIGINS", ""),
		RateLimitMax:        getEnvInt("RATE_LIMIT_MAX", 100),
		ReconcileInterval:   getEnvDuration("RECONCILE_INTERVAL", 5*time.Second),
		DefaultThumbnailURL: getEnv("DEFAULT_THUMBNAIL_URL", DefaultThumbnailURL),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/callback"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Bad UI collection"),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),

		SiteTitle:   getEnv("SITE_TITLE", "Bad UI collection"),
		SiteTagline: getEnv("SITE_TAGLINE", "The worst interfaces on the web, collected with love"),
		SiteFooter:  getEnv("SITE_FOOTER", "Bad UI collection"),

		ConfigFile: getEnv("CONFIG_FILE", "config.yaml"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsOIDCEnabled returns true if single sign-on is configured.
func (c *Config) IsOIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}

// IsEmailEnabled returns true if SMTP is configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}
