package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultDownloadSecret signs stateless download tokens when
	// DOWNLOAD_TOKEN_SECRET is not set. Deployments must override it;
	// leaving the default makes degraded-mode tokens forgeable by anyone
	// who has read this source.
	DefaultDownloadSecret = "change-this-in-production"

	defaultTokenExpiry  = time.Hour
	defaultMaxDownloads = 5
	defaultJwtExpiry    = 24 * time.Hour

	defaultRetentionDays = 30
)

// Env is the process-wide configuration, assembled once at startup and
// passed by reference to the components that need it.
type Env struct {
	AppEnv  string
	IsDebug bool
	Port    string
	BaseURL string

	MysqlHost     string
	MysqlPort     string
	MysqlUser     string
	MysqlPassword string
	MysqlDatabase string

	ValkeyHost     string
	ValkeyPort     string
	ValkeyUsername string
	ValkeyPassword string

	JwtSecret string
	JwtExpiry time.Duration

	DownloadSecret        string
	TokenExpiry           time.Duration
	MaxDownloads          int
	ArtifactRoot          string
	TemplatesRoot         string
	ArtifactRetentionDays int
	CorsAllowedOrigins    []string
}

// Load reads .env (if present) and the process environment into an Env.
func Load() (*Env, error) {
	_ = godotenv.Load()

	env := &Env{
		AppEnv:  getEnv("APP_ENV", "production"),
		Port:    getEnv("SERVER_PORT", "8080"),
		BaseURL: getEnv("APP_URL", "http://localhost:8080"),

		MysqlHost:     getEnv("MYSQL_HOST", "localhost"),
		MysqlPort:     getEnv("MYSQL_PORT", "3306"),
		MysqlUser:     getEnv("MYSQL_USER", "biodaat"),
		MysqlPassword: getEnv("MYSQL_PASSWORD", "secret"),
		MysqlDatabase: getEnv("MYSQL_DATABASE", "biodaat"),

		ValkeyHost:     getEnv("VALKEY_HOST", "localhost"),
		ValkeyPort:     getEnv("VALKEY_PORT", "6379"),
		ValkeyUsername: getEnv("VALKEY_USERNAME", ""),
		ValkeyPassword: getEnv("VALKEY_PASSWORD", ""),

		JwtSecret: getEnv("JWT_SECRET", DefaultDownloadSecret),

		DownloadSecret: getEnv("DOWNLOAD_TOKEN_SECRET", DefaultDownloadSecret),
		ArtifactRoot:   getEnv("PDF_STORAGE_PATH", "storage/pdfs"),
		TemplatesRoot:  getEnv("TEMPLATES_PATH", "templates/html"),
	}

	env.IsDebug = getEnv("APP_DEBUG", "false") == "true" || env.AppEnv == "development"

	corsOrigins := getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	env.CorsAllowedOrigins = splitAndTrim(corsOrigins)

	tokenExpirySeconds, err := getEnvInt("DOWNLOAD_TOKEN_EXPIRY", int(defaultTokenExpiry.Seconds()))
	if err != nil {
		return nil, err
	}
	env.TokenExpiry = time.Duration(tokenExpirySeconds) * time.Second

	env.MaxDownloads, err = getEnvInt("MAX_DOWNLOADS_PER_TOKEN", defaultMaxDownloads)
	if err != nil {
		return nil, err
	}
	if env.MaxDownloads < 1 {
		return nil, fmt.Errorf("MAX_DOWNLOADS_PER_TOKEN must be >= 1, got %d", env.MaxDownloads)
	}

	jwtExpirySeconds, err := getEnvInt("JWT_EXPIRY", int(defaultJwtExpiry.Seconds()))
	if err != nil {
		return nil, err
	}
	env.JwtExpiry = time.Duration(jwtExpirySeconds) * time.Second

	env.ArtifactRetentionDays, err = getEnvInt("PDF_RETENTION_DAYS", defaultRetentionDays)
	if err != nil {
		return nil, err
	}
	if env.ArtifactRetentionDays < 1 {
		return nil, fmt.Errorf("PDF_RETENTION_DAYS must be >= 1, got %d", env.ArtifactRetentionDays)
	}

	return env, nil
}

// MysqlDSN builds the go-sql-driver DSN for the application database.
func (e *Env) MysqlDSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&timeout=5s&readTimeout=10s&writeTimeout=10s",
		e.MysqlUser, e.MysqlPassword, e.MysqlHost, e.MysqlPort, e.MysqlDatabase,
	)
}

// IsUsingDefaultDownloadSecret reports whether the must-override signing
// secret is still the shipped default. Logged as a warning at startup.
func (e *Env) IsUsingDefaultDownloadSecret() bool {
	return e.DownloadSecret == DefaultDownloadSecret
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q", key, value)
	}

	return parsed, nil
}

func splitAndTrim(value string) []string {
	var result []string

	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}

	return result
}
