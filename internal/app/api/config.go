package api

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	masterdomain "github.com/ignasiusberneo/clinic-admin/internal/domains/masterdata/domain"
	"github.com/ignasiusberneo/clinic-admin/internal/platform/ratelimit"
)

// Config carries environment-driven settings for the API process.
// AdminUsername and AdminPassword seed the in-memory store at startup.
type Config struct {
	Port                       string
	PostgresDSN                string
	RedisAddr                  string
	RedisPassword              string
	RedisDB                    int
	SessionTTL                 time.Duration
	CookieSecure               bool
	CookieDomain               string
	DefaultTimezone            string
	LoginRateLimit             string
	TemporalAddress            string
	TemporalNamespace          string
	TemporalDisabled           bool
	SessionPurgeIntervalMinute int
	AdminUsername              string
	AdminPassword              string
}

// LoadDotEnv reads .env into the process environment when the file exists.
// Variables already set win over the file.
func LoadDotEnv(logger *slog.Logger) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("failed to read .env", slog.String("error", err.Error()))
	}
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		SessionTTL:        24 * time.Hour,
		CookieSecure:      isTruthy(os.Getenv("COOKIE_SECURE")),
		CookieDomain:      strings.TrimSpace(os.Getenv("COOKIE_DOMAIN")),
		DefaultTimezone:   envDefault("DEFAULT_TIMEZONE", masterdomain.DefaultTimezone),
		LoginRateLimit:    envDefault("LOGIN_RATE_LIMIT", ratelimit.DefaultRate),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		AdminUsername:     envDefault("ADMIN_USERNAME", "admin"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
	}
	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil || db < 0 {
			return Config{}, fmt.Errorf("REDIS_DB must be a non-negative integer")
		}
		cfg.RedisDB = db
	}
	if raw := strings.TrimSpace(os.Getenv("SESSION_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("SESSION_TTL must be a positive duration such as 24h")
		}
		cfg.SessionTTL = ttl
	}
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return Config{}, fmt.Errorf("DEFAULT_TIMEZONE %q is not a valid IANA zone", cfg.DefaultTimezone)
	}
	if raw := strings.TrimSpace(os.Getenv("SESSION_PURGE_INTERVAL_MINUTES")); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return Config{}, fmt.Errorf("SESSION_PURGE_INTERVAL_MINUTES must be a positive integer")
		}
		cfg.SessionPurgeIntervalMinute = minutes
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
