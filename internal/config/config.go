package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"anoa.com/communityforum/pkg/database"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string
	BaseURL        string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	MailerDSN  string
	MailerFrom string

	SessionSecret string
	SessionTTL    time.Duration
	CSRFSecret    string

	ResetSigningKey    string
	ResetLifetime      time.Duration
	ResetThrottle      time.Duration
	ResetPurgeSchedule string

	PwnedCheck bool

	RateLimitComment time.Duration
	MemberCountTTL   time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:8080"),

		DatabaseURL: database.DSN(),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		MailerDSN:  getEnv("MAILER_DSN", "null://null"),
		MailerFrom: getEnv("MAILER_FROM", "Forum <no-reply@forum.local>"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		CSRFSecret:    os.Getenv("CSRF_SECRET"),

		ResetSigningKey:    os.Getenv("RESET_SIGNING_KEY"),
		ResetPurgeSchedule: getEnv("RESET_PURGE_SCHEDULE", "0 0 * * * *"),

		PwnedCheck: getEnv("PWNED_CHECK", "on") != "off",
	}
	cfg.BaseURL = strings.TrimRight(getEnv("BASE_URL", "http://localhost:"+cfg.Port), "/")

	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("SESSION_SECRET is required in production")
		}
		cfg.SessionSecret = "dev-session-secret"
	}
	if cfg.CSRFSecret == "" {
		cfg.CSRFSecret = cfg.SessionSecret
	}
	if cfg.ResetSigningKey == "" {
		cfg.ResetSigningKey = cfg.SessionSecret
	}

	// Parsing durations
	durations := []struct {
		key      string
		fallback string
		target   *time.Duration
	}{
		{"SESSION_TTL", "24h", &cfg.SessionTTL},
		{"RESET_LIFETIME", "1h", &cfg.ResetLifetime},
		{"RESET_THROTTLE", "1h", &cfg.ResetThrottle},
		{"RATE_LIMIT_COMMENT", "5s", &cfg.RateLimitComment},
		{"MEMBER_COUNT_TTL", "30s", &cfg.MemberCountTTL},
	}
	for _, d := range durations {
		value, err := parseDuration(getEnv(d.key, d.fallback))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.target = value
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}
