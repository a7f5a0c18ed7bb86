package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures process configuration. FromEnv keeps main lean.
type Config struct {
	Addr        string
	RedisURL    string
	PostgresDSN string

	// Overdue scanner tuning.
	ScanInterval     time.Duration
	ScanPageSize     int
	LedgerMaxEntries int

	SMTP SMTP
}

// SMTP configures the outbound mail transport.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	AdminBCC string
}

// FromEnv builds a Config from environment variables with development defaults.
func FromEnv() Config {
	return Config{
		Addr:        envOr("TRACKER_ADDR", ":8080"),
		RedisURL:    os.Getenv("TRACKER_REDIS_URL"),
		PostgresDSN: os.Getenv("TRACKER_POSTGRES_DSN"),

		ScanInterval:     durationOr("TRACKER_SCAN_INTERVAL", time.Minute),
		ScanPageSize:     intOr("TRACKER_SCAN_PAGE_SIZE", 100),
		LedgerMaxEntries: intOr("TRACKER_LEDGER_MAX_ENTRIES", 10000),

		SMTP: SMTP{
			Host:     envOr("TRACKER_SMTP_HOST", "localhost"),
			Port:     envOr("TRACKER_SMTP_PORT", "25"),
			Username: os.Getenv("TRACKER_SMTP_USERNAME"),
			Password: os.Getenv("TRACKER_SMTP_PASSWORD"),
			From:     envOr("TRACKER_SMTP_FROM", "tracker@localhost"),
			AdminBCC: os.Getenv("TRACKER_SMTP_ADMIN_BCC"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
