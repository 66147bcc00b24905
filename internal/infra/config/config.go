package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL       string
	TelegramToken     string // empty disables the bot and Telegram dispatch
	AdminTelegramID   int64
	ManagerTelegramID int64 // recipient of plate notification batches
	LogLevel          string
	Environment       string
	HTTPAddr          string
	Location          *time.Location
	CronSpecNotify    string // daily check for a plate-digit fire date
	CatchUpDays       int    // how many missed days the daily check looks back
	DispatchTimeout   time.Duration
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	if cfg.AdminTelegramID, err = optionalInt64("ADMIN_TELEGRAM_ID"); err != nil {
		return nil, err
	}
	if cfg.ManagerTelegramID, err = optionalInt64("MANAGER_TELEGRAM_ID"); err != nil {
		return nil, err
	}
	if cfg.TelegramToken != "" && cfg.ManagerTelegramID == 0 {
		return nil, fmt.Errorf("MANAGER_TELEGRAM_ID is required when TELEGRAM_TOKEN is set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	tz := os.Getenv("TIMEZONE")
	if tz == "" {
		tz = "Local"
	}
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg.CronSpecNotify = os.Getenv("CRON_SPEC_PLATE_NOTIFY")
	if cfg.CronSpecNotify == "" {
		cfg.CronSpecNotify = "0 8 * * *" // Default: 8:00 AM daily
	}

	if v := os.Getenv("NOTIFY_CATCHUP_DAYS"); v != "" {
		cfg.CatchUpDays, err = strconv.Atoi(v)
		if err != nil || cfg.CatchUpDays < 0 {
			return nil, fmt.Errorf("invalid NOTIFY_CATCHUP_DAYS: %q", v)
		}
	}

	cfg.DispatchTimeout = time.Minute
	if v := os.Getenv("DISPATCH_TIMEOUT"); v != "" {
		cfg.DispatchTimeout, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DISPATCH_TIMEOUT: %w", err)
		}
	}

	return cfg, nil
}

// BotEnabled reports whether a Telegram token was configured.
func (c *AppConfig) BotEnabled() bool {
	return c.TelegramToken != ""
}

func optionalInt64(key string) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
