package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://fleet@localhost/fleet?sslmode=disable")
	for _, key := range []string{
		"TELEGRAM_TOKEN", "ADMIN_TELEGRAM_ID", "MANAGER_TELEGRAM_ID", "LOG_LEVEL", "ENVIRONMENT",
		"HTTP_ADDR", "TIMEZONE", "CRON_SPEC_PLATE_NOTIFY", "NOTIFY_CATCHUP_DAYS", "DISPATCH_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "0 8 * * *", cfg.CronSpecNotify)
	assert.Equal(t, 0, cfg.CatchUpDays)
	assert.Equal(t, time.Minute, cfg.DispatchTimeout)
	assert.Equal(t, time.Local, cfg.Location)
	assert.False(t, cfg.BotEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("ADMIN_TELEGRAM_ID", "42")
	t.Setenv("MANAGER_TELEGRAM_ID", "-100200")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("NOTIFY_CATCHUP_DAYS", "3")
	t.Setenv("DISPATCH_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.BotEnabled())
	assert.Equal(t, int64(42), cfg.AdminTelegramID)
	assert.Equal(t, int64(-100200), cfg.ManagerTelegramID)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, 3, cfg.CatchUpDays)
	assert.Equal(t, 30*time.Second, cfg.DispatchTimeout)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing database url", env: map[string]string{"DATABASE_URL": ""}},
		{name: "bad admin id", env: map[string]string{"ADMIN_TELEGRAM_ID": "abc"}},
		{name: "token without manager", env: map[string]string{"TELEGRAM_TOKEN": "123:abc"}},
		{name: "negative catch-up", env: map[string]string{"NOTIFY_CATCHUP_DAYS": "-1"}},
		{name: "bad timezone", env: map[string]string{"TIMEZONE": "Mars/Olympus"}},
		{name: "bad timeout", env: map[string]string{"DISPATCH_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
