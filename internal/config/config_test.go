package config_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestMustLoad_Defaults(t *testing.T) {
	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 9090, cfg.MonitorPort)
	assert.Equal(t, "nominatim", cfg.ProviderType)
	assert.Equal(t, time.Second, cfg.MinDelay)
	assert.Equal(t, 5, cfg.SampleRows)
	assert.Equal(t, 5, cfg.SampleAddresses)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, int64(16<<20), cfg.MaxUploadBytes)
}

func TestMustLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PINPOINT_ENV", "local")
	t.Setenv("PINPOINT_PORT", "3000")
	t.Setenv("PINPOINT_MONITOR_PORT", "3001")
	t.Setenv("PINPOINT_PROVIDER_TYPE", "google")
	t.Setenv("PINPOINT_PROVIDER_KEY", "testAPIKey")
	t.Setenv("PINPOINT_MIN_DELAY", "250ms")
	t.Setenv("PINPOINT_SAMPLE_ROWS", "10")
	t.Setenv("PINPOINT_SAMPLE_ADDRESSES", "3")
	t.Setenv("PINPOINT_SESSION_TTL", "1h")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, 3001, cfg.MonitorPort)
	assert.Equal(t, "google", cfg.ProviderType)
	assert.Equal(t, "testAPIKey", cfg.APIKey)
	assert.Equal(t, 250*time.Millisecond, cfg.MinDelay)
	assert.Equal(t, 10, cfg.SampleRows)
	assert.Equal(t, 3, cfg.SampleAddresses)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
}

func TestMustLoad_MinDelayError(t *testing.T) {
	t.Setenv("PINPOINT_MIN_DELAY", "error_value")

	assert.PanicsWithValue(t, "failed to parse minimum delay from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_SessionTTLError(t *testing.T) {
	t.Setenv("PINPOINT_SESSION_TTL", "error_value")

	assert.PanicsWithValue(t, "failed to parse session TTL from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_SampleRowsError(t *testing.T) {
	t.Setenv("PINPOINT_SAMPLE_ROWS", "error_value")

	assert.PanicsWithValue(
		t,
		"failed to parse sample rows from configuration, must be a positive integer",
		func() {
			config.MustLoad()
		},
	)
}
