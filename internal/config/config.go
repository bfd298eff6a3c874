package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the address-finder service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the public HTTP API.
// - MonitorPort: The port for the monitoring server (/metrics, /healthz).
// - ProviderType: The reverse-geocoding provider to use (nominatim, google).
// - APIKey: The API key for external services (required for Google).
// - MinDelay: The minimum delay between two calls to the provider.
// - SampleRows: The number of rows processed under the sample extent.
// - SampleAddresses: The cap on preview addresses collected per batch.
// - SessionTTL: How long a session survives after its last poll.
// - MaxUploadBytes: The upload size limit for spreadsheets.
type Config struct {
	Env             string        // Env is the current environment: local, development, production.
	Port            int           // Port is the public API server port.
	MonitorPort     int           // MonitorPort is the monitoring server port.
	ProviderType    string        // ProviderType specifies which reverse-geocoding provider to use.
	APIKey          string        // The API key for accessing external services.
	MinDelay        time.Duration // Minimum inter-call delay towards the provider.
	SampleRows      int           // Row cap for the sample extent.
	SampleAddresses int           // Cap on collected preview addresses.
	SessionTTL      time.Duration // Session lifetime since last poll.
	MaxUploadBytes  int64         // Upload size limit.
}

// MustLoad loads the configuration from the environment (with optional .env
// file) and returns a Config struct. It panics on values that cannot be
// parsed, since the service cannot start without them.
func MustLoad() *Config {
	_ = godotenv.Load()

	vpr := viper.New()
	vpr.SetEnvPrefix("PINPOINT")
	vpr.AutomaticEnv()

	vpr.SetDefault("env", "production")
	vpr.SetDefault("port", 8080)
	vpr.SetDefault("monitor_port", 9090)
	vpr.SetDefault("provider_type", "nominatim")
	vpr.SetDefault("min_delay", "1s")
	vpr.SetDefault("sample_rows", 5)
	vpr.SetDefault("sample_addresses", 5)
	vpr.SetDefault("session_ttl", "30m")
	vpr.SetDefault("max_upload_bytes", 16<<20)

	minDelay := vpr.GetDuration("min_delay")
	if minDelay <= 0 {
		panic("failed to parse minimum delay from configuration")
	}

	sessionTTL := vpr.GetDuration("session_ttl")
	if sessionTTL <= 0 {
		panic("failed to parse session TTL from configuration")
	}

	sampleRows := vpr.GetInt("sample_rows")
	if sampleRows <= 0 {
		panic("failed to parse sample rows from configuration, must be a positive integer")
	}

	sampleAddresses := vpr.GetInt("sample_addresses")
	if sampleAddresses <= 0 {
		panic("failed to parse sample addresses from configuration, must be a positive integer")
	}

	return &Config{
		Env:             vpr.GetString("env"),
		Port:            vpr.GetInt("port"),
		MonitorPort:     vpr.GetInt("monitor_port"),
		ProviderType:    vpr.GetString("provider_type"),
		APIKey:          vpr.GetString("provider_key"),
		MinDelay:        minDelay,
		SampleRows:      sampleRows,
		SampleAddresses: sampleAddresses,
		SessionTTL:      sessionTTL,
		MaxUploadBytes:  vpr.GetInt64("max_upload_bytes"),
	}
}
