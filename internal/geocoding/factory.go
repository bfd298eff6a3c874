package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"
)

// ProviderType represents the type of reverse-geocoding provider.
type ProviderType string

const (
	// ProviderTypeNominatim represents OpenStreetMap Nominatim reverse geocoding.
	ProviderTypeNominatim ProviderType = "nominatim"
	// ProviderTypeGoogle represents Google Maps reverse geocoding.
	ProviderTypeGoogle ProviderType = "google"
)

// ErrAPIKeyRequired is returned when a provider needing credentials is
// configured without an API key.
var ErrAPIKeyRequired = errors.New("API key is required for Google provider")

// ProviderConfig holds configuration for creating a reverse-geocoding provider.
type ProviderConfig struct {
	Type         ProviderType  // Type of provider to create
	APIKey       string        // API key (used by Google provider)
	SessionToken string        // Per-session token for service-side attribution
	MinDelay     time.Duration // Minimum delay between any two outbound calls
	Logger       *slog.Logger  // Logger for the provider
}

// NewProvider creates a reverse-geocoding provider based on the provided
// configuration. It applies the Factory pattern to decouple provider
// instantiation from the batch pipeline.
//
// Supported provider types:
// - "nominatim": OpenStreetMap Nominatim API (free, no API key required)
// - "google": Google Maps Geocoding API (requires API key)
//
// Returns an error if the provider type is unsupported or if provider
// creation fails.
func NewProvider(config ProviderConfig) (ReverseGeocoder, error) {
	if config.MinDelay <= 0 {
		config.MinDelay = time.Second
	}

	switch config.Type {
	case ProviderTypeNominatim:
		return NewNominatimProvider(config.SessionToken, config.MinDelay, config.Logger), nil
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

// newGoogleProvider creates a Google Maps reverse-geocoding provider.
func newGoogleProvider(config ProviderConfig) (ReverseGeocoder, error) {
	if config.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}

	client, err := maps.NewClient(maps.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	limiter := rate.NewLimiter(rate.Every(config.MinDelay), 1)

	return NewGoogleProvider(client, limiter, config.Logger), nil
}
