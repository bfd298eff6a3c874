package geocoding_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	logger := slog.Default()

	t.Run("nominatim provider", func(t *testing.T) {
		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
			Type:         geocoding.ProviderTypeNominatim,
			SessionToken: "abc",
			MinDelay:     time.Second,
			Logger:       logger,
		})

		require.NoError(t, err)
		require.NotNil(t, provider)
		assert.IsType(t, &geocoding.NominatimProvider{}, provider)
	})

	t.Run("nominatim provider defaults the delay", func(t *testing.T) {
		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
			Type:   geocoding.ProviderTypeNominatim,
			Logger: logger,
		})

		require.NoError(t, err)
		require.NotNil(t, provider)
	})

	t.Run("google provider requires an API key", func(t *testing.T) {
		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
			Type:   geocoding.ProviderTypeGoogle,
			Logger: logger,
		})

		require.Error(t, err)
		require.Nil(t, provider)
		assert.ErrorIs(t, err, geocoding.ErrAPIKeyRequired)
	})

	t.Run("google provider with API key", func(t *testing.T) {
		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
			Type:     geocoding.ProviderTypeGoogle,
			APIKey:   "test-key",
			MinDelay: time.Second,
			Logger:   logger,
		})

		require.NoError(t, err)
		require.NotNil(t, provider)
		assert.IsType(t, &geocoding.GoogleProvider{}, provider)
	})

	t.Run("unsupported provider type", func(t *testing.T) {
		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
			Type:   "mapquest",
			Logger: logger,
		})

		require.Error(t, err)
		require.Nil(t, provider)
		assert.Contains(t, err.Error(), "unsupported provider type")
	})
}
