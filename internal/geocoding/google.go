package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to resolve coordinate pairs
// to addresses through the Google Maps reverse-geocoding service.
type GoogleProvider struct {
	client  GoogleAPIClient // client is the Google Maps API client
	log     *slog.Logger    // log is the logger for logging operations
	limiter *rate.Limiter   // limiter spaces outbound calls
}

type GoogleAPIClient interface {
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleProvider initializes a new GoogleProvider with the given API
// client, minimum inter-call delay and logger.
func NewGoogleProvider(client GoogleAPIClient, limiter *rate.Limiter, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log, limiter: limiter}
}

// Reverse resolves a coordinate pair to a structured address using the
// Google Maps Geocoding API. An empty result set or a transport failure is
// reported as Found=false; only context cancellation propagates as an error.
func (gp *GoogleProvider) Reverse(
	ctx context.Context,
	point models.Coordinates,
) (*models.ReverseResult, error) {
	if err := gp.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait interrupted: %w", err)
	}

	gp.log.DebugContext(ctx, "Reverse geocoding using Google Maps", "lat", point.Latitude, "lon", point.Longitude)

	req := maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: point.Latitude, Lng: point.Longitude},
		Language: "en",
	}
	results, err := gp.client.ReverseGeocode(ctx, &req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("reverse geocoding request canceled: %w", ctx.Err())
		}
		gp.log.WarnContext(ctx, "Google Maps request failed, treating point as unresolved", "error", err)
		return &models.ReverseResult{Found: false}, nil
	}

	if len(results) == 0 {
		gp.log.DebugContext(ctx, "Google Maps found no address for point")
		return &models.ReverseResult{Found: false}, nil
	}

	best := results[0]
	result := &models.ReverseResult{
		Found:       true,
		DisplayName: best.FormattedAddress,
		Address:     mapComponents(best.AddressComponents),
	}

	return result, nil
}

// mapComponents translates Google's typed address components into the
// provider-neutral breakdown. Google has no street/locality synonym split,
// so everything lands in the primary synonym fields.
func mapComponents(components []maps.AddressComponent) models.Address {
	var addr models.Address
	for _, component := range components {
		for _, typ := range component.Types {
			switch typ {
			case "street_number":
				addr.HouseNumber = component.LongName
			case "route":
				addr.Road = component.LongName
			case "locality":
				addr.City = component.LongName
			case "postal_town":
				addr.Town = component.LongName
			case "administrative_area_level_1":
				addr.State = component.LongName
			case "postal_code":
				addr.Postcode = component.LongName
			}
		}
	}
	return addr
}
