package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"golang.org/x/time/rate"
)

// NominatimBaseURL -- Nominatim reverse-geocoding endpoint.
const NominatimBaseURL = "https://nominatim.openstreetmap.org/reverse"

// defaultTimeout bounds every outbound call so that a stalled service cannot
// hold a batch row longer than this.
const defaultTimeout = 10 * time.Second

// NominatimProvider implements the ReverseGeocoder interface using
// OpenStreetMap's Nominatim API. This is a free service with a fair-use
// policy of at most 1 request per second, which the built-in limiter
// enforces across all calls from a single provider instance.
type NominatimProvider struct {
	client    HTTPClient    // HTTP client for making requests
	baseURL   string        // Base URL for the Nominatim API
	log       *slog.Logger  // Logger for logging operations
	limiter   *rate.Limiter // Minimum inter-call delay enforcement
	userAgent string        // Required by Nominatim usage policy; carries the session token
}

// nominatimAddress is the detailed address breakdown from the API. Nominatim
// keys the street under road, street or highway and the locality under city,
// town or village depending on the feature it matched; all synonyms are kept
// so the classifier can apply its fixed fallback order.
type nominatimAddress struct {
	HouseNumber string `json:"house_number"`
	Road        string `json:"road"`
	Street      string `json:"street"`
	Highway     string `json:"highway"`
	City        string `json:"city"`
	Town        string `json:"town"`
	Village     string `json:"village"`
	State       string `json:"state"`
	Postcode    string `json:"postcode"`
}

// nominatimResponse represents the JSON response from the reverse endpoint.
// A point with no address comes back as {"error": "Unable to geocode"}.
type nominatimResponse struct {
	Error       string           `json:"error"`
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
}

// NewNominatimProvider creates a new Nominatim reverse-geocoding provider.
// The sessionToken is embedded in the User-Agent for service-side
// attribution; it has no effect on results. minDelay is the minimum spacing
// between any two outbound calls from this instance.
func NewNominatimProvider(sessionToken string, minDelay time.Duration, log *slog.Logger) *NominatimProvider {
	return NewNominatimProviderWithClient(
		&http.Client{Timeout: defaultTimeout},
		sessionToken,
		rate.NewLimiter(rate.Every(minDelay), 1),
		log,
	)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom
// HTTP client and limiter. Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(
	client HTTPClient,
	sessionToken string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *NominatimProvider {
	return &NominatimProvider{
		client:  client,
		baseURL: NominatimBaseURL,
		log:     log,
		limiter: limiter,
		// User-Agent MUST include valid contact info per Nominatim usage policy:
		// https://operations.osmfoundation.org/policies/nominatim/
		userAgent: fmt.Sprintf(
			"Pinpoint-Address-Finder/1.0 (https://github.com/UnknownOlympus/pinpoint; session %s)",
			sessionToken,
		),
	}
}

// Reverse resolves a coordinate pair to a structured address using the
// Nominatim reverse API. Transport failures, timeouts and service misses are
// all reported as Found=false rather than as errors; only context
// cancellation and malformed payloads propagate, since those indicate the
// batch itself should stop or the response cannot be trusted.
func (np *NominatimProvider) Reverse(
	ctx context.Context,
	point models.Coordinates,
) (*models.ReverseResult, error) {
	// Rate limit
	if err := np.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait interrupted: %w", err)
	}

	np.log.DebugContext(ctx, "Reverse geocoding using Nominatim", "lat", point.Latitude, "lon", point.Longitude)

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("lat", strconv.FormatFloat(point.Latitude, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(point.Longitude, 'f', -1, 64))
	query.Set("format", "jsonv2")
	query.Set("zoom", "18")              // Building-level detail
	query.Set("addressdetails", "1")     // Include the structured address breakdown
	query.Set("accept-language", "en")   // Stable output language for classification
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set required headers per Nominatim usage policy
	req.Header.Set("User-Agent", np.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := np.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("reverse geocoding request canceled: %w", ctx.Err())
		}
		// Transport failure or timeout: report the point as unresolved so the
		// batch keeps going.
		np.log.WarnContext(ctx, "Nominatim request failed, treating point as unresolved", "error", err)
		return &models.ReverseResult{Found: false}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		np.log.WarnContext(ctx, "Nominatim API error, treating point as unresolved",
			"status", resp.StatusCode, "body", string(body))
		return &models.ReverseResult{Found: false}, nil
	}

	np.log.DebugContext(ctx, "Nominatim raw response", "body", string(body))

	var result nominatimResponse
	if err = json.Unmarshal(body, &result); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	// "Unable to geocode" and friends: the service has no address here.
	if result.Error != "" || result.DisplayName == "" {
		np.log.DebugContext(ctx, "Nominatim found no address for point", "error", result.Error)
		return &models.ReverseResult{Found: false}, nil
	}

	return &models.ReverseResult{
		Found:       true,
		DisplayName: result.DisplayName,
		Address: models.Address{
			HouseNumber: result.Address.HouseNumber,
			Road:        result.Address.Road,
			Street:      result.Address.Street,
			Highway:     result.Address.Highway,
			City:        result.Address.City,
			Town:        result.Address.Town,
			Village:     result.Address.Village,
			State:       result.Address.State,
			Postcode:    result.Address.Postcode,
		},
	}, nil
}
