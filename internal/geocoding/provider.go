package geocoding

import (
	"context"
	"net/http"

	"github.com/UnknownOlympus/pinpoint/internal/models"
)

// ReverseGeocoder is an interface that defines a method for resolving a
// coordinate pair to a structured address. The Reverse method takes a context
// and a geographical point as input, and returns the structured lookup result
// and an error if any occurs. A point the service simply has no address for
// is not an error: it is reported as a result with Found=false, so that a
// string of misses never aborts a batch.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, point models.Coordinates) (*models.ReverseResult, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
