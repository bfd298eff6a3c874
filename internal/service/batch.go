// Package service drives the batch reverse-geocoding pipeline: one
// background goroutine per submitted spreadsheet, strictly sequential within
// a batch because the external rate limit makes fan-out counter-productive.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/classifier"
	"github.com/UnknownOlympus/pinpoint/internal/geocoding"
	"github.com/UnknownOlympus/pinpoint/internal/metrics"
	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/UnknownOlympus/pinpoint/internal/session"
	"github.com/google/uuid"
)

// Extent selects how much of a submitted table is processed.
type Extent string

const (
	// ExtentSample processes only the first few rows, for a quick preview.
	ExtentSample Extent = "sample"
	// ExtentFull processes every row of the table.
	ExtentFull Extent = "full"
)

// Common errors for batch submission.
var (
	// ErrInvalidExtent is returned for an extent selector other than
	// "sample" or "full".
	ErrInvalidExtent = errors.New("extent must be \"sample\" or \"full\"")
	// ErrNoRows is returned when the submitted table has no data rows.
	ErrNoRows = errors.New("spreadsheet contains no data rows")
)

// ParseExtent validates a caller-supplied extent selector. The empty string
// defaults to the sample extent.
func ParseExtent(value string) (Extent, error) {
	switch Extent(value) {
	case ExtentSample, "":
		return ExtentSample, nil
	case ExtentFull:
		return ExtentFull, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidExtent, value)
	}
}

// ProviderFactory builds a reverse-geocoding adapter for one session. The
// token is passed through to the provider for service-side attribution.
type ProviderFactory func(sessionToken string) (geocoding.ReverseGeocoder, error)

// BatchService accepts spreadsheet submissions and runs them through the
// reverse-geocoding pipeline, publishing progress to the session registry
// after every row.
type BatchService struct {
	log          *slog.Logger      // Logger for logging service activities
	registry     *session.Registry // Shared session progress store
	providerFor  ProviderFactory   // Builds the per-session geocoding adapter
	providerName string            // Provider name for metrics labeling
	metrics      *metrics.Metrics  // Metrics for tracking pipeline performance
	sampleRows   int               // Row cap under the sample extent
	sampleCap    int               // Cap on collected preview addresses
}

// NewBatchService creates a new instance of BatchService. sampleRows bounds
// the sample extent and sampleCap bounds the preview address list; the two
// default to the same value but are independent knobs.
func NewBatchService(
	log *slog.Logger,
	registry *session.Registry,
	providerFor ProviderFactory,
	providerName string,
	appMetrics *metrics.Metrics,
	sampleRows int,
	sampleCap int,
) *BatchService {
	return &BatchService{
		log:          log,
		registry:     registry,
		providerFor:  providerFor,
		providerName: providerName,
		metrics:      appMetrics,
		sampleRows:   sampleRows,
		sampleCap:    sampleCap,
	}
}

// Submit validates a submission, registers a new session and starts the
// batch in the background. It returns the session identifier and the number
// of rows the chosen extent will process. The returned context errors are
// validation failures; the batch itself never fails a submission.
func (bs *BatchService) Submit(ctx context.Context, table *models.Table, extent Extent) (string, int, error) {
	if table.Len() == 0 {
		return "", 0, ErrNoRows
	}

	total := table.Len()
	if extent == ExtentSample && total > bs.sampleRows {
		total = bs.sampleRows
	}

	sessionID := uuid.NewString()
	bs.registry.Create(sessionID, total)

	go bs.process(ctx, table, sessionID, total)

	bs.log.InfoContext(ctx, "Batch submitted",
		"session_id", sessionID, "extent", extent, "rows", total)

	return sessionID, total, nil
}

// process drives one batch to its terminal state. Per-row failures are
// converted into Error outcomes and never escape the loop; only a failure of
// the driving loop itself (or a shutdown of the process) fails the session.
func (bs *BatchService) process(ctx context.Context, table *models.Table, sessionID string, total int) {
	bs.metrics.ActiveBatches.Inc()
	defer bs.metrics.ActiveBatches.Dec()

	defer func() {
		if rec := recover(); rec != nil {
			bs.log.ErrorContext(ctx, "Batch processing panicked", "session_id", sessionID, "panic", rec)
			bs.failSession(ctx, sessionID, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	provider, err := bs.providerFor(sessionID)
	if err != nil {
		bs.log.ErrorContext(ctx, "Failed to create geocoding provider", "session_id", sessionID, "error", err)
		bs.failSession(ctx, sessionID, "failed to initialize geocoding provider")
		return
	}

	stats := models.BatchStats{Total: total}
	samples := make([]string, 0, bs.sampleCap)
	outcomes := make([]models.AddressOutcome, 0, total)

	for idx := range total {
		if ctx.Err() != nil {
			bs.log.WarnContext(ctx, "Batch interrupted by shutdown", "session_id", sessionID, "processed", idx)
			bs.failSession(ctx, sessionID, "processing interrupted by shutdown")
			return
		}

		outcome := bs.resolveRow(ctx, provider, table, idx)
		outcomes = append(outcomes, outcome)
		stats.Record(outcome.Quality)
		bs.metrics.RowsProcessed.WithLabelValues(string(outcome.Quality)).Inc()

		if outcome.Quality == models.TierComplete && len(samples) < bs.sampleCap {
			samples = append(samples, outcome.PhysicalAddress)
		}

		if err = bs.registry.Advance(sessionID); err != nil {
			// The session expired mid-run; nobody is listening anymore.
			bs.log.WarnContext(ctx, "Session vanished during processing", "session_id", sessionID, "error", err)
			return
		}

		bs.log.DebugContext(ctx, "Row processed",
			"session_id", sessionID, "row", idx, "quality", outcome.Quality)
	}

	results := models.BatchResults{Stats: stats, SampleAddresses: samples}
	if err = bs.registry.Complete(sessionID, results, table.Enriched(outcomes)); err != nil {
		bs.log.WarnContext(ctx, "Failed to record batch completion", "session_id", sessionID, "error", err)
		return
	}

	bs.log.InfoContext(ctx, "Batch finished",
		"session_id", sessionID,
		"total", total,
		"complete", stats.CompleteAddress,
		"street_only", stats.StreetOnly,
		"area_only", stats.AreaOnly,
		"coordinates_only", stats.CoordinatesOnly,
		"errors", stats.Errors)
}

// resolveRow produces the outcome for a single row. It always returns an
// outcome: rows with missing coordinates are classified without ever
// reaching the adapter, and adapter errors degrade to the Error tier with a
// raw-coordinate fallback address.
func (bs *BatchService) resolveRow(
	ctx context.Context,
	provider geocoding.ReverseGeocoder,
	table *models.Table,
	row int,
) models.AddressOutcome {
	point, ok := table.Coordinates(row)
	if !ok {
		return classifier.Invalid()
	}

	startTime := time.Now()
	result, err := provider.Reverse(ctx, point)
	bs.metrics.RequestSeconds.WithLabelValues(bs.providerName).Observe(time.Since(startTime).Seconds())

	if err != nil {
		bs.log.ErrorContext(ctx, "Failed to reverse geocode row", "row", row, "error", err)
		bs.metrics.APIErrors.Inc()
		return classifier.Failed(point)
	}

	return classifier.Classify(result, point, table.Locality(row))
}

// failSession marks the session failed, tolerating a session that already
// expired.
func (bs *BatchService) failSession(ctx context.Context, sessionID, message string) {
	if err := bs.registry.Fail(sessionID, message); err != nil {
		bs.log.WarnContext(ctx, "Could not mark session as failed", "session_id", sessionID, "error", err)
	}
}
