// Package session owns the live state of every submitted batch, keyed by
// session identifier. The registry is the only resource shared between the
// background batch goroutines (one writer per session) and the progress
// pollers (any number of readers); every mutation is applied under a
// per-session lock so readers always observe a consistent snapshot.
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	cache "github.com/patrickmn/go-cache"
)

// Common errors for the session registry.
var (
	// ErrSessionNotFound is returned for unknown, expired or already
	// consumed session identifiers.
	ErrSessionNotFound = errors.New("session not found")
	// ErrResultNotReady is returned when a result is requested for a session
	// that has not completed yet.
	ErrResultNotReady = errors.New("session result not ready")
)

// entry is the mutable per-session record. All field access goes through mu.
type entry struct {
	mu       sync.Mutex
	snapshot models.SessionSnapshot
	table    *models.Table // enriched row set, attached on completion
}

// Registry is the process-wide session store. Entries expire a fixed TTL
// after their last poll, so batches that are never downloaded are swept by
// the cache janitor instead of leaking for the life of the process.
type Registry struct {
	store *cache.Cache
	log   *slog.Logger
}

// NewRegistry creates a session registry whose entries live for ttl since
// their last access. The janitor sweeps expired entries at half the ttl.
func NewRegistry(ttl time.Duration, log *slog.Logger) *Registry {
	store := cache.New(ttl, ttl/2)
	store.OnEvicted(func(sessionID string, _ interface{}) {
		log.Debug("Session removed from registry", "session_id", sessionID)
	})
	return &Registry{store: store, log: log}
}

// Create registers a new session in the Processing state with the given
// total row count and zero progress.
func (r *Registry) Create(sessionID string, total int) {
	r.store.SetDefault(sessionID, &entry{
		snapshot: models.SessionSnapshot{
			SessionID: sessionID,
			Status:    models.StatusProcessing,
			Total:     total,
		},
	})
	r.log.Debug("Session created", "session_id", sessionID, "total", total)
}

// lookup fetches the live entry and slides its TTL.
func (r *Registry) lookup(sessionID string) (*entry, error) {
	value, found := r.store.Get(sessionID)
	if !found {
		return nil, ErrSessionNotFound
	}
	ent, ok := value.(*entry)
	if !ok {
		return nil, ErrSessionNotFound
	}
	// Sliding expiry: a session stays alive as long as somebody polls it.
	r.store.SetDefault(sessionID, ent)
	return ent, nil
}

// Get returns a consistent point-in-time snapshot of the session state.
// It never blocks on the background batch.
func (r *Registry) Get(sessionID string) (models.SessionSnapshot, error) {
	ent, err := r.lookup(sessionID)
	if err != nil {
		return models.SessionSnapshot{}, err
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()
	return copySnapshot(ent.snapshot), nil
}

// Advance records one more attempted row. Progress only ever increases.
func (r *Registry) Advance(sessionID string) error {
	ent, err := r.lookup(sessionID)
	if err != nil {
		return err
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()
	ent.snapshot.Processed++
	return nil
}

// Complete transitions the session to its terminal Completed state,
// attaching the final statistics, the preview addresses and the enriched
// row set for later retrieval.
func (r *Registry) Complete(sessionID string, results models.BatchResults, table *models.Table) error {
	ent, err := r.lookup(sessionID)
	if err != nil {
		return err
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()
	ent.snapshot.Status = models.StatusCompleted
	ent.snapshot.Results = &results
	ent.table = table
	return nil
}

// Fail transitions the session to its terminal Failed state with an
// explanatory message. Processed stays at its last good value.
func (r *Registry) Fail(sessionID, message string) error {
	ent, err := r.lookup(sessionID)
	if err != nil {
		return err
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()
	ent.snapshot.Status = models.StatusFailed
	ent.snapshot.Message = message
	return nil
}

// Consume returns the enriched row set of a completed session and removes
// the session from the registry. Retrieval is one-shot: a second call for
// the same identifier reports ErrSessionNotFound.
func (r *Registry) Consume(sessionID string) (*models.Table, error) {
	ent, err := r.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	ent.mu.Lock()
	table := ent.table
	ent.mu.Unlock()

	if table == nil {
		return nil, ErrResultNotReady
	}

	r.store.Delete(sessionID)
	return table, nil
}

// copySnapshot deep-copies the snapshot so callers never alias live state.
func copySnapshot(src models.SessionSnapshot) models.SessionSnapshot {
	out := src
	if src.Results != nil {
		results := *src.Results
		results.SampleAddresses = append([]string(nil), src.Results.SampleAddresses...)
		out.Results = &results
	}
	return out
}
