package session_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/UnknownOlympus/pinpoint/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry() *session.Registry {
	return session.NewRegistry(time.Minute, slog.Default())
}

func TestRegistry_CreateAndGet(t *testing.T) {
	registry := newRegistry()
	registry.Create("s1", 10)

	snapshot, err := registry.Get("s1")

	require.NoError(t, err)
	assert.Equal(t, "s1", snapshot.SessionID)
	assert.Equal(t, models.StatusProcessing, snapshot.Status)
	assert.Equal(t, 10, snapshot.Total)
	assert.Equal(t, 0, snapshot.Processed)
	assert.Nil(t, snapshot.Results)
}

func TestRegistry_GetUnknownSession(t *testing.T) {
	registry := newRegistry()

	_, err := registry.Get("missing")

	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestRegistry_AdvanceIsMonotonic(t *testing.T) {
	registry := newRegistry()
	registry.Create("s1", 3)

	previous := 0
	for range 3 {
		require.NoError(t, registry.Advance("s1"))

		snapshot, err := registry.Get("s1")
		require.NoError(t, err)
		assert.Greater(t, snapshot.Processed, previous)
		assert.LessOrEqual(t, snapshot.Processed, snapshot.Total)
		previous = snapshot.Processed
	}
}

func TestRegistry_Complete(t *testing.T) {
	registry := newRegistry()
	registry.Create("s1", 1)

	table, err := models.NewTable(
		[]string{"Center_Latitude", "Center_Longitude"},
		[][]string{{"1", "2"}},
	)
	require.NoError(t, err)

	results := models.BatchResults{
		Stats:           models.BatchStats{CompleteAddress: 1, Total: 1},
		SampleAddresses: []string{"1 Main St, Town"},
	}
	require.NoError(t, registry.Complete("s1", results, table))

	snapshot, err := registry.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, snapshot.Status)
	require.NotNil(t, snapshot.Results)
	assert.Equal(t, 1, snapshot.Results.Stats.CompleteAddress)
	assert.Equal(t, []string{"1 Main St, Town"}, snapshot.Results.SampleAddresses)
}

func TestRegistry_SnapshotIsolation(t *testing.T) {
	registry := newRegistry()
	registry.Create("s1", 1)
	require.NoError(t, registry.Complete("s1", models.BatchResults{
		SampleAddresses: []string{"original"},
	}, &models.Table{}))

	first, err := registry.Get("s1")
	require.NoError(t, err)
	first.Results.SampleAddresses[0] = "mutated"

	second, err := registry.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "original", second.Results.SampleAddresses[0])
}

func TestRegistry_Fail(t *testing.T) {
	registry := newRegistry()
	registry.Create("s1", 10)
	require.NoError(t, registry.Advance("s1"))

	require.NoError(t, registry.Fail("s1", "the sheet became unreadable"))

	snapshot, err := registry.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, snapshot.Status)
	assert.Equal(t, "the sheet became unreadable", snapshot.Message)
	assert.Equal(t, 1, snapshot.Processed, "processed stays at its last good value")
}

func TestRegistry_ConsumeIsOneShot(t *testing.T) {
	registry := newRegistry()
	registry.Create("s1", 1)

	table := &models.Table{Headers: []string{"a"}}
	require.NoError(t, registry.Complete("s1", models.BatchResults{}, table))

	got, err := registry.Consume("s1")
	require.NoError(t, err)
	assert.Same(t, table, got)

	_, err = registry.Consume("s1")
	require.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = registry.Get("s1")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestRegistry_ConsumeBeforeCompletion(t *testing.T) {
	registry := newRegistry()
	registry.Create("s1", 5)

	_, err := registry.Consume("s1")

	require.ErrorIs(t, err, session.ErrResultNotReady)

	// The session survives a premature download attempt.
	_, err = registry.Get("s1")
	require.NoError(t, err)
}

func TestRegistry_Expiry(t *testing.T) {
	registry := session.NewRegistry(20*time.Millisecond, slog.Default())
	registry.Create("s1", 1)

	time.Sleep(60 * time.Millisecond)

	_, err := registry.Get("s1")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}
