package models

// Status is the lifecycle state of a processing session.
type Status string

const (
	// StatusProcessing means the background batch is still running.
	StatusProcessing Status = "processing"
	// StatusCompleted means every row was attempted and results are ready.
	StatusCompleted Status = "completed"
	// StatusFailed means the driving loop itself failed; Message explains why.
	StatusFailed Status = "error"
)

// BatchResults carries the final statistics and the preview addresses,
// attached to a session once it completes.
type BatchResults struct {
	Stats           BatchStats `json:"stats"`
	SampleAddresses []string   `json:"sample_addresses"`
}

// SessionSnapshot is a consistent point-in-time copy of a session's state as
// handed to progress pollers. Fields updated during one row's processing are
// always visible as a unit; a snapshot never mixes a new Processed count
// with a stale Status.
type SessionSnapshot struct {
	SessionID string        `json:"session_id"`
	Status    Status        `json:"status"`
	Total     int           `json:"total"`
	Processed int           `json:"processed"`
	Results   *BatchResults `json:"results,omitempty"`
	Message   string        `json:"message,omitempty"`
}
