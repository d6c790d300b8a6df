// Package reindex holds the observable state of the batch reindex pipeline.
package reindex

import "time"

// State is the lifecycle phase of the reindex pipeline.
type State string

// Pipeline states.
const (
	StateIdle          State = "IDLE"
	StateRunning       State = "RUNNING"
	StateCompleted     State = "COMPLETED"
	StateFailedPartial State = "FAILED_PARTIAL"
)

// Report is a point-in-time snapshot of a reindex run.
type Report struct {
	State State

	// Processed counts recipe records read from the catalog.
	Processed int
	// Indexed counts documents written to the search index.
	Indexed int
	// Skipped counts records dropped for derivation failures.
	Skipped int
	// Vectorless counts documents written without embeddings after a
	// provider failure.
	Vectorless int
	// FailedBatches counts batches whose bulk write failed.
	FailedBatches int
	// Documents is the number of documents visible in the index after
	// the run.
	Documents int

	StartedAt  time.Time
	FinishedAt time.Time
}
