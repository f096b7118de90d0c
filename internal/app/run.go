package app

import "github.com/google/uuid"

// Run identifies one invocation of the CLI. Runs that resolve paths are
// recorded in the journal when the app closes; read-only commands are not.
type Run struct {
	ID        string
	Operation string
	record    bool
}

// NewRun creates a run with a fresh random ID.
func NewRun(operation string) *Run {
	return &Run{ID: uuid.New().String(), Operation: operation}
}

// MarkRecorded asks for the run's bindings to be journaled on close.
func (r *Run) MarkRecorded() { r.record = true }

// Recorded reports whether the run will be journaled.
func (r *Run) Recorded() bool { return r.record }
