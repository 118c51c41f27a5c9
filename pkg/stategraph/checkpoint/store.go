// Package checkpoint provides persistent checkpoint storage for
// crash recovery of graph runs.
//
// A checkpoint is saved after every engine step and captures the
// shared state, the per-node visit counts, and the pending node set;
// together these are sufficient to resume a run exactly where it
// stopped. Checkpoints are keyed by (runID, sequence) because a
// single step may hold several nodes under parallel fan-out.
package checkpoint

import (
	"errors"
	"fmt"
	"time"
)

// Store persists checkpoints for crash recovery.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a checkpoint for a run at a sequence number.
	// Overwrites if a checkpoint for (runID, seq) already exists.
	Save(runID string, seq int, data []byte) error

	// Load retrieves the checkpoint at a specific sequence.
	// Returns ErrNotFound if it doesn't exist.
	Load(runID string, seq int) ([]byte, error)

	// Latest retrieves the highest-sequence checkpoint for a run.
	// Returns ErrNotFound if the run has no checkpoints.
	Latest(runID string) ([]byte, error)

	// List returns metadata for all checkpoints of a run, ordered by
	// sequence. Returns an empty slice (not an error) for unknown runs.
	List(runID string) ([]Info, error)

	// DeleteRun removes all checkpoints for a run.
	// Returns nil if the run has no checkpoints.
	DeleteRun(runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides checkpoint metadata without loading the full state.
type Info struct {
	RunID     string
	Sequence  int
	Timestamp time.Time
	Size      int64
}

// Sentinel errors for checkpoint operations.
var (
	// ErrNotFound indicates a checkpoint doesn't exist.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")
)

// StoreError wraps a failed checkpoint operation with its context.
type StoreError struct {
	// RunID is the run whose checkpoint operation failed.
	RunID string
	// Op is the operation that failed ("serialize", "marshal", "save").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("checkpoint %s for run %s: %v", e.Op, e.RunID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StoreError) Unwrap() error {
	return e.Err
}
