package checkpoint

import (
	"encoding/json"
	"time"
)

// Version is the current checkpoint format version.
// Increment when making breaking changes to the structure.
const Version = 1

// Checkpoint is the persisted snapshot of a run taken at a step
// boundary. It contains everything needed to resume: the state, the
// per-node visit counts, and the node set pending dispatch.
type Checkpoint struct {
	// Metadata
	Version   int       `json:"version"`
	RunID     string    `json:"run_id"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`

	// Execution snapshot
	State    json.RawMessage `json:"state"`
	Visits   map[string]int  `json:"visits,omitempty"`
	Frontier []string        `json:"frontier"`
}

// New creates a checkpoint. State must already be JSON-serialized.
func New(runID string, seq int, stateData []byte, visits map[string]int, frontier []string) *Checkpoint {
	return &Checkpoint{
		Version:   Version,
		RunID:     runID,
		Sequence:  seq,
		Timestamp: time.Now().UTC(),
		State:     stateData,
		Visits:    visits,
		Frontier:  frontier,
	}
}

// Marshal serializes a checkpoint to JSON.
func (c *Checkpoint) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Unmarshal deserializes a checkpoint from JSON.
func Unmarshal(data []byte) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
