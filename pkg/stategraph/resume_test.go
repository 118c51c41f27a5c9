package stategraph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davenportk/stategraph/pkg/stategraph/checkpoint"
	"github.com/davenportk/stategraph/pkg/stategraph/state"
)

// failingStore is a checkpoint store whose Save always fails.
type failingStore struct {
	*checkpoint.MemoryStore
	saveErr error
}

func newFailingStore(saveErr error) *failingStore {
	if saveErr == nil {
		saveErr = errors.New("disk full")
	}
	return &failingStore{MemoryStore: checkpoint.NewMemoryStore(), saveErr: saveErr}
}

func (f *failingStore) Save(runID string, seq int, data []byte) error {
	return f.saveErr
}

// loopingGraph builds a counter loop: inc increments "count", the
// router loops back until count reaches limit. failAt, when non-nil,
// makes inc fail while the pointee is true and count equals 1.
func loopingGraph(limit int, failNext *bool) *CompiledGraph {
	inc := func(ctx Context, s state.State) (state.State, error) {
		if failNext != nil && *failNext && s.Int("count") == 1 {
			return nil, errors.New("simulated crash")
		}
		return state.State{"count": s.Int("count") + 1}, nil
	}
	router := func(ctx Context, s state.State) ([]string, error) {
		if s.Int("count") >= limit {
			return RouteTo(END), nil
		}
		return RouteTo("inc"), nil
	}
	return mustCompile(New(nil).
		AddNode("inc", inc).
		AddEdge(START, "inc").
		AddConditionalEdge("inc", router, nil))
}

// TestRun_Checkpointing verifies one checkpoint per step with
// increasing sequence numbers and a resumable payload.
func TestRun_Checkpointing(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	defer store.Close()

	cg := loopingGraph(3, nil)
	res, err := cg.Run(testCtx(), state.State{},
		WithCheckpointStore(store),
		WithRunID("run-1"),
		WithMaxVisits(10))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, res.Outcome)
	assert.Equal(t, 3, res.State.Int("count"))

	infos, err := store.List("run-1")
	require.NoError(t, err)
	require.Len(t, infos, 3) // one per step
	for i, info := range infos {
		assert.Equal(t, i+1, info.Sequence)
		assert.Equal(t, "run-1", info.RunID)
	}

	data, err := store.Latest("run-1")
	require.NoError(t, err)
	cp, err := checkpoint.Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, checkpoint.Version, cp.Version)
	assert.Empty(t, cp.Frontier) // final checkpoint: nothing pending
	assert.Equal(t, 3, cp.Visits["inc"])

	restored, err := state.Unmarshal(cp.State)
	require.NoError(t, err)
	assert.Equal(t, 3, restored.Int("count"))
}

// TestResume_ContinuesAfterFailure verifies a failed run picks up
// from its latest checkpoint and finishes.
func TestResume_ContinuesAfterFailure(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	defer store.Close()

	failNext := true
	cg := loopingGraph(3, &failNext)

	_, err := cg.Run(testCtx(), state.State{},
		WithCheckpointStore(store),
		WithRunID("run-2"),
		WithMaxVisits(10))
	require.Error(t, err) // crashed at count==1

	// The failed step produced no checkpoint; the latest one holds
	// count==1 with inc pending.
	data, err := store.Latest("run-2")
	require.NoError(t, err)
	cp, err := checkpoint.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, 1, cp.Sequence)
	assert.Equal(t, []string{"inc"}, cp.Frontier)

	failNext = false
	res, err := cg.Resume(testCtx(), store, "run-2", WithMaxVisits(10))
	require.NoError(t, err)

	assert.Equal(t, OutcomeCompleted, res.Outcome)
	assert.Equal(t, 3, res.State.Int("count"))

	// Post-resume checkpoints continue the sequence.
	infos, err := store.List("run-2")
	require.NoError(t, err)
	assert.Equal(t, 3, infos[len(infos)-1].Sequence)
}

// TestResume_RestoresVisitCounts verifies the loop guard keeps
// counting across the resume boundary.
func TestResume_RestoresVisitCounts(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	defer store.Close()

	failNext := true
	cg := loopingGraph(100, &failNext) // would loop far past any ceiling

	_, err := cg.Run(testCtx(), state.State{},
		WithCheckpointStore(store),
		WithRunID("run-3"),
		WithMaxVisits(10))
	require.Error(t, err)

	failNext = false
	// Ceiling 3 with one visit already recorded: two more, then forced.
	res, err := cg.Resume(testCtx(), store, "run-3", WithMaxVisits(3))
	require.NoError(t, err)

	assert.Equal(t, OutcomeLoopLimit, res.Outcome)
	assert.Equal(t, "inc", res.ForcedAt)
	assert.Equal(t, 3, res.State.Int("count"))
}

// TestResume_NoCheckpoints verifies the dedicated error for unknown
// runs.
func TestResume_NoCheckpoints(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	defer store.Close()

	cg := loopingGraph(3, nil)
	_, err := cg.Resume(testCtx(), store, "never-ran")
	assert.ErrorIs(t, err, ErrNoCheckpoints)
}

// TestResume_VersionMismatch verifies incompatible checkpoint formats
// are rejected.
func TestResume_VersionMismatch(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	defer store.Close()

	cp := checkpoint.New("run-4", 1, []byte(`{}`), nil, []string{"inc"})
	cp.Version = checkpoint.Version + 1
	data, err := cp.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Save("run-4", 1, data))

	cg := loopingGraph(3, nil)
	_, err = cg.Resume(testCtx(), store, "run-4")
	assert.ErrorIs(t, err, ErrCheckpointVersionMismatch)
}

// TestResume_UnknownFrontierNode verifies a checkpoint referencing a
// node the graph no longer has is rejected.
func TestResume_UnknownFrontierNode(t *testing.T) {
	store := checkpoint.NewMemoryStore()
	defer store.Close()

	cp := checkpoint.New("run-5", 1, []byte(`{}`), nil, []string{"removed_node"})
	data, err := cp.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Save("run-5", 1, data))

	cg := loopingGraph(3, nil)
	_, err = cg.Resume(testCtx(), store, "run-5")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

// TestRun_CheckpointFailureNonFatal verifies save failures only warn
// by default.
func TestRun_CheckpointFailureNonFatal(t *testing.T) {
	cg := loopingGraph(2, nil)
	res, err := cg.Run(testCtx(), state.State{},
		WithCheckpointStore(newFailingStore(nil)),
		WithRunID("run-6"),
		WithMaxVisits(10))

	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, res.Outcome)
	assert.Equal(t, 2, res.State.Int("count"))
}

// TestRun_CheckpointFailureFatal verifies WithCheckpointFailureFatal
// turns save failures into run failures.
func TestRun_CheckpointFailureFatal(t *testing.T) {
	diskFull := errors.New("disk full")
	cg := loopingGraph(2, nil)
	_, err := cg.Run(testCtx(), state.State{},
		WithCheckpointStore(newFailingStore(diskFull)),
		WithRunID("run-7"),
		WithCheckpointFailureFatal(true),
		WithMaxVisits(10))

	require.Error(t, err)
	var se *checkpoint.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "save", se.Op)
	assert.ErrorIs(t, err, diskFull)
}
