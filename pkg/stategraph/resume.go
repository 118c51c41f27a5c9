package stategraph

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/davenportk/stategraph/pkg/stategraph/checkpoint"
	"github.com/davenportk/stategraph/pkg/stategraph/observability"
	"github.com/davenportk/stategraph/pkg/stategraph/state"
)

// Resume continues a checkpointed run from its latest checkpoint.
// The checkpoint restores the state, the per-node visit counts, and
// the pending node set, so execution continues exactly where the
// original run would have - including the loop guard's memory of how
// often each node already ran.
//
// Checkpointing stays enabled against the same store and run ID.
//
// Example:
//
//	// Previous process crashed mid-run.
//	res, err := compiled.Resume(ctx, store, "run-123")
func (cg *CompiledGraph) Resume(ctx Context, store checkpoint.Store, runID string, opts ...RunOption) (res Result, runErr error) {
	if ctx == nil {
		return Result{Outcome: OutcomeFailed}, ErrNilContext
	}

	data, err := store.Latest(runID)
	if err != nil {
		if err == checkpoint.ErrNotFound {
			return Result{Outcome: OutcomeFailed}, fmt.Errorf("%w: %s", ErrNoCheckpoints, runID)
		}
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("load checkpoint: %w", err)
	}

	cp, err := checkpoint.Unmarshal(data)
	if err != nil {
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("decode checkpoint: %w", err)
	}
	if cp.Version != checkpoint.Version {
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("%w: got %d, expected %d",
			ErrCheckpointVersionMismatch, cp.Version, checkpoint.Version)
	}

	restored, err := state.Unmarshal(cp.State)
	if err != nil {
		return Result{Outcome: OutcomeFailed}, fmt.Errorf("decode checkpoint state: %w", err)
	}

	for _, nodeID := range cp.Frontier {
		if nodeID != END && !cg.HasNode(nodeID) {
			return Result{Outcome: OutcomeFailed}, fmt.Errorf("%w: checkpoint frontier node %q", ErrNodeNotFound, nodeID)
		}
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.checkpointStore = store
	cfg.runID = runID
	cfg.sequence = cp.Sequence
	if cfg.logger == nil {
		cfg.logger = ctx.Logger()
	}

	guard := newLoopGuard(cfg.maxVisits)
	guard.restore(cp.Visits)

	startTime := time.Now()
	observability.LogRunResume(cfg.logger, runID, cp.Sequence)

	var tracingCtx context.Context = ctx
	var runSpan trace.Span
	if cfg.tracingEnabled {
		tracingCtx, runSpan = cfg.spans.StartRunSpan(ctx, "stategraph.resume", runID)
		defer func() {
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	res, runErr = cg.runLoop(ctx, tracingCtx, restored, cp.Frontier, guard, &cfg, cp.Sequence)

	duration := time.Since(startTime)
	cfg.metrics.RecordGraphRun(ctx, res.Outcome.String(), duration)
	if runErr != nil {
		observability.LogRunError(cfg.logger, runID, runErr, float64(duration.Milliseconds()))
	} else {
		observability.LogRunComplete(cfg.logger, runID, res.Outcome.String(), float64(duration.Milliseconds()), res.Steps)
	}

	return res, runErr
}
