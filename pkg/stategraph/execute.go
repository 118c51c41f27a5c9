package stategraph

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/davenportk/stategraph/pkg/stategraph/checkpoint"
	"github.com/davenportk/stategraph/pkg/stategraph/observability"
	"github.com/davenportk/stategraph/pkg/stategraph/state"
)

// Outcome classifies how a run ended.
type Outcome int

const (
	// OutcomeCompleted means the run reached END by normal routing.
	OutcomeCompleted Outcome = iota

	// OutcomeLoopLimit means the loop guard forced the route to END
	// because a destination would have exceeded the visit ceiling.
	// Distinct from Completed so callers can tell "finished" from
	// "gave up"; not an error.
	OutcomeLoopLimit

	// OutcomeFailed means an unrecovered error ended the run.
	OutcomeFailed

	// OutcomeAborted means an external cancellation was honored at a
	// step boundary.
	OutcomeAborted
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeLoopLimit:
		return "loop_limit"
	case OutcomeFailed:
		return "failed"
	case OutcomeAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Result is the outcome of a run.
type Result struct {
	// State is the final state: at END for completed runs, at the
	// point of failure otherwise (useful for debugging).
	State state.State

	// Outcome classifies the termination.
	Outcome Outcome

	// Steps is the number of steps executed. One step may invoke
	// several nodes under fan-out.
	Steps int

	// ForcedAt names the destination whose visit ceiling triggered a
	// forced termination; "" unless Outcome is OutcomeLoopLimit.
	ForcedAt string
}

// Run executes the graph from START with the given initial state.
//
// The error is non-nil only for OutcomeFailed and OutcomeAborted; a
// loop-guard forced termination is reported through Result.Outcome
// with a nil error.
//
// Example:
//
//	ctx := stategraph.NewContext(context.Background())
//	res, err := compiled.Run(ctx, state.State{"input": "hello"},
//	    stategraph.WithMaxVisits(10))
func (cg *CompiledGraph) Run(ctx Context, initial state.State, opts ...RunOption) (res Result, runErr error) {
	if ctx == nil {
		return Result{State: initial, Outcome: OutcomeFailed}, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.checkpointStore != nil && cfg.runID == "" {
		return Result{State: initial, Outcome: OutcomeFailed}, ErrRunIDRequired
	}
	if cfg.logger == nil {
		cfg.logger = ctx.Logger()
	}

	runID := cfg.runID
	if runID == "" {
		runID = ctx.RunID()
	}

	startTime := time.Now()
	observability.LogRunStart(cfg.logger, runID)

	var tracingCtx context.Context = ctx
	var runSpan trace.Span
	if cfg.tracingEnabled {
		tracingCtx, runSpan = cfg.spans.StartRunSpan(ctx, "stategraph", runID)
		defer func() {
			cfg.spans.EndSpanWithError(runSpan, runErr)
		}()
	}

	guard := newLoopGuard(cfg.maxVisits)
	res, runErr = cg.runLoop(ctx, tracingCtx, initial.Clone(), []string{cg.entry}, guard, &cfg, 0)

	duration := time.Since(startTime)
	cfg.metrics.RecordGraphRun(ctx, res.Outcome.String(), duration)
	if runErr != nil {
		observability.LogRunError(cfg.logger, runID, runErr, float64(duration.Milliseconds()))
	} else {
		observability.LogRunComplete(cfg.logger, runID, res.Outcome.String(), float64(duration.Milliseconds()), res.Steps)
	}

	return res, runErr
}

// runLoop drives the step machine: dispatch the frontier, merge
// updates, resolve routing, apply the loop guard, checkpoint, repeat.
// State visibility is atomic at step boundaries; partial updates are
// never observable outside a step.
func (cg *CompiledGraph) runLoop(
	ctx Context,
	tracingCtx context.Context,
	cur state.State,
	frontier []string,
	guard *loopGuard,
	cfg *runConfig,
	startStep int,
) (Result, error) {
	step := startStep

	for len(frontier) > 0 {
		// External aborts are honored at step boundaries only.
		select {
		case <-ctx.Done():
			return Result{State: cur, Outcome: OutcomeAborted, Steps: step},
				&AbortError{NodeID: frontier[0], Cause: ctx.Err()}
		default:
		}

		// Loop guard: consulted before dispatch. A destination that
		// would exceed the ceiling forces the route to END.
		for _, nodeID := range frontier {
			if guard.wouldExceed(nodeID) {
				visits := guard.count(nodeID)
				observability.LogForcedTermination(cfg.logger, nodeID, visits)
				cfg.metrics.RecordForcedTermination(ctx, nodeID)
				if cfg.onForced != nil {
					cfg.onForced(nodeID, visits)
				}
				return Result{State: cur, Outcome: OutcomeLoopLimit, Steps: step, ForcedAt: nodeID}, nil
			}
		}
		for _, nodeID := range frontier {
			guard.recordVisit(nodeID)
		}

		step++
		observability.LogStep(cfg.logger, step, frontier)

		stepTracingCtx := tracingCtx
		var stepSpan trace.Span
		if cfg.tracingEnabled {
			stepTracingCtx, stepSpan = cfg.spans.StartStepSpan(tracingCtx, step, frontier)
		}

		// Invoke the node set against the snapshot taken at step entry.
		results := cg.dispatchStep(ctx, stepTracingCtx, frontier, cur.Clone(), cfg)

		// Merge all branch updates in a single pass over dispatch
		// order, so overwrite-policy fields resolve to the last branch
		// in dispatch order deterministically. A recoverable failure
		// contributes its error-field update at the failing branch's
		// own position.
		var updates []state.State
		var fatal error
		for _, r := range results {
			if r.err == nil {
				updates = append(updates, r.update)
				continue
			}
			if _, recoverable := cg.ErrorRoute(r.nodeID); recoverable {
				updates = append(updates, state.State{state.ErrorField: r.err.Error()})
			} else if fatal == nil {
				fatal = r.err
			}
		}
		cur = cg.schema.Merge(cur, updates)

		if cfg.tracingEnabled {
			cfg.spans.EndSpanWithError(stepSpan, fatal)
		}
		if fatal != nil {
			return Result{State: cur, Outcome: OutcomeFailed, Steps: step}, fatal
		}

		// Resolve the next frontier: error routes for failed branches,
		// the routing resolver for the rest. First-seen order across
		// branches fixes the next step's dispatch order.
		var dests []string
		for _, r := range results {
			if r.err != nil {
				to, _ := cg.ErrorRoute(r.nodeID)
				dests = appendDedupe(dests, to)
				continue
			}
			ds, err := cg.resolveNext(ctx, cur, r.nodeID)
			if err != nil {
				return Result{State: cur, Outcome: OutcomeFailed, Steps: step}, err
			}
			dests = appendDedupe(dests, ds...)
		}

		// END mixed into a wider decision is dropped; the run
		// completes when the decision is exactly {END}.
		next := make([]string, 0, len(dests))
		for _, d := range dests {
			if d != END {
				next = append(next, d)
			}
		}

		if cfg.checkpointStore != nil {
			if err := cg.saveCheckpoint(ctx, cfg, cur, guard, next); err != nil {
				return Result{State: cur, Outcome: OutcomeFailed, Steps: step}, err
			}
		}

		frontier = next
	}

	return Result{State: cur, Outcome: OutcomeCompleted, Steps: step}, nil
}

// saveCheckpoint persists the post-step snapshot: state, visit
// counts, and the pending frontier. Failures are warnings unless
// WithCheckpointFailureFatal was set.
func (cg *CompiledGraph) saveCheckpoint(ctx Context, cfg *runConfig, cur state.State, guard *loopGuard, frontier []string) error {
	fail := func(op string, err error) error {
		if cfg.checkpointFailureFatal {
			return &checkpoint.StoreError{RunID: cfg.runID, Op: op, Err: err}
		}
		observability.LogCheckpointError(cfg.logger, cfg.runID, op, err)
		return nil
	}

	stateBytes, err := cur.Marshal()
	if err != nil {
		return fail("serialize", err)
	}

	cfg.sequence++
	cp := checkpoint.New(cfg.runID, cfg.sequence, stateBytes, guard.snapshot(), frontier)
	data, err := cp.Marshal()
	if err != nil {
		return fail("marshal", err)
	}

	if err := cfg.checkpointStore.Save(cfg.runID, cfg.sequence, data); err != nil {
		return fail("save", err)
	}

	observability.LogCheckpoint(cfg.logger, cfg.runID, cfg.sequence, len(data))
	cfg.metrics.RecordCheckpoint(ctx, cfg.runID, int64(len(data)))
	return nil
}
