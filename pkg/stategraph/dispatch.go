package stategraph

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/davenportk/stategraph/pkg/stategraph/observability"
	"github.com/davenportk/stategraph/pkg/stategraph/state"
)

// branchResult is the outcome of one branch of a step.
type branchResult struct {
	index    int
	nodeID   string
	update   state.State
	err      error
	duration time.Duration
}

// dispatchStep invokes every node in the frontier against the state
// snapshot taken at step entry and returns the results in dispatch
// order. A single-node frontier runs inline; a multi-node frontier
// fans out into goroutines.
//
// All branches run to completion even when one fails: siblings are
// never cancelled, so their updates are collected deterministically
// before any failure is surfaced. No branch observes another
// branch's update; joins happen in the engine, after this returns.
func (cg *CompiledGraph) dispatchStep(
	ctx Context,
	tracingCtx context.Context,
	frontier []string,
	snapshot state.State,
	cfg *runConfig,
) []branchResult {
	results := make([]branchResult, len(frontier))

	if len(frontier) == 1 {
		results[0] = cg.runBranch(ctx, tracingCtx, 0, frontier[0], snapshot, cfg)
		return results
	}

	var wg sync.WaitGroup
	for i, nodeID := range frontier {
		wg.Add(1)
		go func(idx int, id string) {
			defer wg.Done()
			results[idx] = cg.runBranch(ctx, tracingCtx, idx, id, snapshot.Clone(), cfg)
		}(i, nodeID)
	}
	wg.Wait()

	return results
}

// runBranch executes one node with logging, metrics, and tracing.
func (cg *CompiledGraph) runBranch(
	ctx Context,
	tracingCtx context.Context,
	index int,
	nodeID string,
	snapshot state.State,
	cfg *runConfig,
) branchResult {
	observability.LogNodeStart(cfg.logger, nodeID)

	nodeTracingCtx := tracingCtx
	var span trace.Span
	if cfg.tracingEnabled {
		nodeTracingCtx, span = cfg.spans.StartNodeSpan(tracingCtx, nodeID)
	}

	start := time.Now()
	update, err := cg.invokeNode(ctx, nodeID, snapshot, cfg)
	duration := time.Since(start)

	cfg.metrics.RecordNodeExecution(nodeTracingCtx, nodeID, duration, err)
	if cfg.tracingEnabled {
		cfg.spans.EndSpanWithError(span, err)
	}

	if err != nil {
		observability.LogNodeError(cfg.logger, nodeID, err)
	} else {
		observability.LogNodeComplete(cfg.logger, nodeID, float64(duration.Milliseconds()))
	}

	return branchResult{
		index:    index,
		nodeID:   nodeID,
		update:   update,
		err:      err,
		duration: duration,
	}
}

// invokeNode runs a node function with retry, per-node time budget,
// and panic containment. Only plain node errors are retried;
// timeouts, panics, and cancellation surface immediately.
func (cg *CompiledGraph) invokeNode(ctx Context, nodeID string, snapshot state.State, cfg *runConfig) (state.State, error) {
	fn, ok := cg.getNode(nodeID)
	if !ok {
		// Unreachable after a successful Compile.
		return nil, &NodeError{NodeID: nodeID, Err: fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)}
	}

	ec := asExecution(ctx)
	var lastErr error
	for attempt := 1; attempt <= cfg.retryAttempts; attempt++ {
		if attempt > 1 && cfg.retryBackoff > 0 {
			time.Sleep(cfg.retryBackoff)
		}

		nodeCtx := ec.withNode(nodeID, attempt)
		update, err := runWithBudget(nodeCtx, fn, snapshot, cfg.nodeTimeout, nodeID)
		if err == nil {
			return update, nil
		}
		lastErr = err

		var te *TimeoutError
		var pe *PanicError
		if errors.As(err, &te) || errors.As(err, &pe) || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// runWithBudget applies the per-node time budget. On budget overrun
// the branch reports a TimeoutError and the node's goroutine is
// abandoned; on external cancellation the node is waited for, so the
// step joins cleanly before the run aborts.
func runWithBudget(nodeCtx *executionContext, fn NodeFunc, snapshot state.State, budget time.Duration, nodeID string) (state.State, error) {
	if budget <= 0 {
		return safeInvoke(nodeCtx, fn, snapshot, nodeID)
	}

	bctx, cancel := context.WithTimeout(nodeCtx.Context, budget)
	defer cancel()
	bounded := nodeCtx.withInner(bctx)

	type outcome struct {
		update state.State
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		u, e := safeInvoke(bounded, fn, snapshot, nodeID)
		done <- outcome{update: u, err: e}
	}()

	select {
	case o := <-done:
		return o.update, o.err
	case <-bctx.Done():
		if errors.Is(bctx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{NodeID: nodeID, Timeout: budget}
		}
		// External cancellation: let the in-flight node finish.
		o := <-done
		return o.update, o.err
	}
}

// safeInvoke calls the node function with panic recovery.
func safeInvoke(ctx Context, fn NodeFunc, snapshot state.State, nodeID string) (update state.State, err error) {
	defer func() {
		if r := recover(); r != nil {
			update = nil
			err = &PanicError{
				NodeID: nodeID,
				Value:  r,
				Stack:  string(debug.Stack()),
			}
		}
	}()

	update, ferr := fn(ctx, snapshot)
	if ferr != nil {
		return nil, &NodeError{NodeID: nodeID, Err: ferr}
	}
	return update, nil
}
