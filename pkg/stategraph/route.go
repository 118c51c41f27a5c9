package stategraph

import (
	"fmt"
	"runtime/debug"

	"github.com/davenportk/stategraph/pkg/stategraph/state"
)

// resolveNext determines the destination set after a node, using the
// state as merged at the end of the current step.
//
// Static edges resolve deterministically. Conditional edges invoke
// the router against a read-only snapshot, normalize its output to an
// ordered list, translate each element through the path map (unmapped
// values pass through as literal node names), and dedupe preserving
// first-seen order so fan-out never dispatches a node twice for one
// decision.
//
// Every resolved name must be a registered node or END; anything else
// is a RoutingError. Router failures (error return, empty result, or
// panic) are RoutingErrors as well - never a silent default to END.
func (cg *CompiledGraph) resolveNext(ctx Context, s state.State, current string) ([]string, error) {
	ce, conditional := cg.getConditional(current)
	if !conditional {
		edges := cg.edges[current]
		if len(edges) == 0 {
			// Unreachable after a successful Compile.
			return nil, &RoutingError{FromNode: current, Err: ErrNoOutgoingEdge}
		}
		return dedupe(edges), nil
	}

	raws, err := invokeRouter(ctx, ce.router, s.Clone(), current)
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, &RoutingError{FromNode: current, Err: ErrEmptyRoute}
	}

	dests := make([]string, 0, len(raws))
	for _, raw := range raws {
		dest := raw
		if ce.pathMap != nil {
			if mapped, ok := ce.pathMap[raw]; ok {
				dest = mapped
			}
		}
		dests = append(dests, dest)
	}
	dests = dedupe(dests)

	for _, dest := range dests {
		if dest != END && !cg.HasNode(dest) {
			return nil, &RoutingError{FromNode: current, Returned: dest, Err: ErrNodeNotFound}
		}
	}
	return dests, nil
}

// invokeRouter calls a router with panic containment. A panic inside
// the router surfaces as a RoutingError carrying the stack.
func invokeRouter(ctx Context, router RouterFunc, s state.State, from string) (raws []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			raws = nil
			err = &RoutingError{
				FromNode: from,
				Err:      fmt.Errorf("router panicked: %v\n%s", r, debug.Stack()),
			}
		}
	}()

	nodeCtx := asExecution(ctx).withNode(from, 1)
	raws, rerr := router(nodeCtx, s)
	if rerr != nil {
		return nil, &RoutingError{FromNode: from, Err: rerr}
	}
	return raws, nil
}

// dedupe removes duplicate names preserving first-seen order.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// appendDedupe merges names into dest preserving first-seen order
// across the whole frontier's decisions.
func appendDedupe(dest []string, names ...string) []string {
	for _, n := range names {
		found := false
		for _, d := range dest {
			if d == n {
				found = true
				break
			}
		}
		if !found {
			dest = append(dest, n)
		}
	}
	return dest
}
