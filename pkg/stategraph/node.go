package stategraph

import "github.com/davenportk/stategraph/pkg/stategraph/state"

// Reserved sentinel node names. START marks the synthetic entry point;
// the edge out of START selects the first real node. END marks
// termination and is never invoked.
const (
	START = "__start__"
	END   = "__end__"
)

// NodeFunc is the contract every node satisfies. It receives the
// execution context and a read-only snapshot of the current state,
// and returns a partial update containing only the fields it changed
// (nil for no change), or an error.
//
// Nodes must not mutate the snapshot. Any external side effect (a
// network call, a file write) is the node's own responsibility; the
// engine does not track it.
//
// Example:
//
//	func tally(ctx stategraph.Context, s state.State) (state.State, error) {
//	    return state.State{"count": s.Int("count") + 1}, nil
//	}
type NodeFunc func(ctx Context, s state.State) (state.State, error)

// RouterFunc selects the next destination(s) for a conditional edge.
// It receives a read-only snapshot of the current state and returns
// an ordered list of raw route values. A single destination is a
// one-element list.
//
// Raw values are translated through the edge's PathMap when one was
// supplied; unmapped values are used directly as node names. Every
// resolved name must be a registered node or END, otherwise the run
// fails with a RoutingError.
//
// A returned error, an empty list, or a panic inside the router is a
// RoutingError; routing is never silently defaulted to END.
type RouterFunc func(ctx Context, s state.State) ([]string, error)

// PathMap translates a router's raw output values to node names.
// It is fixed at edge-definition time. A nil PathMap means raw values
// are already node names.
type PathMap map[string]string

// RouteTo adapts a single-destination decision to the RouterFunc
// return shape.
//
//	return stategraph.RouteTo("tools"), nil
func RouteTo(dest string) []string {
	return []string{dest}
}
