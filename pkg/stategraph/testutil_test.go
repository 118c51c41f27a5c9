package stategraph

import (
	"context"
	"sync"

	"github.com/davenportk/stategraph/pkg/stategraph/state"
)

// Test helpers shared across the package tests.

// testCtx creates a plain execution context.
func testCtx() Context {
	return NewContext(context.Background())
}

// setNode returns a node writing a single field.
func setNode(field string, value any) NodeFunc {
	return func(ctx Context, s state.State) (state.State, error) {
		return state.State{field: value}, nil
	}
}

// noopNode returns an empty update.
func noopNode(ctx Context, s state.State) (state.State, error) {
	return state.State{}, nil
}

// tracker records node executions, safe under parallel fan-out.
type tracker struct {
	mu    sync.Mutex
	names []string
}

func (tr *tracker) add(name string) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.names = append(tr.names, name)
}

func (tr *tracker) seen() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.names...)
}

// trackingNode records its execution and returns an empty update.
func trackingNode(name string, tr *tracker) NodeFunc {
	return func(ctx Context, s state.State) (state.State, error) {
		tr.add(name)
		return state.State{}, nil
	}
}

// failingNode returns the given error.
func failingNode(err error) NodeFunc {
	return func(ctx Context, s state.State) (state.State, error) {
		return nil, err
	}
}

// panicNode panics with the given value.
func panicNode(value any) NodeFunc {
	return func(ctx Context, s state.State) (state.State, error) {
		panic(value)
	}
}

// staticRouter always routes to the given destinations.
func staticRouter(dests ...string) RouterFunc {
	return func(ctx Context, s state.State) ([]string, error) {
		return dests, nil
	}
}

// mustCompile builds a graph or panics; for tests whose subject is
// execution, not compilation.
func mustCompile(g *Graph) *CompiledGraph {
	cg, err := g.Compile()
	if err != nil {
		panic(err)
	}
	return cg
}
