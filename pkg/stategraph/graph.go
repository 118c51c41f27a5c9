package stategraph

import (
	"fmt"
	"strings"
	"sync"

	"github.com/davenportk/stategraph/pkg/stategraph/state"
)

// Graph is a mutable builder for execution graphs. Create one with
// New, chain AddNode/AddEdge/AddConditionalEdge calls, then call
// Compile() to obtain an immutable CompiledGraph.
//
// Building is append-only and must finish before any execution
// starts. Construction mistakes (duplicate names, reserved names,
// dangling edges) are collected and reported together as a
// ConfigError from Compile(), so edges may be added in any order.
//
// Graph is safe for construction from a single goroutine; the
// internal mutex only guards against accidental concurrent building.
type Graph struct {
	mu     sync.Mutex
	schema *state.Schema

	nodes            map[string]NodeFunc
	nodeOrder        []string
	edges            map[string][]string
	conditionalEdges map[string]conditionalEdge
	errorRoutes      map[string]string

	issues []error
}

// conditionalEdge binds a router and its optional path map to a
// source node.
type conditionalEdge struct {
	router  RouterFunc
	pathMap PathMap
}

// New creates a graph builder using the given state schema.
// A nil schema is valid and gives every field the Overwrite policy.
func New(schema *state.Schema) *Graph {
	if schema == nil {
		schema = state.NewSchema()
	}
	return &Graph{
		schema:           schema,
		nodes:            make(map[string]NodeFunc),
		edges:            make(map[string][]string),
		conditionalEdges: make(map[string]conditionalEdge),
		errorRoutes:      make(map[string]string),
	}
}

// AddNode registers a named node. Returns the graph for chaining.
//
// The name must be non-empty, must not be a sentinel (START/END),
// must not contain whitespace, and must be unique. Violations are
// reported by Compile().
func (g *Graph) AddNode(name string, fn NodeFunc) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case name == "":
		g.issues = append(g.issues, fmt.Errorf("%w: empty node name", ErrReservedName))
		return g
	case isSentinel(name):
		g.issues = append(g.issues, fmt.Errorf("%w: %s", ErrReservedName, name))
		return g
	case strings.ContainsAny(name, " \t\n\r"):
		g.issues = append(g.issues, fmt.Errorf("node name %q contains whitespace", name))
		return g
	case fn == nil:
		g.issues = append(g.issues, fmt.Errorf("%w: %s", ErrNilNodeFunc, name))
		return g
	}

	if _, exists := g.nodes[name]; exists {
		g.issues = append(g.issues, fmt.Errorf("%w: %s", ErrDuplicateNode, name))
		return g
	}

	g.nodes[name] = fn
	g.nodeOrder = append(g.nodeOrder, name)
	return g
}

// AddEdge adds a static edge. The source may be START (designating
// the entry node); the target may be END. Several static edges from
// one node form a parallel fan-out, dispatched in insertion order.
// Returns the graph for chaining.
//
// Edge validation happens at Compile() time.
func (g *Graph) AddEdge(from, to string) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges[from] = append(g.edges[from], to)
	return g
}

// AddConditionalEdge binds a router function to a source node, with
// an optional path map translating router outputs to node names
// (pass nil when router outputs are already node names). Returns the
// graph for chaining.
//
// A node can have either static edges or a conditional edge, not
// both; defining both is a ConfigError.
func (g *Graph) AddConditionalEdge(from string, router RouterFunc, pathMap PathMap) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()

	if router == nil {
		g.issues = append(g.issues, fmt.Errorf("%w: conditional edge from %s", ErrNilRouter, from))
		return g
	}
	if _, exists := g.conditionalEdges[from]; exists {
		g.issues = append(g.issues, fmt.Errorf("duplicate conditional edge from %s", from))
		return g
	}

	g.conditionalEdges[from] = conditionalEdge{router: router, pathMap: pathMap}
	return g
}

// AddErrorRoute designates a recovery node for errors returned by
// the given node, distinct from normal conditional routing. When the
// node fails, the engine records the error message under
// state.ErrorField and continues at the recovery node instead of
// failing the run. Returns the graph for chaining.
func (g *Graph) AddErrorRoute(from, to string) *Graph {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.errorRoutes[from]; exists {
		g.issues = append(g.issues, fmt.Errorf("duplicate error route from %s", from))
		return g
	}

	g.errorRoutes[from] = to
	return g
}

// Schema returns the state schema the graph was built with.
func (g *Graph) Schema() *state.Schema {
	return g.schema
}

func isSentinel(name string) bool {
	return name == START || name == END
}
