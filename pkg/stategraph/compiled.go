package stategraph

import "github.com/davenportk/stategraph/pkg/stategraph/state"

// CompiledGraph is an immutable, executable graph produced by
// Graph.Compile(). It is safe for concurrent use; any number of runs
// may share one compiled graph, each with its own state and visit
// counts.
type CompiledGraph struct {
	schema           *state.Schema
	nodes            map[string]NodeFunc
	nodeOrder        []string
	edges            map[string][]string
	conditionalEdges map[string]conditionalEdge
	errorRoutes      map[string]string
	entry            string
}

// Entry returns the node the run starts at (the target of the edge
// out of START).
func (cg *CompiledGraph) Entry() string {
	return cg.entry
}

// NodeIDs returns all node names in registration order.
func (cg *CompiledGraph) NodeIDs() []string {
	return append([]string(nil), cg.nodeOrder...)
}

// HasNode reports whether a node is registered.
func (cg *CompiledGraph) HasNode(name string) bool {
	_, ok := cg.nodes[name]
	return ok
}

// Successors returns the static edge targets of a node, in insertion
// order. Conditional targets are runtime-determined and not listed.
func (cg *CompiledGraph) Successors(name string) []string {
	return append([]string(nil), cg.edges[name]...)
}

// IsConditional reports whether the node's outgoing edge is
// conditional.
func (cg *CompiledGraph) IsConditional(name string) bool {
	_, ok := cg.conditionalEdges[name]
	return ok
}

// ErrorRoute returns the recovery node configured for a node and
// whether one exists.
func (cg *CompiledGraph) ErrorRoute(name string) (string, bool) {
	to, ok := cg.errorRoutes[name]
	return to, ok
}

// Schema returns the state schema the graph was compiled with.
func (cg *CompiledGraph) Schema() *state.Schema {
	return cg.schema
}

// getNode returns the node function for a name.
func (cg *CompiledGraph) getNode(name string) (NodeFunc, bool) {
	fn, ok := cg.nodes[name]
	return fn, ok
}

// getConditional returns the conditional edge leaving a node.
func (cg *CompiledGraph) getConditional(name string) (conditionalEdge, bool) {
	ce, ok := cg.conditionalEdges[name]
	return ce, ok
}
