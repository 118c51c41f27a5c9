package stategraph

import (
	"errors"
	"fmt"
	"log/slog"
)

// Compile validates the graph and creates an executable
// CompiledGraph. All violations found are joined inside the returned
// ConfigError, so a single pass reports every problem.
//
// Validation checks:
//  1. Construction issues recorded by the builder (duplicates,
//     reserved names, nil functions)
//  2. Exactly one static edge leaving START, targeting a real node
//  3. Every static edge source and target references a registered
//     node, START, or END
//  4. Every conditional-edge source and error-route endpoint exists
//  5. No node carries both static edges and a conditional edge
//  6. Every node has some outgoing edge (static, conditional, or
//     error route alone is not enough)
//
// Nodes unreachable from START are logged as warnings, not errors:
// a conditional edge may legally route to any registered node.
func (g *Graph) Compile() (*CompiledGraph, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	errs := append([]error(nil), g.issues...)

	// Entry point
	startEdges := g.edges[START]
	entry := ""
	switch len(startEdges) {
	case 0:
		errs = append(errs, ErrNoStartEdge)
	case 1:
		entry = startEdges[0]
		if entry == END {
			errs = append(errs, fmt.Errorf("edge from START targets END directly"))
		} else if _, ok := g.nodes[entry]; !ok {
			errs = append(errs, fmt.Errorf("%w: entry %q", ErrNodeNotFound, entry))
		}
	default:
		errs = append(errs, fmt.Errorf("multiple edges from START: %v", startEdges))
	}

	// Static edge endpoints
	for from, targets := range g.edges {
		if from != START {
			if _, ok := g.nodes[from]; !ok {
				errs = append(errs, fmt.Errorf("%w: edge source %q", ErrNodeNotFound, from))
			}
		}
		for _, to := range targets {
			if to != END {
				if _, ok := g.nodes[to]; !ok {
					errs = append(errs, fmt.Errorf("%w: edge target %q", ErrNodeNotFound, to))
				}
			}
		}
	}

	// Conditional edge sources, and the static/conditional conflict
	for from := range g.conditionalEdges {
		if _, ok := g.nodes[from]; !ok {
			errs = append(errs, fmt.Errorf("%w: conditional edge source %q", ErrNodeNotFound, from))
		}
		if len(g.edges[from]) > 0 {
			errs = append(errs, fmt.Errorf("node %q has both static and conditional edges", from))
		}
	}

	// Error route endpoints
	for from, to := range g.errorRoutes {
		if _, ok := g.nodes[from]; !ok {
			errs = append(errs, fmt.Errorf("%w: error route source %q", ErrNodeNotFound, from))
		}
		if to != END {
			if _, ok := g.nodes[to]; !ok {
				errs = append(errs, fmt.Errorf("%w: error route target %q", ErrNodeNotFound, to))
			}
		}
	}

	// Every node must be able to hand control somewhere.
	for _, name := range g.nodeOrder {
		if len(g.edges[name]) == 0 {
			if _, ok := g.conditionalEdges[name]; !ok {
				errs = append(errs, fmt.Errorf("%w: node %q", ErrNoOutgoingEdge, name))
			}
		}
	}

	if len(errs) > 0 {
		return nil, &ConfigError{Issues: errors.Join(errs...)}
	}

	g.warnUnreachable(entry)

	return g.build(entry), nil
}

// warnUnreachable logs nodes not reachable from the entry node.
// A node with a conditional edge can target any registered node, so
// traversal through one marks everything reachable.
func (g *Graph) warnUnreachable(entry string) {
	reachable := map[string]bool{entry: true}
	queue := []string{entry}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, to := range g.edges[cur] {
			if to != END && !reachable[to] {
				reachable[to] = true
				queue = append(queue, to)
			}
		}
		if to, ok := g.errorRoutes[cur]; ok && to != END && !reachable[to] {
			reachable[to] = true
			queue = append(queue, to)
		}
		if _, ok := g.conditionalEdges[cur]; ok {
			// Router targets are runtime-determined; assume any node.
			for _, name := range g.nodeOrder {
				if !reachable[name] {
					reachable[name] = true
					queue = append(queue, name)
				}
			}
		}
	}

	for _, name := range g.nodeOrder {
		if !reachable[name] {
			slog.Warn("node is unreachable from START", "node_id", name)
		}
	}
}

// build creates the immutable CompiledGraph from the builder state.
func (g *Graph) build(entry string) *CompiledGraph {
	nodes := make(map[string]NodeFunc, len(g.nodes))
	for name, fn := range g.nodes {
		nodes[name] = fn
	}

	edges := make(map[string][]string, len(g.edges))
	for from, targets := range g.edges {
		edges[from] = append([]string(nil), targets...)
	}

	conditional := make(map[string]conditionalEdge, len(g.conditionalEdges))
	for from, ce := range g.conditionalEdges {
		pm := make(PathMap, len(ce.pathMap))
		for raw, dest := range ce.pathMap {
			pm[raw] = dest
		}
		if ce.pathMap == nil {
			pm = nil
		}
		conditional[from] = conditionalEdge{router: ce.router, pathMap: pm}
	}

	errorRoutes := make(map[string]string, len(g.errorRoutes))
	for from, to := range g.errorRoutes {
		errorRoutes[from] = to
	}

	return &CompiledGraph{
		schema:           g.schema,
		nodes:            nodes,
		nodeOrder:        append([]string(nil), g.nodeOrder...),
		edges:            edges,
		conditionalEdges: conditional,
		errorRoutes:      errorRoutes,
		entry:            entry,
	}
}
