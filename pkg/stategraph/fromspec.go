package stategraph

import (
	"fmt"

	"github.com/davenportk/stategraph/pkg/stategraph/config"
	"github.com/davenportk/stategraph/pkg/stategraph/expr"
	"github.com/davenportk/stategraph/pkg/stategraph/registry"
	"github.com/davenportk/stategraph/pkg/stategraph/state"
)

// SpecOption configures declarative graph building.
type SpecOption func(*specConfig)

type specConfig struct {
	schema    *state.Schema
	evaluator *expr.Evaluator
}

// WithSpecSchema sets the state schema for the built graph. Without
// it, every field gets the Overwrite policy.
func WithSpecSchema(schema *state.Schema) SpecOption {
	return func(c *specConfig) {
		c.schema = schema
	}
}

// WithSpecEvaluator sets the expression evaluator used for routing
// rules, allowing custom operators. Without it, rules are evaluated
// with the default operator set.
func WithSpecEvaluator(e *expr.Evaluator) SpecOption {
	return func(c *specConfig) {
		c.evaluator = e
	}
}

// FromSpec builds a graph from a declarative document. Node IDs in
// the document are bound to callables through the registry; routing
// rules become router functions evaluating their `when:` expressions
// against the state in document order, first match wins.
//
// The returned graph still needs Compile(), which performs the usual
// structural validation.
//
// Example:
//
//	spec, err := config.GraphSpecFromFile("support.yaml")
//	nodes := registry.New[string, stategraph.NodeFunc]()
//	nodes.Register("classify", classify)
//	nodes.Register("respond", respond)
//	g, err := stategraph.FromSpec(spec, nodes)
//	compiled, err := g.Compile()
func FromSpec(spec *config.GraphSpec, nodes *registry.Registry[string, NodeFunc], opts ...SpecOption) (*Graph, error) {
	if spec == nil {
		return nil, fmt.Errorf("graph spec is nil")
	}
	if nodes == nil {
		return nil, fmt.Errorf("node registry is nil")
	}

	cfg := specConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.evaluator == nil {
		cfg.evaluator = expr.New()
	}

	g := New(cfg.schema)

	for _, n := range spec.Nodes {
		fn, ok := nodes.Get(n.ID)
		if !ok {
			return nil, fmt.Errorf("node %q not bound in registry: %w", n.ID, ErrNodeNotFound)
		}
		g.AddNode(n.ID, fn)
	}

	g.AddEdge(START, spec.Entry)

	for _, e := range spec.Edges {
		g.AddEdge(e.From, e.To)
	}

	for _, r := range spec.Routes {
		g.AddConditionalEdge(r.From, ruleRouter(r, cfg.evaluator), nil)
	}

	for _, e := range spec.ErrorRoutes {
		g.AddErrorRoute(e.From, e.To)
	}

	return g, nil
}

// ruleRouter turns a document route into a RouterFunc. Rules are
// evaluated in order; the else destination applies when none match.
// No match and no else is a routing failure, never a silent default.
func ruleRouter(route config.RouteSpec, eval *expr.Evaluator) RouterFunc {
	return func(ctx Context, s state.State) ([]string, error) {
		for _, rule := range route.Rules {
			match, err := eval.Evaluate(rule.When, s)
			if err != nil {
				return nil, fmt.Errorf("rule %q: %w", rule.When, err)
			}
			if match {
				return RouteTo(rule.To), nil
			}
		}
		if route.Else != "" {
			return RouteTo(route.Else), nil
		}
		return nil, fmt.Errorf("no routing rule matched for %s", route.From)
	}
}
