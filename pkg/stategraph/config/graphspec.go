package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// GraphSpec is the declarative graph document. Node names reference
// callables bound through a registry at build time; routing rules are
// boolean expressions over state fields.
//
// Example document:
//
//	name: support-agent
//	entry: classify
//	nodes:
//	  - id: classify
//	  - id: escalate
//	  - id: respond
//	edges:
//	  - from: escalate
//	    to: __end__
//	routes:
//	  - from: classify
//	    rules:
//	      - when: priority == "high"
//	        to: escalate
//	    else: respond
//	error_routes:
//	  - from: respond
//	    to: escalate
//	run:
//	  max_visits: 10
//	  node_timeout: 30s
type GraphSpec struct {
	// Name identifies the graph in logs and traces.
	Name string `yaml:"name" json:"name"`

	// Entry is the node the run starts at.
	Entry string `yaml:"entry" json:"entry"`

	// Nodes lists the node IDs participating in the graph. Each must
	// be bound to a callable in the registry at build time.
	Nodes []NodeSpec `yaml:"nodes" json:"nodes"`

	// Edges are static transitions. Multiple edges from the same node
	// fan out in parallel.
	Edges []EdgeSpec `yaml:"edges" json:"edges"`

	// Routes are conditional transitions. Rules are evaluated in order
	// and the first match wins.
	Routes []RouteSpec `yaml:"routes" json:"routes"`

	// ErrorRoutes redirect node failures to a recovery node instead of
	// failing the run.
	ErrorRoutes []EdgeSpec `yaml:"error_routes" json:"error_routes"`

	// Run holds default run options (max_visits, node_timeout,
	// retry_attempts, retry_backoff).
	Run map[string]any `yaml:"run" json:"run"`
}

// NodeSpec declares a graph node.
type NodeSpec struct {
	ID string `yaml:"id" json:"id"`
}

// EdgeSpec declares a static transition.
type EdgeSpec struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// RouteSpec declares a conditional transition with ordered rules.
type RouteSpec struct {
	From string `yaml:"from" json:"from"`

	// Rules are evaluated top to bottom; the first rule whose
	// expression is true selects the destination.
	Rules []RuleSpec `yaml:"rules" json:"rules"`

	// Else is the destination when no rule matches. If empty, a
	// non-matching evaluation is a routing error.
	Else string `yaml:"else" json:"else"`
}

// RuleSpec is one routing rule: a boolean expression over state
// fields and a destination node.
type RuleSpec struct {
	When string `yaml:"when" json:"when"`
	To   string `yaml:"to" json:"to"`
}

// ParseGraphSpec decodes a graph document. YAML is a superset of
// JSON, so both formats are accepted.
func ParseGraphSpec(data []byte) (*GraphSpec, error) {
	var spec GraphSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse graph spec: %w", err)
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// GraphSpecFromFile loads and decodes a graph document from a file.
// It accepts the same formats and extensions as FromFile.
func GraphSpecFromFile(path string) (*GraphSpec, error) {
	var spec GraphSpec
	if err := unmarshalFile(path, &spec); err != nil {
		return nil, fmt.Errorf("load graph spec: %w", err)
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// RunConfig returns the run options section as a Config.
func (s *GraphSpec) RunConfig() Config {
	return New(s.Run)
}

// validate checks document-level structure. Graph-level validation
// (node references, reachability) happens at compile time.
func (s *GraphSpec) validate() error {
	if s.Entry == "" {
		return fmt.Errorf("graph spec: entry is required")
	}
	if len(s.Nodes) == 0 {
		return fmt.Errorf("graph spec: at least one node is required")
	}
	for i, n := range s.Nodes {
		if n.ID == "" {
			return fmt.Errorf("graph spec: node %d: id is required", i)
		}
	}
	for i, e := range s.Edges {
		if e.From == "" || e.To == "" {
			return fmt.Errorf("graph spec: edge %d: from and to are required", i)
		}
	}
	for i, r := range s.Routes {
		if r.From == "" {
			return fmt.Errorf("graph spec: route %d: from is required", i)
		}
		if len(r.Rules) == 0 && r.Else == "" {
			return fmt.Errorf("graph spec: route %d: rules or else is required", i)
		}
		for j, rule := range r.Rules {
			if rule.When == "" || rule.To == "" {
				return fmt.Errorf("graph spec: route %d rule %d: when and to are required", i, j)
			}
		}
	}
	for i, e := range s.ErrorRoutes {
		if e.From == "" || e.To == "" {
			return fmt.Errorf("graph spec: error route %d: from and to are required", i)
		}
	}
	return nil
}
