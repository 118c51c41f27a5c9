/*
Package stategraph executes bounded graphs of named work units with
runtime-determined transitions.

# Overview

stategraph is a Go library for building and running state-machine
graphs: nodes perform work against a shared state, edges decide what
runs next. Edges are either static (always taken) or conditional (a
router function inspects the current state and names one or more
destinations). Multi-destination decisions fan out into concurrent
branches whose updates are joined deterministically.

The library provides:
  - Per-field merge policies (overwrite, append, custom reducers)
  - Compile-time validation of graph structure
  - A per-node visit limit that forces termination of runaway loops
  - Crash recovery via checkpointing (memory or SQLite)
  - OpenTelemetry metrics and tracing, slog structured logging

# Basic Usage

Declare a schema, build a graph, compile, run:

	schema := state.NewSchema().AppendField("log")

	greet := func(ctx stategraph.Context, s state.State) (state.State, error) {
	    return state.State{"log": "hello " + s.String("name")}, nil
	}

	graph := stategraph.New(schema).
	    AddNode("greet", greet).
	    AddEdge(stategraph.START, "greet").
	    AddEdge("greet", stategraph.END)

	compiled, err := graph.Compile()
	if err != nil {
	    log.Fatal(err)
	}

	ctx := stategraph.NewContext(context.Background())
	res, err := compiled.Run(ctx, state.State{"name": "world"})

Nodes receive a snapshot of the state and return only the fields they
changed. The engine merges the partial update through the schema's
reducers before the next step.

# Conditional Routing

A conditional edge binds a router function and an optional path map
translating the router's raw outputs to node names:

	router := func(ctx stategraph.Context, s state.State) ([]string, error) {
	    if s.Int("pending_tools") > 0 {
	        return []string{"continue"}, nil
	    }
	    return []string{"finish"}, nil
	}

	graph.AddConditionalEdge("call_model", router, stategraph.PathMap{
	    "continue": "tools",
	    "finish":   stategraph.END,
	})

Raw values without a path-map entry are used directly as node names.
A resolved destination that is neither a registered node nor END is a
RoutingError; routing is never silently defaulted.

# Fan-Out

A router returning several destinations (or several static edges from
one node) dispatches those nodes concurrently against the same state
snapshot. Branch updates merge in dispatch order, so append-policy
fields see both branches' entries in a stable order no matter which
branch finished first.

# Loop Safety

Each run tracks per-node visit counts. When dispatching a destination
would exceed the limit (default 5, WithMaxVisits to change), the
engine routes to END instead and reports OutcomeLoopLimit - distinct
from normal completion, and not an error.

# Checkpointing

	store, _ := checkpoint.NewSQLiteStore("./checkpoints.db")
	defer store.Close()

	res, err := compiled.Run(ctx, initial,
	    stategraph.WithCheckpointStore(store),
	    stategraph.WithRunID("run-123"))

	// After a crash, continue where the run left off.
	res, err = compiled.Resume(ctx, store, "run-123")

A checkpoint captures the state, the per-node visit counts, and the
pending node set, and round-trips exactly.

# Declarative Graphs

Graphs can also be loaded from YAML or JSON documents with node names
bound through a registry; see FromSpec.
*/
package stategraph
