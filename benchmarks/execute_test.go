package benchmarks

import (
	"context"
	"testing"

	"github.com/davenportk/stategraph/pkg/stategraph"
	"github.com/davenportk/stategraph/pkg/stategraph/state"
)

// BenchmarkRun_Linear_5 runs a 5-node linear graph.
func BenchmarkRun_Linear_5(b *testing.B) {
	compiled := mustCompile(buildLinearGraph(5))
	ctx := stategraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, state.State{})
	}
}

// BenchmarkRun_Linear_10 runs a 10-node linear graph.
func BenchmarkRun_Linear_10(b *testing.B) {
	compiled := mustCompile(buildLinearGraph(10))
	ctx := stategraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, state.State{})
	}
}

// BenchmarkRun_Linear_50 runs a 50-node linear graph.
func BenchmarkRun_Linear_50(b *testing.B) {
	compiled := mustCompile(buildLinearGraph(50))
	ctx := stategraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, state.State{})
	}
}

// BenchmarkRun_Linear_100 runs a 100-node linear graph.
func BenchmarkRun_Linear_100(b *testing.B) {
	compiled := mustCompile(buildLinearGraph(100))
	ctx := stategraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, state.State{})
	}
}

// BenchmarkRun_Branching runs a graph with conditional edges.
func BenchmarkRun_Branching(b *testing.B) {
	compiled := mustCompile(buildBranchingGraph())
	ctx := stategraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, state.State{"value": i})
	}
}

// BenchmarkRun_FanOut runs a 2-way parallel fan-out.
func BenchmarkRun_FanOut(b *testing.B) {
	compiled := mustCompile(buildFanOutGraph())
	ctx := stategraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, state.State{})
	}
}

// BenchmarkRun_Loop runs a looping graph (3 iterations).
func BenchmarkRun_Loop(b *testing.B) {
	compiled := mustCompile(buildLoopGraph(3))
	ctx := stategraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, state.State{}, stategraph.WithMaxVisits(20))
	}
}

// BenchmarkRun_Loop_10 runs a looping graph (10 iterations).
func BenchmarkRun_Loop_10(b *testing.B) {
	compiled := mustCompile(buildLoopGraph(10))
	ctx := stategraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, state.State{}, stategraph.WithMaxVisits(20))
	}
}

// BenchmarkContextCreation measures context creation overhead.
func BenchmarkContextCreation(b *testing.B) {
	bg := context.Background()
	for i := 0; i < b.N; i++ {
		stategraph.NewContext(bg)
	}
}

// Helper functions

func mustCompile(g *stategraph.Graph) *stategraph.CompiledGraph {
	compiled, err := g.Compile()
	if err != nil {
		panic(err)
	}
	return compiled
}

func buildFanOutGraph() *stategraph.Graph {
	return stategraph.New(nil).
		AddNode("split", noopNode).
		AddNode("left", noopNode).
		AddNode("right", noopNode).
		AddNode("merge", noopNode).
		AddEdge(stategraph.START, "split").
		AddEdge("split", "left").
		AddEdge("split", "right").
		AddEdge("left", "merge").
		AddEdge("right", "merge").
		AddEdge("merge", stategraph.END)
}

func buildLoopGraph(iterations int) *stategraph.Graph {
	loopNode := func(ctx stategraph.Context, s state.State) (state.State, error) {
		return state.State{"count": s.Int("count") + 1}, nil
	}

	router := func(ctx stategraph.Context, s state.State) ([]string, error) {
		if s.Int("count") >= iterations {
			return stategraph.RouteTo("done"), nil
		}
		return stategraph.RouteTo("loop"), nil
	}

	return stategraph.New(nil).
		AddNode("loop", loopNode).
		AddNode("done", noopNode).
		AddEdge(stategraph.START, "loop").
		AddConditionalEdge("loop", router, nil).
		AddEdge("done", stategraph.END)
}
