package stategraph

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/davenportk/stategraph/pkg/stategraph/checkpoint"
	"github.com/davenportk/stategraph/pkg/stategraph/observability"
)

// Context provides execution context to nodes and routers.
// It extends context.Context with engine services and metadata.
//
// Context is immutable after creation; the engine derives per-node
// contexts with the NodeID set and the logger enriched.
type Context interface {
	context.Context

	// Logger returns the configured logger, enriched with run and
	// node fields during execution. Never nil; defaults to
	// slog.Default().
	Logger() *slog.Logger

	// Checkpointer returns the checkpoint store, or nil if not
	// configured. Nodes should check for nil before using.
	Checkpointer() checkpoint.Store

	// RunID returns the unique identifier for this run.
	// Auto-generated if not configured.
	RunID() string

	// NodeID returns the node currently executing, or "" outside
	// node execution.
	NodeID() string

	// Attempt returns the attempt number for the current node
	// invocation (1 = first attempt).
	Attempt() int
}

// executionContext is the internal implementation of Context.
type executionContext struct {
	context.Context

	logger       *slog.Logger
	checkpointer checkpoint.Store
	runID        string
	nodeID       string
	attempt      int
}

func (c *executionContext) Logger() *slog.Logger { return c.logger }

func (c *executionContext) Checkpointer() checkpoint.Store { return c.checkpointer }

func (c *executionContext) RunID() string { return c.runID }

func (c *executionContext) NodeID() string { return c.nodeID }

func (c *executionContext) Attempt() int { return c.attempt }

// ContextOption configures a Context.
type ContextOption func(*executionContext)

// WithLogger sets the logger for the context.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCheckpointer exposes a checkpoint store to nodes via the
// context. This is independent of the engine's own checkpointing,
// which is configured per run with WithCheckpointStore.
func WithCheckpointer(store checkpoint.Store) ContextOption {
	return func(c *executionContext) {
		c.checkpointer = store
	}
}

// WithContextRunID sets the run identifier used for logging and
// tracing. If not set, a UUID is generated. For checkpointing, use
// WithRunID as a RunOption.
func WithContextRunID(id string) ContextOption {
	return func(c *executionContext) {
		c.runID = id
	}
}

// NewContext creates an execution context from a standard context.
//
// Example:
//
//	ctx := stategraph.NewContext(context.Background(),
//	    stategraph.WithLogger(myLogger),
//	    stategraph.WithContextRunID("run-123"))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context: ctx,
		logger:  slog.Default(),
		runID:   uuid.New().String(),
		attempt: 1,
	}
	for _, opt := range opts {
		opt(ec)
	}
	return ec
}

// withNode derives a context for one node invocation, enriching the
// logger with run_id, node_id, and attempt.
func (c *executionContext) withNode(nodeID string, attempt int) *executionContext {
	return &executionContext{
		Context:      c.Context,
		logger:       observability.EnrichLogger(c.logger, c.runID, nodeID, attempt),
		checkpointer: c.checkpointer,
		runID:        c.runID,
		nodeID:       nodeID,
		attempt:      attempt,
	}
}

// withInner swaps the embedded context.Context, keeping services and
// metadata. Used to apply per-node deadlines.
func (c *executionContext) withInner(inner context.Context) *executionContext {
	out := *c
	out.Context = inner
	return &out
}

// asExecution normalizes any Context to the internal type so the
// engine can derive node contexts from caller-supplied
// implementations as well.
func asExecution(ctx Context) *executionContext {
	if ec, ok := ctx.(*executionContext); ok {
		return ec
	}
	return &executionContext{
		Context:      ctx,
		logger:       ctx.Logger(),
		checkpointer: ctx.Checkpointer(),
		runID:        ctx.RunID(),
		nodeID:       ctx.NodeID(),
		attempt:      ctx.Attempt(),
	}
}
