package stategraph

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for graph building and compilation.
var (
	// ErrNoStartEdge indicates no edge from START was defined before Compile().
	ErrNoStartEdge = errors.New("no edge from START")

	// ErrNodeNotFound indicates an edge or route references a non-existent node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode indicates a node name was registered twice.
	ErrDuplicateNode = errors.New("duplicate node name")

	// ErrReservedName indicates __start__ or __end__ was used as a node name.
	ErrReservedName = errors.New("reserved node name")

	// ErrNilNodeFunc indicates AddNode was called with a nil function.
	ErrNilNodeFunc = errors.New("node function is nil")

	// ErrNilRouter indicates AddConditionalEdge was called with a nil router.
	ErrNilRouter = errors.New("router function is nil")
)

// Sentinel errors for execution.
var (
	// ErrNilContext indicates Run() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrEmptyRoute indicates a router returned no destinations.
	ErrEmptyRoute = errors.New("router returned no destinations")

	// ErrNoOutgoingEdge indicates a node has neither a static nor a
	// conditional edge leaving it.
	ErrNoOutgoingEdge = errors.New("no outgoing edge")
)

// Sentinel errors for checkpointing and resume.
var (
	// ErrRunIDRequired indicates checkpointing was enabled without a run ID.
	ErrRunIDRequired = errors.New("run ID required for checkpointing")

	// ErrNoCheckpoints indicates no checkpoints exist for the run.
	ErrNoCheckpoints = errors.New("no checkpoints found for run")

	// ErrCheckpointVersionMismatch indicates an incompatible checkpoint format.
	ErrCheckpointVersionMismatch = errors.New("checkpoint version mismatch")
)

// ConfigError reports malformed graph construction, detected at
// Compile() time. Issues holds every violation found, joined so that
// errors.Is works against the sentinels above.
type ConfigError struct {
	Issues error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid graph: %v", e.Issues)
}

// Unwrap returns the joined issues for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Issues
}

// RoutingError reports a conditional edge whose router failed,
// returned nothing, or produced an unmapped/unregistered destination.
// Routing errors are always fatal for the run.
type RoutingError struct {
	// FromNode is the node with the conditional edge.
	FromNode string
	// Returned is the offending resolved value, if any.
	Returned string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *RoutingError) Error() string {
	if e.Returned != "" {
		return fmt.Sprintf("routing from %s: %q: %v", e.FromNode, e.Returned, e.Err)
	}
	return fmt.Sprintf("routing from %s: %v", e.FromNode, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RoutingError) Unwrap() error {
	return e.Err
}

// NodeError reports a node callable that returned an error. Fatal for
// the run unless the graph defines an error route for the node.
type NodeError struct {
	// NodeID is the node that failed.
	NodeID string
	// Err is the error the node returned.
	Err error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %v", e.NodeID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic raised inside a node callable,
// including the stack trace at the point of panic.
type PanicError struct {
	// NodeID is the node that panicked.
	NodeID string
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace captured in the recovering goroutine.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("node %s panicked: %v", e.NodeID, e.Value)
}

// TimeoutError reports a node that exceeded the configured per-node
// time budget. The node's goroutine is abandoned; its update, if it
// ever arrives, is discarded.
type TimeoutError struct {
	// NodeID is the node that timed out.
	NodeID string
	// Timeout is the configured budget.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("node %s exceeded time budget %s", e.NodeID, e.Timeout)
}

// AbortError reports an externally requested cancellation, honored at
// a step boundary. In-flight branches of the interrupted step were
// allowed to finish before the run transitioned to OutcomeAborted.
type AbortError struct {
	// NodeID is a node from the step that would have run next.
	NodeID string
	// Cause is the context error (context.Canceled or DeadlineExceeded).
	Cause error
}

// Error implements the error interface.
func (e *AbortError) Error() string {
	return fmt.Sprintf("aborted before node %s: %v", e.NodeID, e.Cause)
}

// Unwrap returns the cancellation cause for errors.Is/As support.
func (e *AbortError) Unwrap() error {
	return e.Cause
}
