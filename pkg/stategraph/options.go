package stategraph

import (
	"log/slog"
	"time"

	"github.com/davenportk/stategraph/pkg/stategraph/checkpoint"
	"github.com/davenportk/stategraph/pkg/stategraph/config"
	"github.com/davenportk/stategraph/pkg/stategraph/observability"
)

// DefaultMaxVisits is the per-node visit ceiling applied when
// WithMaxVisits is not given. Deliberately small: loops that need
// more iterations should say so explicitly.
const DefaultMaxVisits = 5

// ForcedTerminationFunc is notified when the loop guard overrides a
// routing decision and routes the run to END. nodeID is the
// destination that would have exceeded the limit; visits is its
// count at that point.
type ForcedTerminationFunc func(nodeID string, visits int)

// runConfig holds configuration for one run.
type runConfig struct {
	maxVisits   int
	nodeTimeout time.Duration
	onForced    ForcedTerminationFunc

	retryAttempts int
	retryBackoff  time.Duration

	checkpointStore        checkpoint.Store
	runID                  string
	sequence               int
	checkpointFailureFatal bool

	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
}

// defaultRunConfig returns the default run configuration.
func defaultRunConfig() runConfig {
	return runConfig{
		maxVisits:     DefaultMaxVisits,
		retryAttempts: 1,
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
	}
}

// RunOption configures execution behavior for a single run.
type RunOption func(*runConfig)

// WithMaxVisits sets the per-node visit ceiling. Default 5.
//
// When dispatching a destination would exceed the ceiling, the engine
// forces the route to END and reports OutcomeLoopLimit.
func WithMaxVisits(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxVisits = n
		}
	}
}

// WithNodeTimeout sets a time budget applied to every node
// invocation. Zero (the default) disables the budget. A node that
// overruns it fails with a TimeoutError; sibling branches of the
// same step still run to completion.
func WithNodeTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.nodeTimeout = d
		}
	}
}

// WithOnForcedTermination registers a callback fired when the loop
// guard forces the run to END.
func WithOnForcedTermination(fn ForcedTerminationFunc) RunOption {
	return func(c *runConfig) {
		c.onForced = fn
	}
}

// WithNodeRetry retries failed node invocations up to attempts total
// tries, sleeping backoff between tries. Only errors returned by the
// node are retried; timeouts, panics, and cancellation are not.
func WithNodeRetry(attempts int, backoff time.Duration) RunOption {
	return func(c *runConfig) {
		if attempts > 1 {
			c.retryAttempts = attempts
			c.retryBackoff = backoff
		}
	}
}

// WithCheckpointStore enables checkpointing to the given store.
// Requires WithRunID.
func WithCheckpointStore(store checkpoint.Store) RunOption {
	return func(c *runConfig) {
		c.checkpointStore = store
	}
}

// WithRunID sets the run identifier used to key checkpoints.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithCheckpointFailureFatal makes checkpoint save failures abort the
// run. By default they are logged as warnings and the run continues.
func WithCheckpointFailureFatal(fatal bool) RunOption {
	return func(c *runConfig) {
		c.checkpointFailureFatal = fatal
	}
}

// WithObservabilityLogger sets the logger used for run and node
// lifecycle events. Defaults to the context's logger.
func WithObservabilityLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics for this run.
func WithMetrics(enabled bool) RunOption {
	return func(c *runConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry trace spans for this run.
func WithTracing(enabled bool) RunOption {
	return func(c *runConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithRunConfig applies recognized keys from a config document:
//
//	max_visits:   int
//	node_timeout: duration string or seconds
//	retry_attempts: int
//	retry_backoff:  duration string or seconds
//	retry:
//	  attempts: int
//	  backoff:  duration string or seconds
//
// The nested retry section takes precedence over the flat keys.
// Unrecognized keys are ignored.
func WithRunConfig(cfg config.Config) RunOption {
	return func(c *runConfig) {
		if n := cfg.Int("max_visits", 0); n > 0 {
			c.maxVisits = n
		}
		if d := cfg.Duration("node_timeout", 0); d > 0 {
			c.nodeTimeout = d
		}
		if n := cfg.Int("retry_attempts", 0); n > 1 {
			c.retryAttempts = n
			c.retryBackoff = cfg.Duration("retry_backoff", 0)
		}
		if retry := cfg.Sub("retry"); retry.Has("attempts") {
			if n := retry.Int("attempts", 0); n > 1 {
				c.retryAttempts = n
				c.retryBackoff = retry.Duration("backoff", 0)
			}
		}
	}
}
