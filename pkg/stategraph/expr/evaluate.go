package expr

import (
	"strings"
)

// BinaryOp is a function that compares two values and returns a boolean result.
type BinaryOp func(left, right any) bool

// Evaluator evaluates boolean expressions with optional custom operators.
type Evaluator struct {
	customOps map[string]BinaryOp
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCustomOperator registers a custom binary operator.
// The operator name should not conflict with built-in operators.
func WithCustomOperator(name string, fn BinaryOp) Option {
	return func(e *Evaluator) {
		if e.customOps == nil {
			e.customOps = make(map[string]BinaryOp)
		}
		e.customOps[name] = fn
	}
}

// New creates a new Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate evaluates a boolean expression against the state map.
func (e *Evaluator) Evaluate(expr string, vars map[string]any) (bool, error) {
	return e.evaluateCondition(expr, vars)
}

// Eval is a convenience function that evaluates an expression using
// the default evaluator (no custom operators).
func Eval(expr string, vars map[string]any) (bool, error) {
	return New().Evaluate(expr, vars)
}

// builtinOps lists comparison operators in split order. Longer
// operators come before their prefixes so "<=" is not split as "<".
var builtinOps = []string{"==", "!=", ">=", "<=", ">", "<", " contains "}

// evaluateCondition evaluates a condition expression.
// Supports: ==, !=, <, >, <=, >=, and, or, not, !, contains
func (e *Evaluator) evaluateCondition(expr string, vars map[string]any) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false, nil
	}

	// Handle negation with "not " prefix
	if strings.HasPrefix(expr, "not ") {
		result, err := e.evaluateCondition(strings.TrimPrefix(expr, "not "), vars)
		if err != nil {
			return false, err
		}
		return !result, nil
	}

	// Handle negation with "!" prefix
	if strings.HasPrefix(expr, "!") {
		result, err := e.evaluateCondition(strings.TrimPrefix(expr, "!"), vars)
		if err != nil {
			return false, err
		}
		return !result, nil
	}

	// Handle AND (split on first " and ")
	if parts := strings.SplitN(expr, " and ", 2); len(parts) == 2 {
		left, err := e.evaluateCondition(parts[0], vars)
		if err != nil {
			return false, err
		}
		right, err := e.evaluateCondition(parts[1], vars)
		if err != nil {
			return false, err
		}
		return left && right, nil
	}

	// Handle OR (split on first " or ")
	if parts := strings.SplitN(expr, " or ", 2); len(parts) == 2 {
		left, err := e.evaluateCondition(parts[0], vars)
		if err != nil {
			return false, err
		}
		right, err := e.evaluateCondition(parts[1], vars)
		if err != nil {
			return false, err
		}
		return left || right, nil
	}

	// Try built-in comparison operators
	for _, op := range builtinOps {
		if parts := strings.SplitN(expr, op, 2); len(parts) == 2 {
			left := Resolve(strings.TrimSpace(parts[0]), vars)
			right := Resolve(strings.TrimSpace(parts[1]), vars)
			return Compare(left, right, strings.TrimSpace(op))
		}
	}

	// Try custom operators (wrap with spaces for word boundaries)
	for name, fn := range e.customOps {
		opPattern := " " + name + " "
		if parts := strings.SplitN(expr, opPattern, 2); len(parts) == 2 {
			left := Resolve(strings.TrimSpace(parts[0]), vars)
			right := Resolve(strings.TrimSpace(parts[1]), vars)
			return fn(left, right), nil
		}
	}

	// Single value - check if truthy
	return IsTruthy(Resolve(expr, vars)), nil
}
