package expr

import (
	"fmt"
	"strings"
)

// Compare compares two values using the named operator.
// Returns an error for unknown operators.
func Compare(left, right any, op string) (bool, error) {
	switch op {
	case "==":
		return asString(left) == asString(right), nil
	case "!=":
		return asString(left) != asString(right), nil
	case "<":
		return ToFloat64(left) < ToFloat64(right), nil
	case ">":
		return ToFloat64(left) > ToFloat64(right), nil
	case "<=":
		return ToFloat64(left) <= ToFloat64(right), nil
	case ">=":
		return ToFloat64(left) >= ToFloat64(right), nil
	case "contains":
		return strings.Contains(asString(left), asString(right)), nil
	default:
		return false, fmt.Errorf("unknown operator: %s", op)
	}
}

// asString formats a value for string comparison.
func asString(v any) string {
	return fmt.Sprintf("%v", v)
}
