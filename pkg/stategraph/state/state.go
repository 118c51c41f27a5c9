// Package state holds the shared execution state for a graph run and
// the per-field merge rules applied when nodes update it.
//
// State is a flat mapping from field name to value. Nodes never mutate
// state in place: they receive a snapshot and return only the fields
// they changed. The engine combines those partial updates through the
// Schema, which fixes one Reducer per field at graph-definition time.
package state

import "encoding/json"

// State is a mapping from field name to value.
//
// Values should be JSON-serializable if checkpointing is enabled.
// Treat State values received by node functions as read-only; return
// a partial update instead of mutating nested values.
type State map[string]any

// Clone returns a shallow copy of the state map.
// Field values are shared; the engine relies on nodes not mutating them.
func (s State) Clone() State {
	if s == nil {
		return State{}
	}
	c := make(State, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Get returns the value for a field and whether it is present.
func (s State) Get(field string) (any, bool) {
	v, ok := s[field]
	return v, ok
}

// String returns the string value for a field, or "" if missing or
// not a string.
func (s State) String(field string) string {
	if v, ok := s[field].(string); ok {
		return v
	}
	return ""
}

// Int returns the integer value for a field, or 0 if missing or not
// convertible. JSON round-trips decode numbers as float64, so both
// forms are accepted.
func (s State) Int(field string) int {
	switch v := s[field].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Bool returns the boolean value for a field, or false if missing or
// not a bool.
func (s State) Bool(field string) bool {
	if v, ok := s[field].(bool); ok {
		return v
	}
	return false
}

// Slice returns the field value as []any. A missing field returns nil.
// A non-slice value is wrapped in a one-element slice, matching the
// normalization the Append reducer performs.
func (s State) Slice(field string) []any {
	v, ok := s[field]
	if !ok {
		return nil
	}
	return toSlice(v)
}

// Marshal serializes the state to JSON.
func (s State) Marshal() ([]byte, error) {
	return json.Marshal(map[string]any(s))
}

// Unmarshal deserializes a state from JSON.
func Unmarshal(data []byte) (State, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return State(m), nil
}
