package state

// Reducer combines an existing field value with an update to that
// field. It is called once per update; under parallel fan-out the
// engine applies branch updates pairwise in dispatch order, so an
// Overwrite field ends up holding the last branch's value.
//
// Reducers must be pure: no side effects, no mutation of inputs.
type Reducer func(existing, update any) any

// Overwrite replaces the existing value with the update.
// This is the default policy for fields not declared on the Schema.
func Overwrite(_, update any) any {
	return update
}

// Append concatenates the update onto the existing value.
// Both sides are normalized to []any first: a scalar becomes a
// one-element slice, nil becomes an empty slice. The result is always
// a fresh []any; neither input slice is mutated.
func Append(existing, update any) any {
	ex := toSlice(existing)
	up := toSlice(update)
	out := make([]any, 0, len(ex)+len(up))
	out = append(out, ex...)
	out = append(out, up...)
	return out
}

// toSlice normalizes a value to []any for the Append reducer.
func toSlice(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}

// ErrorField is the reserved field the engine writes a failed node's
// error message to before routing to that node's recovery node.
// It always uses the Overwrite policy.
const ErrorField = "__error__"

// Schema declares the merge policy for each state field.
// Policies are fixed at graph-definition time and apply uniformly to
// every update of that field, sequential or parallel.
//
// Schema is append-only during graph construction and must not be
// modified once execution starts.
type Schema struct {
	reducers map[string]Reducer
}

// NewSchema creates an empty schema. Fields without an explicit
// policy use Overwrite.
func NewSchema() *Schema {
	return &Schema{reducers: make(map[string]Reducer)}
}

// Field declares the reducer for a field and returns the schema for
// chaining. Declaring a field twice keeps the last policy.
func (sc *Schema) Field(name string, r Reducer) *Schema {
	if r == nil {
		r = Overwrite
	}
	sc.reducers[name] = r
	return sc
}

// AppendField declares an append-policy field. Shorthand for
// Field(name, Append).
func (sc *Schema) AppendField(name string) *Schema {
	return sc.Field(name, Append)
}

// Reducer returns the reducer for a field, defaulting to Overwrite.
func (sc *Schema) Reducer(field string) Reducer {
	if sc != nil {
		if r, ok := sc.reducers[field]; ok {
			return r
		}
	}
	return Overwrite
}

// Apply combines a partial update into the current state and returns
// the resulting state. The current state is never mutated; fields
// absent from the update are carried over unchanged. An empty or nil
// update yields a state equal to cur.
func (sc *Schema) Apply(cur State, update State) State {
	next := cur.Clone()
	for field, v := range update {
		if existing, ok := next[field]; ok {
			next[field] = sc.Reducer(field)(existing, v)
		} else {
			next[field] = sc.Reducer(field)(nil, v)
		}
	}
	return next
}

// Merge applies a sequence of partial updates in order.
// For parallel fan-out the engine passes updates in dispatch order,
// which makes the merge deterministic regardless of which branch
// finished first.
func (sc *Schema) Merge(cur State, updates []State) State {
	next := cur
	for _, u := range updates {
		next = sc.Apply(next, u)
	}
	return next
}
