// File: declconf/resolved.go
package declconf

import (
	"fmt"
	"strconv"
)

// Resolved is the fully-typed, fully-validated value tree produced by one
// Load call. It mirrors the schema's shape, supports both path-keyed and
// struct-scan access, and is never mutated after construction: each Load
// builds a fresh one.
type Resolved struct {
	schema *Schema
	values map[string]any // canonical scalar/list values, keyed by dotted path
	nested map[string]any // nested view built along item segments
	order  []string       // populated paths in schema traversal order
}

func newResolved(s *Schema, values map[string]any) *Resolved {
	r := &Resolved{
		schema: s,
		values: make(map[string]any, len(values)),
		nested: make(map[string]any),
	}
	for path, v := range values {
		r.values[path] = v
	}

	for _, path := range s.order {
		n := s.nodes[path]
		if v, ok := values[path]; ok {
			setBySegments(r.nested, n.segments, v)
		}
	}
	for _, path := range s.order {
		n := s.nodes[path]
		switch n.item.Kind {
		case KindDict:
			if sub, ok := descend(r.nested, n.segments); ok {
				r.values[path] = sub
				r.order = append(r.order, path)
			}
		default:
			if _, ok := values[path]; ok {
				r.order = append(r.order, path)
			}
		}
	}
	return r
}

func setBySegments(nested map[string]any, segments []string, value any) {
	current := nested
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[seg] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

// Has reports whether the item at path resolved to a value.
func (r *Resolved) Has(path string) bool {
	_, ok := r.values[path]
	return ok
}

// Get returns the resolved value at path. Scalars come back as their
// canonical types (string, int64, float64, bool, complex128), lists as
// []any, dicts as a nested map view. The view is shared; treat it as
// read-only.
func (r *Resolved) Get(path string) (any, bool) {
	v, ok := r.values[path]
	return v, ok
}

// Paths returns the populated dotted paths in schema traversal order.
func (r *Resolved) Paths() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// AsMap returns a deep copy of the nested value tree.
func (r *Resolved) AsMap() map[string]any {
	return copyTree(r.nested)
}

func copyTree(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = copyTree(sub)
		} else {
			out[k] = v
		}
	}
	return out
}

// String retrieves a string value, converting from other canonical scalars
// when the item was declared differently.
func (r *Resolved) String(path string) (string, error) {
	v, ok := r.values[path]
	if !ok {
		return "", fmt.Errorf("item not resolved: %s", path)
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case complex128:
		return strconv.FormatComplex(t, 'f', -1, 128), nil
	}
	return "", fmt.Errorf("cannot convert type %T to string for path %s", v, path)
}

// Int64 retrieves an integer value.
func (r *Resolved) Int64(path string) (int64, error) {
	v, ok := r.values[path]
	if !ok {
		return 0, fmt.Errorf("item not resolved: %s", path)
	}
	switch t := v.(type) {
	case int64:
		return t, nil
	case float64:
		return int64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		if i, err := strconv.ParseInt(t, 0, 64); err == nil {
			return i, nil
		}
	}
	return 0, fmt.Errorf("cannot convert type %T to int64 for path %s", v, path)
}

// Float64 retrieves a float value.
func (r *Resolved) Float64(path string) (float64, error) {
	v, ok := r.values[path]
	if !ok {
		return 0, fmt.Errorf("item not resolved: %s", path)
	}
	switch t := v.(type) {
	case float64:
		return t, nil
	case int64:
		return float64(t), nil
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f, nil
		}
	}
	return 0, fmt.Errorf("cannot convert type %T to float64 for path %s", v, path)
}

// Bool retrieves a boolean value.
func (r *Resolved) Bool(path string) (bool, error) {
	v, ok := r.values[path]
	if !ok {
		return false, fmt.Errorf("item not resolved: %s", path)
	}
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		if b, err := strconv.ParseBool(t); err == nil {
			return b, nil
		}
	case int64:
		return t != 0, nil
	}
	return false, fmt.Errorf("cannot convert type %T to bool for path %s", v, path)
}

// Complex128 retrieves a complex value.
func (r *Resolved) Complex128(path string) (complex128, error) {
	v, ok := r.values[path]
	if !ok {
		return 0, fmt.Errorf("item not resolved: %s", path)
	}
	switch t := v.(type) {
	case complex128:
		return t, nil
	case float64:
		return complex(t, 0), nil
	case int64:
		return complex(float64(t), 0), nil
	}
	return 0, fmt.Errorf("cannot convert type %T to complex128 for path %s", v, path)
}

// StringSlice retrieves a list value as strings.
func (r *Resolved) StringSlice(path string) ([]string, error) {
	v, ok := r.values[path]
	if !ok {
		return nil, fmt.Errorf("item not resolved: %s", path)
	}
	list, isList := v.([]any)
	if !isList {
		return nil, fmt.Errorf("cannot convert type %T to []string for path %s", v, path)
	}
	out := make([]string, len(list))
	for i, e := range list {
		switch t := e.(type) {
		case string:
			out[i] = t
		default:
			out[i] = fmt.Sprintf("%v", e)
		}
	}
	return out, nil
}

// Slice retrieves a list value in element order.
func (r *Resolved) Slice(path string) ([]any, error) {
	v, ok := r.values[path]
	if !ok {
		return nil, fmt.Errorf("item not resolved: %s", path)
	}
	list, isList := v.([]any)
	if !isList {
		return nil, fmt.Errorf("cannot convert type %T to []any for path %s", v, path)
	}
	out := make([]any, len(list))
	copy(out, list)
	return out, nil
}
