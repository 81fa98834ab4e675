// File: declconf/resolve.go
package declconf

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Load resolves the schema against the given source labels, first label
// highest precedence, and returns a fresh immutable Resolved tree. With no
// labels, sources are consulted in registration order.
//
// Resolution is two-phase: bootstrap items resolve first across every
// directly-registered source, then deferred sources are constructed from the
// bootstrap values and the remaining items resolve across the full list.
func (s *Schema) Load(ctx context.Context, labels ...string) (*Resolved, error) {
	r, err := s.fetchAll(ctx, labels)
	if err != nil {
		return nil, err
	}

	for _, path := range s.order {
		if err := r.resolveNode(s.nodes[path], 0); err != nil {
			return nil, err
		}
	}

	return r.snapshot(), nil
}

// fetchAll runs the two fetch phases: directly-registered sources first,
// then bootstrap items resolve so deferred sources can be constructed and
// fetched. The returned resolution holds every source mapping plus the
// resolved bootstrap values.
func (s *Schema) fetchAll(ctx context.Context, labels []string) (*resolution, error) {
	if len(labels) == 0 {
		labels = s.SourceLabels()
	}

	r := &resolution{
		schema: s,
		labels: labels,
		maps:   make(map[string]map[string]any, len(labels)),
		values: make(map[string]any),
		done:   make(map[string]bool),
	}

	deferred := make([]*sourceEntry, 0)
	for _, label := range labels {
		entry, ok := s.sourceEntry(label)
		if !ok {
			return nil, fmt.Errorf("unknown source label %q", label)
		}
		if entry.build != nil {
			deferred = append(deferred, entry)
			continue
		}
		if err := r.fetch(ctx, label, entry.src); err != nil {
			return nil, err
		}
	}

	for _, path := range s.order {
		n := s.nodes[path]
		if n.item.Bootstrap {
			if err := r.resolveNode(n, 0); err != nil {
				return nil, err
			}
		}
	}

	if len(deferred) > 0 {
		bootstrap := r.snapshot()
		for _, entry := range deferred {
			src, err := entry.build(ctx, bootstrap)
			if err != nil {
				return nil, fmt.Errorf("construct source %q: %w", entry.label, err)
			}
			if err := r.fetch(ctx, entry.label, src); err != nil {
				return nil, err
			}
		}
	}

	return r, nil
}

// resolution carries the per-call state of one Load invocation. The schema
// itself stays immutable; every call builds its own resolution.
type resolution struct {
	schema      *Schema
	labels      []string
	maps        map[string]map[string]any
	unavailable []string
	values      map[string]any
	done        map[string]bool
}

func (r *resolution) fetch(ctx context.Context, label string, src Source) error {
	m, err := src.Fetch(ctx)
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			// Non-fatal: the source contributes nothing this round. Only a
			// required item left unsatisfied makes this surface, via
			// MissingItemError.Unavailable.
			r.unavailable = append(r.unavailable, label)
			r.maps[label] = nil
			return nil
		}
		return fmt.Errorf("fetch source %q: %w", label, err)
	}
	r.maps[label] = m
	return nil
}

func (r *resolution) snapshot() *Resolved {
	return newResolved(r.schema, r.values)
}

// resolveNode runs the per-item algorithm: source-order lookup with
// previous-name aliases, fallback substitution, default, coercion, and
// validation. Dict nodes resolve through their children.
func (r *resolution) resolveNode(n *node, depth int) error {
	if r.done[n.path] {
		return nil
	}
	if depth > len(r.schema.order) {
		return fmt.Errorf("%w: via item %q", ErrFallbackCycle, n.path)
	}

	if n.item.Kind == KindDict {
		for _, child := range n.children {
			if err := r.resolveNode(child, depth); err != nil {
				return err
			}
		}
		r.done[n.path] = true
		return nil
	}

	raw, found := r.lookupRaw(n)

	if !found && n.item.Fallback != "" {
		target := r.schema.nodes[n.item.Fallback]
		if err := r.resolveNode(target, depth+1); err != nil {
			return err
		}
		if v, ok := r.values[target.path]; ok {
			raw, found = v, true
		}
	}

	if !found {
		if n.item.Default != nil {
			raw, found = n.item.Default, true
		} else if n.item.Required {
			return &MissingItemError{Path: n.path, Unavailable: r.unavailable}
		} else {
			// Resolves to absent.
			r.done[n.path] = true
			return nil
		}
	}

	value, err := r.coerceAndValidate(n, raw)
	if err != nil {
		return err
	}

	r.values[n.path] = value
	r.done[n.path] = true
	return nil
}

func (r *resolution) coerceAndValidate(n *node, raw any) (any, error) {
	it := n.item

	var value any
	if it.Kind == KindList {
		elem := it.Children[0]
		list, err := coerceList(n.path, raw, elem.Kind)
		if err != nil {
			return nil, err
		}
		for i, e := range list {
			if err := checkChoices(fmt.Sprintf("%s[%d]", n.path, i), e, elem.Choices); err != nil {
				return nil, err
			}
			if err := checkChoices(fmt.Sprintf("%s[%d]", n.path, i), e, it.Choices); err != nil {
				return nil, err
			}
			if elem.Validate != nil {
				if err := elem.Validate(e); err != nil {
					return nil, &ValidationError{Path: n.path, Value: e, Rule: err.Error()}
				}
			}
		}
		value = list
	} else {
		v, err := coerceScalar(n.path, raw, it.Kind)
		if err != nil {
			return nil, err
		}
		if err := checkChoices(n.path, v, it.Choices); err != nil {
			return nil, err
		}
		value = v
	}

	if it.Validate != nil {
		if err := it.Validate(value); err != nil {
			return nil, &ValidationError{Path: n.path, Value: value, Rule: err.Error()}
		}
	}
	return value, nil
}

func checkChoices(path string, value any, choices []any) error {
	if len(choices) == 0 {
		return nil
	}
	for _, c := range choices {
		// Choices are declared in source types (int, not int64); compare
		// after coercing the choice to the value's canonical form.
		if equalCanonical(value, c) {
			return nil
		}
	}
	return &ValidationError{Path: path, Value: value, Rule: fmt.Sprintf("not one of %v", choices)}
}

func equalCanonical(value, choice any) bool {
	if value == choice {
		return true
	}
	switch v := value.(type) {
	case int64:
		switch c := choice.(type) {
		case int:
			return v == int64(c)
		case int64:
			return v == c
		}
	case float64:
		switch c := choice.(type) {
		case int:
			return v == float64(c)
		case float64:
			return v == c
		}
	}
	return false
}

// lookupRaw finds the first raw value for a node: sources in precedence
// order; inside each source the current path first, then previous names in
// order. A dict supplied whole by a source is navigated per child, which
// preserves the same precedence one level down.
func (r *resolution) lookupRaw(n *node) (any, bool) {
	for _, label := range r.labels {
		m := r.maps[label]
		if m == nil {
			continue
		}
		if v, ok := lookupInSource(m, n); ok {
			return v, true
		}
	}
	return nil, false
}

// lookupInSource applies the within-source alias order: current path first,
// then previous names oldest-declared first.
func lookupInSource(m map[string]any, n *node) (any, bool) {
	if v, ok := lookupNode(m, n); ok {
		return v, true
	}
	for _, prev := range n.item.PreviousNames {
		if v, ok := lookupDotted(m, prev); ok {
			return v, true
		}
	}
	return nil, false
}

// lookupNode checks the node's exact path, then navigates down from any
// ancestor whose whole sub-mapping the source supplied as one raw value.
func lookupNode(m map[string]any, n *node) (any, bool) {
	if v, ok := m[n.path]; ok {
		return v, true
	}
	for anc := n.parent; anc != nil; anc = anc.parent {
		raw, ok := m[anc.path]
		if !ok {
			continue
		}
		sub, isMap := raw.(map[string]any)
		if !isMap {
			continue
		}
		if v, ok := descend(sub, n.segments[len(anc.segments):]); ok {
			return v, true
		}
	}
	return nil, false
}

// lookupDotted resolves a historical dotted path against a source mapping,
// with the same whole-container navigation as current paths.
func lookupDotted(m map[string]any, path string) (any, bool) {
	if v, ok := m[path]; ok {
		return v, true
	}
	segments := strings.Split(path, ".")
	for i := len(segments) - 1; i > 0; i-- {
		prefix := strings.Join(segments[:i], ".")
		raw, ok := m[prefix]
		if !ok {
			continue
		}
		sub, isMap := raw.(map[string]any)
		if !isMap {
			continue
		}
		if v, ok := descend(sub, segments[i:]); ok {
			return v, true
		}
	}
	return nil, false
}

func descend(m map[string]any, segments []string) (any, bool) {
	current := any(m)
	for _, seg := range segments {
		sub, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		v, exists := sub[seg]
		if !exists {
			return nil, false
		}
		current = v
	}
	return current, true
}
