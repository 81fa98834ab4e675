// File: declconf/source.go
package declconf

import (
	"context"
	"strings"
)

// Source is a labeled provider of raw configuration values. Fetch returns a
// mapping from dotted item path to raw value; the engine assumes nothing
// about the raw representation beyond "coercible or not". A source that
// cannot currently produce its mapping returns an error wrapping
// ErrSourceUnavailable, which resolution treats as "contributes nothing".
type Source interface {
	Fetch(ctx context.Context) (map[string]any, error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func(ctx context.Context) (map[string]any, error)

func (f SourceFunc) Fetch(ctx context.Context) (map[string]any, error) {
	return f(ctx)
}

type mapSource struct {
	values map[string]any
}

// NewMapSource wraps a nested in-memory map as a source. The map is
// flattened once; later mutation of the input is not observed.
func NewMapSource(values map[string]any) Source {
	return &mapSource{values: flattenMap(values, "")}
}

func (m *mapSource) Fetch(ctx context.Context) (map[string]any, error) {
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

// envLookup binds one environment variable name to the dotted path its
// value is filed under.
type envLookup struct {
	name string
	path string
}

type envSource struct {
	lookups []envLookup
	environ []string
}

// EnvSource builds a source from an explicit environment snapshot
// (os.Environ() or a synthetic slice), keeping resolution deterministic and
// testable. Variable names are matched against the schema's derived names,
// including alternates and previous-path derivations; values stay raw
// strings for the coercion step. When both an item's primary name and an
// alternate are set, the primary wins.
func (s *Schema) EnvSource(environ []string) Source {
	return &envSource{lookups: s.envLookups, environ: environ}
}

func (e *envSource) Fetch(ctx context.Context) (map[string]any, error) {
	vars := make(map[string]string, len(e.environ))
	for _, entry := range e.environ {
		// Split on first "=" only; values can contain "=".
		idx := strings.Index(entry, "=")
		if idx <= 0 {
			continue
		}
		vars[entry[:idx]] = entry[idx+1:]
	}

	result := make(map[string]any)
	for _, lk := range e.lookups {
		if _, claimed := result[lk.path]; claimed {
			continue
		}
		if value, ok := vars[lk.name]; ok {
			result[lk.path] = value
		}
	}
	return result, nil
}
