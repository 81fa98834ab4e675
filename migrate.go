// File: declconf/migrate.go
package declconf

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// MigrateOptions controls how a persisted document is rewritten to match
// the current schema.
type MigrateOptions struct {
	// AlwaysUpdate inserts the current default for items the document lacks
	// entirely, regardless of Required.
	AlwaysUpdate bool

	// UpdateDefaults replaces values that typed-equal one of an item's
	// PreviousDefaults with the item's current default.
	UpdateDefaults bool

	// Create synthesizes a document from defaults when the target file does
	// not exist, instead of failing with ErrDocumentNotFound.
	Create bool

	// InputFormat overrides format inference for the input file.
	InputFormat Format

	// OutputPath writes the rewritten document somewhere else;
	// empty means in place.
	OutputPath string

	// OutputFormat converts the document on write; empty keeps the input
	// format.
	OutputFormat Format
}

// DefaultMigrateOptions returns the conservative defaults: rename previous
// names only, in place, same format.
func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{}
}

// MigrateDocument rewrites a parsed document tree to the current schema:
// values filed under previous names move to the current name, stale
// defaults are replaced when UpdateDefaults is set, and missing items are
// filled in when AlwaysUpdate is set. Unknown keys pass through untouched.
// The input is not modified; the rewritten copy is returned.
//
// The rewrite is idempotent: migrating its own output with the same options
// changes nothing.
func (s *Schema) MigrateDocument(doc map[string]any, opts MigrateOptions) map[string]any {
	out := copyTree(doc)

	for _, path := range s.order {
		n := s.nodes[path]
		it := n.item
		if it.Kind == KindDict {
			continue
		}

		_, present := descend(out, n.segments)

		// Previous-name keys move to the current name only when the current
		// name is absent; the old key is removed when it moves.
		if !present {
			for _, prev := range it.PreviousNames {
				prevSegs := strings.Split(prev, ".")
				if v, ok := descend(out, prevSegs); ok {
					setBySegments(out, n.segments, v)
					deleteBySegments(out, prevSegs)
					present = true
					break
				}
			}
		}

		if present && opts.UpdateDefaults && it.Default != nil {
			if v, ok := descend(out, n.segments); ok && s.matchesPreviousDefault(n, v) {
				setBySegments(out, n.segments, it.Default)
			}
		}

		if !present && opts.AlwaysUpdate && it.Default != nil {
			setBySegments(out, n.segments, it.Default)
		}
	}

	return out
}

// matchesPreviousDefault compares a document value against the item's
// PreviousDefaults, typed (both sides coerced to the canonical form first).
// Values the schema cannot coerce never match; migration leaves them alone.
func (s *Schema) matchesPreviousDefault(n *node, docValue any) bool {
	it := n.item
	canonical, err := s.canonical(n, docValue)
	if err != nil {
		return false
	}
	for _, prev := range it.PreviousDefaults {
		prevCanonical, err := s.canonical(n, prev)
		if err != nil {
			continue
		}
		if reflect.DeepEqual(canonical, prevCanonical) {
			return true
		}
	}
	return false
}

func (s *Schema) canonical(n *node, raw any) (any, error) {
	if n.item.Kind == KindList {
		return coerceList(n.path, raw, n.item.Children[0].Kind)
	}
	return coerceScalar(n.path, raw, n.item.Kind)
}

// MigrateFile reads a persisted document, rewrites it with MigrateDocument,
// and writes the result atomically. A missing document fails with
// ErrDocumentNotFound unless Create is set, in which case a document is
// synthesized from defaults.
func (s *Schema) MigrateFile(path string, opts MigrateOptions) error {
	doc, format, err := readDocument(path, opts.InputFormat)
	if err != nil {
		if !errors.Is(err, ErrSourceUnavailable) {
			return err
		}
		if !opts.Create {
			return fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		doc = make(map[string]any)
		opts.AlwaysUpdate = true // synthesize from defaults
	}

	migrated := s.MigrateDocument(doc, opts)

	outPath := opts.OutputPath
	if outPath == "" {
		outPath = path
	}
	outFormat := opts.OutputFormat
	if outFormat == FormatAuto {
		outFormat = format
	}
	if outFormat == FormatAuto {
		outFormat = detectFileFormat(outPath)
	}
	if outFormat == FormatAuto {
		return fmt.Errorf("unable to determine output format for '%s'", outPath)
	}

	data, err := marshalDocument(migrated, outFormat)
	if err != nil {
		return err
	}
	return atomicWriteFile(outPath, data)
}

// deleteBySegments removes the value nested under the segment chain,
// pruning intermediate maps that become empty.
func deleteBySegments(nested map[string]any, segments []string) {
	if len(segments) == 1 {
		delete(nested, segments[0])
		return
	}
	next, ok := nested[segments[0]].(map[string]any)
	if !ok {
		return
	}
	deleteBySegments(next, segments[1:])
	if len(next) == 0 {
		delete(nested, segments[0])
	}
}
