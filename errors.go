// File: declconf/errors.go
package declconf

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (possibly wrapped) by sources, resolution, and migration.
var (
	// ErrSourceUnavailable indicates a source adapter could not produce its
	// mapping (file deleted, remote store unreachable). Resolution treats it
	// as "source contributes nothing" and continues with the remaining
	// sources; it only surfaces when a required item ends up unsatisfied.
	ErrSourceUnavailable = errors.New("declconf: source unavailable")

	// ErrDocumentNotFound indicates a migration target document does not
	// exist and MigrateOptions.Create was not set.
	ErrDocumentNotFound = errors.New("declconf: document not found")

	// ErrFallbackCycle indicates a chain of Fallback references exceeded the
	// schema's depth bound, which only happens when the chain loops.
	ErrFallbackCycle = errors.New("declconf: fallback cycle detected")
)

// SchemaError reports an invariant violation detected while building a
// schema. It names the offending item path and the rule that was broken.
type SchemaError struct {
	Path string
	Rule string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid schema: %s", e.Rule)
	}
	return fmt.Sprintf("invalid schema: item %q: %s", e.Path, e.Rule)
}

// CollisionError reports two items whose derived or explicit external names
// resolve to the same environment variable or CLI flag.
type CollisionError struct {
	Namespace string // "env" or "cli"
	Name      string // the colliding external name
	First     string // dotted path of the item that claimed the name
	Second    string // dotted path of the item that collided with it
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s name %q derived for both %q and %q", e.Namespace, e.Name, e.First, e.Second)
}

// MissingItemError reports a required item that no source, fallback, or
// default satisfied during a resolution call.
type MissingItemError struct {
	Path string
	// Unavailable lists labels of sources that could not be fetched during
	// the call, since one of them may have held the missing value.
	Unavailable []string
}

func (e *MissingItemError) Error() string {
	if len(e.Unavailable) > 0 {
		return fmt.Sprintf("missing required item %q (unavailable sources: %v)", e.Path, e.Unavailable)
	}
	return fmt.Sprintf("missing required item %q", e.Path)
}

// CoercionError reports a raw value that could not be converted to an
// item's declared kind.
type CoercionError struct {
	Path string
	Raw  any
	Kind Kind
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %v (%T) to %s for item %q", e.Raw, e.Raw, e.Kind, e.Path)
}

// ValidationError reports a resolved value rejected by an item's Choices
// set or Validate predicate.
type ValidationError struct {
	Path  string
	Value any
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for item %q: value %v: %s", e.Path, e.Value, e.Rule)
}
