// File: declconf/schema.go
package declconf

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Options configures schema-wide behavior.
type Options struct {
	// EnvPrefix is prepended to derived and explicit environment names
	// (e.g. "MYAPP_"), unless an item sets NoEnvPrefix.
	EnvPrefix string

	// TagName is the struct tag consulted by Resolved.Scan. Default "conf".
	TagName string
}

// node is the internal schema-tree entry for one addressable item.
type node struct {
	item     *Item
	path     string
	segments []string
	parent   *node
	children []*node
	envName  string   // prefixed primary environment name
	altEnv   []string // prefixed alternate environment names, lookup order
	flag     *FlagSpec
	def      any // default coerced to the canonical type, nil when absent
}

type sourceEntry struct {
	label string
	src   Source
	build func(ctx context.Context, bootstrap *Resolved) (Source, error)
}

// Schema is the immutable item-specification tree plus a registry of labeled
// sources. Build it once with New; concurrent Load calls are safe as long as
// the registered sources are safe for concurrent Fetch.
type Schema struct {
	opts  Options
	roots []*node
	nodes map[string]*node
	order []string // depth-first dotted paths, declaration order

	// envLookups binds environment variable names to dotted paths in lookup
	// priority order: each item's primary name, then its alternates, then
	// derivations of its previous paths.
	envLookups []envLookup

	mu      sync.RWMutex
	sources map[string]*sourceEntry
	labels  []string // registration order
}

// New builds a schema from a declarative item tree, validating every
// build-time invariant: sibling-name uniqueness, key-segment syntax, list
// children scalar-only with exactly one element spec, Choices mutually
// exclusive with dict, fallback targets present, and external-name
// collisions. It fails fast with *SchemaError or *CollisionError.
func New(opts Options, items ...*Item) (*Schema, error) {
	if opts.TagName == "" {
		opts.TagName = "conf"
	}
	s := &Schema{
		opts:    opts,
		nodes:   make(map[string]*node),
		sources: make(map[string]*sourceEntry),
	}

	roots, err := s.buildNodes(nil, items)
	if err != nil {
		return nil, err
	}
	s.roots = roots

	if err := s.validateFallbacks(); err != nil {
		return nil, err
	}
	if err := s.deriveNames(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustNew is like New but panics on schema errors. Intended for package-level
// schema declarations where the tree is static.
func MustNew(opts Options, items ...*Item) *Schema {
	s, err := New(opts, items...)
	if err != nil {
		panic(fmt.Sprintf("declconf: schema build failed: %v", err))
	}
	return s
}

func (s *Schema) buildNodes(parent *node, items []*Item) ([]*node, error) {
	parentPath := ""
	sep := "."
	var segments []string
	if parent != nil {
		parentPath = parent.path
		sep = parent.item.separator()
		segments = parent.segments
	}

	seen := make(map[string]string, len(items))
	nodes := make([]*node, 0, len(items))

	for _, it := range items {
		path := it.Name
		if parentPath != "" {
			path = parentPath + sep + it.Name
		}

		if !isValidKeySegment(it.Name) {
			return nil, &SchemaError{Path: path, Rule: fmt.Sprintf("invalid name segment %q", it.Name)}
		}
		if prev, dup := seen[it.Name]; dup {
			return nil, &SchemaError{Path: path, Rule: fmt.Sprintf("duplicate sibling name (already declared at %q)", prev)}
		}
		seen[it.Name] = path

		switch it.Kind {
		case KindDict:
			if len(it.Choices) > 0 {
				return nil, &SchemaError{Path: path, Rule: "choices cannot be combined with dict kind"}
			}
			if it.Default != nil {
				return nil, &SchemaError{Path: path, Rule: "dict items cannot declare defaults; declare them on children"}
			}
		case KindList:
			if len(it.Children) != 1 {
				return nil, &SchemaError{Path: path, Rule: fmt.Sprintf("list items declare exactly one element spec, got %d", len(it.Children))}
			}
			if !it.Children[0].Kind.scalar() {
				return nil, &SchemaError{Path: path, Rule: fmt.Sprintf("list elements must be scalar, got %s", it.Children[0].Kind)}
			}
		default:
			if len(it.Children) > 0 {
				return nil, &SchemaError{Path: path, Rule: fmt.Sprintf("%s items cannot have children", it.Kind)}
			}
		}

		n := &node{
			item:     it,
			path:     path,
			segments: append(append([]string{}, segments...), it.Name),
			parent:   parent,
		}

		// Defaults must coerce to the declared kind; catching this at build
		// time keeps resolution errors about source data only.
		if it.Default != nil && it.Kind != KindDict {
			var err error
			if it.Kind == KindList {
				n.def, err = coerceList(path, it.Default, it.Children[0].Kind)
			} else {
				n.def, err = coerceScalar(path, it.Default, it.Kind)
			}
			if err != nil {
				return nil, &SchemaError{Path: path, Rule: fmt.Sprintf("default %v is not coercible to %s", it.Default, it.Kind)}
			}
		}
		s.nodes[path] = n
		s.order = append(s.order, path)
		nodes = append(nodes, n)

		// List element specs are not addressable items; only dict children
		// become nodes.
		if it.Kind == KindDict {
			children, err := s.buildNodes(n, it.Children)
			if err != nil {
				return nil, err
			}
			n.children = children
		}
	}

	return nodes, nil
}

func (s *Schema) validateFallbacks() error {
	for _, path := range s.order {
		n := s.nodes[path]
		if fb := n.item.Fallback; fb != "" {
			if _, ok := s.nodes[fb]; !ok {
				return &SchemaError{Path: path, Rule: fmt.Sprintf("fallback target %q is not a declared item", fb)}
			}
			if fb == path {
				return &SchemaError{Path: path, Rule: "fallback target is the item itself"}
			}
		}
	}
	return nil
}

func (s *Schema) deriveNames() error {
	envOwner := make(map[string]string)  // env name -> path
	flagOwner := make(map[string]string) // long flag name -> path
	shortOwner := make(map[string]string)

	for _, path := range s.order {
		n := s.nodes[path]
		it := n.item

		n.envName = applyEnvPrefix(it, s.opts.EnvPrefix, deriveEnvName(it, n.segments))
		if prev, taken := envOwner[n.envName]; taken {
			return &CollisionError{Namespace: "env", Name: n.envName, First: prev, Second: path}
		}
		envOwner[n.envName] = path

		for _, alt := range it.AltEnvNames {
			name := alt
			if !it.RawEnvName {
				name = envSegment(alt)
			}
			name = applyEnvPrefix(it, s.opts.EnvPrefix, name)
			n.altEnv = append(n.altEnv, name)
		}

		// Environment lookups cover the primary name, alternates, and
		// derivations of previous paths so previous-name lookup works
		// uniformly for environment sources. Dict items hold no single env
		// value, so they stay out of the lookup table.
		if it.Kind != KindDict {
			s.envLookups = append(s.envLookups, envLookup{name: n.envName, path: path})
			for _, alt := range n.altEnv {
				if owner, taken := envOwner[alt]; taken && owner != path {
					return &CollisionError{Namespace: "env", Name: alt, First: owner, Second: path}
				}
				envOwner[alt] = path
				s.envLookups = append(s.envLookups, envLookup{name: alt, path: path})
			}
			for _, prev := range it.PreviousNames {
				segs := strings.Split(prev, ".")
				prevItem := *it
				prevItem.EnvName = ""
				// RawEnvName derives from the literal item name; for a
				// previous path that is its last segment, not the current
				// name.
				prevItem.Name = segs[len(segs)-1]
				name := applyEnvPrefix(it, s.opts.EnvPrefix, deriveEnvName(&prevItem, segs))
				s.envLookups = append(s.envLookups, envLookup{name: name, path: prev})
			}
		}

		n.flag = s.flagFor(n)
		if n.flag != nil {
			for _, name := range []string{n.flag.Name, n.flag.NoName} {
				if name == "" {
					continue
				}
				if prev, taken := flagOwner[name]; taken {
					return &CollisionError{Namespace: "cli", Name: name, First: prev, Second: path}
				}
				flagOwner[name] = path
			}
			if n.flag.Short != "" {
				if prev, taken := shortOwner[n.flag.Short]; taken {
					return &CollisionError{Namespace: "cli", Name: "-" + n.flag.Short, First: prev, Second: path}
				}
				shortOwner[n.flag.Short] = path
			}
		}
	}
	return nil
}

// Walk visits every addressable item depth-first in declaration order.
func (s *Schema) Walk(fn func(path string, item *Item)) {
	for _, path := range s.order {
		fn(path, s.nodes[path].item)
	}
}

// Paths returns every dotted path in traversal order.
func (s *Schema) Paths() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Lookup returns the item declared at a dotted path.
func (s *Schema) Lookup(path string) (*Item, bool) {
	n, ok := s.nodes[path]
	if !ok {
		return nil, false
	}
	return n.item, true
}

// EnvNameOf returns the prefixed environment variable name for an item.
func (s *Schema) EnvNameOf(path string) (string, bool) {
	n, ok := s.nodes[path]
	if !ok {
		return "", false
	}
	return n.envName, true
}

// AddSource registers a labeled source adapter. Labels are referenced by the
// precedence list handed to Load.
func (s *Schema) AddSource(label string, src Source) error {
	return s.addSource(label, &sourceEntry{label: label, src: src})
}

// AddSourceFunc registers a deferred source, constructed after the bootstrap
// phase from the bootstrap-resolved values. Use it when a source's own
// configuration (e.g. a config file path) is itself a bootstrap item.
func (s *Schema) AddSourceFunc(label string, build func(ctx context.Context, bootstrap *Resolved) (Source, error)) error {
	return s.addSource(label, &sourceEntry{label: label, build: build})
}

func (s *Schema) addSource(label string, entry *sourceEntry) error {
	if label == "" {
		return fmt.Errorf("source label cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.sources[label]; dup {
		return fmt.Errorf("source label %q already registered", label)
	}
	s.sources[label] = entry
	s.labels = append(s.labels, label)
	return nil
}

// SourceLabels returns registered labels in registration order. This is the
// default precedence list when Load is called without labels.
func (s *Schema) SourceLabels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

func (s *Schema) sourceEntry(label string) (*sourceEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sources[label]
	return e, ok
}
