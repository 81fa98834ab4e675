// File: declconf/builder.go
package declconf

import (
	"context"
	"fmt"
	"os"
)

// Well-known source labels used by the builder conveniences.
const (
	LabelCLI  = "cli"
	LabelEnv  = "env"
	LabelFile = "file"
)

// Builder provides a fluent interface for declaring a schema, wiring the
// standard sources, and loading in one chain. Source precedence is the
// order sources are added unless WithSourceOrder overrides it; the builder
// conveniences add CLI, then env, then file, matching the usual
// CLI > env > file > default layering.
type Builder struct {
	opts       Options
	items      []*Item
	args       []string
	hasArgs    bool
	environ    []string
	hasEnviron bool
	file       string
	fileFormat Format
	fileItem   string
	extra      []builderSource
	order      []string
	validators []func(*Resolved) error
	err        error
}

type builderSource struct {
	label string
	src   Source
	build func(ctx context.Context, bootstrap *Resolved) (Source, error)
}

// NewBuilder creates an empty configuration builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithOptions sets the schema-wide options.
func (b *Builder) WithOptions(opts Options) *Builder {
	b.opts = opts
	return b
}

// WithEnvPrefix sets the environment variable prefix.
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.opts.EnvPrefix = prefix
	return b
}

// WithItems appends item declarations to the schema.
func (b *Builder) WithItems(items ...*Item) *Builder {
	b.items = append(b.items, items...)
	return b
}

// WithStruct derives items from a tagged struct with defaults.
func (b *Builder) WithStruct(structWithDefaults any) *Builder {
	items, err := FromStruct(structWithDefaults)
	if err != nil && b.err == nil {
		b.err = err
	}
	b.items = append(b.items, items...)
	return b
}

// WithArgs enables the CLI source with the given arguments (typically
// os.Args[1:]).
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	b.hasArgs = true
	return b
}

// WithEnviron enables the environment source with an explicit snapshot
// (typically os.Environ()).
func (b *Builder) WithEnviron(environ []string) *Builder {
	b.environ = environ
	b.hasEnviron = true
	return b
}

// WithFile enables the file source for the given path. Format is inferred
// from extension, then content.
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithFileFormat sets an explicit format for the file source.
func (b *Builder) WithFileFormat(format Format) *Builder {
	b.fileFormat = format
	return b
}

// WithFileFromItem wires the file source to a bootstrap item: the item is
// resolved in the bootstrap phase (from CLI, env, or defaults) and its value
// names the file to read. The item must be declared with Bootstrap set.
func (b *Builder) WithFileFromItem(itemPath string) *Builder {
	b.fileItem = itemPath
	return b
}

// WithSource registers an additional labeled source, after the built-in
// ones in precedence.
func (b *Builder) WithSource(label string, src Source) *Builder {
	b.extra = append(b.extra, builderSource{label: label, src: src})
	return b
}

// WithSourceFunc registers an additional deferred source.
func (b *Builder) WithSourceFunc(label string, build func(ctx context.Context, bootstrap *Resolved) (Source, error)) *Builder {
	b.extra = append(b.extra, builderSource{label: label, build: build})
	return b
}

// WithSourceOrder overrides the precedence list handed to Load.
func (b *Builder) WithSourceOrder(labels ...string) *Builder {
	b.order = labels
	return b
}

// WithValidator adds a whole-tree validation function, run after loading in
// the order added.
func (b *Builder) WithValidator(fn func(*Resolved) error) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build constructs the schema and registers the declared sources without
// loading. Use it when the schema is also needed for migration or watching.
func (b *Builder) Build(ctx context.Context) (*Schema, error) {
	if b.err != nil {
		return nil, b.err
	}

	schema, err := New(b.opts, b.items...)
	if err != nil {
		return nil, err
	}

	if b.hasArgs {
		fs := schema.FlagSet("config")
		if err := fs.Parse(b.args); err != nil {
			return nil, fmt.Errorf("failed to parse CLI args: %w", err)
		}
		if err := schema.AddSource(LabelCLI, schema.CLISource(fs)); err != nil {
			return nil, err
		}
	}

	if b.hasEnviron {
		if err := schema.AddSource(LabelEnv, schema.EnvSource(b.environ)); err != nil {
			return nil, err
		}
	}

	switch {
	case b.fileItem != "":
		itemPath := b.fileItem
		format := b.fileFormat
		err := schema.AddSourceFunc(LabelFile, func(ctx context.Context, bootstrap *Resolved) (Source, error) {
			path, err := bootstrap.String(itemPath)
			if err != nil {
				return nil, fmt.Errorf("config file item %q: %w", itemPath, err)
			}
			return NewFileSource(path, format), nil
		})
		if err != nil {
			return nil, err
		}
	case b.file != "":
		if err := schema.AddSource(LabelFile, NewFileSource(b.file, b.fileFormat)); err != nil {
			return nil, err
		}
	}

	for _, extra := range b.extra {
		if extra.build != nil {
			err = schema.AddSourceFunc(extra.label, extra.build)
		} else {
			err = schema.AddSource(extra.label, extra.src)
		}
		if err != nil {
			return nil, err
		}
	}

	return schema, nil
}

// Load builds the schema and resolves it, returning both.
func (b *Builder) Load(ctx context.Context) (*Schema, *Resolved, error) {
	schema, err := b.Build(ctx)
	if err != nil {
		return nil, nil, err
	}

	resolved, err := schema.Load(ctx, b.order...)
	if err != nil {
		return schema, nil, err
	}

	for _, validator := range b.validators {
		if err := validator(resolved); err != nil {
			return schema, nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return schema, resolved, nil
}

// Quick resolves a schema with the standard precedence (CLI > env > file >
// defaults) in a single call, from the ambient process arguments and
// environment. configFile may be empty.
func Quick(ctx context.Context, envPrefix, configFile string, items ...*Item) (*Resolved, error) {
	b := NewBuilder().
		WithItems(items...).
		WithEnvPrefix(envPrefix).
		WithArgs(os.Args[1:]).
		WithEnviron(os.Environ())
	if configFile != "" {
		b = b.WithFile(configFile)
	}
	_, resolved, err := b.Load(ctx)
	return resolved, err
}

// MustQuick is like Quick but panics on error.
func MustQuick(ctx context.Context, envPrefix, configFile string, items ...*Item) *Resolved {
	resolved, err := Quick(ctx, envPrefix, configFile, items...)
	if err != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return resolved
}
