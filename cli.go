// File: declconf/cli.go
package declconf

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// FlagSpec describes the CLI shape of one exposed item, for consumption by
// an external argument parser. The engine never parses arguments itself; it
// supplies the shape here and later coerces the parsed result through
// CLISource.
type FlagSpec struct {
	// Path is the item's dotted path.
	Path string

	// Name is the long flag name without leading dashes. Empty when only
	// the disabling form exists (booleans defaulting to true).
	Name string

	// NoName is the "no-" disabling form for booleans ("" otherwise). When
	// both Name and NoName are set they form a mutually exclusive pair;
	// supplying neither leaves the item unresolved by CLI.
	NoName string

	// Short is the one-letter shorthand, if any.
	Short string

	// Kind is the item's declared kind; ElemKind is the element kind for
	// repeatable list flags.
	Kind     Kind
	ElemKind Kind

	// Repeatable marks list flags: each occurrence contributes one element
	// in occurrence order.
	Repeatable bool

	Choices []any
	Usage   string
}

// flagFor computes the CLI exposure for a node, or nil when the item is
// suppressed: hidden items, dict containers (their children get flags), and
// lists nested below the top level.
func (s *Schema) flagFor(n *node) *FlagSpec {
	it := n.item
	if it.CLIHidden || it.Kind == KindDict {
		return nil
	}
	if it.Kind == KindList && n.parent != nil {
		return nil
	}

	name := deriveCLIName(it, n.segments)
	usage := it.Description
	if usage == "" {
		usage = "set " + n.path
	}

	spec := &FlagSpec{
		Path:    n.path,
		Name:    name,
		Short:   it.CLIShort,
		Kind:    it.Kind,
		Choices: it.Choices,
		Usage:   usage,
	}

	switch it.Kind {
	case KindBool:
		switch def := n.def; def {
		case true:
			// Enabled by default: only the disabling form makes sense.
			spec.Name = ""
			spec.NoName = "no-" + name
		case false:
			// Disabled by default: only the enabling form.
		default:
			// No default: expose the pair; neither supplied means the item
			// falls through to the next source.
			spec.NoName = "no-" + name
		}
	case KindList:
		spec.Repeatable = true
		spec.ElemKind = it.Children[0].Kind
		if len(it.Children[0].Choices) > 0 {
			spec.Choices = it.Children[0].Choices
		}
	}

	if len(spec.Choices) > 0 {
		parts := make([]string, len(spec.Choices))
		for i, c := range spec.Choices {
			parts[i] = fmt.Sprintf("%v", c)
		}
		spec.Usage += " (one of: " + strings.Join(parts, ", ") + ")"
	}

	return spec
}

// FlagSpecs returns the CLI shape of every exposed item in traversal order.
func (s *Schema) FlagSpecs() []FlagSpec {
	var specs []FlagSpec
	for _, path := range s.order {
		if f := s.nodes[path].flag; f != nil {
			specs = append(specs, *f)
		}
	}
	return specs
}

// FlagSet builds a pflag.FlagSet covering every exposed item. Defaults show
// up in help text only; CLISource contributes just the flags the user
// actually set.
func (s *Schema) FlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)

	for _, path := range s.order {
		n := s.nodes[path]
		spec := n.flag
		if spec == nil {
			continue
		}

		switch spec.Kind {
		case KindBool:
			switch {
			case spec.Name == "":
				// Only the disabling form exists; the declared shorthand
				// attaches to it.
				fs.BoolP(spec.NoName, spec.Short, false, spec.Usage)
			case spec.NoName == "":
				fs.BoolP(spec.Name, spec.Short, false, spec.Usage)
			default:
				fs.BoolP(spec.Name, spec.Short, false, spec.Usage)
				fs.Bool(spec.NoName, false, "disable "+n.path)
			}
		case KindInt:
			def, _ := n.def.(int64)
			fs.Int64P(spec.Name, spec.Short, def, spec.Usage)
		case KindFloat:
			def, _ := n.def.(float64)
			fs.Float64P(spec.Name, spec.Short, def, spec.Usage)
		case KindList:
			fs.StringArrayP(spec.Name, spec.Short, nil, spec.Usage)
		default:
			// string and complex flags both parse as strings; coercion
			// happens during resolution.
			var def string
			if n.def != nil {
				def = fmt.Sprintf("%v", n.def)
			}
			fs.StringP(spec.Name, spec.Short, def, spec.Usage)
		}
	}

	return fs
}

type cliSource struct {
	schema *Schema
	fs     *pflag.FlagSet
}

// CLISource wraps a parsed FlagSet as a source. Only changed flags
// contribute; repeated list flags contribute their occurrences in order as
// one atomic list value.
func (s *Schema) CLISource(fs *pflag.FlagSet) Source {
	return &cliSource{schema: s, fs: fs}
}

func (c *cliSource) Fetch(ctx context.Context) (map[string]any, error) {
	result := make(map[string]any)

	for _, path := range c.schema.order {
		n := c.schema.nodes[path]
		spec := n.flag
		if spec == nil {
			continue
		}

		switch spec.Kind {
		case KindBool:
			onSet := spec.Name != "" && c.fs.Changed(spec.Name)
			offSet := spec.NoName != "" && c.fs.Changed(spec.NoName)
			if onSet && offSet {
				return nil, fmt.Errorf("flags --%s and --%s are mutually exclusive", spec.Name, spec.NoName)
			}
			if onSet {
				result[path] = true
			} else if offSet {
				result[path] = false
			}
		case KindList:
			if c.fs.Changed(spec.Name) {
				values, err := c.fs.GetStringArray(spec.Name)
				if err != nil {
					return nil, err
				}
				result[path] = values
			}
		case KindInt:
			if c.fs.Changed(spec.Name) {
				v, err := c.fs.GetInt64(spec.Name)
				if err != nil {
					return nil, err
				}
				result[path] = v
			}
		case KindFloat:
			if c.fs.Changed(spec.Name) {
				v, err := c.fs.GetFloat64(spec.Name)
				if err != nil {
					return nil, err
				}
				result[path] = v
			}
		default:
			if c.fs.Changed(spec.Name) {
				v, err := c.fs.GetString(spec.Name)
				if err != nil {
					return nil, err
				}
				result[path] = v
			}
		}
	}

	return result, nil
}
