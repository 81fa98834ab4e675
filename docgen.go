// File: declconf/docgen.go
package declconf

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
)

// SourceValue is one source's contribution to an item, before precedence
// collapses the list to a single winner.
type SourceValue struct {
	Label string
	Value any
}

// ItemDoc describes one leaf item: its declaration plus the value each
// consulted source holds for it, in precedence order. An item present in N
// sources yields exactly N entries in Values; the first is the one Load
// would pick.
type ItemDoc struct {
	Path        string
	Kind        Kind
	Description string
	Required    bool
	Default     any
	Choices     []any
	EnvName     string
	AltEnvNames []string
	Flag        *FlagSpec
	Values      []SourceValue
}

// Describe fetches every source and reports, per leaf item, the value each
// source supplies without collapsing precedence. Labels default to
// registration order, same as Load.
func (s *Schema) Describe(ctx context.Context, labels ...string) ([]ItemDoc, error) {
	r, err := s.fetchAll(ctx, labels)
	if err != nil {
		return nil, err
	}

	docs := make([]ItemDoc, 0, len(s.order))
	for _, path := range s.order {
		n := s.nodes[path]
		if n.item.Kind == KindDict {
			continue
		}

		doc := ItemDoc{
			Path:        path,
			Kind:        n.item.Kind,
			Description: n.item.Description,
			Required:    n.item.Required,
			Default:     n.item.Default,
			Choices:     n.item.Choices,
			EnvName:     n.envName,
			AltEnvNames: n.altEnv,
			Flag:        n.flag,
		}

		for _, label := range r.labels {
			m := r.maps[label]
			if m == nil {
				continue
			}
			raw, ok := lookupInSource(m, n)
			if !ok {
				continue
			}
			// Report the typed value when the raw one coerces; otherwise the
			// raw value itself, so a bad entry is still visible.
			value := raw
			if typed, err := coerceRaw(n, raw); err == nil {
				value = typed
			}
			doc.Values = append(doc.Values, SourceValue{Label: label, Value: value})
		}

		docs = append(docs, doc)
	}
	return docs, nil
}

// coerceRaw applies the item's kind without running choices or validators.
func coerceRaw(n *node, raw any) (any, error) {
	if n.item.Kind == KindList {
		return coerceList(n.path, raw, n.item.Children[0].Kind)
	}
	return coerceScalar(n.path, raw, n.item.Kind)
}

// WriteDocs renders item documentation as an aligned text table, one row
// per leaf item.
func WriteDocs(w io.Writer, docs []ItemDoc) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tKIND\tDEFAULT\tENV\tFLAG\tDESCRIPTION")
	for _, doc := range docs {
		def := ""
		if doc.Default != nil {
			def = fmt.Sprintf("%v", doc.Default)
		} else if doc.Required {
			def = "(required)"
		}
		flag := ""
		if doc.Flag != nil {
			if doc.Flag.Name != "" {
				flag = "--" + doc.Flag.Name
			} else {
				flag = "--" + doc.Flag.NoName
			}
		}
		desc := doc.Description
		if len(doc.Choices) > 0 {
			desc = strings.TrimSpace(fmt.Sprintf("%s (one of %v)", desc, doc.Choices))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			doc.Path, doc.Kind, def, doc.EnvName, flag, desc)
	}
	return tw.Flush()
}

// Debug returns a formatted string showing every item's per-source values
// and the winning precedence, for troubleshooting source layering.
func (s *Schema) Debug(ctx context.Context, labels ...string) string {
	if len(labels) == 0 {
		labels = s.SourceLabels()
	}

	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	b.WriteString(fmt.Sprintf("Precedence: %v\n", labels))

	docs, err := s.Describe(ctx, labels...)
	if err != nil {
		b.WriteString(fmt.Sprintf("describe failed: %v\n", err))
		return b.String()
	}

	for _, doc := range docs {
		b.WriteString(fmt.Sprintf("  %s:\n", doc.Path))
		b.WriteString(fmt.Sprintf("    Default: %v\n", doc.Default))
		for _, sv := range doc.Values {
			b.WriteString(fmt.Sprintf("    %s: %v\n", sv.Label, sv.Value))
		}
	}
	return b.String()
}

// Dump writes the resolved configuration to w in TOML format.
func (r *Resolved) Dump(w io.Writer) error {
	encoder := toml.NewEncoder(w)
	return encoder.Encode(r.AsMap())
}
