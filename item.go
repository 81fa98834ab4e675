// File: declconf/item.go
package declconf

import (
	"fmt"
	"reflect"
	"strings"
)

// Kind identifies the declared type of an item.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindComplex
	KindDict
	KindList
)

// String returns the kind name used in error messages and documentation.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindComplex:
		return "complex"
	case KindDict:
		return "dict"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) scalar() bool {
	return k != KindDict && k != KindList
}

// Item declares one configuration entry: its type, default, naming,
// validation, and migration metadata. Items form a tree; dict items carry
// children, list items carry exactly one scalar child that declares the
// element type.
type Item struct {
	// Name must be unique among siblings and a valid key segment.
	Name string

	// Kind is the declared type. Scalar raw values are coerced to the
	// canonical Go type for the kind (string, int64, float64, bool,
	// complex128).
	Kind Kind

	// Default is used when no source supplies a value. nil means absent.
	Default any

	// Required makes resolution fail with *MissingItemError when no source,
	// fallback, or default satisfies the item.
	Required bool

	// Children holds sub-items for dict and list kinds, in declaration
	// order. Declaration order is the traversal order everywhere.
	Children []*Item

	// Choices restricts the resolved value to a fixed set. Mutually
	// exclusive with KindDict.
	Choices []any

	// Validate, when set, is applied to the coerced value. A non-nil error
	// surfaces as *ValidationError.
	Validate func(value any) error

	// Description is surfaced by Describe and WriteDocs.
	Description string

	// EnvName overrides the derived environment variable name.
	EnvName string

	// AltEnvNames are additional environment names checked in order after
	// the primary name during lookup. Never used for output.
	AltEnvNames []string

	// RawEnvName disables snake-case derivation; the literal item name is
	// used (the schema-wide prefix still applies unless NoEnvPrefix).
	RawEnvName bool

	// NoEnvPrefix leaves the schema-wide environment prefix off this item.
	NoEnvPrefix bool

	// CLIName overrides the derived flag name (without leading dashes).
	CLIName string

	// CLIShort is a one-letter shorthand for the primary flag.
	CLIShort string

	// RawCLIName disables kebab-case derivation for the flag name.
	RawCLIName bool

	// CLIHidden removes the item from the CLI surface entirely.
	CLIHidden bool

	// PreviousNames lists historical dotted paths this item was known by,
	// most recent first. Lookup falls through to them within each source;
	// migration renames them to the current path.
	PreviousNames []string

	// PreviousDefaults lists historical default values that migration may
	// replace with the current default. Resolution accepts them verbatim.
	PreviousDefaults []any

	// Fallback is a dotted path whose resolved value substitutes when this
	// item resolves to absent.
	Fallback string

	// Bootstrap items resolve in an earlier phase, before deferred sources
	// are constructed (e.g. a config file path item).
	Bootstrap bool

	// Separator joins this item's path with its children's names. Empty
	// means ".".
	Separator string
}

func (it *Item) separator() string {
	if it.Separator == "" {
		return "."
	}
	return it.Separator
}

// FromStruct derives an item tree from a struct with `conf` tags, using
// field values as defaults. Nested structs become dict items, slices of
// scalars become list items. A tag of "-" skips the field; ",required"
// marks the item required.
func FromStruct(structWithDefaults any) ([]*Item, error) {
	v := reflect.ValueOf(structWithDefaults)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("FromStruct requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("FromStruct requires a struct or struct pointer, got %T", structWithDefaults)
	}
	return itemsFromValue(v)
}

func itemsFromValue(v reflect.Value) ([]*Item, error) {
	t := v.Type()
	items := make([]*Item, 0, v.NumField())

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("conf")
		if tag == "-" {
			continue
		}

		name := strings.ToLower(field.Name)
		required := false
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "required" {
					required = true
				}
			}
		}

		item, err := itemFromField(name, fieldValue)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		item.Required = required
		item.Description = field.Tag.Get("desc")
		items = append(items, item)
	}

	return items, nil
}

func itemFromField(name string, v reflect.Value) (*Item, error) {
	switch v.Kind() {
	case reflect.String:
		return &Item{Name: name, Kind: KindString, Default: v.String()}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Item{Name: name, Kind: KindInt, Default: v.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Item{Name: name, Kind: KindInt, Default: int64(v.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return &Item{Name: name, Kind: KindFloat, Default: v.Float()}, nil
	case reflect.Bool:
		return &Item{Name: name, Kind: KindBool, Default: v.Bool()}, nil
	case reflect.Complex64, reflect.Complex128:
		return &Item{Name: name, Kind: KindComplex, Default: v.Complex()}, nil
	case reflect.Struct:
		children, err := itemsFromValue(v)
		if err != nil {
			return nil, err
		}
		return &Item{Name: name, Kind: KindDict, Children: children}, nil
	case reflect.Ptr:
		if v.IsNil() {
			return nil, fmt.Errorf("nil pointer has no derivable default")
		}
		return itemFromField(name, v.Elem())
	case reflect.Slice:
		elem, err := itemFromField("elem", reflect.New(v.Type().Elem()).Elem())
		if err != nil {
			return nil, err
		}
		if !elem.Kind.scalar() {
			return nil, fmt.Errorf("slice elements must be scalar, got %s", elem.Kind)
		}
		elem.Default = nil
		item := &Item{Name: name, Kind: KindList, Children: []*Item{elem}}
		if v.Len() > 0 {
			def := make([]any, v.Len())
			for i := 0; i < v.Len(); i++ {
				def[i] = v.Index(i).Interface()
			}
			item.Default = def
		}
		return item, nil
	default:
		return nil, fmt.Errorf("unsupported field kind %s", v.Kind())
	}
}
