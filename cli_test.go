// File: declconf/cli_test.go
package declconf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFlagShapes tests per-kind CLI exposure
func TestFlagShapes(t *testing.T) {
	s := MustNew(Options{},
		&Item{Name: "host", Kind: KindString, Default: "localhost"},
		&Item{Name: "color", Kind: KindBool, Default: true, CLIShort: "c"},
		&Item{Name: "verbose", Kind: KindBool, Default: false},
		&Item{Name: "trace", Kind: KindBool},
		&Item{Name: "secret", Kind: KindString, CLIHidden: true},
		&Item{Name: "tags", Kind: KindList, Children: []*Item{
			{Name: "tag", Kind: KindString},
		}},
		&Item{Name: "nested", Kind: KindDict, Children: []*Item{
			{Name: "inner", Kind: KindList, Children: []*Item{
				{Name: "e", Kind: KindString},
			}},
		}},
	)

	specs := make(map[string]FlagSpec)
	for _, spec := range s.FlagSpecs() {
		specs[spec.Path] = spec
	}

	t.Run("BoolDefaultTrueExposesOnlyNoForm", func(t *testing.T) {
		spec := specs["color"]
		assert.Empty(t, spec.Name)
		assert.Equal(t, "no-color", spec.NoName)
		assert.Equal(t, "c", spec.Short)
	})

	t.Run("ShorthandAttachesToNoForm", func(t *testing.T) {
		fs := s.FlagSet("test")
		flag := fs.ShorthandLookup("c")
		require.NotNil(t, flag)
		assert.Equal(t, "no-color", flag.Name)
	})

	t.Run("BoolDefaultFalseExposesOnlyEnableForm", func(t *testing.T) {
		spec := specs["verbose"]
		assert.Equal(t, "verbose", spec.Name)
		assert.Empty(t, spec.NoName)
	})

	t.Run("BoolNoDefaultExposesPair", func(t *testing.T) {
		spec := specs["trace"]
		assert.Equal(t, "trace", spec.Name)
		assert.Equal(t, "no-trace", spec.NoName)
	})

	t.Run("HiddenItemSuppressed", func(t *testing.T) {
		_, ok := specs["secret"]
		assert.False(t, ok)
	})

	t.Run("TopLevelListIsRepeatable", func(t *testing.T) {
		spec := specs["tags"]
		assert.True(t, spec.Repeatable)
		assert.Equal(t, KindString, spec.ElemKind)
	})

	t.Run("NestedListSuppressed", func(t *testing.T) {
		_, ok := specs["nested.inner"]
		assert.False(t, ok)
	})
}

// TestCLISource tests parsed-flag contribution to resolution
func TestCLISource(t *testing.T) {
	ctx := context.Background()

	newSchema := func(t *testing.T) *Schema {
		return MustNew(Options{},
			&Item{Name: "host", Kind: KindString, Default: "localhost"},
			&Item{Name: "port", Kind: KindInt, Default: 8080},
			&Item{Name: "ratio", Kind: KindFloat, Default: 0.5},
			&Item{Name: "color", Kind: KindBool, Default: true, CLIShort: "c"},
			&Item{Name: "trace", Kind: KindBool},
			&Item{Name: "tags", Kind: KindList, Children: []*Item{
				{Name: "tag", Kind: KindString},
			}},
		)
	}

	load := func(t *testing.T, args ...string) (*Resolved, error) {
		s := newSchema(t)
		fs := s.FlagSet("test")
		require.NoError(t, fs.Parse(args))
		require.NoError(t, s.AddSource("cli", s.CLISource(fs)))
		return s.Load(ctx)
	}

	t.Run("OnlyChangedFlagsContribute", func(t *testing.T) {
		cfg, err := load(t, "--port", "9090")
		require.NoError(t, err)

		port, _ := cfg.Int64("port")
		assert.Equal(t, int64(9090), port)

		// host was not supplied on the command line; its default applies,
		// not the FlagSet's help-text default.
		host, _ := cfg.String("host")
		assert.Equal(t, "localhost", host)
	})

	t.Run("FloatFlag", func(t *testing.T) {
		cfg, err := load(t, "--ratio", "0.75")
		require.NoError(t, err)
		ratio, _ := cfg.Float64("ratio")
		assert.Equal(t, 0.75, ratio)
	})

	t.Run("NoFormDisables", func(t *testing.T) {
		cfg, err := load(t, "--no-color")
		require.NoError(t, err)
		color, _ := cfg.Bool("color")
		assert.False(t, color)
	})

	t.Run("NoFormShorthandDisables", func(t *testing.T) {
		cfg, err := load(t, "-c")
		require.NoError(t, err)
		color, _ := cfg.Bool("color")
		assert.False(t, color)
	})

	t.Run("PairEnable", func(t *testing.T) {
		cfg, err := load(t, "--trace")
		require.NoError(t, err)
		trace, _ := cfg.Bool("trace")
		assert.True(t, trace)
	})

	t.Run("PairDisable", func(t *testing.T) {
		cfg, err := load(t, "--no-trace")
		require.NoError(t, err)
		trace, _ := cfg.Bool("trace")
		assert.False(t, trace)
	})

	t.Run("PairNeitherLeavesUnresolved", func(t *testing.T) {
		cfg, err := load(t)
		require.NoError(t, err)
		assert.False(t, cfg.Has("trace"))
	})

	t.Run("PairBothIsAnError", func(t *testing.T) {
		_, err := load(t, "--trace", "--no-trace")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})

	t.Run("RepeatedListKeepsOccurrenceOrder", func(t *testing.T) {
		cfg, err := load(t, "--tags", "beta", "--tags", "alpha", "--tags", "beta")
		require.NoError(t, err)

		tags, err := cfg.StringSlice("tags")
		require.NoError(t, err)
		assert.Equal(t, []string{"beta", "alpha", "beta"}, tags)
	})

	t.Run("ListBeatsLowerSourceAtomically", func(t *testing.T) {
		s := newSchema(t)
		fs := s.FlagSet("test")
		require.NoError(t, fs.Parse([]string{"--tags", "cli-only"}))
		require.NoError(t, s.AddSource("cli", s.CLISource(fs)))
		require.NoError(t, s.AddSource("file", NewMapSource(map[string]any{
			"tags": []any{"file-a", "file-b"},
		})))

		cfg, err := s.Load(ctx)
		require.NoError(t, err)

		tags, _ := cfg.StringSlice("tags")
		assert.Equal(t, []string{"cli-only"}, tags, "lists replace, they never merge")
	})
}
