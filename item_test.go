// File: declconf/item_test.go
package declconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFromStruct tests item derivation from tagged structs
func TestFromStruct(t *testing.T) {
	t.Run("ScalarsAndNesting", func(t *testing.T) {
		type DB struct {
			Host string `conf:"host"`
			Port int    `conf:"port"`
		}
		type Config struct {
			DB      DB      `conf:"db"`
			Ratio   float64 `conf:"ratio"`
			Verbose bool    // no tag: lowercased field name
			Ignored string  `conf:"-"`
			hidden  string
		}
		_ = Config{hidden: ""}.hidden

		items, err := FromStruct(Config{
			DB:      DB{Host: "localhost", Port: 5432},
			Ratio:   0.5,
			Verbose: true,
			Ignored: "x",
		})
		require.NoError(t, err)
		require.Len(t, items, 3)

		db := items[0]
		assert.Equal(t, "db", db.Name)
		assert.Equal(t, KindDict, db.Kind)
		require.Len(t, db.Children, 2)
		assert.Equal(t, "host", db.Children[0].Name)
		assert.Equal(t, "localhost", db.Children[0].Default)
		assert.Equal(t, KindInt, db.Children[1].Kind)
		assert.Equal(t, int64(5432), db.Children[1].Default)

		assert.Equal(t, "ratio", items[1].Name)
		assert.Equal(t, KindFloat, items[1].Kind)

		assert.Equal(t, "verbose", items[2].Name)
		assert.Equal(t, KindBool, items[2].Kind)
		assert.Equal(t, true, items[2].Default)
	})

	t.Run("RequiredOption", func(t *testing.T) {
		type Config struct {
			APIKey string `conf:"api_key,required"`
		}
		items, err := FromStruct(Config{})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, items[0].Required)
	})

	t.Run("DescriptionTag", func(t *testing.T) {
		type Config struct {
			Mode string `conf:"mode" desc:"runtime mode"`
		}
		items, err := FromStruct(Config{Mode: "dev"})
		require.NoError(t, err)
		assert.Equal(t, "runtime mode", items[0].Description)
	})

	t.Run("SliceBecomesList", func(t *testing.T) {
		type Config struct {
			Tags []string `conf:"tags"`
		}
		items, err := FromStruct(Config{Tags: []string{"a", "b"}})
		require.NoError(t, err)
		require.Len(t, items, 1)

		assert.Equal(t, KindList, items[0].Kind)
		require.Len(t, items[0].Children, 1)
		assert.Equal(t, KindString, items[0].Children[0].Kind)
		assert.Equal(t, []any{"a", "b"}, items[0].Default)
	})

	t.Run("EmptySliceHasNoDefault", func(t *testing.T) {
		type Config struct {
			Tags []string `conf:"tags"`
		}
		items, err := FromStruct(Config{})
		require.NoError(t, err)
		assert.Nil(t, items[0].Default)
	})

	t.Run("PointerInput", func(t *testing.T) {
		type Config struct {
			Host string `conf:"host"`
		}
		items, err := FromStruct(&Config{Host: "h"})
		require.NoError(t, err)
		assert.Equal(t, "h", items[0].Default)
	})

	t.Run("NonStructInput", func(t *testing.T) {
		_, err := FromStruct(42)
		assert.Error(t, err)

		var nilPtr *struct{}
		_, err = FromStruct(nilPtr)
		assert.Error(t, err)
	})

	t.Run("DerivedItemsBuildASchema", func(t *testing.T) {
		type Config struct {
			DB struct {
				Host string `conf:"host"`
			} `conf:"db"`
		}
		items, err := FromStruct(Config{})
		require.NoError(t, err)

		s, err := New(Options{}, items...)
		require.NoError(t, err)
		assert.Equal(t, []string{"db", "db.host"}, s.Paths())
	})
}
