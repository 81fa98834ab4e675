// File: declconf/names_test.go
package declconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnvNameDerivation tests environment variable name computation
func TestEnvNameDerivation(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		items    []*Item
		path     string
		expected string
	}{
		{
			name:     "SimpleName",
			items:    []*Item{{Name: "verbose", Kind: KindBool}},
			path:     "verbose",
			expected: "VERBOSE",
		},
		{
			name: "NestedPath",
			items: []*Item{{Name: "db", Kind: KindDict, Children: []*Item{
				{Name: "host", Kind: KindString},
			}}},
			path:     "db.host",
			expected: "DB_HOST",
		},
		{
			name:     "SnakeCasePassesThrough",
			items:    []*Item{{Name: "db_name", Kind: KindString}},
			path:     "db_name",
			expected: "DB_NAME",
		},
		{
			name:     "CamelCaseBoundary",
			items:    []*Item{{Name: "maxRetries", Kind: KindInt}},
			path:     "maxRetries",
			expected: "MAX_RETRIES",
		},
		{
			name:     "AllUpperStaysWhole",
			items:    []*Item{{Name: "TTL", Kind: KindInt}},
			path:     "TTL",
			expected: "TTL",
		},
		{
			name:     "WithPrefix",
			prefix:   "MYAPP_",
			items:    []*Item{{Name: "verbose", Kind: KindBool}},
			path:     "verbose",
			expected: "MYAPP_VERBOSE",
		},
		{
			name:     "ExplicitOverride",
			prefix:   "MYAPP_",
			items:    []*Item{{Name: "verbose", Kind: KindBool, EnvName: "DEBUG_MODE"}},
			path:     "verbose",
			expected: "MYAPP_DEBUG_MODE",
		},
		{
			name:     "RawNameSkipsDerivation",
			items:    []*Item{{Name: "mixedCase", Kind: KindString, RawEnvName: true}},
			path:     "mixedCase",
			expected: "mixedCase",
		},
		{
			name:     "NoEnvPrefixOptsOut",
			prefix:   "MYAPP_",
			items:    []*Item{{Name: "home", Kind: KindString, EnvName: "HOME", NoEnvPrefix: true}},
			path:     "home",
			expected: "HOME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(Options{EnvPrefix: tt.prefix}, tt.items...)
			require.NoError(t, err)
			name, ok := s.EnvNameOf(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.expected, name)
		})
	}
}

// TestCLINameDerivation tests long flag name computation
func TestCLINameDerivation(t *testing.T) {
	s := MustNew(Options{},
		&Item{Name: "db", Kind: KindDict, Children: []*Item{
			{Name: "host", Kind: KindString},
			{Name: "maxConns", Kind: KindInt},
		}},
		&Item{Name: "db_name", Kind: KindString},
		&Item{Name: "custom", Kind: KindString, CLIName: "my-custom"},
		&Item{Name: "rawName", Kind: KindString, RawCLIName: true},
	)

	flagNames := make(map[string]string)
	for _, spec := range s.FlagSpecs() {
		flagNames[spec.Path] = spec.Name
	}

	assert.Equal(t, "db-host", flagNames["db.host"])
	assert.Equal(t, "db-max-conns", flagNames["db.maxConns"])
	assert.Equal(t, "db-name", flagNames["db_name"])
	assert.Equal(t, "my-custom", flagNames["custom"])
	assert.Equal(t, "rawName", flagNames["rawName"])

	// Dict containers expose no flag of their own.
	_, ok := flagNames["db"]
	assert.False(t, ok)
}

// TestCamelBoundary tests the word-boundary rule directly
func TestCamelBoundary(t *testing.T) {
	tests := []struct {
		in, sep, out string
	}{
		{"maxRetries", "_", "max_Retries"},
		{"already_snake", "_", "already_snake"},
		{"TTL", "_", "TTL"},
		{"parseHTTPHeader", "_", "parse_HTTPHeader"},
		{"a", "_", "a"},
		{"", "_", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, camelBoundary(tt.in, tt.sep), "input %q", tt.in)
	}
}
