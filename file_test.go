// File: declconf/file_test.go
package declconf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFileSource tests structured file loading across formats
func TestFileSource(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	newSchema := func(t *testing.T) *Schema {
		return MustNew(Options{},
			&Item{Name: "server", Kind: KindDict, Children: []*Item{
				{Name: "host", Kind: KindString, Default: "localhost"},
				{Name: "port", Kind: KindInt, Default: 8080},
			}},
			&Item{Name: "verbose", Kind: KindBool, Default: false},
		)
	}

	loadFrom := func(t *testing.T, path string, format Format) *Resolved {
		s := newSchema(t)
		require.NoError(t, s.AddSource("file", NewFileSource(path, format)))
		cfg, err := s.Load(ctx)
		require.NoError(t, err)
		return cfg
	}

	t.Run("TOML", func(t *testing.T) {
		path := filepath.Join(tmpDir, "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
verbose = true

[server]
host = "toml.example.com"
port = 9000
`), 0644))

		cfg := loadFrom(t, path, FormatAuto)
		host, _ := cfg.String("server.host")
		assert.Equal(t, "toml.example.com", host)
		port, _ := cfg.Int64("server.port")
		assert.Equal(t, int64(9000), port)
		verbose, _ := cfg.Bool("verbose")
		assert.True(t, verbose)
	})

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(tmpDir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
server:
  host: yaml.example.com
  port: 9001
verbose: "on"
`), 0644))

		cfg := loadFrom(t, path, FormatAuto)
		host, _ := cfg.String("server.host")
		assert.Equal(t, "yaml.example.com", host)
		port, _ := cfg.Int64("server.port")
		assert.Equal(t, int64(9001), port)
		verbose, _ := cfg.Bool("verbose")
		assert.True(t, verbose)
	})

	t.Run("JSONWithComments", func(t *testing.T) {
		path := filepath.Join(tmpDir, "config.jsonc")
		require.NoError(t, os.WriteFile(path, []byte(`{
  // comments are fine in config JSON
  "server": {
    "host": "json.example.com",
    "port": 9002,
  },
  "verbose": true
}`), 0644))

		cfg := loadFrom(t, path, FormatAuto)
		host, _ := cfg.String("server.host")
		assert.Equal(t, "json.example.com", host)
		port, _ := cfg.Int64("server.port")
		assert.Equal(t, int64(9002), port)
	})

	t.Run("MissingFileIsUnavailable", func(t *testing.T) {
		src := NewFileSource(filepath.Join(tmpDir, "absent.toml"), FormatAuto)
		_, err := src.Fetch(ctx)
		assert.ErrorIs(t, err, ErrSourceUnavailable)

		// Resolution carries on with defaults.
		cfg := loadFrom(t, filepath.Join(tmpDir, "absent.toml"), FormatAuto)
		host, _ := cfg.String("server.host")
		assert.Equal(t, "localhost", host)
	})

	t.Run("MalformedFileIsFatal", func(t *testing.T) {
		path := filepath.Join(tmpDir, "broken.toml")
		require.NoError(t, os.WriteFile(path, []byte(`server = {{{`), 0644))

		s := newSchema(t)
		require.NoError(t, s.AddSource("file", NewFileSource(path, FormatTOML)))
		_, err := s.Load(ctx)
		assert.Error(t, err)
	})

	t.Run("ContentDetectionWithoutExtension", func(t *testing.T) {
		path := filepath.Join(tmpDir, "noext")
		require.NoError(t, os.WriteFile(path, []byte(`{"verbose": true}`), 0644))

		cfg := loadFrom(t, path, FormatAuto)
		verbose, _ := cfg.Bool("verbose")
		assert.True(t, verbose)
	})
}

// TestFormatDetection tests extension-based format inference
func TestFormatDetection(t *testing.T) {
	tests := []struct {
		path     string
		expected Format
	}{
		{"config.toml", FormatTOML},
		{"config.tml", FormatTOML},
		{"config.json", FormatJSON},
		{"config.jsonc", FormatJSON},
		{"config.yaml", FormatYAML},
		{"config.yml", FormatYAML},
		{"config.ini", FormatAuto},
		{"config", FormatAuto},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, detectFileFormat(tt.path), "path %q", tt.path)
	}
}

// TestAtomicWrite tests temp-file-and-rename persistence
func TestAtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("WritesAndReplaces", func(t *testing.T) {
		path := filepath.Join(tmpDir, "out.toml")
		require.NoError(t, atomicWriteFile(path, []byte("a = 1\n")))
		require.NoError(t, atomicWriteFile(path, []byte("a = 2\n")))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "a = 2\n", string(data))
	})

	t.Run("NoTempFileLeftBehind", func(t *testing.T) {
		path := filepath.Join(tmpDir, "clean.toml")
		require.NoError(t, atomicWriteFile(path, []byte("x = true\n")))

		entries, err := os.ReadDir(tmpDir)
		require.NoError(t, err)
		for _, entry := range entries {
			assert.NotContains(t, entry.Name(), ".tmp")
		}
	})

	t.Run("CreatesParentDirectories", func(t *testing.T) {
		path := filepath.Join(tmpDir, "deep", "nested", "out.toml")
		require.NoError(t, atomicWriteFile(path, []byte("ok = true\n")))
		_, err := os.Stat(path)
		assert.NoError(t, err)
	})
}
