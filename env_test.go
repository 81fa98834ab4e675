// File: declconf/env_test.go
package declconf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnvSource tests environment snapshot lookup
func TestEnvSource(t *testing.T) {
	ctx := context.Background()

	t.Run("DerivedNames", func(t *testing.T) {
		s := MustNew(Options{EnvPrefix: "MYAPP_"},
			&Item{Name: "db", Kind: KindDict, Children: []*Item{
				{Name: "host", Kind: KindString},
				{Name: "port", Kind: KindInt},
			}},
			&Item{Name: "verbose", Kind: KindBool},
		)

		src := s.EnvSource([]string{
			"MYAPP_DB_HOST=db.example.com",
			"MYAPP_DB_PORT=5433",
			"MYAPP_VERBOSE=yes",
			"UNRELATED=ignored",
		})
		m, err := src.Fetch(ctx)
		require.NoError(t, err)

		assert.Equal(t, map[string]any{
			"db.host": "db.example.com",
			"db.port": "5433",
			"verbose": "yes",
		}, m)
	})

	t.Run("ValuesStayRawForCoercion", func(t *testing.T) {
		s := MustNew(Options{}, &Item{Name: "port", Kind: KindInt})
		require.NoError(t, s.AddSource("env", s.EnvSource([]string{"PORT=8080"})))

		cfg, err := s.Load(ctx)
		require.NoError(t, err)

		port, err := cfg.Int64("port")
		require.NoError(t, err)
		assert.Equal(t, int64(8080), port)
	})

	t.Run("PrimaryBeatsAlternate", func(t *testing.T) {
		s := MustNew(Options{},
			&Item{Name: "token", Kind: KindString, AltEnvNames: []string{"LEGACY_TOKEN"}},
		)

		// Alternate listed first in the snapshot; lookup priority is
		// declaration priority, not environ order.
		m, err := s.EnvSource([]string{
			"LEGACY_TOKEN=old",
			"TOKEN=new",
		}).Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "new", m["token"])
	})

	t.Run("AlternateUsedWhenPrimaryAbsent", func(t *testing.T) {
		s := MustNew(Options{},
			&Item{Name: "token", Kind: KindString, AltEnvNames: []string{"LEGACY_TOKEN"}},
		)

		m, err := s.EnvSource([]string{"LEGACY_TOKEN=old"}).Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "old", m["token"])
	})

	t.Run("PreviousPathDerivation", func(t *testing.T) {
		s := MustNew(Options{EnvPrefix: "APP_"},
			&Item{Name: "db_name", Kind: KindString, PreviousNames: []string{"dbname"}},
		)

		// The previous path derives its own variable name; the value files
		// under the previous path so within-source alias order applies.
		m, err := s.EnvSource([]string{"APP_DBNAME=legacy"}).Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "legacy", m["dbname"])

		require.NoError(t, s.AddSource("env", s.EnvSource([]string{"APP_DBNAME=legacy"})))
		cfg, err := s.Load(ctx)
		require.NoError(t, err)
		v, _ := cfg.String("db_name")
		assert.Equal(t, "legacy", v)
	})

	t.Run("RawNameWithPreviousPath", func(t *testing.T) {
		s := MustNew(Options{},
			&Item{Name: "dbName", Kind: KindString, RawEnvName: true, PreviousNames: []string{"databaseName"}},
		)

		// The current item reads its literal name; the previous path reads
		// its own literal last segment, not the current one.
		m, err := s.EnvSource([]string{"databaseName=legacy"}).Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"databaseName": "legacy"}, m)

		m, err = s.EnvSource([]string{
			"dbName=current",
			"databaseName=legacy",
		}).Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "current", m["dbName"])
		assert.Equal(t, "legacy", m["databaseName"])

		require.NoError(t, s.AddSource("env", s.EnvSource([]string{"databaseName=legacy"})))
		cfg, err := s.Load(ctx)
		require.NoError(t, err)
		v, _ := cfg.String("dbName")
		assert.Equal(t, "legacy", v)
	})

	t.Run("ValueWithEquals", func(t *testing.T) {
		s := MustNew(Options{}, &Item{Name: "dsn", Kind: KindString})
		m, err := s.EnvSource([]string{"DSN=user=app password=secret"}).Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, "user=app password=secret", m["dsn"])
	})
}
