// File: declconf/doc.go

// Package declconf provides declarative, typed configuration for Go
// applications: a schema of typed items resolved against multiple sources
// (command-line flags, environment variables, TOML/JSON/YAML files, and
// custom adapters) with caller-defined precedence.
//
// Features:
//   - Typed item declarations (string, int, float, bool, complex, dict, list)
//     validated at schema construction
//   - Multiple labeled sources with caller-ordered precedence
//   - Derived environment and CLI names with collision detection
//   - Previous-name aliases and document migration for renamed items
//   - Two-phase loading so a bootstrap item can name the config file
//   - Fallback substitution between items, choices, and custom validators
//   - Immutable resolved snapshots with typed getters and struct decoding
//   - File watching with change callbacks and supervised reload
//
// Quick Start:
//
//	items := []*declconf.Item{
//	    {Name: "server", Kind: declconf.KindDict, Children: []*declconf.Item{
//	        {Name: "host", Kind: declconf.KindString, Default: "localhost"},
//	        {Name: "port", Kind: declconf.KindInt, Default: 8080},
//	    }},
//	}
//
//	cfg, err := declconf.Quick(ctx, "MYAPP_", "config.toml", items...)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	host, _ := cfg.String("server.host")
//	port, _ := cfg.Int64("server.port")
//
// Default Precedence (highest to lowest):
//  1. Command-line arguments (--server-port=9090)
//  2. Environment variables (MYAPP_SERVER_PORT=9090)
//  3. Configuration file (config.toml)
//  4. Declared defaults
//
// Custom Precedence:
//
//	schema, cfg, err := declconf.NewBuilder().
//	    WithItems(items...).
//	    WithEnviron(os.Environ()).
//	    WithFile("config.toml").
//	    WithSourceOrder(declconf.LabelFile, declconf.LabelEnv).
//	    Load(ctx)
//
// Thread Safety:
// A Schema is immutable after construction apart from source registration,
// which is mutex-guarded. Resolved snapshots are immutable; concurrent reads
// need no synchronization.
package declconf
