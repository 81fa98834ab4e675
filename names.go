// File: declconf/names.go
package declconf

import (
	"strings"
	"unicode"
)

// camelBoundary inserts sep before each uppercase rune that follows a
// lowercase rune, so camelCase segments split at word boundaries while
// already-snake or already-upper names pass through untouched.
func camelBoundary(s, sep string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(prev) {
			b.WriteString(sep)
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// envSegment formats one path segment for environment variable use.
func envSegment(seg string) string {
	return strings.ToUpper(camelBoundary(seg, "_"))
}

// cliSegment formats one path segment for CLI flag use.
func cliSegment(seg string) string {
	seg = strings.ReplaceAll(seg, "_", "-")
	return strings.ToLower(camelBoundary(seg, "-"))
}

// deriveEnvName computes the environment variable name for an item from its
// segment chain (ancestor names first). Formatting follows the boundary
// rule; RawEnvName items use their literal name instead.
func deriveEnvName(it *Item, segments []string) string {
	if it.EnvName != "" {
		return it.EnvName
	}
	if it.RawEnvName {
		return it.Name
	}
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = envSegment(seg)
	}
	return strings.Join(parts, "_")
}

// deriveCLIName computes the long flag name (without dashes) for an item
// from its segment chain. Dict ancestry shows up as --parent-child.
func deriveCLIName(it *Item, segments []string) string {
	if it.CLIName != "" {
		return it.CLIName
	}
	if it.RawCLIName {
		return strings.Join(segments, "-")
	}
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = cliSegment(seg)
	}
	return strings.Join(parts, "-")
}

// applyEnvPrefix prepends the schema-wide prefix to a derived or explicit
// environment name unless the item opted out.
func applyEnvPrefix(it *Item, prefix, name string) string {
	if it.NoEnvPrefix || prefix == "" {
		return name
	}
	return prefix + name
}
