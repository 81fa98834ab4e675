// File: declconf/helper.go
package declconf

import "strings"

// flattenMap converts a nested map[string]any to a flat map[string]any with
// dot-notation paths. Container values are kept alongside their flattened
// children so whole-dict lookups still work.
func flattenMap(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)

	for key, value := range nested {
		newPath := key
		if prefix != "" {
			newPath = prefix + "." + key
		}

		if nestedMap, isMap := value.(map[string]any); isMap {
			flat[newPath] = nestedMap
			for subPath, subValue := range flattenMap(nestedMap, newPath) {
				flat[subPath] = subValue
			}
		} else {
			flat[newPath] = value
		}
	}

	return flat
}

// setNestedValue sets a value in a nested map using a dot-notation path.
// Intermediate maps are created as needed; a non-map segment in the way is
// replaced by a map.
func setNestedValue(nested map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := nested

	for i := 0; i < len(segments)-1; i++ {
		segment := segments[i]

		next, exists := current[segment]
		if !exists {
			newMap := make(map[string]any)
			current[segment] = newMap
			current = newMap
			continue
		}
		if nextMap, isMap := next.(map[string]any); isMap {
			current = nextMap
		} else {
			newMap := make(map[string]any)
			current[segment] = newMap
			current = newMap
		}
	}

	current[segments[len(segments)-1]] = value
}

// getNestedValue retrieves the value at a dot-notation path from a nested
// map. The second result reports whether the full path was present.
func getNestedValue(nested map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")
	current := any(nested)

	for _, segment := range segments {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		value, exists := currentMap[segment]
		if !exists {
			return nil, false
		}
		current = value
	}

	return current, true
}

// deleteNestedValue removes the value at a dot-notation path, pruning
// intermediate maps that become empty.
func deleteNestedValue(nested map[string]any, path string) {
	segments := strings.Split(path, ".")
	if len(segments) == 1 {
		delete(nested, segments[0])
		return
	}

	next, ok := nested[segments[0]].(map[string]any)
	if !ok {
		return
	}
	deleteNestedValue(next, strings.Join(segments[1:], "."))
	if len(next) == 0 {
		delete(nested, segments[0])
	}
}

// navigateToPath traverses a nested map to reach the specified path,
// returning nil when the path does not lead anywhere.
func navigateToPath(nested map[string]any, path string) any {
	if path == "" {
		return nested
	}

	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return nested
	}

	value, ok := getNestedValue(nested, path)
	if !ok {
		return nil
	}
	return value
}

// isValidKeySegment checks if a single path segment is a valid bare key:
// ASCII letters, digits, underscores, and dashes, with no dots.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || isDigit || r == '_' || r == '-') {
			return false
		}
	}
	return true
}
