// Package pathutil provides dot-path value lookup over record maps.
// Fields resolve their values through Get, which mirrors the attribute
// path access that resource records expose to the admin layer.
package pathutil

import (
	"strconv"
	"strings"
)

// Get looks up a dot-separated path in a record. Path segments traverse
// nested map[string]any values; numeric segments index into []any slices.
// A missing segment returns (nil, false).
func Get(source any, path string) (any, bool) {
	if path == "" {
		return source, source != nil
	}

	current := source
	for _, segment := range strings.Split(path, ".") {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[segment]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]string:
			next, ok := v[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, false
			}
			current = v[idx]
		default:
			return nil, false
		}
	}

	return current, true
}

// GetDefault looks up a path and falls back to def when the path is absent.
func GetDefault(source any, path string, def any) any {
	if value, ok := Get(source, path); ok {
		return value
	}
	return def
}

// Set writes a value at a dot-separated path, creating intermediate maps
// as needed. Only map[string]any containers are created or traversed.
func Set(target map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := target
	for i, segment := range segments {
		if i == len(segments)-1 {
			current[segment] = value
			return
		}
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}
}
