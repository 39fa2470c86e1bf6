package layering

import "strings"

// Lookup resolves a dotted path inside a snapshot. The second return is false
// when a segment is missing or the walk hits a value that is not a map.
func Lookup(snapshot map[string]any, path string) (any, bool) {
	if snapshot == nil || path == "" {
		return nil, false
	}
	var current any = snapshot
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
