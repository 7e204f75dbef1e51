// Package extensions merges OpenAPI vendor extensions (x-...) into the
// extension map of a document node.
package extensions

// Map holds the vendor extensions of a document node, keyed by extension name.
// Values are what encoding/json produces for arbitrary JSON: objects are
// map[string]any, lists are []any, everything else is a scalar.
type Map = map[string]any

// IsObject reports whether v is the object variant of an extension value.
func IsObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// Merge applies updates to target in place.
//
// Keys missing from target are inserted. If both the existing and the new value
// are objects, the new object's fields are copied into the existing one (one level
// deep), leaving other fields alone. In all other cases the existing value is replaced.
// Keys of target not present in updates are not touched.
//
// target must be non-nil if updates is non-empty.
func Merge(target, updates Map) {
	for key, newValue := range updates {
		if existing, ok := IsObject(target[key]); ok {
			if fields, ok := IsObject(newValue); ok {
				for f, v := range fields {
					existing[f] = v
				}
				continue
			}
		}
		target[key] = newValue
	}
}

// Get returns the object-valued extension stored under key, if any.
func Get(m Map, key string) (map[string]any, bool) {
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	return IsObject(v)
}
