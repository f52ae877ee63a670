// Package extraction turns the language model's streamed JSON answer into
// typed, per-category events.
package extraction

// Category enumerates the entity lists the model is asked to produce.
type Category int

const (
	CategoryActors Category = iota
	CategoryPhases
	CategoryContexts
	CategoryNodes
	CategoryEdges
	CategoryIntersections
)

// Categories lists every category in emission order
var Categories = []Category{
	CategoryActors,
	CategoryPhases,
	CategoryContexts,
	CategoryNodes,
	CategoryEdges,
	CategoryIntersections,
}

// schemaKeys maps a category to the JSON keys that may carry it. The first
// key is the canonical one requested from the model.
var schemaKeys = map[Category][]string{
	CategoryActors:        {"users", "actors"},
	CategoryPhases:        {"phases"},
	CategoryContexts:      {"contexts"},
	CategoryNodes:         {"nodes"},
	CategoryEdges:         {"connectors", "edges"},
	CategoryIntersections: {"intersections"},
}

var keyToCategory = func() map[string]Category {
	m := make(map[string]Category)
	for c, keys := range schemaKeys {
		for _, k := range keys {
			m[k] = c
		}
	}
	return m
}()

// String returns the name used for progress events and journey fields
func (c Category) String() string {
	switch c {
	case CategoryActors:
		return "actors"
	case CategoryPhases:
		return "phases"
	case CategoryContexts:
		return "contexts"
	case CategoryNodes:
		return "nodes"
	case CategoryEdges:
		return "edges"
	case CategoryIntersections:
		return "intersections"
	default:
		return "unknown"
	}
}

// SchemaKey returns the canonical JSON key of the category
func (c Category) SchemaKey() string {
	if keys, ok := schemaKeys[c]; ok {
		return keys[0]
	}
	return ""
}

// CategoryForKey resolves a JSON key, including aliases, to its category
func CategoryForKey(key string) (Category, bool) {
	c, ok := keyToCategory[key]
	return c, ok
}

// SchemaKeys returns every accepted key, canonical keys in category order
// first and aliases after them.
func SchemaKeys() []string {
	keys := make([]string, 0, len(keyToCategory))
	for _, c := range Categories {
		keys = append(keys, schemaKeys[c][0])
	}
	for _, c := range Categories {
		keys = append(keys, schemaKeys[c][1:]...)
	}
	return keys
}
