// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

// Mapping returns the index definition for paper records with a dense
// vector field of dims dimensions.
func Mapping(dims int) map[string]any {
	return map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":        map[string]any{"type": "keyword"},
				"title":     map[string]any{"type": "text"},
				"authors":   map[string]any{"type": "text"},
				"abstract":  map[string]any{"type": "text"},
				"year":      map[string]any{"type": "integer"},
				"keywords":  map[string]any{"type": "text"},
				"embedding": map[string]any{"type": "dense_vector", "dims": dims},
			},
		},
	}
}
