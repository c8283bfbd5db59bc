// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

// ResultSize is the number of hits requested per query.
const ResultSize = 10

// Lexical boosts for the direct match clauses.
const (
	titleBoost    = 3
	abstractBoost = 2
	keywordsBoost = 2
)

// vectorScript shifts cosine similarity into [0, 2] so the vector clause
// never contributes a negative score.
const vectorScript = "cosineSimilarity(params.query_vector, 'embedding') + 1.0"

// BuildQuery returns the hybrid request body for text and its embedding.
// The body is a bool query whose should clauses are summed by the backend:
// a script_score clause adding the shifted cosine similarity for documents
// that lexically match on any field, plus boosted match clauses on title,
// abstract and keywords. At least one clause must match. The stored
// embedding is excluded from returned sources.
//
// The text is used verbatim; an empty string yields a body that matches
// nothing.
func BuildQuery(text string, vector []float32, size int) map[string]any {
	if size <= 0 {
		size = ResultSize
	}
	qv := make([]float32, len(vector))
	copy(qv, vector)

	return map[string]any{
		"size": size,
		"query": map[string]any{
			"bool": map[string]any{
				"should": []any{
					map[string]any{
						"script_score": map[string]any{
							"query": map[string]any{
								"bool": map[string]any{
									"should": []any{
										match("title", text, 0),
										match("abstract", text, 0),
										match("keywords", text, 0),
									},
								},
							},
							"script": map[string]any{
								"source": vectorScript,
								"params": map[string]any{"query_vector": qv},
							},
						},
					},
					match("title", text, titleBoost),
					match("abstract", text, abstractBoost),
					match("keywords", text, keywordsBoost),
				},
				"minimum_should_match": 1,
			},
		},
		"_source": map[string]any{
			"excludes": []string{"embedding"},
		},
	}
}

// match builds a match clause; a zero boost leaves the field's default.
func match(field, text string, boost float64) map[string]any {
	if boost == 0 {
		return map[string]any{"match": map[string]any{field: text}}
	}
	return map[string]any{"match": map[string]any{
		field: map[string]any{"query": text, "boost": boost},
	}}
}
