// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for paper-search: the indexed
// paper record, shaped search hits, and the configuration of each stage.
package types

// SearchHit is one ranked result of a hybrid query. Hits are returned in
// the backend's ranking order; Score is the backend's computed relevance.
type SearchHit struct {
	// ID is the stored document key.
	ID string `json:"id" yaml:"id"`

	// Score is the sum of every matching clause's contribution.
	Score float64 `json:"score" yaml:"score"`

	// Paper holds the stored fields, without the embedding.
	Paper PaperRecord `json:"paper" yaml:"paper"`
}

// SearchResponse is the result of one query.
type SearchResponse struct {
	Query string      `json:"query" yaml:"query"`
	Total int         `json:"total" yaml:"total"`
	Hits  []SearchHit `json:"hits" yaml:"hits"`
}
