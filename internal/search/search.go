// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs hybrid lexical and vector queries against the paper
// index and formats the ranked hits.
package search

import (
	"context"
	"fmt"

	"github.com/pdiddy/paper-search/internal/embedding"
	"github.com/pdiddy/paper-search/pkg/types"
)

// Backend executes a query body and returns hits in ranking order.
type Backend interface {
	Search(ctx context.Context, body any) ([]types.SearchHit, error)
}

// Searcher embeds query text and submits the hybrid query.
type Searcher struct {
	Embedder embedding.Provider
	Backend  Backend

	// Size caps the number of hits; zero means ResultSize.
	Size int
}

// Search embeds text, submits the hybrid query and returns the hits in the
// backend's order. No re-ranking happens here.
func (s *Searcher) Search(ctx context.Context, text string) (types.SearchResponse, error) {
	emb, err := s.Embedder.Embed(ctx, text)
	if err != nil {
		return types.SearchResponse{}, fmt.Errorf("embedding query: %w", err)
	}

	hits, err := s.Backend.Search(ctx, BuildQuery(text, emb.Vector, s.Size))
	if err != nil {
		return types.SearchResponse{}, fmt.Errorf("searching: %w", err)
	}
	if hits == nil {
		hits = []types.SearchHit{}
	}
	return types.SearchResponse{Query: text, Total: len(hits), Hits: hits}, nil
}
