// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding maps text to fixed-length vectors. The rest of the
// system depends only on the Provider interface; model loading and serving
// stay behind it.
package embedding

import (
	"context"
	"errors"
)

// ErrEmbedding marks any failure to produce a vector. There is no
// lexical-only fallback, so callers treat it as fatal.
var ErrEmbedding = errors.New("embedding failed")

// Embedding represents a vector embedding of text.
type Embedding struct {
	Vector []float32 // 384 values for all-minilm
}

// Dimensions returns the dimensionality of the embedding.
func (e Embedding) Dimensions() int {
	return len(e.Vector)
}

// Provider generates embeddings from text. Implementations must be
// deterministic: the same text and model give the same vector.
type Provider interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) (Embedding, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}
