// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EmbeddingDims is the length of every abstract embedding stored in the index.
// It must match both the dense_vector mapping and the embedding model output.
const EmbeddingDims = 384

// PaperRecord is one indexed document. The JSON names are the index field names.
type PaperRecord struct {
	// ID is the document key (arXiv entry URI or caller-supplied key).
	// Writing a record with an existing ID overwrites the stored document.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title with newlines collapsed.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in display order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract; the embedding is computed from it.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Year is the 4-digit publication year.
	Year int `json:"year" yaml:"year"`

	// Keywords holds category or topic tags. Order carries no meaning.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Embedding is the abstract vector. It is empty until the ingestion
	// pipeline attaches it and is never returned in search hits.
	Embedding []float32 `json:"embedding,omitempty" yaml:"-"`
}
