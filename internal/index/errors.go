// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import "errors"

var (
	// ErrConnectivity indicates the backend could not be reached. Ingestion
	// aborts before any work when it is returned.
	ErrConnectivity = errors.New("search backend unreachable")

	// ErrSchema indicates the backend rejected the index definition or the
	// configured vector dimensions disagree with the embedding model.
	ErrSchema = errors.New("index schema rejected")

	// ErrBulkWrite indicates a bulk request failed as a whole.
	ErrBulkWrite = errors.New("bulk write failed")

	// ErrNotFound indicates a document id is not in the index.
	ErrNotFound = errors.New("document not found")
)
