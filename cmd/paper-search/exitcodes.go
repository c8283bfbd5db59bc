// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"

	"github.com/pdiddy/paper-search/internal/embedding"
	"github.com/pdiddy/paper-search/internal/index"
)

// Process exit codes.
const (
	exitFailure      = 1
	exitConnectivity = 2
	exitSchema       = 3
	exitEmbedding    = 4
	exitPartial      = 5
)

// errPartial reports an ingestion run that finished but lost records.
var errPartial = errors.New("ingestion finished with failures")

func exitCode(err error) int {
	switch {
	case errors.Is(err, index.ErrConnectivity):
		return exitConnectivity
	case errors.Is(err, index.ErrSchema):
		return exitSchema
	case errors.Is(err, embedding.ErrEmbedding):
		return exitEmbedding
	case errors.Is(err, errPartial):
		return exitPartial
	default:
		return exitFailure
	}
}
