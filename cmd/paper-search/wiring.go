// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/paper-search/internal/embedding"
	"github.com/pdiddy/paper-search/internal/index"
	"github.com/pdiddy/paper-search/internal/ingest"
	"github.com/pdiddy/paper-search/pkg/types"
)

func newOllama(cfg types.EmbeddingConfig) *embedding.OllamaProvider {
	return embedding.NewOllamaProvider(
		embedding.WithBaseURL(cfg.URL),
		embedding.WithModel(cfg.Model),
		embedding.WithDimensions(cfg.Dimensions),
		embedding.WithTimeout(cfg.Timeout),
	)
}

// newEmbedder builds the Ollama provider, wrapped with the SQLite cache
// when a cache path is configured. The returned close func is never nil.
func newEmbedder(cfg types.EmbeddingConfig) (embedding.Provider, func(), error) {
	ollama := newOllama(cfg)
	if cfg.CachePath == "" {
		return ollama, func() {}, nil
	}
	cached, err := embedding.NewCachedProvider(ollama, cfg.CachePath)
	if err != nil {
		return nil, nil, err
	}
	return cached, func() { _ = cached.Close() }, nil
}

// connect builds the index client and verifies the backend is reachable
// and agrees with the embedding dimensions.
func connect(ctx context.Context, cfg types.Config) (*index.Client, error) {
	client, err := index.New(cfg.Elasticsearch, types.EmbeddingDims)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx); err != nil {
		return nil, err
	}
	if err := client.CheckDimensions(cfg.Embedding.Dimensions); err != nil {
		return nil, err
	}
	return client, nil
}

// connectForIngest is connect plus a check that the embedding model is
// served, so ingestion fails before any fetching or index changes.
func connectForIngest(ctx context.Context, cfg types.Config) (*index.Client, error) {
	client, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := newOllama(cfg.Embedding).IsAvailable(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// ingestRecords runs the shared tail of both ingestion commands: prepare
// the index, embed and write the records, refresh, and report.
func ingestRecords(ctx context.Context, cfg types.Config, client *index.Client, records []types.PaperRecord, upsertOnly bool, w io.Writer) (ingest.Summary, error) {
	emb, closeEmb, err := newEmbedder(cfg.Embedding)
	if err != nil {
		return ingest.Summary{}, err
	}
	defer closeEmb()

	if upsertOnly {
		if _, err := client.EnsureIndex(ctx, w); err != nil {
			return ingest.Summary{}, err
		}
	} else if err := client.RecreateIndex(ctx, w); err != nil {
		return ingest.Summary{}, err
	}

	p := &ingest.Pipeline{Embedder: emb, Writer: client, BatchSize: cfg.Ingest.BatchSize}
	sum, err := p.Run(ctx, records, w)
	if err != nil {
		return sum, err
	}
	if err := client.Refresh(ctx); err != nil {
		return sum, err
	}
	if n, err := client.Count(ctx); err == nil {
		fmt.Fprintf(w, "Index %s now holds %d papers.\n", client.Name(), n)
	}
	return sum, nil
}
