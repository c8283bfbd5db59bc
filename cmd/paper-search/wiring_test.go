// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-search/internal/embedding"
	"github.com/pdiddy/paper-search/internal/embedding/ollamatest"
	"github.com/pdiddy/paper-search/internal/index"
	"github.com/pdiddy/paper-search/internal/index/indextest"
	"github.com/pdiddy/paper-search/pkg/types"
)

func testConfig(esURL, ollamaURL string) types.Config {
	return types.Config{
		Elasticsearch: types.ElasticsearchConfig{Addresses: []string{esURL}, Index: "wiring_test"},
		Embedding: types.EmbeddingConfig{
			URL:        ollamaURL,
			Model:      ollamatest.Model,
			Dimensions: types.EmbeddingDims,
		},
	}
}

func TestConnectForIngest(t *testing.T) {
	es := indextest.NewServer(t)
	ollama := ollamatest.NewServer(t, types.EmbeddingDims)

	client, err := connectForIngest(context.Background(), testConfig(es.URL, ollama.URL))
	require.NoError(t, err)
	assert.Equal(t, "wiring_test", client.Name())
}

func TestConnectForIngest_EmbedderDownFailsFirst(t *testing.T) {
	es := indextest.NewServer(t)
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()

	_, err := connectForIngest(context.Background(), testConfig(es.URL, down.URL))
	require.Error(t, err)
	assert.ErrorIs(t, err, embedding.ErrEmbedding)
	assert.Equal(t, exitEmbedding, exitCode(err))
	assert.Equal(t, 0, es.Count("HEAD index"), "index untouched")
	assert.Equal(t, 0, es.Count("PUT index"), "index untouched")
}

func TestConnectForIngest_BackendDown(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	ollama := ollamatest.NewServer(t, types.EmbeddingDims)

	_, err := connectForIngest(context.Background(), testConfig(down.URL, ollama.URL))
	assert.ErrorIs(t, err, index.ErrConnectivity)
}

func TestConnectForIngest_DimensionMismatch(t *testing.T) {
	es := indextest.NewServer(t)
	ollama := ollamatest.NewServer(t, types.EmbeddingDims)
	cfg := testConfig(es.URL, ollama.URL)
	cfg.Embedding.Dimensions = 768

	_, err := connectForIngest(context.Background(), cfg)
	assert.ErrorIs(t, err, index.ErrSchema)
}
