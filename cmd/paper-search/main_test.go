// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-search/internal/arxiv"
	"github.com/pdiddy/paper-search/internal/embedding"
	"github.com/pdiddy/paper-search/internal/index"
	"github.com/pdiddy/paper-search/pkg/types"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("PAPER_SEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func TestConfigDefaults(t *testing.T) {
	var cfg types.Config
	require.NoError(t, newTestViper().Unmarshal(&cfg))

	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Elasticsearch.Addresses)
	assert.Equal(t, "academic_papers", cfg.Elasticsearch.Index)
	assert.Equal(t, "all-minilm:l6-v2", cfg.Embedding.Model)
	assert.Equal(t, 384, cfg.Embedding.Dimensions)
	assert.Equal(t, 30*time.Second, cfg.Embedding.Timeout)
	assert.Equal(t, 100, cfg.Ingest.BatchSize)
	assert.Equal(t, 1000, cfg.Ingest.MaxResults)
	assert.Equal(t, "all", cfg.Arxiv.Query)
	assert.Equal(t, 3*time.Second, cfg.Arxiv.Delay)
	assert.Equal(t, 60*time.Second, cfg.Arxiv.Timeout)
	assert.Equal(t, "paper-search/dev", cfg.Arxiv.UserAgent)
	assert.Equal(t, ":5000", cfg.Server.Addr)
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("PAPER_SEARCH_ELASTICSEARCH_INDEX", "papers_v2")
	t.Setenv("PAPER_SEARCH_INGEST_BATCH_SIZE", "25")
	t.Setenv("PAPER_SEARCH_ARXIV_DELAY", "500ms")
	t.Setenv("PAPER_SEARCH_EMBEDDING_CACHE_PATH", "/tmp/emb.db")

	var cfg types.Config
	require.NoError(t, newTestViper().Unmarshal(&cfg))

	assert.Equal(t, "papers_v2", cfg.Elasticsearch.Index)
	assert.Equal(t, 25, cfg.Ingest.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Arxiv.Delay)
	assert.Equal(t, "/tmp/emb.db", cfg.Embedding.CachePath)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: dial tcp: refused", index.ErrConnectivity), exitConnectivity},
		{fmt.Errorf("creating index: %w", index.ErrSchema), exitSchema},
		{fmt.Errorf("embedding p1: %w", embedding.ErrEmbedding), exitEmbedding},
		{fmt.Errorf("%w: 3 documents", errPartial), exitPartial},
		{fmt.Errorf("%w: HTTP 500", arxiv.ErrFetch), exitFailure},
		{errors.New("anything else"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
