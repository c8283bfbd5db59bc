// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-search/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ElasticsearchConfig holds the search backend connection settings.
type ElasticsearchConfig struct {
	// Addresses lists the cluster node URLs (default http://localhost:9200).
	Addresses []string `json:"addresses" yaml:"addresses" mapstructure:"addresses"`

	// Index is the name of the papers index (default "academic_papers").
	Index string `json:"index" yaml:"index" mapstructure:"index"`

	Username string `json:"username,omitempty" yaml:"username,omitempty" mapstructure:"username"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// EmbeddingConfig holds settings for the embedding model server.
type EmbeddingConfig struct {
	// URL is the Ollama API base URL (default http://localhost:11434).
	URL string `json:"url" yaml:"url" mapstructure:"url"`

	// Model is the embedding model identifier (default "all-minilm:l6-v2").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// Dimensions is the expected vector length (default 384). A value that
	// disagrees with EmbeddingDims is rejected before the index is touched.
	Dimensions int `json:"dimensions" yaml:"dimensions" mapstructure:"dimensions"`

	// Timeout bounds a single embedding request (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// CachePath is the SQLite embedding cache file. Empty disables the cache.
	CachePath string `json:"cache_path,omitempty" yaml:"cache_path,omitempty" mapstructure:"cache_path"`
}

// IngestConfig holds settings shared by both ingestion paths.
type IngestConfig struct {
	// BatchSize is the number of records per bulk request (default 100).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`

	// MaxResults caps the number of papers fetched from arXiv (default 1000).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ArxivConfig holds settings for the arXiv fetcher.
type ArxivConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Query is the arXiv search_query value (default "all").
	Query string `json:"query" yaml:"query" mapstructure:"query"`

	// PageSize is the number of entries requested per page (default 100).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// Delay is the minimum spacing between consecutive requests (default 3s).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// ServerConfig holds settings for the web query service.
type ServerConfig struct {
	// Addr is the listen address (default ":5000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// Config groups all stage configurations.
type Config struct {
	Elasticsearch ElasticsearchConfig `json:"elasticsearch" yaml:"elasticsearch" mapstructure:"elasticsearch"`
	Embedding     EmbeddingConfig     `json:"embedding" yaml:"embedding" mapstructure:"embedding"`
	Ingest        IngestConfig        `json:"ingest" yaml:"ingest" mapstructure:"ingest"`
	Arxiv         ArxivConfig         `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	Server        ServerConfig        `json:"server" yaml:"server" mapstructure:"server"`
}
