// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index manages the Elasticsearch papers index: schema lifecycle,
// bulk upserts, lookups by id, and raw query execution. The client is
// constructed explicitly and passed to every component that needs it.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/pdiddy/paper-search/pkg/types"
)

// DefaultIndex is the index name used when none is configured.
const DefaultIndex = "academic_papers"

// Client wraps an Elasticsearch client bound to one index.
type Client struct {
	es    *elasticsearch.Client
	index string
	dims  int
}

// New creates a client for cfg. dims is the dense_vector dimensionality the
// index is created with; it must match the embedding provider.
func New(cfg types.ElasticsearchConfig, dims int) (*Client, error) {
	addresses := cfg.Addresses
	if len(addresses) == 0 {
		addresses = []string{"http://localhost:9200"}
	}
	name := cfg.Index
	if name == "" {
		name = DefaultIndex
	}
	if dims <= 0 {
		dims = types.EmbeddingDims
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}
	return &Client{es: es, index: name, dims: dims}, nil
}

// Name returns the index name.
func (c *Client) Name() string { return c.index }

// Dimensions returns the vector dimensionality of the index schema.
func (c *Client) Dimensions() int { return c.dims }

// CheckDimensions verifies that an embedding provider producing vectors of
// length n can write to this index.
func (c *Client) CheckDimensions(n int) error {
	if n != c.dims {
		return fmt.Errorf("%w: embedding model produces %d dimensions, index expects %d", ErrSchema, n, c.dims)
	}
	return nil
}

// Ping checks that the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: ping returned HTTP %d", ErrConnectivity, res.StatusCode)
	}
	return nil
}

// Exists reports whether the index exists.
func (c *Client) Exists(ctx context.Context) (bool, error) {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("%w: checking index %s: %v", ErrConnectivity, c.index, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("checking index %s: HTTP %d", c.index, res.StatusCode)
	}
}

// RecreateIndex deletes the index if it exists and creates it with the paper
// schema. Every previously indexed document is lost.
func (c *Client) RecreateIndex(ctx context.Context, w io.Writer) error {
	exists, err := c.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		res, err := c.es.Indices.Delete([]string{c.index}, c.es.Indices.Delete.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("%w: deleting index %s: %v", ErrConnectivity, c.index, err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("%w: deleting index %s: %s", ErrSchema, c.index, responseError(res))
		}
		fmt.Fprintf(w, "Index %s deleted.\n", c.index)
	}

	if err := c.create(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "Index %s created.\n", c.index)
	return nil
}

// EnsureIndex creates the index only when it is missing. Existing documents
// are kept and later writes with the same id overwrite them. It reports
// whether the index was created.
func (c *Client) EnsureIndex(ctx context.Context, w io.Writer) (bool, error) {
	exists, err := c.Exists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		fmt.Fprintf(w, "Index %s exists, upserting.\n", c.index)
		return false, nil
	}
	if err := c.create(ctx); err != nil {
		return false, err
	}
	fmt.Fprintf(w, "Index %s created.\n", c.index)
	return true, nil
}

func (c *Client) create(ctx context.Context) error {
	body, err := json.Marshal(Mapping(c.dims))
	if err != nil {
		return fmt.Errorf("marshaling mapping: %w", err)
	}

	res, err := c.es.Indices.Create(c.index,
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: creating index %s: %v", ErrConnectivity, c.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: creating index %s: %s", ErrSchema, c.index, responseError(res))
	}
	return nil
}

// Refresh makes recent writes visible to search.
func (c *Client) Refresh(ctx context.Context) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithIndex(c.index),
		c.es.Indices.Refresh.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("%w: refreshing index %s: %v", ErrConnectivity, c.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("refreshing index %s: %s", c.index, responseError(res))
	}
	return nil
}

// Count returns the number of documents in the index.
func (c *Client) Count(ctx context.Context) (int, error) {
	res, err := c.es.Count(c.es.Count.WithIndex(c.index), c.es.Count.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("%w: counting documents: %v", ErrConnectivity, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("counting documents: %s", responseError(res))
	}

	var cr struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return 0, fmt.Errorf("parsing count response: %w", err)
	}
	return cr.Count, nil
}

// Get fetches one stored record by id, embedding included. The id travels in
// the request body because arXiv ids are URIs containing slashes.
func (c *Client) Get(ctx context.Context, id string) (types.PaperRecord, error) {
	body, err := json.Marshal(map[string]any{"ids": []string{id}})
	if err != nil {
		return types.PaperRecord{}, fmt.Errorf("marshaling mget body: %w", err)
	}

	res, err := c.es.Mget(bytes.NewReader(body),
		c.es.Mget.WithIndex(c.index),
		c.es.Mget.WithContext(ctx),
	)
	if err != nil {
		return types.PaperRecord{}, fmt.Errorf("%w: getting %s: %v", ErrConnectivity, id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return types.PaperRecord{}, fmt.Errorf("getting %s: %s", id, responseError(res))
	}

	var mr struct {
		Docs []struct {
			ID     string            `json:"_id"`
			Found  bool              `json:"found"`
			Source types.PaperRecord `json:"_source"`
		} `json:"docs"`
	}
	if err := json.NewDecoder(res.Body).Decode(&mr); err != nil {
		return types.PaperRecord{}, fmt.Errorf("parsing mget response: %w", err)
	}
	for _, d := range mr.Docs {
		if d.ID == id && d.Found {
			return d.Source, nil
		}
	}
	return types.PaperRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Search submits a query body and returns hits in the backend's order.
func (c *Client) Search(ctx context.Context, body any) ([]types.SearchHit, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: search request: %v", ErrConnectivity, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search returned %s", responseError(res))
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	hits := make([]types.SearchHit, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		paper := h.Source
		paper.Embedding = nil
		if paper.ID == "" {
			paper.ID = h.ID
		}
		hits = append(hits, types.SearchHit{ID: h.ID, Score: h.Score, Paper: paper})
	}
	return hits, nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string            `json:"_id"`
			Score  float64           `json:"_score"`
			Source types.PaperRecord `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// responseError formats an error response as "HTTP <code>: <reason>".
func responseError(res *esapi.Response) string {
	var er struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err := json.Unmarshal(data, &er); err == nil && er.Error.Reason != "" {
		return fmt.Sprintf("HTTP %d: %s: %s", res.StatusCode, er.Error.Type, er.Error.Reason)
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return fmt.Sprintf("HTTP %d", res.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", res.StatusCode, msg)
}
