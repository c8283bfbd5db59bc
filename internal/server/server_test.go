// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-search/internal/embedding"
	"github.com/pdiddy/paper-search/internal/embedding/ollamatest"
	"github.com/pdiddy/paper-search/internal/index"
	"github.com/pdiddy/paper-search/internal/index/indextest"
	"github.com/pdiddy/paper-search/internal/search"
	"github.com/pdiddy/paper-search/pkg/types"
)

// --- fakes ---

type fakeSearcher struct {
	resp    types.SearchResponse
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, text string) (types.SearchResponse, error) {
	f.queries = append(f.queries, text)
	if f.err != nil {
		return types.SearchResponse{}, f.err
	}
	resp := f.resp
	resp.Query = text
	return resp, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func sampleResponse() types.SearchResponse {
	return types.SearchResponse{
		Total: 2,
		Hits: []types.SearchHit{
			{ID: "1", Score: 5.9876, Paper: types.PaperRecord{
				ID: "1", Title: "Attention Is All You Need", Authors: []string{"A. Vaswani", "N. Shazeer"},
				Abstract: "The dominant sequence transduction models.", Year: 2017, Keywords: []string{"cs.CL"},
			}},
			{ID: "2", Score: 4.5, Paper: types.PaperRecord{ID: "2", Title: "BERT <pre-training>", Year: 2018}},
		},
	}
}

// syncBuffer is a log sink safe to read while handlers write to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestServer(t *testing.T, s Searcher, p Pinger) (*httptest.Server, *syncBuffer) {
	t.Helper()
	logs := &syncBuffer{}
	srv, err := New(s, p, log.New(logs, "", 0))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, logs
}

func readBody(t *testing.T, res *http.Response) string {
	t.Helper()
	defer res.Body.Close()
	var buf bytes.Buffer
	_, err := buf.ReadFrom(res.Body)
	require.NoError(t, err)
	return buf.String()
}

// --- form ---

func TestForm_Get(t *testing.T) {
	ts, _ := newTestServer(t, &fakeSearcher{}, nil)

	res, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	body := readBody(t, res)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, `name="query"`)
	assert.Contains(t, body, `method="post"`)
	assert.NotContains(t, body, "results for")
}

func TestForm_PostRendersResults(t *testing.T) {
	fs := &fakeSearcher{resp: sampleResponse()}
	ts, _ := newTestServer(t, fs, nil)

	res, err := http.PostForm(ts.URL+"/", url.Values{"query": {"attention"}})
	require.NoError(t, err)
	body := readBody(t, res)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, []string{"attention"}, fs.queries)
	assert.Contains(t, body, "2 results for <strong>attention</strong>")
	assert.Contains(t, body, "Attention Is All You Need")
	assert.Contains(t, body, "A. Vaswani, N. Shazeer (2017)")
	assert.Contains(t, body, "Keywords: cs.CL")
	assert.Contains(t, body, "5.9876")
	assert.Contains(t, body, "BERT &lt;pre-training&gt;", "titles are escaped")
	assert.Less(t, strings.Index(body, "Attention Is"), strings.Index(body, "BERT"), "backend order preserved")
}

func TestForm_PostEmptyQuery(t *testing.T) {
	fs := &fakeSearcher{resp: types.SearchResponse{Hits: []types.SearchHit{}}}
	ts, _ := newTestServer(t, fs, nil)

	res, err := http.PostForm(ts.URL+"/", url.Values{"query": {""}})
	require.NoError(t, err)
	body := readBody(t, res)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, []string{""}, fs.queries)
	assert.Contains(t, body, "No results found.")
}

func TestForm_PostEmptyQueryEndToEnd(t *testing.T) {
	es := indextest.NewServer(t)
	es.Put("papers", "1", types.PaperRecord{ID: "1", Title: "Graphs", Abstract: "Graph methods."})
	client, err := index.New(types.ElasticsearchConfig{Addresses: []string{es.URL}, Index: "papers"}, types.EmbeddingDims)
	require.NoError(t, err)
	ollama := ollamatest.NewServer(t, types.EmbeddingDims)

	searcher := &search.Searcher{
		Embedder: embedding.NewOllamaProvider(embedding.WithBaseURL(ollama.URL)),
		Backend:  client,
	}
	ts, _ := newTestServer(t, searcher, client)

	res, err := http.PostForm(ts.URL+"/", url.Values{"query": {""}})
	require.NoError(t, err)
	body := readBody(t, res)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "No results found.")
	assert.NotContains(t, body, "Search is unavailable")
}

func TestForm_BackendFailureRendersErrorPage(t *testing.T) {
	fs := &fakeSearcher{err: errors.New("connection refused")}
	ts, logs := newTestServer(t, fs, nil)

	res, err := http.PostForm(ts.URL+"/", url.Values{"query": {"q"}})
	require.NoError(t, err)
	body := readBody(t, res)

	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	assert.Contains(t, body, "Search is unavailable")
	assert.NotContains(t, body, "connection refused", "internal errors stay in the log")
	assert.Contains(t, logs.String(), "connection refused")
}

func TestForm_UnknownPath(t *testing.T) {
	ts, _ := newTestServer(t, &fakeSearcher{}, nil)

	res, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

// --- API ---

func TestAPISearch(t *testing.T) {
	fs := &fakeSearcher{resp: sampleResponse()}
	ts, _ := newTestServer(t, fs, nil)

	res, err := http.Get(ts.URL + "/api/search?q=" + url.QueryEscape("deep learning"))
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	var got types.SearchResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, "deep learning", got.Query)
	require.Len(t, got.Hits, 2)
	assert.Equal(t, "1", got.Hits[0].ID)
	assert.InDelta(t, 5.9876, got.Hits[0].Score, 1e-9)
}

func TestAPISearch_Failure(t *testing.T) {
	ts, _ := newTestServer(t, &fakeSearcher{err: errors.New("boom")}, nil)

	res, err := http.Get(ts.URL + "/api/search?q=x")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusBadGateway, res.StatusCode)
	var got map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))
	assert.Equal(t, "search failed", got["error"])
	assert.Equal(t, res.Header.Get("X-Request-Id"), got["request_id"])
}

// --- health and logging ---

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		pinger Pinger
		status int
	}{
		{"no pinger", nil, http.StatusOK},
		{"backend up", fakePinger{}, http.StatusOK},
		{"backend down", fakePinger{err: errors.New("unreachable")}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newTestServer(t, &fakeSearcher{}, tt.pinger)
			res, err := http.Get(ts.URL + "/healthz")
			require.NoError(t, err)
			res.Body.Close()
			assert.Equal(t, tt.status, res.StatusCode)
		})
	}
}

func TestRequestLogging(t *testing.T) {
	ts, logs := newTestServer(t, &fakeSearcher{}, nil)

	res, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()

	id := res.Header.Get("X-Request-Id")
	require.Len(t, id, 36)
	assert.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "["+id+"] GET /healthz 200")
	}, time.Second, 10*time.Millisecond)
}

func TestListenAndServe_ShutsDownOnCancel(t *testing.T) {
	srv, err := New(&fakeSearcher{}, nil, log.New(&bytes.Buffer{}, "", 0))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
