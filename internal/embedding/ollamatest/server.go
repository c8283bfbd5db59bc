// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ollamatest provides a fake Ollama embeddings server for tests in
// packages that depend on the embedding provider.
package ollamatest

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Model is the only model the fake server reports as pulled.
const Model = "all-minilm:l6-v2"

// NewServer starts a fake Ollama that returns a deterministic dims-length
// vector per prompt. Like the real server, a blank prompt only loads the
// model and yields an empty embedding.
func NewServer(t *testing.T, dims int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/embeddings":
			var req struct {
				Model  string `json:"model"`
				Prompt string `json:"prompt"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if strings.TrimSpace(req.Prompt) == "" {
				fmt.Fprint(w, `{"embedding":[]}`)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"embedding": Vector(req.Prompt, dims)})
		case "/api/tags":
			fmt.Fprintf(w, `{"models":[{"name":%q}]}`, Model)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

// Vector is the embedding the fake server returns for prompt.
func Vector(prompt string, dims int) []float32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	seed := h.Sum32()
	v := make([]float32, dims)
	for i := range v {
		seed = seed*1664525 + 1013904223
		v[i] = float32(seed>>8)/float32(1<<24) - 0.5
	}
	return v
}
