// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package indextest provides an in-memory stand-in for the Elasticsearch
// endpoints paper-search uses. Its _search evaluates the subset of the query
// DSL the hybrid query builder emits (bool/should, match with boost,
// script_score with cosineSimilarity) so ranking can be tested end to end.
package indextest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
)

// Server is a fake Elasticsearch node.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	indices  map[string]map[string]json.RawMessage
	mappings map[string]json.RawMessage

	// Requests counts requests by "METHOD /path-kind" (e.g. "POST _bulk").
	Requests map[string]int

	// RejectCreate makes index creation fail with a mapper error.
	RejectCreate bool

	// RejectIDs makes bulk index actions for these ids fail.
	RejectIDs map[string]bool

	// FailSearch makes _search return HTTP 500.
	FailSearch bool

	// LastSearch holds the most recent _search body.
	LastSearch map[string]any
}

// NewServer starts a fake node and closes it when the test ends.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		indices:   map[string]map[string]json.RawMessage{},
		mappings:  map[string]json.RawMessage{},
		Requests:  map[string]int{},
		RejectIDs: map[string]bool{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Docs returns the number of documents stored in index.
func (s *Server) Docs(index string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.indices[index])
}

// HasIndex reports whether index exists.
func (s *Server) HasIndex(index string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.indices[index]
	return ok
}

// Mapping returns the body index was created with.
func (s *Server) Mapping(index string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	var m map[string]any
	_ = json.Unmarshal(s.mappings[index], &m)
	return m
}

// Put stores a document directly, bypassing _bulk.
func (s *Server) Put(index, id string, doc any) {
	data, _ := json.Marshal(doc)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indices[index] == nil {
		s.indices[index] = map[string]json.RawMessage{}
	}
	s.indices[index][id] = data
}

// Count returns how many requests of kind were served.
func (s *Server) Count(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Requests[kind]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	parts := strings.Split(strings.Trim(r.URL.EscapedPath(), "/"), "/")
	for i, p := range parts {
		if u, err := url.PathUnescape(p); err == nil {
			parts[i] = u
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(parts) == 1 && parts[0] == "" {
		s.Requests[r.Method+" /"]++
		fmt.Fprint(w, `{"version":{"number":"8.15.0"},"tagline":"You Know, for Search"}`)
		return
	}

	index := parts[0]
	if len(parts) == 1 {
		s.Requests[r.Method+" index"]++
		s.handleIndex(w, r, index)
		return
	}

	kind := parts[1]
	s.Requests[r.Method+" "+kind]++
	docs, ok := s.indices[index]
	if !ok && kind != "_bulk" {
		writeError(w, http.StatusNotFound, "index_not_found_exception", "no such index ["+index+"]")
		return
	}

	switch kind {
	case "_bulk":
		s.handleBulk(w, r, index)
	case "_mget":
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "parsing_exception", err.Error())
			return
		}
		out := make([]map[string]any, 0, len(req.IDs))
		for _, id := range req.IDs {
			doc, found := docs[id]
			entry := map[string]any{"_index": index, "_id": id, "found": found}
			if found {
				entry["_source"] = doc
			}
			out = append(out, entry)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"docs": out})
	case "_refresh":
		fmt.Fprint(w, `{"_shards":{"total":1,"successful":1,"failed":0}}`)
	case "_count":
		fmt.Fprintf(w, `{"count":%d}`, len(docs))
	case "_search":
		s.handleSearch(w, r, docs)
	default:
		writeError(w, http.StatusBadRequest, "illegal_argument_exception", "unsupported endpoint "+kind)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, index string) {
	_, exists := s.indices[index]
	switch r.Method {
	case http.MethodHead:
		if !exists {
			w.WriteHeader(http.StatusNotFound)
		}
	case http.MethodDelete:
		if !exists {
			writeError(w, http.StatusNotFound, "index_not_found_exception", "no such index ["+index+"]")
			return
		}
		delete(s.indices, index)
		delete(s.mappings, index)
		fmt.Fprint(w, `{"acknowledged":true}`)
	case http.MethodPut:
		if exists {
			writeError(w, http.StatusBadRequest, "resource_already_exists_exception", "index ["+index+"] already exists")
			return
		}
		if s.RejectCreate {
			writeError(w, http.StatusBadRequest, "mapper_parsing_exception", "The number of dimensions should be in the range [1, 4096]")
			return
		}
		body, _ := io.ReadAll(r.Body)
		s.indices[index] = map[string]json.RawMessage{}
		s.mappings[index] = body
		fmt.Fprintf(w, `{"acknowledged":true,"index":%q}`, index)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request, index string) {
	if s.indices[index] == nil {
		s.indices[index] = map[string]json.RawMessage{}
	}

	type itemResult struct {
		ID     string         `json:"_id"`
		Status int            `json:"status"`
		Error  map[string]any `json:"error,omitempty"`
	}
	var items []map[string]itemResult
	hasErrors := false

	sc := bufio.NewScanner(r.Body)
	sc.Buffer(make([]byte, 0, 1<<20), 16<<20)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var action map[string]struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(line, &action); err != nil {
			writeError(w, http.StatusBadRequest, "illegal_argument_exception", "malformed action line")
			return
		}
		if !sc.Scan() {
			writeError(w, http.StatusBadRequest, "illegal_argument_exception", "missing source line")
			return
		}
		source := append(json.RawMessage(nil), sc.Bytes()...)
		for op, meta := range action {
			if s.RejectIDs[meta.ID] {
				hasErrors = true
				items = append(items, map[string]itemResult{op: {
					ID: meta.ID, Status: http.StatusBadRequest,
					Error: map[string]any{"type": "document_parsing_exception", "reason": "failed to parse field [embedding]"},
				}})
				continue
			}
			status := http.StatusCreated
			if _, exists := s.indices[index][meta.ID]; exists {
				status = http.StatusOK
			}
			s.indices[index][meta.ID] = source
			items = append(items, map[string]itemResult{op: {ID: meta.ID, Status: status}})
		}
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"took": 1, "errors": hasErrors, "items": items})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, docs map[string]json.RawMessage) {
	if s.FailSearch {
		writeError(w, http.StatusInternalServerError, "search_phase_execution_exception", "all shards failed")
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "parsing_exception", err.Error())
		return
	}
	s.LastSearch = body

	size := 10
	if v, ok := body["size"].(float64); ok {
		size = int(v)
	}
	query, _ := body["query"].(map[string]any)

	type hit struct {
		ID     string          `json:"_id"`
		Score  float64         `json:"_score"`
		Source json.RawMessage `json:"_source"`
	}
	var hits []hit
	for id, raw := range docs {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		score, matched := evaluate(query, doc)
		if !matched {
			continue
		}
		delete(doc, "embedding")
		src, _ := json.Marshal(doc)
		hits = append(hits, hit{ID: id, Score: score, Source: src})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	total := len(hits)
	if len(hits) > size {
		hits = hits[:size]
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"hits": map[string]any{
			"total": map[string]any{"value": total, "relation": "eq"},
			"hits":  hits,
		},
	})
}

// evaluate scores doc against a query clause. Only the clause shapes the
// hybrid query builder produces are understood.
func evaluate(clause map[string]any, doc map[string]any) (float64, bool) {
	if clause == nil {
		return 1, true
	}
	if b, ok := clause["bool"].(map[string]any); ok {
		should, _ := b["should"].([]any)
		minMatch := 0
		if v, ok := b["minimum_should_match"].(float64); ok {
			minMatch = int(v)
		}
		if minMatch == 0 && len(should) > 0 {
			minMatch = 1
		}
		total, matches := 0.0, 0
		for _, c := range should {
			cm, _ := c.(map[string]any)
			if s, ok := evaluate(cm, doc); ok {
				total += s
				matches++
			}
		}
		return total, matches >= minMatch
	}
	if m, ok := clause["match"].(map[string]any); ok {
		for field, spec := range m {
			text, boost := "", 1.0
			switch v := spec.(type) {
			case string:
				text = v
			case map[string]any:
				text, _ = v["query"].(string)
				if b, ok := v["boost"].(float64); ok {
					boost = b
				}
			}
			if termMatch(text, doc[field]) {
				return boost, true
			}
		}
		return 0, false
	}
	if ss, ok := clause["script_score"].(map[string]any); ok {
		inner, _ := ss["query"].(map[string]any)
		if _, ok := evaluate(inner, doc); !ok {
			return 0, false
		}
		script, _ := ss["script"].(map[string]any)
		source, _ := script["source"].(string)
		params, _ := script["params"].(map[string]any)
		qv := toFloats(params["query_vector"])
		dv := toFloats(doc["embedding"])
		score := CosineSimilarity(qv, dv)
		if strings.Contains(source, "+ 1.0") {
			score += 1.0
		}
		return score, true
	}
	return 0, false
}

// termMatch reports whether any whitespace-separated query term occurs as
// a token of the field value (string or list of strings).
func termMatch(query string, value any) bool {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return false
	}
	var text string
	switch v := value.(type) {
	case string:
		text = v
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
		text = strings.Join(parts, " ")
	}
	tokens := map[string]bool{}
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == ':' || r == ';' || r == '\t'
	}) {
		tokens[tok] = true
	}
	for _, t := range terms {
		if tokens[t] {
			return true
		}
	}
	return false
}

func toFloats(v any) []float64 {
	list, _ := v.([]any)
	out := make([]float64, 0, len(list))
	for _, x := range list {
		if f, ok := x.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0
// when the lengths differ or either vector is zero.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func writeError(w http.ResponseWriter, status int, typ, reason string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":  map[string]any{"type": typ, "reason": reason},
		"status": status,
	})
}
