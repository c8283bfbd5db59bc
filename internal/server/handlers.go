// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/paper-search/pkg/types"
)

type ctxKey int

const requestIDKey ctxKey = iota

// pageData is passed to every template.
type pageData struct {
	Query     string
	Response  types.SearchResponse
	RequestID string
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", pageData{})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	query := r.PostFormValue("query")
	resp, err := s.searcher.Search(r.Context(), query)
	if err != nil {
		s.logger.Printf("[%s] search %q failed: %v", requestID(r.Context()), query, err)
		s.render(w, r, http.StatusBadGateway, "error.html", pageData{Query: query, RequestID: requestID(r.Context())})
		return
	}
	s.render(w, r, http.StatusOK, "results.html", pageData{Query: query, Response: resp})
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	resp, err := s.searcher.Search(r.Context(), query)
	if err != nil {
		s.logger.Printf("[%s] search %q failed: %v", requestID(r.Context()), query, err)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":      "search failed",
			"request_id": requestID(r.Context()),
		})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			s.logger.Printf("[%s] health check failed: %v", requestID(r.Context()), err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// render executes the named template into a buffer first so a template
// error never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Printf("[%s] rendering %s: %v", requestID(r.Context()), name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// logRequests tags each request with an id and logs it on completion.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		start := time.Now()
		w.Header().Set("X-Request-Id", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))

		s.logger.Printf("[%s] %s %s %d %s", id, r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
