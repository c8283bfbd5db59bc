// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server serves the search form and a small JSON API over HTTP.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/paper-search/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":5000"

// shutdownTimeout bounds how long in-flight requests get to finish.
const shutdownTimeout = 10 * time.Second

// Searcher runs one hybrid query.
type Searcher interface {
	Search(ctx context.Context, text string) (types.SearchResponse, error)
}

// Pinger checks that the search backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the handlers and their dependencies.
type Server struct {
	searcher Searcher
	pinger   Pinger
	tmpl     *template.Template
	logger   *log.Logger
	mux      *http.ServeMux
}

// New parses the embedded templates and registers the routes. A nil logger
// uses the standard logger.
func New(searcher Searcher, pinger Pinger, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"join": strings.Join,
		"score": func(f float64) string {
			return fmt.Sprintf("%.4f", f)
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		searcher: searcher,
		pinger:   pinger,
		tmpl:     tmpl,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleForm)
	s.mux.HandleFunc("POST /{$}", s.handleResults)
	s.mux.HandleFunc("GET /api/search", s.handleAPISearch)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s, nil
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
