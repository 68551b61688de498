// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server serves the graph as linked data: one page per resource,
// Turtle downloads, and the implicit-fact queries as JSON.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/wikigraph/internal/graph"
	"github.com/pdiddy/wikigraph/internal/metrics"
	"github.com/pdiddy/wikigraph/internal/sink"
)

// Describer returns the triples about one subject.
type Describer interface {
	Describe(ctx context.Context, subject string, prefixes map[string]string) (*graph.Graph, error)
}

// Options configures a Server. Facts may be nil when no SPARQL endpoint
// is available; the implicit routes then answer 503.
type Options struct {
	ResourceBase string
	Prefixes     map[string]string
	Resources    Describer
	Facts        sink.Selector
	Queries      *sink.Queries
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

// Server is the linked-data HTTP front end.
type Server struct {
	mux     *http.ServeMux
	opts    Options
	logger  *slog.Logger
	queries *sink.Queries
}

// NewServer builds the router.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	queries := opts.Queries
	if queries == nil {
		queries = sink.NewQueries()
	}
	s := &Server{
		mux:     http.NewServeMux(),
		opts:    opts,
		logger:  logger.With("component", "server"),
		queries: queries,
	}
	s.registerRoutes()
	return s
}

// Handler returns the router wrapped with request logging and metrics.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.mux.ServeHTTP(rec, r)
		s.opts.Metrics.ObserveRequest("serve", start)
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("server stopping")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /resource/{name}", s.handleResource)
	s.mux.HandleFunc("GET /download/{file}", s.handleDownload)
	s.mux.HandleFunc("GET /implicit", s.handleListImplicit)
	s.mux.HandleFunc("GET /implicit/{name}", s.handleImplicit)
	if s.opts.Metrics != nil {
		s.mux.Handle("GET /metrics", s.opts.Metrics.Handler())
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"resources": "/resource/{name}",
		"downloads": "/download/{name}.ttl",
		"implicit":  s.queries.ImplicitNames(),
	})
}

func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	g, ok := s.describe(w, r, name)
	if !ok {
		return
	}

	switch format := r.URL.Query().Get("format"); {
	case format == "ttl":
		s.writeRDF(w, g, graph.Turtle, name+".ttl")
	case format == "turtle", wantsTurtle(r):
		s.writeRDF(w, g, graph.Turtle, "")
	case format == "nt", wantsNTriples(r):
		s.writeRDF(w, g, graph.NTriples, "")
	default:
		s.writeHTML(w, name, g)
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".ttl")
	if !ok || name == "" {
		s.jsonResponse(w, http.StatusNotFound, map[string]string{"error": "downloads end in .ttl"})
		return
	}
	g, ok := s.describe(w, r, name)
	if !ok {
		return
	}
	s.writeRDF(w, g, graph.Turtle, name+".ttl")
}

func (s *Server) handleListImplicit(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"available_queries": s.queries.ImplicitNames(),
		"queries_info":      s.queries.Implicit(),
	})
}

func (s *Server) handleImplicit(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, ok := s.queries.Implicit()[name]; !ok {
		s.jsonResponse(w, http.StatusNotFound, map[string]any{
			"error":             fmt.Sprintf("unknown query %q", name),
			"available_queries": s.queries.ImplicitNames(),
		})
		return
	}
	if s.opts.Facts == nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"error": "no SPARQL endpoint configured"})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	rows, err := s.queries.RunImplicit(r.Context(), s.opts.Facts, name, limit)
	if err != nil {
		s.logger.Error("implicit query failed", "query", name, "error", err)
		s.jsonResponse(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"query":       name,
		"description": s.queries.Implicit()[name],
		"count":       len(rows.Bindings),
		"results":     rows,
	})
}

// describe loads the subject for name, writing the error response itself
// when it returns false.
func (s *Server) describe(w http.ResponseWriter, r *http.Request, name string) (*graph.Graph, bool) {
	if strings.ContainsAny(name, "<> \"{}|\\^`") {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid resource name"})
		return nil, false
	}
	g, err := s.opts.Resources.Describe(r.Context(), s.opts.ResourceBase+name, s.opts.Prefixes)
	if err != nil {
		s.logger.Error("describe failed", "resource", name, "error", err)
		s.jsonResponse(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return nil, false
	}
	if g.Len() == 0 {
		s.jsonResponse(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("resource %q not found", name)})
		return nil, false
	}
	return g, true
}

func (s *Server) writeRDF(w http.ResponseWriter, g *graph.Graph, f graph.Format, attachment string) {
	var buf bytes.Buffer
	if err := graph.Encode(&buf, g, f); err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", f.ContentType()+"; charset=utf-8")
	if attachment != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func wantsTurtle(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/turtle")
}

func wantsNTriples(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/n-triples")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
