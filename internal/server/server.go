// Package server exposes a record graph over HTTP.
//
// The server owns a single [record.Graph] guarded by a read-write mutex.
// Reads (GET routes) share the lock; mutations and snapshot restores take it
// exclusively, so every request sees the graph in a state where all of its
// invariants hold. All mutations go through the graph's validated mutation
// path; the server adds no rules of its own.
//
// Routes:
//
//	GET    /healthz
//	GET    /graph                      wire document of the current graph
//	GET    /nodes                      all node payloads in insertion order
//	PUT    /nodes                      add or replace a node
//	GET    /nodes/{id}
//	DELETE /nodes/{id}                 cascades to incident edges
//	GET    /nodes/{id}/edges           ?direction=out|in|both&type=T
//	POST   /edges                      {"source", "target", "weight"}
//	GET    /edges/{id}
//	DELETE /edges/{id}
//	GET    /snapshots
//	POST   /snapshots                  save the current graph
//	POST   /snapshots/{key}/restore    replace the graph with a snapshot
//
// Errors are returned as {"code": ..., "error": ...} with a status derived
// from the error code.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/typegraph/pkg/graph"
	"github.com/matzehuels/typegraph/pkg/observability"
	"github.com/matzehuels/typegraph/pkg/record"
	"github.com/matzehuels/typegraph/pkg/snapshot"
)

// Server serves one record graph.
type Server struct {
	mu     sync.RWMutex
	graph  *record.Graph
	store  snapshot.Store
	logger *log.Logger
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used by the server and by graphs it restores
// from snapshots.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a server for g. store may be nil, in which case the snapshot
// routes answer 501.
func New(g *record.Graph, store snapshot.Store, opts ...Option) *Server {
	s := &Server{
		graph:  g,
		store:  store,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observeRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph", s.handleGraph)

	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", s.handleListNodes)
		r.Put("/", s.handlePutNode)
		r.Get("/{id}", s.handleGetNode)
		r.Delete("/{id}", s.handleDeleteNode)
		r.Get("/{id}/edges", s.handleNodeEdges)
	})

	r.Route("/edges", func(r chi.Router) {
		r.Post("/", s.handlePostEdge)
		r.Get("/{id}", s.handleGetEdge)
		r.Delete("/{id}", s.handleDeleteEdge)
	})

	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", s.handleListSnapshots)
		r.Post("/", s.handleSaveSnapshot)
		r.Post("/{key}/restore", s.handleRestoreSnapshot)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Graph returns the graph currently served. The result must not be mutated
// while the server is running.
func (s *Server) Graph() *record.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving graph", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// mutate runs fn under the write lock and reports it to the mutation hooks.
func (s *Server) mutate(ctx context.Context, op, id string, fn func(g *record.Graph) error) error {
	start := time.Now()
	s.mu.Lock()
	err := fn(s.graph)
	s.mu.Unlock()
	observability.Mutation().OnMutation(ctx, op, id, time.Since(start), err)
	return err
}

// restore replaces the served graph with the snapshot stored under key.
func (s *Server) restore(ctx context.Context, key string) (*record.Graph, error) {
	start := time.Now()
	data, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	g, err := record.Unmarshal(data, graph.WithLogger(s.logger))
	if err == nil {
		s.mu.Lock()
		s.graph = g
		s.mu.Unlock()
	}
	observability.Mutation().OnMutation(ctx, observability.OpRestore, key, time.Since(start), err)
	return g, err
}

func observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.HTTP().OnRequest(r.Context(), r.Method, route, status, time.Since(start))
	})
}
