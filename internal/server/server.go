// Package server exposes the store's action surface over HTTP: a JSON API,
// a rendered HTML projection, health, and Prometheus metrics. Handlers
// forward intents as actions and read snapshots, never touching state
// directly.
package server

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/taskflow/internal/config"
	"git.home.luguber.info/inful/taskflow/internal/store"
)

// Server manages the HTTP endpoints for serve mode.
type Server struct {
	cfg      config.ServerConfig
	store    *store.Store
	registry *prom.Registry
	httpSrv  *http.Server
}

// New creates an HTTP server over the given store. registry may be nil when
// metrics are not wired.
func New(cfg config.ServerConfig, st *store.Store, registry *prom.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		registry: registry,
	}
	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Routes builds the handler tree. Exposed for httptest.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("GET /api/items", s.handleListItems)
	mux.HandleFunc("POST /api/items", s.handleAddItem)
	mux.HandleFunc("PUT /api/items/{id}", s.handleEditItem)
	mux.HandleFunc("POST /api/items/{id}/toggle", s.handleToggleItem)
	mux.HandleFunc("DELETE /api/items/{id}", s.handleDeleteItem)
	mux.HandleFunc("POST /api/items/clear-completed", s.handleClearCompleted)
	mux.HandleFunc("POST /api/items/move", s.handleMoveItems)
	mux.HandleFunc("POST /api/filter", s.handlePickFilter)

	return logRequests(mux)
}

// Start runs the server until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	slog.Info("HTTP server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.cfg.Addr }

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
