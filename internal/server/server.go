// Package server exposes dashboard sessions over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/KaramelBytes/housing-explorer/internal/analysis"
	"github.com/KaramelBytes/housing-explorer/internal/dashboard"
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
	"github.com/KaramelBytes/housing-explorer/internal/logging"
	"github.com/KaramelBytes/housing-explorer/internal/metrics"
)

// Config holds HTTP server settings.
type Config struct {
	Addr            string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the local development settings.
func DefaultConfig() Config {
	return Config{
		Addr:            "127.0.0.1:8080",
		MaxUploadBytes:  50 << 20,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server owns the open sessions and the shared loader and snapshot cache.
type Server struct {
	cfg    Config
	dash   dashboard.Config
	loader *dataset.Loader
	snaps  *analysis.SnapshotCache
	log    *zap.Logger
	router chi.Router

	mu       sync.RWMutex
	sessions map[string]*dashboard.Session
}

// New builds a server and its routes.
func New(cfg Config, dash dashboard.Config, loader *dataset.Loader, log *zap.Logger) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}
	log = logging.OrNop(log)
	if loader == nil {
		loader = dataset.NewLoader(dataset.DefaultOptions(), log)
	}
	s := &Server{
		cfg:      cfg,
		dash:     dash,
		loader:   loader,
		snaps:    analysis.NewSnapshotCache(),
		log:      log,
		sessions: map[string]*dashboard.Session{},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Post("/dataset/builtin", s.withSession(s.handleLoadBuiltin))
			r.Post("/dataset/upload", s.withSession(s.handleUpload))
			r.Get("/overview", s.withSession(s.handleOverview))
			r.Post("/explore", s.withSession(s.handleExplore))
			r.Get("/statistics", s.withSession(s.handleStatistics))
			r.Get("/rows", s.withSession(s.handleRows))
			r.Post("/manual", s.withSession(s.handleManual))
		})
	})
	return r
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.log.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.closeAll()
	return nil
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) newSession() *dashboard.Session {
	id := uuid.NewString()
	sess := dashboard.NewSession(id, s.dash, s.loader, s.snaps, s.log)
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	metrics.ActiveSessions.Inc()
	return sess
}

func (s *Server) session(id string) (*dashboard.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) dropSession(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	sess.Close()
	metrics.ActiveSessions.Dec()
	return true
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
		metrics.ActiveSessions.Dec()
	}
}
