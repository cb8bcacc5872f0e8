// Package api serves run progress, matches and metrics over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/sitesimilarity/internal/cache"
	"github.com/user/sitesimilarity/internal/engine"
	"github.com/user/sitesimilarity/internal/monitoring"
	"github.com/user/sitesimilarity/internal/sink"
)

// Pinger is a dependency whose reachability is reported by /api/health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the progress of a running comparison over HTTP.
type Server struct {
	router     http.Handler
	httpServer *http.Server
	engine     *engine.Engine
	cache      *cache.Cache
	recorder   *sink.Recorder
	metrics    *monitoring.Metrics
	deps       map[string]Pinger
	logger     *zap.Logger
}

func NewServer(addr string, e *engine.Engine, c *cache.Cache, rec *sink.Recorder, m *monitoring.Metrics, deps map[string]Pinger, l *zap.Logger) *Server {
	s := &Server{
		engine:   e,
		cache:    c,
		recorder: rec,
		metrics:  m,
		deps:     deps,
		logger:   l,
	}
	s.router = s.setupRouter()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving on the configured address. After Shutdown it
// returns http.ErrServerClosed, including when Shutdown ran first.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
