// Package server wires the HTTP + WebSocket API surface.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mercuryhq/mercuryd/internal/metrics"
	"github.com/mercuryhq/mercuryd/internal/proxy"
	"github.com/mercuryhq/mercuryd/internal/server/handler"
	"github.com/mercuryhq/mercuryd/internal/server/middleware"
	"github.com/mercuryhq/mercuryd/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string

	// Upstream bases served under /proxy/.
	PolymarketBase string
	ClobBase       string
	KalshiBase     string
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health   *handler.HealthHandler
	Markets  *handler.MarketHandler
	Trending *handler.TrendingHandler
	News     *handler.NewsHandler
	Proxy    *proxy.Proxy
}

// Server is the read-only HTTP + WebSocket API for the aggregated feeds.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux
// and the middleware chain (logging, CORS) applied.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)
	mux.HandleFunc("GET /api/markets", handlers.Markets.ListMarkets)
	mux.HandleFunc("GET /api/trending", handlers.Trending.ListTrending)
	mux.HandleFunc("GET /api/news", handlers.News.GetNews)

	if handlers.Proxy != nil {
		mux.HandleFunc("GET /proxy/polymarket/{path...}", handlers.Proxy.Handler(cfg.PolymarketBase))
		mux.HandleFunc("GET /proxy/polymarket-clob/{path...}", handlers.Proxy.Handler(cfg.ClobBase))
		mux.HandleFunc("GET /proxy/kalshi/{path...}", handlers.Proxy.Handler(cfg.KalshiBase))
	}

	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	mux.Handle("GET /metrics", metrics.Handler())

	var h http.Handler = mux
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Handler exposes the fully wired handler chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
