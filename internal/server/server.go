// Package server assembles the management HTTP + WebSocket API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"flasharb/internal/domain"
	"flasharb/internal/server/handler"
	"flasharb/internal/server/middleware"
	"flasharb/internal/server/ws"
)

// rate limit applied per client IP across the whole API surface.
const (
	rateLimitRequests = 120
	rateLimitWindow   = time.Minute
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
}

// Handlers aggregates all HTTP handlers the server registers.
type Handlers struct {
	Health        *handler.HealthHandler
	Config        *handler.ConfigHandler
	Monitor       *handler.MonitorHandler
	Opportunities *handler.OpportunityHandler
	Prices        *handler.PriceHandler // optional
}

// Server is the headless HTTP + WebSocket management API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered, wrapped in the
// middleware chain (CORS, rate limiting, logging, auth). limiter may be nil
// to disable rate limiting.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Runtime configuration.
	mux.HandleFunc("GET /api/config", handlers.Config.GetConfig)
	mux.HandleFunc("PUT /api/config/pairs", handlers.Config.UpdatePairs)
	mux.HandleFunc("PUT /api/config/threshold", handlers.Config.UpdateThreshold)
	mux.HandleFunc("PUT /api/config/maxloan", handlers.Config.UpdateMaxLoan)

	// Operational toggles.
	mux.HandleFunc("POST /api/monitor/start", handlers.Monitor.StartMonitoring)
	mux.HandleFunc("POST /api/monitor/stop", handlers.Monitor.StopMonitoring)
	mux.HandleFunc("POST /api/notifications/start", handlers.Monitor.StartNotifications)
	mux.HandleFunc("POST /api/notifications/stop", handlers.Monitor.StopNotifications)

	// History and metrics.
	mux.HandleFunc("GET /api/opportunities/recent", handlers.Opportunities.ListRecent)
	mux.HandleFunc("GET /api/metrics", handlers.Opportunities.Metrics)

	// Cached price snapshots.
	if handlers.Prices != nil {
		mux.HandleFunc("GET /api/prices", handlers.Prices.GetSnapshot)
	}

	// Live event stream.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Auth(cfg.APIKey)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RateLimit(limiter, rateLimitRequests, rateLimitWindow)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      h,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Handler exposes the full middleware-wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests. It blocks until the server
// errors or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
