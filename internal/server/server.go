package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/freema/shortcutd/internal/config"
	"github.com/freema/shortcutd/internal/server/handlers"
	"github.com/freema/shortcutd/internal/server/middleware"
)

// Server is the HTTP host for the MCP streamable transport.
type Server struct {
	httpServer *http.Server
	health     *handlers.HealthHandler
	certFile   string
	keyFile    string
}

// New creates and configures the HTTP server with all routes and middleware.
// mcpHandler is the streamable HTTP handler serving the MCP endpoint.
func New(cfg *config.Config, mcpHandler http.Handler, version string) *Server {
	r := chi.NewRouter()

	// Global middleware. No request timeout here: a tool call legitimately
	// runs as long as the shortcut does.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	// Health and metrics endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Shortcuts.RunnerPath, version)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// MCP endpoint
	r.Route("/mcp", func(r chi.Router) {
		if guard := middleware.TransportGuard(cfg.Server.AllowedHosts, cfg.Server.AllowedOrigins); guard != nil {
			r.Use(guard)
		}
		if cfg.Server.AuthToken != "" {
			r.Use(middleware.BearerAuth(cfg.Server.AuthToken))
		}
		r.Handle("/", mcpHandler)
	})

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, fmt.Sprintf("%d", cfg.Server.Port)),
		Handler:           otelhttp.NewHandler(r, "shortcutd.http"),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		health:     healthHandler,
		certFile:   cfg.Server.TLSCertFile,
		keyFile:    cfg.Server.TLSKeyFile,
	}
}

// Start begins listening for HTTP requests, with TLS when configured.
func (s *Server) Start() error {
	if s.certFile != "" {
		slog.Info("https server starting", "addr", s.httpServer.Addr)
		return s.httpServer.ListenAndServeTLS(s.certFile, s.keyFile)
	}
	slog.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	return s.httpServer.Shutdown(ctx)
}
