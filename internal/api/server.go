//
//
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/wlan-control/wland/internal/auth"
	"github.com/wlan-control/wland/internal/config"
)

// Server represents the HTTP API server.
type Server struct {
	httpServer     *http.Server
	settings       SettingsReader
	monitor        MonitorPort
	telemetry      TelemetryPort
	authMiddleware *auth.Middleware
	cfg            config.HTTPConfig
	log            zerolog.Logger
	startTime      time.Time
}

// NewServer creates a new API server. A nil authMiddleware registers the
// routes without protection.
func NewServer(settings SettingsReader, mon MonitorPort, hub TelemetryPort,
	authMiddleware *auth.Middleware, cfg config.HTTPConfig, log zerolog.Logger) *Server {
	return &Server{
		settings:       settings,
		monitor:        mon,
		telemetry:      hub,
		authMiddleware: authMiddleware,
		cfg:            cfg,
		log:            log,
		startTime:      time.Now(),
	}
}

// Handler builds the route tree. Exposed so tests can drive the server
// through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return mux
}

// Start runs the HTTP server until Stop or a listener error.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout.Std(),
		WriteTimeout: s.cfg.WriteTimeout.Std(),
		IdleTimeout:  s.cfg.IdleTimeout.Std(),
	}

	s.log.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server, draining in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout.Std())
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	return nil
}
