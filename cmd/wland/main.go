// Package main implements the wland daemon entry point.
package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wlan-control/wland/internal/adapter"
	"github.com/wlan-control/wland/internal/adapter/fake"
	"github.com/wlan-control/wland/internal/adapter/wpactrl"
	"github.com/wlan-control/wland/internal/anqp"
	"github.com/wlan-control/wland/internal/api"
	"github.com/wlan-control/wland/internal/audit"
	"github.com/wlan-control/wland/internal/auth"
	"github.com/wlan-control/wland/internal/config"
	"github.com/wlan-control/wland/internal/logging"
	"github.com/wlan-control/wland/internal/monitor"
	"github.com/wlan-control/wland/internal/overlay"
	"github.com/wlan-control/wland/internal/settings"
	"github.com/wlan-control/wland/internal/telemetry"

	"github.com/rs/zerolog"
)

const Version = "1.0.0"

// ANQP cache sizing. Entries go stale well before an hour in practice;
// the TTL is a backstop, not a freshness guarantee.
const (
	anqpCacheCapacity = 256
	anqpCacheTTL      = time.Hour
)

func main() {
	// Step 1: Load configuration
	cfg, err := config.Load("")
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	// Step 2: Build the root logger
	log := logging.New(cfg.Log)
	log.Info().Str("version", Version).Msg("starting wland")

	// Step 3: Load the device overlay and the settings store
	src, err := overlay.Load(cfg.Overlay.File)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.Overlay.File).Msg("failed to load device overlay")
	}

	store, err := settings.New(src)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize settings store")
	}
	log.Info().Msg("settings store initialized")

	// Step 4: Initialize the audit trail
	auditLog, err := audit.New(cfg.Audit, logging.Component(log, "audit"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize audit logger")
	}

	// Step 5: Initialize the ANQP cache
	cache := anqp.NewCache(anqpCacheCapacity, anqpCacheTTL)

	// Step 6: Select the southbound WLAN adapter
	wlan, closeAdapter, err := buildAdapter(cfg.Adapter, logging.Component(log, "adapter"))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Adapter.Driver).Msg("failed to initialize WLAN adapter")
	}
	log.Info().Str("driver", cfg.Adapter.Driver).Str("iface", cfg.Adapter.Interface).Msg("WLAN adapter ready")

	// Step 7: Start the telemetry hub, RSSI poller, and heartbeat
	hub := telemetry.NewHub(cfg.Telemetry, logging.Component(log, "telemetry"))
	poller := telemetry.NewPoller(store, wlan, hub, cfg.Timing, logging.Component(log, "poller"))

	bgCtx, cancelBg := context.WithCancel(context.Background())
	go poller.Run(bgCtx)
	go hub.RunHeartbeat(bgCtx, cfg.Timing.SSEHeartbeat.Std())

	// Step 8: Create the monitor
	mon := monitor.New(store, wlan, cache, hub, auditLog, cfg.Adapter.Interface,
		cfg.Timing, logging.Component(log, "monitor"))

	// Step 9: Set up authentication
	middleware, err := buildAuth(cfg.Auth, logging.Component(log, "auth"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize authentication")
	}
	if !cfg.Auth.Enabled {
		log.Warn().Msg("authentication is disabled; all endpoints are unprotected")
	}

	// Step 10: Start the HTTP server
	server := api.NewServer(store, mon, hub, middleware, cfg.HTTP, logging.Component(log, "api"))

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()
	log.Info().Str("addr", cfg.HTTP.Addr).Msg("wland started")

	// Step 11: Wait for shutdown signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
	case err := <-serverErr:
		log.Error().Err(err).Msg("server error")
	}

	// Stop background producers first so open telemetry streams drain and
	// close, letting the HTTP server finish its in-flight requests.
	cancelBg()
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout.Std())
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("failed to stop HTTP server")
	}

	closeAdapter()
	if err := auditLog.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close audit logger")
	}

	log.Info().Msg("wland shutdown complete")
}

// buildAdapter constructs the configured southbound adapter and returns a
// cleanup function for its resources.
func buildAdapter(cfg config.AdapterConfig, log zerolog.Logger) (adapter.WlanAdapter, func(), error) {
	switch cfg.Driver {
	case "fake", "":
		return fake.New(cfg.Interface), func() {}, nil
	case "wpactrl":
		a, err := wpactrl.New(cfg.ControlAddr, cfg.Interface, log)
		if err != nil {
			return nil, nil, err
		}
		return a, func() {
			if err := a.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close control socket")
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown adapter driver %q", cfg.Driver)
	}
}

// buildAuth wires the token verifier and middleware. When auth is disabled
// no verifier is constructed, so disabled deployments need no key material.
func buildAuth(cfg config.AuthConfig, log zerolog.Logger) (*auth.Middleware, error) {
	if !cfg.Enabled {
		return auth.NewMiddleware(nil, false, log), nil
	}

	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		Algorithm:     cfg.Algorithm,
		SecretKey:     cfg.SecretKey,
		PublicKeyFile: cfg.PublicKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}

	return auth.NewMiddleware(verifier, true, log), nil
}
