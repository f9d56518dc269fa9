// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/songrec/internal/api"
	"github.com/tomtom215/songrec/internal/cache"
	"github.com/tomtom215/songrec/internal/config"
	"github.com/tomtom215/songrec/internal/logging"
	"github.com/tomtom215/songrec/internal/metrics"
	"github.com/tomtom215/songrec/internal/recommend/engine"
	"github.com/tomtom215/songrec/internal/supervisor"
	"github.com/tomtom215/songrec/internal/supervisor/services"
)

// Set at build time:
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=$(git rev-parse --short HEAD)" ./cmd/server
var (
	version = "dev"
	commit  = "unknown"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("commit", commit).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Songrec with supervisor tree")

	metrics.SetBuildInfo(version, commit, runtime.Version())

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().
			Strs("cors_origins", cfg.Security.CORSOrigins).
			Msg("CORS allows any origin in a production environment; set CORS_ORIGINS")
	}

	watchLogLevel()

	// Create context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Bridges zerolog to slog for sutureslog
	tree, err := supervisor.NewSupervisorTree(
		logging.NewSlogLogger("supervisor"),
		supervisor.TreeConfigFrom(cfg.Supervisor),
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === DATA LAYER ===
	rec, err := initRecommend(cfg, logging.WithComponent("recommend"), tree)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}

	// === API LAYER ===
	var responseCache cache.Cacher = cache.Nop{}
	if cfg.Cache.Enabled {
		c := cache.NewWithCapacity(cfg.Cache.TTL, cfg.Cache.MaxEntries)
		defer c.Close()
		responseCache = c
		logging.Info().
			Dur("ttl", cfg.Cache.TTL).
			Int("max_entries", cfg.Cache.MaxEntries).
			Msg("Response cache enabled")
	} else {
		logging.Info().Msg("Response cache disabled (CACHE_ENABLED=false)")
	}

	handler := api.NewHandler(rec.Engine, rec.Service, responseCache, api.HandlerOptions{
		Version:      version,
		MaxTopN:      cfg.Recommend.MaxTopN,
		DefaultTopN:  cfg.Recommend.DefaultTopN,
		QueryTimeout: cfg.Server.Timeout,
		RefitTimeout: cfg.Recommend.FitTimeout,
		DatasetState: rec.Loader.State,
	})

	// A new snapshot invalidates every cached response.
	rec.Service.OnPublish(func(report *engine.FitReport) {
		handler.ClearCache()
		logging.Info().
			Int64("version", report.Version).
			Int("rows", report.Rows).
			Strs("failed_scorers", report.Failed()).
			Msg("Snapshot published, response cache cleared")
	})

	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)))

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router.SetupChi(),
		// Refits with wait=true outlive the query timeout
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Recommend.FitTimeout + cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===
	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
		cancel()
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// watchLogLevel reloads the log level when the config file changes. Other
// settings need a restart.
func watchLogLevel() {
	path := config.FindConfigFile()
	if path == "" {
		return
	}

	err := config.WatchConfigFile(path, func() {
		cfg, err := config.LoadFile(path)
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("Ignoring invalid config file change")
			return
		}
		if cfg.Logging.Level != logging.GetLevel().String() {
			logging.SetLevelString(cfg.Logging.Level)
			logging.Info().Str("level", cfg.Logging.Level).Msg("Log level reloaded")
		}
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Config file watch disabled")
		return
	}
	logging.Debug().Str("path", path).Msg("Watching config file for log level changes")
}
