// Package app provides the main application struct for centralized dependency management
// and lifecycle control of the status responder.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"statuspact/config"
	"statuspact/internal/observability"
	"statuspact/internal/server"
)

// App represents the responder with all its dependencies.
// It provides centralized lifecycle management for all components.
type App struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	server  *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// Config holds the configuration options for creating an App.
type Config struct {
	// AppConfig is the configuration produced by config.Load.
	AppConfig *config.Config

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Registry receives the metric collectors when metrics are enabled.
	// Defaults to a fresh registry with Go runtime and process collectors.
	Registry *prometheus.Registry
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(cfg Config) (*App, error) {
	if cfg.AppConfig == nil {
		return nil, fmt.Errorf("app config is required")
	}
	if err := cfg.AppConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{
		config: cfg.AppConfig,
		logger: logger,
	}

	serverCfg := &server.Config{
		MetricsEnabled:  cfg.AppConfig.Metrics.Enabled,
		MetricsEndpoint: cfg.AppConfig.Metrics.Endpoint,
		BodySizeLimit:   cfg.AppConfig.Server.BodySizeLimit,
		Logger:          logger,
	}

	if cfg.AppConfig.Metrics.Enabled {
		registry := cfg.Registry
		if registry == nil {
			registry = prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}
		app.metrics = observability.NewMetrics(registry)
		serverCfg.Metrics = app.metrics
		serverCfg.Gatherer = registry
	}

	app.logStartupInfo()

	app.server = server.New(serverCfg)
	return app, nil
}

// Handler returns the HTTP handler serving every route.
func (a *App) Handler() http.Handler {
	return a.server
}

// Metrics returns the collectors, or nil when metrics are disabled.
func (a *App) Metrics() *observability.Metrics {
	return a.metrics
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	a.logger.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			a.logger.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server, honoring ctx's deadline for in-flight
// requests. It is idempotent; calls after the first are no-ops.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	a.logger.Info("shutting down application...")

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("server shutdown error", "error", err)
			return fmt.Errorf("server shutdown: %w", err)
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}

// logStartupInfo logs the application configuration on startup.
func (a *App) logStartupInfo() {
	cfg := a.config

	if cfg.Metrics.Enabled {
		a.logger.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	} else {
		a.logger.Info("prometheus metrics disabled")
	}
	a.logger.Info("server configured",
		"port", cfg.Server.Port,
		"body_size_limit", cfg.Server.BodySizeLimit,
	)
}
