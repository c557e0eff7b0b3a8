// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/algiz/internal/api"
	"github.com/starford/algiz/internal/sdncache"
	"github.com/starford/algiz/internal/sdnservice"
	"github.com/starford/algiz/internal/sse"
	"github.com/starford/algiz/internal/upstream"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("upstream_url", cfg.Upstream.URL),
		slog.Int("cache_ttl_seconds", cfg.Cache.TTLSeconds),
		slog.Int("query_limit", cfg.Query.Limit),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Build the refresh pipeline: fetcher -> cache -> services.
	fetcher := upstream.NewClient(cfg.Upstream.URL, cfg.Upstream.UserAgent, cfg.Upstream.Timeout(), app.httpClient)
	cache := sdncache.New(fetcher, cfg.Cache.TTL())

	// SSE broker announcing refresh outcomes.
	broker := sse.NewBroker()
	defer broker.Close()

	cache.OnRefresh = func(snap *sdncache.Snapshot) {
		logger.Info("snapshot refreshed",
			slog.Int("rows", len(snap.Rows)),
			slog.String("checksum", snap.Checksum))
		broker.PublishSnapshotUpdated(len(snap.Rows), snap.Checksum, snap.FetchedAt)
	}
	cache.OnFailure = func(err error) {
		logger.Warn("snapshot refresh failed", slog.String("error", err.Error()))
		broker.PublishSnapshotFailed(err)
	}

	svc := sdnservice.NewService(cache, cfg.Query.Limit)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Mount("/", api.NewRouter(svc, broker))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
