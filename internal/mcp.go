package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/algiz/internal/mcpserver"
	"github.com/starford/algiz/internal/sdncache"
	"github.com/starford/algiz/internal/sdnservice"
	"github.com/starford/algiz/internal/upstream"
)

// RunMCP serves the SDN screening tools over MCP stdio transport.
// Logs go to stderr; stdout belongs to the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	fetcher := upstream.NewClient(cfg.Upstream.URL, cfg.Upstream.UserAgent, cfg.Upstream.Timeout(), app.httpClient)
	cache := sdncache.New(fetcher, cfg.Cache.TTL())
	svc := sdnservice.NewService(cache, cfg.Query.Limit)

	logger.Info("MCP server starting on stdio",
		slog.String("upstream_url", cfg.Upstream.URL))

	return mcpserver.New(svc).ServeStdio()
}
