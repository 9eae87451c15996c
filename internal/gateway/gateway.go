// Package gateway owns the configured API client for the lifetime of the process.
package gateway

import (
	"context"
	"log/slog"

	"resty.dev/v3"

	"instaapp/internal/config"
	"instaapp/internal/metrics"
	"instaapp/pkg/instaapi"
)

type client = instaapi.Client

// Gateway implements core.API on top of an instaapi.Client built from the config.
type Gateway struct {
	Logger *slog.Logger
	Config *config.Config

	*client
}

func (g *Gateway) Init(_ context.Context) error {
	g.Logger = g.Logger.With("component", "gateway.Gateway")

	cfg := *instaapi.DefaultConfig
	if g.Config.APIURL != "" {
		cfg.BaseURL = g.Config.APIURL
	}
	if g.Config.Timeout > 0 {
		cfg.Timeout = g.Config.Timeout
	}
	cfg.ResponseMiddlewares = []resty.ResponseMiddleware{
		metrics.RequestMiddleware,
		g.logResponse,
	}

	g.client = instaapi.NewClient(&cfg)
	g.Logger.Debug("API client ready", "base_url", cfg.BaseURL, "timeout", cfg.Timeout)

	return nil
}

func (g *Gateway) Shutdown(_ context.Context) error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Gateway) logResponse(_ *resty.Client, response *resty.Response) error {
	g.Logger.Debug("API response",
		"method", response.Request.Method,
		"url", response.Request.URL,
		"status", response.StatusCode(),
		"duration", response.Duration(),
		"request_id", response.Request.Header.Get(instaapi.RequestIDHeader),
	)
	return nil
}
