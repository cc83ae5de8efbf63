// Package app provides the top-level application lifecycle. It wires all
// dependencies (upstream clients, caches, hub, HTTP server) and supervises
// the background goroutines until shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/mercuryhq/mercuryd/internal/cache"
	"github.com/mercuryhq/mercuryd/internal/config"
	"github.com/mercuryhq/mercuryd/internal/domain"
	"github.com/mercuryhq/mercuryd/internal/platform/httpx"
	"github.com/mercuryhq/mercuryd/internal/platform/kalshi"
	"github.com/mercuryhq/mercuryd/internal/platform/news"
	"github.com/mercuryhq/mercuryd/internal/platform/polymarket"
	"github.com/mercuryhq/mercuryd/internal/proxy"
	"github.com/mercuryhq/mercuryd/internal/server"
	"github.com/mercuryhq/mercuryd/internal/server/handler"
	"github.com/mercuryhq/mercuryd/internal/server/ws"
	"github.com/mercuryhq/mercuryd/internal/trending"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run wires all dependencies, starts the background goroutines, and blocks
// until the context is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("log_level", a.cfg.LogLevel),
		slog.Int("port", a.cfg.Server.Port),
	)

	httpClient := httpx.New(httpx.Options{})

	gamma := polymarket.NewGammaClient(a.cfg.Polymarket.GammaHost, httpClient, a.cfg.Polymarket.PageSize)
	kalshiClient := kalshi.NewClient(a.cfg.Kalshi.BaseURL, httpClient, a.cfg.Kalshi.PageSize)
	newsClient := news.NewClient(a.cfg.News.BaseURL, a.cfg.News.Locale, httpClient)

	// Feed order is merge priority.
	feeds := []cache.Feed{
		{Name: "poly-events", Fetch: gamma.FetchEvents},
		{Name: "poly-markets", Fetch: gamma.FetchMarkets},
		{Name: "kalshi-events", Fetch: kalshiClient.FetchEvents},
		{Name: "kalshi-markets", Fetch: kalshiClient.FetchMarkets},
	}

	marketCache := cache.NewMarketCache(
		feeds,
		a.cfg.Refresh.MarketInterval(),
		a.cfg.Refresh.CycleTimeout(),
		a.logger.With(slog.String("component", "market-cache")),
	)

	tracker := trending.NewTracker()
	queries := a.cfg.News.Queries
	trendingCache := cache.NewTrendingCache(
		func(ctx context.Context) ([]string, error) {
			return newsClient.FetchHeadlines(ctx, queries)
		},
		tracker,
		a.cfg.Refresh.TrendingInterval(),
		a.logger.With(slog.String("component", "trending-cache")),
	)

	hub := ws.NewHub(a.logger.With(slog.String("component", "ws")))
	marketCache.OnPublish(func(snap domain.MarketSnapshot) {
		hub.Publish(ws.ChannelMarkets, snap)
	})
	trendingCache.OnPublish(func(snap domain.TrendingSnapshot) {
		hub.Publish(ws.ChannelTrending, snap)
	})

	responseCache, err := a.buildProxyCache(ctx)
	if err != nil {
		return fmt.Errorf("app: proxy cache: %w", err)
	}
	px := proxy.New(responseCache, a.cfg.Refresh.ProxyTTL(), a.logger.With(slog.String("component", "proxy")))

	handlers := server.Handlers{
		Health:   handler.NewHealthHandler(marketCache, trendingCache, a.logger),
		Markets:  handler.NewMarketHandler(marketCache, a.logger),
		Trending: handler.NewTrendingHandler(trendingCache, a.logger),
		News:     handler.NewNewsHandler(newsClient, a.logger),
		Proxy:    px,
	}
	srv := server.NewServer(server.Config{
		Port:           a.cfg.Server.Port,
		CORSOrigins:    a.cfg.Server.CORSOrigins,
		PolymarketBase: a.cfg.Polymarket.GammaHost,
		ClobBase:       a.cfg.Polymarket.ClobHost,
		KalshiBase:     a.cfg.Kalshi.BaseURL,
	}, handlers, hub, a.logger.With(slog.String("component", "server")))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return marketCache.Run(ctx)
	})
	g.Go(func() error {
		return trendingCache.Run(ctx)
	})
	g.Go(func() error {
		return hub.Run(ctx)
	})
	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// buildProxyCache picks the proxy cache backend: Redis when configured,
// otherwise the in-process cache.
func (a *App) buildProxyCache(ctx context.Context) (proxy.ResponseCache, error) {
	if !a.cfg.Redis.Enabled {
		return proxy.NewMemoryCache(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping %s: %w", a.cfg.Redis.Addr, err)
	}
	a.closers = append(a.closers, func() {
		if err := client.Close(); err != nil {
			a.logger.Warn("redis close failed", slog.String("error", err.Error()))
		}
	})
	a.logger.Info("proxy cache backed by redis", slog.String("addr", a.cfg.Redis.Addr))
	return proxy.NewRedisCache(client), nil
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
