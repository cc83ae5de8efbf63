// Package config defines the top-level configuration for the aggregation
// server and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by MERCURY_* environment variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	Kalshi     KalshiConfig     `toml:"kalshi"`
	News       NewsConfig       `toml:"news"`
	Refresh    RefreshConfig    `toml:"refresh"`
	Server     ServerConfig     `toml:"server"`
	Redis      RedisConfig      `toml:"redis"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds the Polymarket API endpoints.
type PolymarketConfig struct {
	GammaHost string `toml:"gamma_host"`
	ClobHost  string `toml:"clob_host"`
	PageSize  int    `toml:"page_size"`
}

// KalshiConfig holds the Kalshi API endpoint.
type KalshiConfig struct {
	BaseURL  string `toml:"base_url"`
	PageSize int    `toml:"page_size"`
}

// NewsConfig holds the news RSS endpoint and the topic queries fed into the
// trending pipeline. An empty string query means the unfiltered front page.
type NewsConfig struct {
	BaseURL string   `toml:"base_url"`
	Locale  string   `toml:"locale"`
	Queries []string `toml:"queries"`
}

// RefreshConfig holds the background cadence knobs, in seconds.
type RefreshConfig struct {
	MarketIntervalSec   int `toml:"market_interval_sec"`
	TrendingIntervalSec int `toml:"trending_interval_sec"`
	CycleTimeoutSec     int `toml:"cycle_timeout_sec"`
	ProxyTTLSec         int `toml:"proxy_ttl_sec"`
}

// MarketInterval returns the market refresh cadence.
func (r RefreshConfig) MarketInterval() time.Duration {
	return time.Duration(r.MarketIntervalSec) * time.Second
}

// TrendingInterval returns the trending refresh cadence.
func (r RefreshConfig) TrendingInterval() time.Duration {
	return time.Duration(r.TrendingIntervalSec) * time.Second
}

// CycleTimeout returns the per-cycle fetch deadline.
func (r RefreshConfig) CycleTimeout() time.Duration {
	return time.Duration(r.CycleTimeoutSec) * time.Second
}

// ProxyTTL returns the proxy response cache lifetime.
func (r RefreshConfig) ProxyTTL() time.Duration {
	return time.Duration(r.ProxyTTLSec) * time.Second
}

// ServerConfig holds the HTTP server parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// RedisConfig holds the optional shared proxy-cache backend. When disabled,
// the proxy uses an in-process cache.
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Defaults returns the built-in configuration used when a field is absent
// from the TOML file.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			GammaHost: "https://gamma-api.polymarket.com",
			ClobHost:  "https://clob.polymarket.com",
			PageSize:  100,
		},
		Kalshi: KalshiConfig{
			BaseURL:  "https://api.elections.kalshi.com/trade-api/v2",
			PageSize: 200,
		},
		News: NewsConfig{
			BaseURL: "https://news.google.com",
			Locale:  "hl=en-US&gl=US&ceid=US:en",
			Queries: []string{
				"bitcoin crypto ethereum solana",
				"elections politics congress federal reserve",
				"economy inflation GDP jobs market stocks",
				"geopolitics war trade tariff sanctions",
				"artificial intelligence openai technology",
				"prediction market polymarket kalshi",
				"", // unfiltered front page
			},
		},
		Refresh: RefreshConfig{
			MarketIntervalSec:   15,
			TrendingIntervalSec: 300,
			CycleTimeoutSec:     12,
			ProxyTTLSec:         15,
		},
		Server: ServerConfig{
			Port:        8787,
			CORSOrigins: []string{"*"},
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
		},
		LogLevel: "info",
	}
}

// Validate checks the configuration for inconsistencies and returns an error
// describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}
	if c.Polymarket.ClobHost == "" {
		errs = append(errs, "polymarket: clob_host must not be empty")
	}
	if c.Kalshi.BaseURL == "" {
		errs = append(errs, "kalshi: base_url must not be empty")
	}
	if c.News.BaseURL == "" {
		errs = append(errs, "news: base_url must not be empty")
	}
	if len(c.News.Queries) == 0 {
		errs = append(errs, "news: at least one query is required")
	}

	if c.Refresh.MarketIntervalSec <= 0 {
		errs = append(errs, "refresh: market_interval_sec must be positive")
	}
	if c.Refresh.TrendingIntervalSec <= 0 {
		errs = append(errs, "refresh: trending_interval_sec must be positive")
	}
	if c.Refresh.CycleTimeoutSec <= 0 {
		errs = append(errs, "refresh: cycle_timeout_sec must be positive")
	}
	if c.Refresh.CycleTimeoutSec >= c.Refresh.MarketIntervalSec*2 {
		errs = append(errs, "refresh: cycle_timeout_sec should not dwarf market_interval_sec")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port %d out of range", c.Server.Port))
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty when enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
