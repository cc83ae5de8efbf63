package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MERCURY_* environment variable overrides, and
// returns the final Config. An empty path skips the file and uses defaults
// plus environment overrides. The returned Config has NOT been validated;
// the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MERCURY_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators tune a deployment without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Polymarket.GammaHost, "MERCURY_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.ClobHost, "MERCURY_POLYMARKET_CLOB_HOST")
	setInt(&cfg.Polymarket.PageSize, "MERCURY_POLYMARKET_PAGE_SIZE")

	setStr(&cfg.Kalshi.BaseURL, "MERCURY_KALSHI_BASE_URL")
	setInt(&cfg.Kalshi.PageSize, "MERCURY_KALSHI_PAGE_SIZE")

	setStr(&cfg.News.BaseURL, "MERCURY_NEWS_BASE_URL")
	setStr(&cfg.News.Locale, "MERCURY_NEWS_LOCALE")
	setStringSlice(&cfg.News.Queries, "MERCURY_NEWS_QUERIES")

	setInt(&cfg.Refresh.MarketIntervalSec, "MERCURY_REFRESH_MARKET_INTERVAL_SEC")
	setInt(&cfg.Refresh.TrendingIntervalSec, "MERCURY_REFRESH_TRENDING_INTERVAL_SEC")
	setInt(&cfg.Refresh.CycleTimeoutSec, "MERCURY_REFRESH_CYCLE_TIMEOUT_SEC")
	setInt(&cfg.Refresh.ProxyTTLSec, "MERCURY_REFRESH_PROXY_TTL_SEC")

	setInt(&cfg.Server.Port, "MERCURY_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "MERCURY_SERVER_CORS_ORIGINS")

	setBool(&cfg.Redis.Enabled, "MERCURY_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "MERCURY_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "MERCURY_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "MERCURY_REDIS_DB")

	setStr(&cfg.LogLevel, "MERCURY_LOG_LEVEL")
}

// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		*dst = out
	}
}
