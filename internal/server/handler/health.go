package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler serves the health-check endpoint.
type HealthHandler struct {
	markets  MarketSource
	trending TrendingSource
	logger   *slog.Logger
}

// NewHealthHandler creates a HealthHandler reporting both cache states.
func NewHealthHandler(markets MarketSource, trending TrendingSource, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{markets: markets, trending: trending, logger: logger}
}

// HealthCheck responds with the server liveness plus both cache states.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	market := h.markets.Snapshot()
	trend := h.trending.Snapshot()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"markets": map[string]any{
			"status":     market.Status,
			"count":      len(market.Markets),
			"lastUpdate": market.LastUpdate,
		},
		"trending": map[string]any{
			"keywords":    len(trend.Keywords),
			"readings":    trend.Readings,
			"minReadings": trend.MinReadings,
			"lastUpdate":  trend.LastUpdate,
		},
	})
}
