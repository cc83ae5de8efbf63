package handler

import (
	"log/slog"
	"net/http"

	"github.com/mercuryhq/mercuryd/internal/domain"
)

// TrendingSource provides the latest trending-keyword snapshot.
type TrendingSource interface {
	Snapshot() domain.TrendingSnapshot
}

// TrendingHandler serves the trending keyword list.
type TrendingHandler struct {
	source TrendingSource
	logger *slog.Logger
}

// NewTrendingHandler creates a TrendingHandler over the given snapshot source.
func NewTrendingHandler(source TrendingSource, logger *slog.Logger) *TrendingHandler {
	return &TrendingHandler{source: source, logger: logger}
}

// ListTrending returns the current trending snapshot. Before the tracker has
// enough readings the keywords carry flat trends; the readings/minReadings
// fields let clients render a warm-up state.
// GET /api/trending
func (h *TrendingHandler) ListTrending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.source.Snapshot())
}
