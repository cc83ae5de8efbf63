package handler

import (
	"log/slog"
	"net/http"

	"github.com/mercuryhq/mercuryd/internal/domain"
)

// MarketSource provides the latest market snapshot.
type MarketSource interface {
	Snapshot() domain.MarketSnapshot
}

// MarketHandler serves the canonical market list.
type MarketHandler struct {
	source MarketSource
	logger *slog.Logger
}

// NewMarketHandler creates a MarketHandler over the given snapshot source.
func NewMarketHandler(source MarketSource, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{source: source, logger: logger}
}

// ListMarkets returns the current merged market snapshot.
// GET /api/markets
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	snap := h.source.Snapshot()
	status := http.StatusOK
	if snap.Status == domain.StatusError {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, snap)
}
