package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mercuryhq/mercuryd/internal/domain"
)

// defaultNewsQuery is used when the client supplies no q parameter.
const defaultNewsQuery = "prediction market polymarket kalshi"

// ArticleFetcher fetches news articles matching a query.
type ArticleFetcher interface {
	FetchArticles(ctx context.Context, query string) ([]domain.Article, error)
}

// NewsHandler serves news articles fetched server-side so browser clients
// never touch the RSS upstream directly.
type NewsHandler struct {
	fetcher ArticleFetcher
	logger  *slog.Logger
}

// NewNewsHandler creates a NewsHandler over the given fetcher.
func NewNewsHandler(fetcher ArticleFetcher, logger *slog.Logger) *NewsHandler {
	return &NewsHandler{fetcher: fetcher, logger: logger}
}

// GetNews fetches articles for the q query parameter.
// GET /api/news?q=...
func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		query = defaultNewsQuery
	}

	articles, err := h.fetcher.FetchArticles(r.Context(), query)
	if err != nil {
		h.logger.Warn("news fetch failed", "query", query, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":    err.Error(),
			"articles": []domain.Article{},
		})
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=120")
	writeJSON(w, http.StatusOK, map[string]any{"articles": articles})
}
