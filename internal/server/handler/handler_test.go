package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mercuryhq/mercuryd/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeMarkets struct{ snap domain.MarketSnapshot }

func (f *fakeMarkets) Snapshot() domain.MarketSnapshot { return f.snap }

type fakeTrending struct{ snap domain.TrendingSnapshot }

func (f *fakeTrending) Snapshot() domain.TrendingSnapshot { return f.snap }

type fakeNews struct {
	articles []domain.Article
	err      error
	gotQuery string
}

func (f *fakeNews) FetchArticles(_ context.Context, query string) ([]domain.Article, error) {
	f.gotQuery = query
	return f.articles, f.err
}

func intPtr(v int) *int { return &v }

func TestListMarkets(t *testing.T) {
	source := &fakeMarkets{snap: domain.MarketSnapshot{
		Markets: []domain.Market{{
			Name:      "Will Bitcoin hit $100k?",
			Short:     "BTC100K",
			Price:     62,
			Vol:       "$1.2M",
			VolNum:    1_200_000,
			PolyPrice: intPtr(62),
			Timeframe: "1M",
			Source:    domain.SourcePolymarket,
		}},
		Status:     domain.StatusLive,
		LastUpdate: 1770000000000,
		PolyCount:  1,
	}}
	h := NewMarketHandler(source, testLogger())

	rec := httptest.NewRecorder()
	h.ListMarkets(rec, httptest.NewRequest(http.MethodGet, "/api/markets", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	for _, field := range []string{"markets", "status", "lastUpdate", "polyCount", "kalshiCount"} {
		if _, ok := payload[field]; !ok {
			t.Errorf("response missing %q field", field)
		}
	}

	var markets []map[string]any
	if err := json.Unmarshal(payload["markets"], &markets); err != nil || len(markets) != 1 {
		t.Fatalf("markets field malformed: %v", err)
	}
	m := markets[0]
	// Wire format field names, underscore-prefixed internals included.
	for _, field := range []string{"name", "short", "price", "vol", "_volNum", "polyPrice", "kalshiPrice", "tf", "source"} {
		if _, ok := m[field]; !ok {
			t.Errorf("market missing wire field %q", field)
		}
	}
	if m["kalshiPrice"] != nil {
		t.Error("absent kalshiPrice should serialize as null")
	}
}

func TestListMarketsErrorStateIs503(t *testing.T) {
	source := &fakeMarkets{snap: domain.MarketSnapshot{
		Markets: []domain.Market{},
		Status:  domain.StatusError,
		Error:   "all sources down",
	}}
	h := NewMarketHandler(source, testLogger())

	rec := httptest.NewRecorder()
	h.ListMarkets(rec, httptest.NewRequest(http.MethodGet, "/api/markets", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 for an errored cache", rec.Code)
	}
}

func TestListTrending(t *testing.T) {
	source := &fakeTrending{snap: domain.TrendingSnapshot{
		Keywords: []domain.Keyword{{
			Keyword: "bitcoin", Count: 12, Change: 7,
			Trend: domain.TrendUp, SpikePct: 140, Category: "crypto",
		}},
		LastUpdate:  1770000000000,
		Readings:    8,
		MinReadings: 6,
	}}
	h := NewTrendingHandler(source, testLogger())

	rec := httptest.NewRecorder()
	h.ListTrending(rec, httptest.NewRequest(http.MethodGet, "/api/trending", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		Keywords []map[string]any `json:"keywords"`
		Readings int              `json:"readings"`
		Min      int              `json:"minReadings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if payload.Readings != 8 || payload.Min != 6 {
		t.Errorf("readings/minReadings = %d/%d", payload.Readings, payload.Min)
	}
	if len(payload.Keywords) != 1 {
		t.Fatalf("keywords = %d", len(payload.Keywords))
	}
	for _, field := range []string{"keyword", "count", "change", "trend", "spikePct", "category"} {
		if _, ok := payload.Keywords[0][field]; !ok {
			t.Errorf("keyword missing wire field %q", field)
		}
	}
}

func TestGetNews(t *testing.T) {
	fetcher := &fakeNews{articles: []domain.Article{
		{Title: "Bitcoin surges", Link: "https://example.com/1", PubDate: "Mon, 02 Mar 2026 10:00:00 GMT", Source: "Wire"},
	}}
	h := NewNewsHandler(fetcher, testLogger())

	rec := httptest.NewRecorder()
	h.GetNews(rec, httptest.NewRequest(http.MethodGet, "/api/news?q=bitcoin", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if fetcher.gotQuery != "bitcoin" {
		t.Errorf("query passed = %q", fetcher.gotQuery)
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=120" {
		t.Errorf("Cache-Control = %q", got)
	}
	var payload struct {
		Articles []domain.Article `json:"articles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if len(payload.Articles) != 1 || payload.Articles[0].Title != "Bitcoin surges" {
		t.Errorf("articles = %+v", payload.Articles)
	}
}

func TestGetNewsDefaultQuery(t *testing.T) {
	fetcher := &fakeNews{}
	h := NewNewsHandler(fetcher, testLogger())

	rec := httptest.NewRecorder()
	h.GetNews(rec, httptest.NewRequest(http.MethodGet, "/api/news", nil))
	if fetcher.gotQuery != defaultNewsQuery {
		t.Errorf("default query = %q, want %q", fetcher.gotQuery, defaultNewsQuery)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestGetNewsFailureIs502WithEmptyArticles(t *testing.T) {
	fetcher := &fakeNews{err: errors.New("feeds unreachable")}
	h := NewNewsHandler(fetcher, testLogger())

	rec := httptest.NewRecorder()
	h.GetNews(rec, httptest.NewRequest(http.MethodGet, "/api/news", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var payload struct {
		Error    string           `json:"error"`
		Articles []domain.Article `json:"articles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if payload.Error == "" {
		t.Error("error field empty")
	}
	if payload.Articles == nil || len(payload.Articles) != 0 {
		t.Errorf("articles should be an empty array, got %v", payload.Articles)
	}
}

func TestHealthCheck(t *testing.T) {
	markets := &fakeMarkets{snap: domain.MarketSnapshot{
		Markets: []domain.Market{{Name: "A"}}, Status: domain.StatusLive, LastUpdate: 123,
	}}
	trend := &fakeTrending{snap: domain.TrendingSnapshot{Readings: 2, MinReadings: 6}}
	h := NewHealthHandler(markets, trend, testLogger())

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		Status  string `json:"status"`
		Markets struct {
			Status string `json:"status"`
			Count  int    `json:"count"`
		} `json:"markets"`
		Trending struct {
			Readings int `json:"readings"`
		} `json:"trending"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if payload.Status != "ok" || payload.Markets.Status != "live" || payload.Markets.Count != 1 || payload.Trending.Readings != 2 {
		t.Errorf("payload = %+v", payload)
	}
}
