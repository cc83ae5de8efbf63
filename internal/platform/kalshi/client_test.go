package kalshi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mercuryhq/mercuryd/internal/domain"
	"github.com/mercuryhq/mercuryd/internal/platform/httpx"
)

func testClient() *httpx.Client {
	return httpx.New(httpx.Options{RequestsPerSec: 1000})
}

func TestFetchMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("status") != "open" {
			t.Errorf("missing status=open filter: %v", r.URL.Query())
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"markets": [
				{
					"ticker": "BTC100K",
					"title": "Will Bitcoin hit $100k?",
					"status": "active",
					"yes_bid": 57,
					"yes_ask": 59,
					"last_price": 58,
					"volume_24h": 400000,
					"close_time": "2026-12-31T00:00:00Z"
				},
				{
					"ticker": "NOTRADE",
					"title": "No trades yet",
					"status": "open",
					"yes_bid": 30,
					"yes_ask": 40
				},
				{
					"ticker": "DONE",
					"title": "Settled market",
					"status": "settled",
					"last_price": 99
				}
			],
			"cursor": ""
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testClient(), 200)
	listings, err := c.FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("FetchMarkets: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2 (settled market dropped)", len(listings))
	}

	btc := listings[0]
	if btc.Price != 58 {
		t.Errorf("Price = %d, want the last trade 58", btc.Price)
	}
	if btc.Ticker != "BTC100K" || btc.Source != domain.SourceKalshi {
		t.Errorf("identity fields wrong: %+v", btc)
	}
	if btc.Volume != 400000 {
		t.Errorf("Volume = %v, want 400000", btc.Volume)
	}
	if btc.BestBid == nil || *btc.BestBid != 57 || btc.BestAsk == nil || *btc.BestAsk != 59 {
		t.Errorf("bid/ask = %v/%v, want 57/59", btc.BestBid, btc.BestAsk)
	}

	// Without a last trade the price falls back to the bid/ask midpoint.
	if listings[1].Price != 35 {
		t.Errorf("midpoint Price = %d, want 35", listings[1].Price)
	}
}

func TestFetchEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("with_nested_markets") != "true" || q.Get("status") != "open" {
			t.Errorf("missing event query params: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"events": [
				{
					"event_ticker": "ELECTION28",
					"title": "Who wins the 2028 election?",
					"markets": [
						{"ticker": "ELECTION28-B", "yes_sub_title": "Candidate Beta", "status": "active", "last_price": 35, "volume_24h": 100},
						{"ticker": "ELECTION28-A", "yes_sub_title": "Candidate Alpha", "status": "active", "last_price": 44, "volume_24h": 900},
						{"ticker": "ELECTION28-X", "yes_sub_title": "Withdrawn", "status": "closed", "last_price": 1}
					]
				},
				{
					"event_ticker": "SOLO",
					"title": "Single market event?",
					"markets": [
						{"ticker": "SOLO-1", "yes_sub_title": "Yes side", "status": "open", "last_price": 70, "volume_24h": 10}
					]
				}
			],
			"cursor": ""
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testClient(), 200)
	listings, err := c.FetchEvents(context.Background())
	if err != nil {
		t.Fatalf("FetchEvents: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(listings))
	}

	event := listings[0]
	if event.Ticker != "ELECTION28" {
		t.Errorf("event Ticker = %q", event.Ticker)
	}
	if len(event.SubListings) != 2 {
		t.Fatalf("SubListings = %d, want 2 (closed constituent dropped)", len(event.SubListings))
	}
	// Constituents re-ranked by volume, so Alpha leads despite ticker order.
	if event.SubListings[0].Name != "Candidate Alpha" {
		t.Errorf("top constituent = %q, want Candidate Alpha", event.SubListings[0].Name)
	}
	if event.Price != 44 {
		t.Errorf("event Price = %d, want top constituent's 44", event.Price)
	}
	if event.Volume != 1000 {
		t.Errorf("event Volume = %v, want summed 1000", event.Volume)
	}

	// Single open constituent flattens but keeps the event title.
	flat := listings[1]
	if flat.Name != "Single market event?" {
		t.Errorf("flattened Name = %q, want the event title", flat.Name)
	}
	if flat.Ticker != "SOLO-1" || flat.Price != 70 {
		t.Errorf("flattened listing wrong: %+v", flat)
	}
}
