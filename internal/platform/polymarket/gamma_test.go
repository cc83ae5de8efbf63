package polymarket

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
		q := r.URL.Query()
		if q.Get("active") != "true" || q.Get("closed") != "false" {
			t.Errorf("missing open-market filters in query: %v", q)
		}
		if q.Get("order") != "volume24hr" || q.Get("ascending") != "false" {
			t.Errorf("missing volume ordering in query: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"id": "101",
				"question": "Will Bitcoin hit $100k?",
				"conditionId": "0xabc",
				"slug": "bitcoin-100k",
				"active": true,
				"closed": false,
				"endDate": "2026-12-31T00:00:00Z",
				"volume24hr": "1250000.5",
				"liquidity": 80000,
				"outcomePrices": "[\"0.615\", \"0.385\"]",
				"clobTokenIds": "[\"tok-yes\", \"tok-no\"]",
				"bestBid": 0.61,
				"bestAsk": 0.62
			},
			{
				"id": "102",
				"question": "Closed market",
				"active": "true",
				"closed": true,
				"outcomePrices": "[\"0.5\"]"
			},
			{
				"id": "103",
				"question": "No prices yet",
				"active": true,
				"closed": false,
				"volume24hr": 10,
				"outcomePrices": ""
			}
		]`))
	}))
	defer srv.Close()

	g := NewGammaClient(srv.URL, testClient(), 100)
	listings, err := g.FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("FetchMarkets: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2 (closed market dropped)", len(listings))
	}

	btc := listings[0]
	if btc.Name != "Will Bitcoin hit $100k?" {
		t.Errorf("Name = %q", btc.Name)
	}
	if btc.Price != 62 {
		t.Errorf("Price = %d, want 62 (0.615 rounded)", btc.Price)
	}
	if btc.Volume != 1250000.5 {
		t.Errorf("Volume = %v, want 1250000.5 from the string field", btc.Volume)
	}
	if btc.ClobTokenID != "tok-yes" {
		t.Errorf("ClobTokenID = %q, want tok-yes", btc.ClobTokenID)
	}
	if btc.BestBid == nil || *btc.BestBid != 61 || btc.BestAsk == nil || *btc.BestAsk != 62 {
		t.Errorf("bid/ask = %v/%v, want 61/62", btc.BestBid, btc.BestAsk)
	}
	if btc.Source != domain.SourcePolymarket {
		t.Errorf("Source = %q", btc.Source)
	}
	if btc.EndDate.IsZero() {
		t.Error("EndDate not parsed")
	}

	// Missing prices default to 50.
	if listings[1].Price != 50 {
		t.Errorf("missing-price listing Price = %d, want 50", listings[1].Price)
	}
}

func TestFetchEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"id": "9",
				"title": "Who wins the 2028 election?",
				"slug": "election-2028",
				"active": true,
				"closed": false,
				"endDate": "2028-11-07T00:00:00Z",
				"volume24hr": 5000000,
				"liquidity": 300000,
				"markets": [
					{"id": "m1", "question": "Candidate Alpha", "active": true, "closed": false, "volume24hr": 3000000, "outcomePrices": "[\"0.40\"]"},
					{"id": "m2", "question": "Candidate Beta", "active": true, "closed": false, "volume24hr": 2000000, "outcomePrices": "[\"0.35\"]"},
					{"id": "m3", "question": "Candidate Closed", "active": true, "closed": true, "outcomePrices": "[\"0.05\"]"}
				]
			},
			{
				"id": "10",
				"title": "Single outcome event",
				"active": true,
				"closed": false,
				"volume24hr": 100,
				"markets": [
					{"id": "m4", "question": "Only open market", "active": true, "closed": false, "volume24hr": 100, "outcomePrices": "[\"0.70\"]"}
				]
			},
			{
				"id": "11",
				"title": "Everything closed",
				"active": true,
				"closed": false,
				"markets": [
					{"id": "m5", "question": "Closed", "active": false, "closed": true, "outcomePrices": "[\"0.5\"]"}
				]
			}
		]`))
	}))
	defer srv.Close()

	g := NewGammaClient(srv.URL, testClient(), 100)
	listings, err := g.FetchEvents(context.Background())
	if err != nil {
		t.Fatalf("FetchEvents: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2 (empty event dropped)", len(listings))
	}

	event := listings[0]
	if event.Name != "Who wins the 2028 election?" {
		t.Errorf("Name = %q", event.Name)
	}
	if len(event.SubListings) != 2 {
		t.Fatalf("SubListings = %d, want 2 (closed constituent dropped)", len(event.SubListings))
	}
	if event.Price != 40 {
		t.Errorf("event Price = %d, want the top constituent's 40", event.Price)
	}
	if event.PolyID != "9" || event.Slug != "election-2028" {
		t.Error("event identifiers not carried")
	}

	// A single open constituent flattens to a plain market.
	flat := listings[1]
	if flat.Name != "Only open market" || len(flat.SubListings) != 0 {
		t.Errorf("single-outcome event not flattened: %+v", flat)
	}
	if flat.Price != 70 {
		t.Errorf("flattened Price = %d, want 70", flat.Price)
	}
}
