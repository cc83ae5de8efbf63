// Package polymarket fetches market and event catalogs from the Polymarket
// Gamma API and normalizes them into the common pre-merge listing shape.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/mercuryhq/mercuryd/internal/domain"
	"github.com/mercuryhq/mercuryd/internal/platform/httpx"
)

// maxSubListings caps how many constituent markets an event listing carries.
// The source's own volume ordering is preserved; overflow is truncated.
const maxSubListings = 30

// GammaClient is the catalog fetcher for the Polymarket Gamma API.
type GammaClient struct {
	baseURL  string
	http     *httpx.Client
	pageSize int
}

// NewGammaClient creates a Gamma fetcher.
//
// baseURL is the Gamma API root, e.g. "https://gamma-api.polymarket.com".
func NewGammaClient(baseURL string, client *httpx.Client, pageSize int) *GammaClient {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &GammaClient{baseURL: baseURL, http: client, pageSize: pageSize}
}

// FetchEvents returns open multi-outcome events as listings, ordered by the
// API's 24h volume ranking. Events whose open constituent count drops below
// two are flattened to a plain listing; fully closed events are dropped.
func (g *GammaClient) FetchEvents(ctx context.Context) ([]domain.RawListing, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(g.pageSize))
	params.Set("active", "true")
	params.Set("closed", "false")
	params.Set("order", "volume24hr")
	params.Set("ascending", "false")

	body, err := g.http.GetJSON(ctx, g.baseURL+"/events?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: get events: %w", err)
	}

	var events []APIEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode events: %w", err)
	}

	listings := make([]domain.RawListing, 0, len(events))
	for i := range events {
		e := &events[i]
		if !bool(e.Active) || e.Closed {
			continue
		}

		subs := make([]domain.RawListing, 0, len(e.Markets))
		for j := range e.Markets {
			m := &e.Markets[j]
			if !m.tradable() {
				continue
			}
			subs = append(subs, m.ToRawListing())
			if len(subs) == maxSubListings {
				break
			}
		}

		switch {
		case len(subs) == 0:
			continue
		case len(subs) == 1:
			// Single open outcome: flatten to an ordinary market.
			listings = append(listings, subs[0])
		default:
			listings = append(listings, domain.RawListing{
				Name:        e.Title,
				Price:       subs[0].Price,
				Volume:      float64(e.Volume24Hr),
				EndDate:     parseEndDate(e.EndDate),
				Liquidity:   float64(e.Liquidity),
				Source:      domain.SourcePolymarket,
				Slug:        e.Slug,
				PolyID:      e.ID,
				SubListings: subs,
			})
		}
	}
	return listings, nil
}

// FetchMarkets returns open flat markets as listings, ordered by 24h volume.
func (g *GammaClient) FetchMarkets(ctx context.Context) ([]domain.RawListing, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(g.pageSize))
	params.Set("active", "true")
	params.Set("closed", "false")
	params.Set("order", "volume24hr")
	params.Set("ascending", "false")

	body, err := g.http.GetJSON(ctx, g.baseURL+"/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: get markets: %w", err)
	}

	var markets []APIMarket
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode markets: %w", err)
	}

	listings := make([]domain.RawListing, 0, len(markets))
	for i := range markets {
		m := &markets[i]
		if !m.tradable() {
			continue
		}
		listings = append(listings, m.ToRawListing())
	}
	return listings, nil
}
