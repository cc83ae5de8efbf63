// Package kalshi fetches market and event catalogs from the public Kalshi
// trade API and normalizes them into the common pre-merge listing shape.
package kalshi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/mercuryhq/mercuryd/internal/domain"
	"github.com/mercuryhq/mercuryd/internal/platform/httpx"
)

const maxSubListings = 30

// Client is the catalog fetcher for the Kalshi REST API. Market-data
// endpoints are public; no request signing is required.
type Client struct {
	baseURL  string
	http     *httpx.Client
	pageSize int
}

// NewClient creates a Kalshi fetcher.
//
// baseURL is the API root, e.g. "https://api.elections.kalshi.com/trade-api/v2".
func NewClient(baseURL string, client *httpx.Client, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = 200
	}
	return &Client{baseURL: baseURL, http: client, pageSize: pageSize}
}

// FetchEvents returns open events with at least two open constituent markets
// as event listings; events with exactly one open market are flattened.
func (c *Client) FetchEvents(ctx context.Context) ([]domain.RawListing, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("status", "open")
	params.Set("with_nested_markets", "true")

	body, err := c.http.GetJSON(ctx, c.baseURL+"/events?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("kalshi: get events: %w", err)
	}

	var resp struct {
		Events []APIEvent `json:"events"`
		Cursor string     `json:"cursor"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("kalshi: decode events: %w", err)
	}

	listings := make([]domain.RawListing, 0, len(resp.Events))
	for i := range resp.Events {
		e := &resp.Events[i]

		subs := make([]domain.RawListing, 0, len(e.Markets))
		for j := range e.Markets {
			m := &e.Markets[j]
			if !m.tradable() {
				continue
			}
			subs = append(subs, m.ToRawListing(true))
		}
		// The nested markets arrive in ticker order; rank by the source's
		// volume before truncating, mirroring the Gamma event ordering.
		sort.SliceStable(subs, func(a, b int) bool { return subs[a].Volume > subs[b].Volume })
		if len(subs) > maxSubListings {
			subs = subs[:maxSubListings]
		}

		switch {
		case len(subs) == 0:
			continue
		case len(subs) == 1:
			flat := subs[0]
			flat.Name = e.Title
			listings = append(listings, flat)
		default:
			var vol float64
			end := subs[0].EndDate
			for _, s := range subs {
				vol += s.Volume
				if end.IsZero() || (!s.EndDate.IsZero() && s.EndDate.Before(end)) {
					end = s.EndDate
				}
			}
			listings = append(listings, domain.RawListing{
				Name:        e.Title,
				Price:       subs[0].Price,
				Volume:      vol,
				EndDate:     end,
				Source:      domain.SourceKalshi,
				Ticker:      e.EventTicker,
				SubListings: subs,
			})
		}
	}
	return listings, nil
}

// FetchMarkets returns open flat markets as listings.
func (c *Client) FetchMarkets(ctx context.Context) ([]domain.RawListing, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("status", "open")

	body, err := c.http.GetJSON(ctx, c.baseURL+"/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("kalshi: get markets: %w", err)
	}

	var resp struct {
		Markets []APIMarket `json:"markets"`
		Cursor  string      `json:"cursor"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("kalshi: decode markets: %w", err)
	}

	listings := make([]domain.RawListing, 0, len(resp.Markets))
	for i := range resp.Markets {
		m := &resp.Markets[i]
		if !m.tradable() {
			continue
		}
		listings = append(listings, m.ToRawListing(false))
	}
	return listings, nil
}
