package kalshi

import (
	"math"
	"time"

	"github.com/mercuryhq/mercuryd/internal/domain"
)

// --------------------------------------------------------------------------
// Kalshi API DTOs
// --------------------------------------------------------------------------

// APIMarket represents a market as returned by the Kalshi REST API. Prices
// are already integer cents (1-99).
type APIMarket struct {
	Ticker      string  `json:"ticker"`
	EventTicker string  `json:"event_ticker"`
	Title       string  `json:"title"`
	Subtitle    string  `json:"subtitle"`
	YesSubTitle string  `json:"yes_sub_title"`
	Status      string  `json:"status"` // "unopened", "open"/"active", "closed", "settled"
	YesBid      int     `json:"yes_bid"`
	YesAsk      int     `json:"yes_ask"`
	LastPrice   int     `json:"last_price"`
	Volume      int64   `json:"volume"`
	Volume24H   int64   `json:"volume_24h"`
	Liquidity   float64 `json:"liquidity"`
	OpenTime    string  `json:"open_time"`
	CloseTime   string  `json:"close_time"`
}

// APIEvent represents an event with nested markets
// (GET /events?with_nested_markets=true).
type APIEvent struct {
	EventTicker  string      `json:"event_ticker"`
	SeriesTicker string      `json:"series_ticker"`
	Title        string      `json:"title"`
	Category     string      `json:"category"`
	Markets      []APIMarket `json:"markets"`
}

// tradable reports whether the market is currently open for trading.
func (m *APIMarket) tradable() bool {
	return m.Status == "active" || m.Status == "open"
}

// yesPrice returns the market's current price in integer cents. When no trade
// has printed it falls back to the bid/ask midpoint, then to 50.
func (m *APIMarket) yesPrice() int {
	if m.LastPrice > 0 {
		return clampPct(m.LastPrice)
	}
	if m.YesBid > 0 || m.YesAsk > 0 {
		return clampPct(int(math.Round(float64(m.YesBid+m.YesAsk) / 2)))
	}
	return 50
}

// displayName prefers the outcome-level subtitle so nested event markets read
// as "Candidate X" rather than repeating the event question.
func (m *APIMarket) displayName() string {
	if m.YesSubTitle != "" {
		return m.YesSubTitle
	}
	if m.Subtitle != "" {
		return m.Subtitle
	}
	return m.Title
}

func (m *APIMarket) volume() float64 {
	if m.Volume24H > 0 {
		return float64(m.Volume24H)
	}
	return float64(m.Volume)
}

// ToRawListing converts a Kalshi market into the common pre-merge shape.
// asOutcome selects the outcome-level display name for nested event markets.
func (m *APIMarket) ToRawListing(asOutcome bool) domain.RawListing {
	name := m.Title
	if asOutcome {
		name = m.displayName()
	}
	l := domain.RawListing{
		Name:      name,
		Price:     m.yesPrice(),
		Volume:    m.volume(),
		EndDate:   parseCloseTime(m.CloseTime),
		Liquidity: m.Liquidity,
		Source:    domain.SourceKalshi,
		Ticker:    m.Ticker,
	}
	if m.YesBid > 0 {
		b := clampPct(m.YesBid)
		l.BestBid = &b
	}
	if m.YesAsk > 0 {
		a := clampPct(m.YesAsk)
		l.BestAsk = &a
	}
	return l
}

func parseCloseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func clampPct(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
