package domain

import "time"

// Source identifies which upstream catalog a listing came from.
type Source string

const (
	SourcePolymarket Source = "poly"
	SourceKalshi     Source = "kalshi"
	SourceBoth       Source = "both"
)

// CacheStatus is the lifecycle state of a background cache.
type CacheStatus string

const (
	StatusStarting CacheStatus = "starting" // before the first successful cycle
	StatusLive     CacheStatus = "live"     // latest cycle produced markets
	StatusStale    CacheStatus = "stale"    // latest cycle was empty, prior data retained
	StatusError    CacheStatus = "error"    // latest cycle was empty and no prior data exists
)

// Timeframe buckets classify how far out a market resolves.
const (
	Timeframe15M = "15M"
	Timeframe1H  = "1H"
	Timeframe1W  = "1W"
	Timeframe1M  = "1M"
	Timeframe1Y  = "1Y"
)

// RawListing is one market as normalized out of a source fetcher, before the
// merge. Prices are integer percentages (0-100). A listing representing a
// multi-outcome event carries its constituents in SubListings, already sorted
// by the source's own volume ordering.
type RawListing struct {
	Name      string
	Price     int // 0-100, probability of the primary outcome
	Volume    float64
	EndDate   time.Time // zero when the source gave none / unparseable
	BestBid   *int
	BestAsk   *int
	Liquidity float64
	Source    Source

	// Source-specific identifiers.
	Slug        string // Polymarket URL slug
	PolyID      string // Polymarket Gamma market/event id
	ConditionID string // Polymarket condition id
	ClobTokenID string // Polymarket CLOB token id of the primary outcome
	Ticker      string // Kalshi market/event ticker

	SubListings []RawListing // populated for events (>= 2 outcomes)
}

// SubMarket is one constituent outcome of a merged multi-outcome event. JSON
// field names follow the dashboard wire format.
type SubMarket struct {
	Name        string  `json:"name"`
	Price       int     `json:"price"`
	PolyPrice   *int    `json:"polyPrice"`
	KalshiPrice *int    `json:"kalshiPrice"`
	Volume      float64 `json:"_volNum"`
	Slug        string  `json:"slug,omitempty"`
	Ticker      string  `json:"_kalshiTicker,omitempty"`
	ClobTokenID string  `json:"_clobTokenId,omitempty"`
}

// Market is the canonical merged record served to clients. Its identity is the
// normalized (case-folded, alphanumeric-only) form of Name: the merge never
// produces two entries whose normalized names are equal. JSON field names
// match what the dashboard consumes, underscore-prefixed fields included.
type Market struct {
	Name        string  `json:"name"`
	Short       string  `json:"short"`
	Price       int     `json:"price"` // unified price, primary source first
	Vol         string  `json:"vol"`   // formatted, e.g. "$1.2M"
	VolNum      float64 `json:"_volNum"`
	PolyPrice   *int    `json:"polyPrice"`
	KalshiPrice *int    `json:"kalshiPrice"`
	PolyBid     *int    `json:"polyBid"`
	PolyAsk     *int    `json:"polyAsk"`
	KalshiBid   *int    `json:"kalshiBid"`
	KalshiAsk   *int    `json:"kalshiAsk"`
	Timeframe   string  `json:"tf"`
	EndDate     string  `json:"_endDate,omitempty"` // RFC3339, empty when unknown
	Source      Source  `json:"source"`
	Liquidity   float64 `json:"liquidity"`

	Slug        string `json:"slug,omitempty"`
	PolyID      string `json:"_polyId,omitempty"`
	ConditionID string `json:"_conditionId,omitempty"`
	ClobTokenID string `json:"_clobTokenId,omitempty"`
	Ticker      string `json:"_kalshiTicker,omitempty"`

	IsEvent    bool        `json:"isEvent"`
	SubCount   int         `json:"subCount"`
	SubMarkets []SubMarket `json:"subMarkets,omitempty"`

	Score float64 `json:"-"` // ranking score, not part of the wire format
}

// MarketSnapshot is the immutable read-side view published by the market
// cache at the end of each poll cycle.
type MarketSnapshot struct {
	Markets     []Market    `json:"markets"`
	Status      CacheStatus `json:"status"`
	LastUpdate  int64       `json:"lastUpdate"` // ms epoch, 0 before first cycle
	PolyCount   int         `json:"polyCount"`
	KalshiCount int         `json:"kalshiCount"`
	Error       string      `json:"error,omitempty"`
}
