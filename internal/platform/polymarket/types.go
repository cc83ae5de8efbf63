package polymarket

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mercuryhq/mercuryd/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexFloat unmarshals from a JSON number or a numeric string; the Gamma API
// sends volume and liquidity both ways depending on the endpoint.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(n)
	return nil
}

// --------------------------------------------------------------------------
// Gamma API DTOs
// --------------------------------------------------------------------------

// APIMarket represents a market as returned by the Polymarket Gamma API.
type APIMarket struct {
	ID            string    `json:"id"`
	Question      string    `json:"question"`
	ConditionID   string    `json:"conditionId"`
	Slug          string    `json:"slug"`
	Active        flexBool  `json:"active"`
	Closed        bool      `json:"closed"`
	EndDate       string    `json:"endDate"`
	Volume24Hr    flexFloat `json:"volume24hr"`
	Volume        flexFloat `json:"volume"`
	Liquidity     flexFloat `json:"liquidity"`
	OutcomePrices string    `json:"outcomePrices"` // JSON-encoded: e.g. "[\"0.55\",\"0.45\"]"
	ClobTokenIDs  string    `json:"clobTokenIds"`  // JSON-encoded array of token ids
	BestBid       *float64  `json:"bestBid"`
	BestAsk       *float64  `json:"bestAsk"`
}

// APIEvent represents an event as returned by the Gamma API. An event groups
// one or more related markets.
type APIEvent struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Slug       string      `json:"slug"`
	Active     flexBool    `json:"active"`
	Closed     bool        `json:"closed"`
	EndDate    string      `json:"endDate"`
	Volume24Hr flexFloat   `json:"volume24hr"`
	Liquidity  flexFloat   `json:"liquidity"`
	Markets    []APIMarket `json:"markets"`
}

// tradable reports whether the market is currently open.
func (m *APIMarket) tradable() bool {
	return bool(m.Active) && !m.Closed
}

// yesPrice extracts the first outcome price as an integer percentage.
// Missing or non-numeric prices default to 50, maximum uncertainty.
func (m *APIMarket) yesPrice() int {
	var prices []string
	if err := json.Unmarshal([]byte(m.OutcomePrices), &prices); err != nil || len(prices) == 0 {
		return 50
	}
	p, err := strconv.ParseFloat(prices[0], 64)
	if err != nil {
		return 50
	}
	return clampPct(int(math.Round(p * 100)))
}

// firstTokenID extracts the CLOB token id of the primary outcome.
func (m *APIMarket) firstTokenID() string {
	var ids []string
	if err := json.Unmarshal([]byte(m.ClobTokenIDs), &ids); err != nil || len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func (m *APIMarket) volume() float64 {
	if m.Volume24Hr > 0 {
		return float64(m.Volume24Hr)
	}
	return float64(m.Volume)
}

// ToRawListing converts a flat Gamma market into the common pre-merge shape.
func (m *APIMarket) ToRawListing() domain.RawListing {
	l := domain.RawListing{
		Name:        m.Question,
		Price:       m.yesPrice(),
		Volume:      m.volume(),
		EndDate:     parseEndDate(m.EndDate),
		Liquidity:   float64(m.Liquidity),
		Source:      domain.SourcePolymarket,
		Slug:        m.Slug,
		PolyID:      m.ID,
		ConditionID: m.ConditionID,
		ClobTokenID: m.firstTokenID(),
	}
	if m.BestBid != nil {
		b := clampPct(int(math.Round(*m.BestBid * 100)))
		l.BestBid = &b
	}
	if m.BestAsk != nil {
		a := clampPct(int(math.Round(*m.BestAsk * 100)))
		l.BestAsk = &a
	}
	return l
}

func parseEndDate(s string) time.Time {
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
