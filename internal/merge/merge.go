// Package merge reconciles the per-source market catalogs into one
// deduplicated, ranked canonical list.
package merge

import (
	"sort"
	"time"

	"github.com/mercuryhq/mercuryd/internal/domain"
)

// Merge folds listing batches into the canonical market list. Batches are
// processed in the order given, which encodes source priority: a source's
// events batch must precede its flat markets batch so events pre-claim their
// names, and the primary source's batches come first so its prices win the
// unified price field. Lower-priority listings for an already-claimed name
// only fill per-source fields that are still empty.
//
// Listings whose normalized name is empty carry no identity signal; they are
// never claimed or merged and each produces its own entry.
//
// The result is sorted by ranking score, descending, ties keeping insertion
// order.
func Merge(now time.Time, batches ...[]domain.RawListing) []domain.Market {
	claimed := make(map[string]*domain.Market)
	var order []*domain.Market

	for _, batch := range batches {
		for i := range batch {
			l := &batch[i]
			key := NormalizeName(l.Name)

			if key == "" {
				m := newMarket(l)
				order = append(order, m)
				continue
			}

			if existing, ok := claimed[key]; ok {
				mergeListing(existing, l)
				continue
			}

			m := newMarket(l)
			claimed[key] = m
			order = append(order, m)
		}
	}

	markets := make([]domain.Market, len(order))
	for i, m := range order {
		m.Short = shortFor(m)
		m.Score = Score(m.VolNum, m.Price)
		m.Vol = FormatVolume(m.VolNum)
		m.Timeframe = TimeframeFor(endDateOf(m), now)
		markets[i] = *m
	}

	sort.SliceStable(markets, func(a, b int) bool {
		return markets[a].Score > markets[b].Score
	})
	return markets
}

// newMarket builds a canonical market claimed by a single listing.
func newMarket(l *domain.RawListing) *domain.Market {
	m := &domain.Market{
		Name:      l.Name,
		Price:     l.Price,
		VolNum:    l.Volume,
		Source:    l.Source,
		Liquidity: l.Liquidity,
	}
	if !l.EndDate.IsZero() {
		m.EndDate = l.EndDate.UTC().Format(time.RFC3339)
	}

	switch l.Source {
	case domain.SourcePolymarket:
		p := l.Price
		m.PolyPrice = &p
		m.PolyBid = l.BestBid
		m.PolyAsk = l.BestAsk
		m.Slug = l.Slug
		m.PolyID = l.PolyID
		m.ConditionID = l.ConditionID
		m.ClobTokenID = l.ClobTokenID
	case domain.SourceKalshi:
		p := l.Price
		m.KalshiPrice = &p
		m.KalshiBid = l.BestBid
		m.KalshiAsk = l.BestAsk
		m.Ticker = l.Ticker
	}

	if len(l.SubListings) > 0 {
		m.IsEvent = true
		m.SubMarkets = make([]domain.SubMarket, 0, len(l.SubListings))
		for j := range l.SubListings {
			m.SubMarkets = append(m.SubMarkets, newSubMarket(&l.SubListings[j]))
		}
		m.SubCount = len(m.SubMarkets)
	}
	return m
}

func newSubMarket(l *domain.RawListing) domain.SubMarket {
	s := domain.SubMarket{
		Name:        l.Name,
		Price:       l.Price,
		Volume:      l.Volume,
		Slug:        l.Slug,
		Ticker:      l.Ticker,
		ClobTokenID: l.ClobTokenID,
	}
	p := l.Price
	switch l.Source {
	case domain.SourcePolymarket:
		s.PolyPrice = &p
	case domain.SourceKalshi:
		s.KalshiPrice = &p
	}
	return s
}

// mergeListing folds a lower-priority listing onto an already-claimed market.
// Only per-source fields still empty on the target are filled; fields set by
// a higher-priority pass are never overwritten.
func mergeListing(m *domain.Market, l *domain.RawListing) {
	switch l.Source {
	case domain.SourcePolymarket:
		if m.PolyPrice == nil {
			p := l.Price
			m.PolyPrice = &p
			m.PolyBid = l.BestBid
			m.PolyAsk = l.BestAsk
		}
		if m.Slug == "" {
			m.Slug = l.Slug
		}
		if m.PolyID == "" {
			m.PolyID = l.PolyID
		}
		if m.ConditionID == "" {
			m.ConditionID = l.ConditionID
		}
		if m.ClobTokenID == "" {
			m.ClobTokenID = l.ClobTokenID
		}
	case domain.SourceKalshi:
		if m.KalshiPrice == nil {
			p := l.Price
			m.KalshiPrice = &p
			m.KalshiBid = l.BestBid
			m.KalshiAsk = l.BestAsk
		}
		if m.Ticker == "" {
			m.Ticker = l.Ticker
		}
	}

	if m.Source != l.Source {
		m.Source = domain.SourceBoth
	}
	if m.Liquidity == 0 {
		m.Liquidity = l.Liquidity
	}
	if m.EndDate == "" && !l.EndDate.IsZero() {
		m.EndDate = l.EndDate.UTC().Format(time.RFC3339)
	}

	if len(l.SubListings) > 0 {
		mergeSubMarkets(m, l.SubListings)
	}
}

// mergeSubMarkets reconciles an incoming event's constituents onto an
// existing market by the same normalized-name rule used at the top level:
// matches gain the secondary source's price, the rest are appended.
func mergeSubMarkets(m *domain.Market, incoming []domain.RawListing) {
	index := make(map[string]int, len(m.SubMarkets))
	for i := range m.SubMarkets {
		key := NormalizeName(m.SubMarkets[i].Name)
		if key == "" {
			continue
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	for j := range incoming {
		in := &incoming[j]
		key := NormalizeName(in.Name)
		if key != "" {
			if i, ok := index[key]; ok {
				fillSubPrice(&m.SubMarkets[i], in)
				continue
			}
		}
		m.SubMarkets = append(m.SubMarkets, newSubMarket(in))
		if key != "" {
			index[key] = len(m.SubMarkets) - 1
		}
	}

	m.IsEvent = true
	m.SubCount = len(m.SubMarkets)
}

func fillSubPrice(s *domain.SubMarket, in *domain.RawListing) {
	p := in.Price
	switch in.Source {
	case domain.SourcePolymarket:
		if s.PolyPrice == nil {
			s.PolyPrice = &p
		}
		if s.Slug == "" {
			s.Slug = in.Slug
		}
		if s.ClobTokenID == "" {
			s.ClobTokenID = in.ClobTokenID
		}
	case domain.SourceKalshi:
		if s.KalshiPrice == nil {
			s.KalshiPrice = &p
		}
		if s.Ticker == "" {
			s.Ticker = in.Ticker
		}
	}
}

// shortFor prefers the Kalshi ticker as the abbreviated name; markets known
// only to Polymarket get a word-boundary truncation of the question.
func shortFor(m *domain.Market) string {
	if m.Ticker != "" {
		return m.Ticker
	}
	return ShortName(m.Name)
}

func endDateOf(m *domain.Market) time.Time {
	if m.EndDate == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, m.EndDate)
	if err != nil {
		return time.Time{}
	}
	return t
}
