package trending

import (
	"math"
	"sort"

	"github.com/mercuryhq/mercuryd/internal/domain"
)

// Tracker defaults.
const (
	// DefaultHistoryCap bounds each keyword's rolling history: 288 readings,
	// about 24h at a five-minute cadence.
	DefaultHistoryCap = 288
	// DefaultMinHistory is how many prior readings a keyword needs before a
	// spike may be reported.
	DefaultMinHistory = 6
	// zeroRunLimit removes a keyword once this many trailing readings are
	// all zero.
	zeroRunLimit = 6
	// topKeywords caps the published keyword list.
	topKeywords = 50

	spikeUpPct   = 75
	spikeDownPct = -40
	sigmaGate    = 1.5
	sigmaFloor   = 0.5
)

// Tracker keeps a bounded rolling count history per keyword and classifies
// each cycle's readings. Not safe for concurrent use; the owning cache
// serializes access.
type Tracker struct {
	capacity   int
	minHistory int
	history    map[string][]int // oldest first
	readings   int
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithHistoryCap overrides the rolling history bound.
func WithHistoryCap(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.capacity = n
		}
	}
}

// WithMinHistory overrides the prior-readings floor for spike detection.
func WithMinHistory(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.minHistory = n
		}
	}
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		capacity:   DefaultHistoryCap,
		minHistory: DefaultMinHistory,
		history:    make(map[string][]int),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Readings reports how many cycles have been observed.
func (t *Tracker) Readings() int { return t.readings }

// MinHistory reports the prior-readings floor.
func (t *Tracker) MinHistory() int { return t.minHistory }

// Tracked reports how many keywords currently hold rolling history.
func (t *Tracker) Tracked() int { return len(t.history) }

// Observe appends one cycle's keyword counts, decays keywords absent this
// cycle with a zero reading, garbage-collects dead keywords, and returns the
// top keywords by current count with their spike classification.
func (t *Tracker) Observe(counts map[string]int) []domain.Keyword {
	// Decay first: every tracked keyword not seen this cycle reads zero.
	for kw, h := range t.history {
		if _, seen := counts[kw]; seen {
			continue
		}
		h = appendBounded(h, 0, t.capacity)
		if trailingZeros(h) >= zeroRunLimit {
			delete(t.history, kw)
			continue
		}
		t.history[kw] = h
	}

	for kw, c := range counts {
		t.history[kw] = appendBounded(t.history[kw], c, t.capacity)
	}
	t.readings++

	keywords := make([]domain.Keyword, 0, len(counts))
	for kw := range counts {
		keywords = append(keywords, t.classify(kw))
	}
	sort.SliceStable(keywords, func(a, b int) bool {
		if keywords[a].Count != keywords[b].Count {
			return keywords[a].Count > keywords[b].Count
		}
		return keywords[a].Keyword < keywords[b].Keyword
	})
	if len(keywords) > topKeywords {
		keywords = keywords[:topKeywords]
	}
	return keywords
}

// classify builds the trend record for one keyword from its history. The
// current reading is excluded from the baseline statistics. A keyword with
// fewer prior readings than the floor is always flat with a zero spike:
// insufficient history must never be reported as a trend.
func (t *Tracker) classify(kw string) domain.Keyword {
	h := t.history[kw]
	current := h[len(h)-1]
	prior := h[:len(h)-1]

	rec := domain.Keyword{
		Keyword:  kw,
		Count:    current,
		Trend:    domain.TrendFlat,
		Category: Categorize(kw),
	}
	if len(prior) > 0 {
		rec.Change = current - prior[len(prior)-1]
	}
	if len(prior) < t.minHistory {
		return rec
	}

	avg, stddev := meanStddev(prior)
	spikePct := (float64(current) - avg) / math.Max(avg, 1) * 100
	rec.SpikePct = int(math.Round(spikePct))

	switch {
	case spikePct > spikeUpPct && float64(current) > avg+sigmaGate*math.Max(stddev, sigmaFloor):
		rec.Trend = domain.TrendUp
	case spikePct < spikeDownPct:
		rec.Trend = domain.TrendDown
	}
	return rec
}

func appendBounded(h []int, v, capacity int) []int {
	h = append(h, v)
	if len(h) > capacity {
		h = h[len(h)-capacity:]
	}
	return h
}

func trailingZeros(h []int) int {
	n := 0
	for i := len(h) - 1; i >= 0; i-- {
		if h[i] != 0 {
			break
		}
		n++
	}
	return n
}

func meanStddev(vals []int) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range vals {
		sum += float64(v)
	}
	mean := sum / float64(len(vals))

	var sq float64
	for _, v := range vals {
		d := float64(v) - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(vals)))
}
