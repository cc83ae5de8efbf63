package trending

import (
	"fmt"
	"testing"

	"github.com/mercuryhq/mercuryd/internal/domain"
)

func observeN(t *Tracker, counts map[string]int, n int) []domain.Keyword {
	var out []domain.Keyword
	for i := 0; i < n; i++ {
		out = t.Observe(counts)
	}
	return out
}

func find(keywords []domain.Keyword, kw string) (domain.Keyword, bool) {
	for _, k := range keywords {
		if k.Keyword == kw {
			return k, true
		}
	}
	return domain.Keyword{}, false
}

func TestTrackerWarmupIsAlwaysFlat(t *testing.T) {
	tr := NewTracker()

	// Through the sixth reading the keyword has at most five prior readings,
	// below the floor, so no spike may be reported regardless of the jump.
	observeN(tr, map[string]int{"alpha": 5}, 5)
	keywords := tr.Observe(map[string]int{"alpha": 500})

	kw, ok := find(keywords, "alpha")
	if !ok {
		t.Fatal("alpha missing from output")
	}
	if kw.Trend != domain.TrendFlat || kw.SpikePct != 0 {
		t.Errorf("warm-up keyword classified as %s/%d, want flat/0", kw.Trend, kw.SpikePct)
	}
	if kw.Change != 495 {
		t.Errorf("Change = %d, want 495", kw.Change)
	}
}

func TestTrackerSpikeUp(t *testing.T) {
	tr := NewTracker()

	observeN(tr, map[string]int{"alpha": 5}, 6)
	keywords := tr.Observe(map[string]int{"alpha": 40})

	kw, _ := find(keywords, "alpha")
	if kw.Trend != domain.TrendUp {
		t.Fatalf("Trend = %s, want up", kw.Trend)
	}
	// (40-5)/5 * 100
	if kw.SpikePct != 700 {
		t.Errorf("SpikePct = %d, want 700", kw.SpikePct)
	}
	if kw.Count != 40 || kw.Change != 35 {
		t.Errorf("Count/Change = %d/%d, want 40/35", kw.Count, kw.Change)
	}
}

func TestTrackerHighVarianceSuppressesSpike(t *testing.T) {
	tr := NewTracker()

	// Noisy history: mean 30, large stddev. A reading of 55 is more than
	// +75% but inside the sigma gate, so it must stay flat.
	for _, c := range []int{5, 55, 5, 55, 5, 55} {
		tr.Observe(map[string]int{"beta": c})
	}
	keywords := tr.Observe(map[string]int{"beta": 55})

	kw, _ := find(keywords, "beta")
	if kw.Trend == domain.TrendUp {
		t.Error("noisy keyword reported as spiking up")
	}
}

func TestTrackerSpikeDown(t *testing.T) {
	tr := NewTracker()

	observeN(tr, map[string]int{"gamma": 10}, 6)
	keywords := tr.Observe(map[string]int{"gamma": 3})

	kw, _ := find(keywords, "gamma")
	if kw.Trend != domain.TrendDown {
		t.Fatalf("Trend = %s, want down", kw.Trend)
	}
	if kw.SpikePct != -70 {
		t.Errorf("SpikePct = %d, want -70", kw.SpikePct)
	}
}

func TestTrackerGarbageCollectsDeadKeywords(t *testing.T) {
	tr := NewTracker()

	tr.Observe(map[string]int{"fading": 7, "steady": 4})
	if tr.Tracked() != 2 {
		t.Fatalf("Tracked = %d, want 2", tr.Tracked())
	}

	// Six consecutive absent cycles retire the keyword.
	for i := 0; i < 5; i++ {
		tr.Observe(map[string]int{"steady": 4})
		if tr.Tracked() != 2 {
			t.Fatalf("keyword dropped after only %d zero readings", i+1)
		}
	}
	tr.Observe(map[string]int{"steady": 4})
	if tr.Tracked() != 1 {
		t.Errorf("Tracked = %d after zero-run limit, want 1", tr.Tracked())
	}
}

func TestTrackerHistoryCapBoundsSpikeWindow(t *testing.T) {
	// With a cap below the min-history floor, the prior window can never
	// grow large enough, so the keyword stays flat forever.
	tr := NewTracker(WithHistoryCap(4), WithMinHistory(6))

	observeN(tr, map[string]int{"alpha": 5}, 20)
	keywords := tr.Observe(map[string]int{"alpha": 500})

	kw, _ := find(keywords, "alpha")
	if kw.Trend != domain.TrendFlat {
		t.Errorf("Trend = %s, want flat with a capped window", kw.Trend)
	}
}

func TestTrackerReturnsTopKeywordsSorted(t *testing.T) {
	tr := NewTracker()

	counts := make(map[string]int)
	for i := 0; i < 60; i++ {
		counts[fmt.Sprintf("kw%02d", i)] = i + 1
	}
	keywords := tr.Observe(counts)

	if len(keywords) != 50 {
		t.Fatalf("returned %d keywords, want 50", len(keywords))
	}
	for i := 1; i < len(keywords); i++ {
		if keywords[i-1].Count < keywords[i].Count {
			t.Fatalf("keywords not sorted by count desc at %d", i)
		}
	}
	if keywords[0].Count != 60 {
		t.Errorf("top keyword count = %d, want 60", keywords[0].Count)
	}
	// The ten lowest-count keywords fell off the end.
	if _, ok := find(keywords, "kw00"); ok {
		t.Error("lowest-count keyword should not make the top list")
	}
}

func TestTrackerReadings(t *testing.T) {
	tr := NewTracker()
	if tr.Readings() != 0 {
		t.Fatalf("fresh tracker Readings = %d", tr.Readings())
	}
	observeN(tr, map[string]int{"alpha": 1}, 3)
	if tr.Readings() != 3 {
		t.Errorf("Readings = %d, want 3", tr.Readings())
	}
}
