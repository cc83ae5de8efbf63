package merge

import (
	"time"

	"github.com/mercuryhq/mercuryd/internal/domain"
)

// priceWeightFloor keeps near-settled markets from scoring exactly zero.
const priceWeightFloor = 0.05

// PriceWeight is a parabola peaking at price 50 (maximum uncertainty, the
// best charting signal) and falling to the floor at the extremes.
func PriceWeight(price int) float64 {
	dist := (float64(price) - 50) / 50
	w := 1 - dist*dist
	if w < priceWeightFloor {
		return priceWeightFloor
	}
	return w
}

// Score ranks a market for display: raw volume damped by how one-sided its
// price is.
func Score(volume float64, price int) float64 {
	return volume * PriceWeight(price)
}

// TimeframeFor buckets a close timestamp relative to now. A zero end time
// (missing or unparseable upstream) lands in the one-month bucket.
func TimeframeFor(end time.Time, now time.Time) string {
	if end.IsZero() {
		return domain.Timeframe1M
	}
	hours := end.Sub(now).Hours()
	switch {
	case hours < 0.5:
		return domain.Timeframe15M
	case hours < 3:
		return domain.Timeframe1H
	case hours < 168:
		return domain.Timeframe1W
	case hours < 720:
		return domain.Timeframe1M
	default:
		return domain.Timeframe1Y
	}
}
