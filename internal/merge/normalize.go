package merge

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// NormalizeName folds a market name to its dedup key: lower-cased with every
// non-alphanumeric rune stripped. Two listings with equal normalized names
// are the same logical market.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// fillerWords are dropped from the front of a name when deriving the short
// display form.
var fillerWords = map[string]struct{}{
	"will": {}, "the": {}, "a": {}, "an": {},
}

// ShortName derives the abbreviated display name: leading filler words and a
// trailing question mark dropped, truncated at a word boundary to 24 runes.
func ShortName(name string) string {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(name), "?"))
	words := strings.Fields(s)
	for len(words) > 1 {
		if _, filler := fillerWords[strings.ToLower(words[0])]; !filler {
			break
		}
		words = words[1:]
	}

	const limit = 24
	var b strings.Builder
	for _, w := range words {
		next := len([]rune(w))
		if b.Len() > 0 {
			next++
		}
		if len([]rune(b.String()))+next > limit {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	if b.Len() == 0 && len(words) > 0 {
		// Single word longer than the limit; hard-truncate it.
		r := []rune(words[0])
		if len(r) > limit {
			r = r[:limit]
		}
		return string(r)
	}
	return b.String()
}

// FormatVolume renders a dollar volume the way the dashboard displays it.
func FormatVolume(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.0fK", v/1e3)
	case v <= 0:
		return "$0"
	default:
		return fmt.Sprintf("$%d", int(math.Round(v)))
	}
}
