// Package trending extracts keywords from news headlines and tracks their
// counts across cycles to flag statistically significant spikes.
package trending

import (
	"regexp"
	"strings"
)

const (
	minTokenLen = 3
	// minKeywordCount is the floor below which a keyword is discarded for
	// the cycle rather than tracked at zero.
	minKeywordCount = 3
)

var wordPattern = regexp.MustCompile(`[A-Za-z'\-]+`)

// stopWords filters headline noise before counting.
var stopWords = buildStopWords(
	"the a an and or but in on at to for of is it that this with from by as be are was were " +
		"will can has have had not no do does did so if its he she they we you his her my your our " +
		"their than more most very also been about into over such what which who how when where all " +
		"each new after says said could would should may first one two will just get set still even " +
		"much many these those out up per day year time some other being between through during before " +
		"after against under here there why next back last own any us them make made like know take " +
		"help try use let big top need way well long full part great think come look good high going " +
		"want give find tell work call both few every keep same another while must show old again off " +
		"number since right change turn point small end move follow act began begin lead left late " +
		"might put run does plan state world week month today report according data key things people " +
		"news now man won loss amid over via near")

func buildStopWords(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// tokenize splits one headline into lower-cased filtered tokens: runs of
// letters, apostrophes, and hyphens, with edge punctuation trimmed, minimum
// three characters, stop words removed.
func tokenize(headline string) []string {
	words := wordPattern.FindAllString(headline, -1)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		t := strings.Trim(strings.ToLower(w), "'-")
		if len(t) < minTokenLen {
			continue
		}
		if _, stop := stopWords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// ExtractKeywords counts unigrams and adjacent-pair bigrams across a batch of
// headlines. Bigrams never span headline boundaries. Keywords appearing fewer
// than three times in the batch are dropped entirely.
func ExtractKeywords(headlines []string) map[string]int {
	counts := make(map[string]int)
	for _, h := range headlines {
		tokens := tokenize(h)
		for _, t := range tokens {
			counts[t]++
		}
		for i := 0; i+1 < len(tokens); i++ {
			counts[tokens[i]+" "+tokens[i+1]]++
		}
	}
	for kw, c := range counts {
		if c < minKeywordCount {
			delete(counts, kw)
		}
	}
	return counts
}
