package trending

import "testing"

func TestExtractKeywordsCountsAndThreshold(t *testing.T) {
	headlines := []string{
		"Bitcoin surges past record high",
		"Bitcoin rally continues as bitcoin ETFs soar",
		"Bitcoin price hits lowest point this quarter",
	}
	counts := ExtractKeywords(headlines)

	if got := counts["bitcoin"]; got != 4 {
		t.Errorf("bitcoin count = %d, want 4", got)
	}
	// "record" appears only once; below the floor it must be dropped.
	if _, ok := counts["record"]; ok {
		t.Error("keyword below the count floor should be dropped")
	}
}

func TestExtractKeywordsBigrams(t *testing.T) {
	headlines := []string{
		"Fed rate cut looms",
		"Markets expect rate cut",
		"Another rate cut likely",
	}
	counts := ExtractKeywords(headlines)

	if got := counts["rate cut"]; got != 3 {
		t.Errorf("bigram 'rate cut' count = %d, want 3", got)
	}
	if got := counts["rate"]; got != 3 {
		t.Errorf("unigram 'rate' count = %d, want 3", got)
	}
}

func TestExtractKeywordsBigramsDoNotSpanHeadlines(t *testing.T) {
	// "cut looms" would only form if bigrams crossed the headline boundary
	// from "cut" at the end of one headline to "looms" starting the next.
	headlines := []string{
		"Senate votes on budget cut",
		"Looms ahead budget fight continues",
		"Senate votes on budget cut",
		"Looms ahead budget fight continues",
		"Senate votes on budget cut",
		"Looms ahead budget fight continues",
	}
	counts := ExtractKeywords(headlines)
	if _, ok := counts["cut looms"]; ok {
		t.Error("bigram spanned a headline boundary")
	}
}

func TestExtractKeywordsFiltering(t *testing.T) {
	headlines := []string{
		"The AI boom and the 'bitcoin' economy",
		"The AI boom and the 'bitcoin' economy",
		"The AI boom and the 'bitcoin' economy",
	}
	counts := ExtractKeywords(headlines)

	if _, ok := counts["the"]; ok {
		t.Error("stop word survived extraction")
	}
	if _, ok := counts["ai"]; ok {
		t.Error("token shorter than three characters survived extraction")
	}
	// Quote-wrapped token must be trimmed to the bare word.
	if got := counts["bitcoin"]; got != 3 {
		t.Errorf("bitcoin count = %d, want 3 (quotes should be trimmed)", got)
	}
	if _, ok := counts["'bitcoin'"]; ok {
		t.Error("edge punctuation not trimmed from token")
	}
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		kw   string
		want string
	}{
		{"bitcoin", "crypto"},
		{"rate cut", "econ"},
		{"Trump", "politics"},
		{"openai", "ai"},
		{"ukraine ceasefire", "geopolitics"},
		{"super bowl", "sports"},
		{"weather", "general"},
	}
	for _, c := range cases {
		if got := Categorize(c.kw); got != c.want {
			t.Errorf("Categorize(%q) = %q, want %q", c.kw, got, c.want)
		}
	}
}
