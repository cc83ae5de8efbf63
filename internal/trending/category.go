package trending

import (
	"regexp"
	"strings"
)

// categoryRule maps a keyword pattern to a category. Rules are checked in
// order; the first match wins.
type categoryRule struct {
	name    string
	pattern *regexp.Regexp
}

var categoryRules = []categoryRule{
	{"crypto", regexp.MustCompile(`bitcoin|btc|crypto|ethereum|eth|coin|defi|blockchain`)},
	{"politics", regexp.MustCompile(`trump|election|congress|senate|democrat|republican|politic|vote|biden|president|gop`)},
	{"econ", regexp.MustCompile(`fed\b|rate|inflation|cpi|gdp|recession|treasury|economy|tariff|trade war|jobs`)},
	{"ai", regexp.MustCompile(`nvidia|openai|gpt|claude|artificial|intelligence|ai\b`)},
	{"geopolitics", regexp.MustCompile(`ukraine|china|taiwan|iran|nato|war|ceasefire|russia|missile|military`)},
	{"sports", regexp.MustCompile(`nba|nfl|super bowl|world cup|sport|mlb|soccer|football`)},
}

// Categorize assigns a keyword to its topic bucket, defaulting to "general".
func Categorize(keyword string) string {
	k := strings.ToLower(keyword)
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(k) {
			return rule.name
		}
	}
	return "general"
}
