package domain

// Trend direction of a keyword's current reading against its history.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// Keyword is one trending keyword (unigram or bigram) with its current cycle
// reading and spike classification. Derived each cycle from the rolling
// history, never stored.
type Keyword struct {
	Keyword  string `json:"keyword"`
	Count    int    `json:"count"`
	Change   int    `json:"change"` // delta from the previous reading
	Trend    Trend  `json:"trend"`
	SpikePct int    `json:"spikePct"`
	Category string `json:"category"`
}

// Article is a news headline as returned by the RSS feed translation.
type Article struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	PubDate string `json:"pubDate"`
	Source  string `json:"source"`
}

// TrendingSnapshot is the read-side view published by the trending cache.
type TrendingSnapshot struct {
	Keywords    []Keyword `json:"keywords"`
	LastUpdate  int64     `json:"lastUpdate"` // ms epoch, 0 before first cycle
	Readings    int       `json:"readings"`   // completed cycles so far
	MinReadings int       `json:"minReadings"`
}
