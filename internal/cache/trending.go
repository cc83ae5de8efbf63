package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mercuryhq/mercuryd/internal/domain"
	"github.com/mercuryhq/mercuryd/internal/metrics"
	"github.com/mercuryhq/mercuryd/internal/trending"
)

// HeadlineFetcher returns the current set of deduplicated headlines.
type HeadlineFetcher func(ctx context.Context) ([]string, error)

// TrendingCache runs the keyword pipeline on its own cadence: fetch
// headlines, extract keywords, feed the tracker, publish the top keywords.
type TrendingCache struct {
	fetch    HeadlineFetcher
	tracker  *trending.Tracker
	interval time.Duration
	logger   *slog.Logger

	mu       sync.RWMutex
	snapshot domain.TrendingSnapshot

	publishMu sync.Mutex
	onPublish []func(domain.TrendingSnapshot)
}

// NewTrendingCache builds a trending cache over the given headline source.
func NewTrendingCache(fetch HeadlineFetcher, tracker *trending.Tracker, interval time.Duration, logger *slog.Logger) *TrendingCache {
	return &TrendingCache{
		fetch:    fetch,
		tracker:  tracker,
		interval: interval,
		logger:   logger,
		snapshot: domain.TrendingSnapshot{
			Keywords:    []domain.Keyword{},
			MinReadings: tracker.MinHistory(),
		},
	}
}

// OnPublish registers a callback invoked after every published snapshot.
// Register before Run; callbacks run on the refresh goroutine.
func (c *TrendingCache) OnPublish(fn func(domain.TrendingSnapshot)) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	c.onPublish = append(c.onPublish, fn)
}

// Snapshot returns the latest published snapshot. Never blocks on a refresh.
func (c *TrendingCache) Snapshot() domain.TrendingSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Run refreshes the cache until ctx is cancelled, same pacing as the market
// cache: first cycle immediately, then interval measured start to start.
func (c *TrendingCache) Run(ctx context.Context) error {
	c.logger.Info("trending cache started", "interval", c.interval)
	for {
		started := time.Now()
		c.runCycle(ctx)

		delay := c.interval - time.Since(started)
		if delay < 0 {
			delay = 0
		}
		select {
		case <-ctx.Done():
			c.logger.Info("trending cache stopped")
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *TrendingCache) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("trending cycle panic", "panic", r)
		}
	}()

	started := time.Now()

	headlines, err := c.fetch(ctx)
	if err != nil {
		// Skip the reading entirely: feeding an empty cycle into the tracker
		// would register a false dip for every keyword.
		c.logger.Warn("headline fetch failed", "error", err)
		metrics.RecordFetchError("news")
		metrics.ObserveCycle("trending", time.Since(started), true)
		return
	}

	counts := trending.ExtractKeywords(headlines)
	keywords := c.tracker.Observe(counts)

	next := domain.TrendingSnapshot{
		Keywords:    keywords,
		LastUpdate:  time.Now().UnixMilli(),
		Readings:    c.tracker.Readings(),
		MinReadings: c.tracker.MinHistory(),
	}

	c.mu.Lock()
	c.snapshot = next
	c.mu.Unlock()

	metrics.ObserveCycle("trending", time.Since(started), false)
	metrics.SetKeywordCounts(len(keywords), c.tracker.Tracked())
	c.logger.Info("trending snapshot published",
		"headlines", len(headlines),
		"keywords", len(keywords),
		"readings", next.Readings,
		"took", time.Since(started).Round(time.Millisecond))

	c.notify(next)
}

func (c *TrendingCache) notify(snap domain.TrendingSnapshot) {
	c.publishMu.Lock()
	callbacks := c.onPublish
	c.publishMu.Unlock()
	for _, fn := range callbacks {
		fn(snap)
	}
}
