// Package cache holds the background-refreshed snapshots served by the API.
// Each cache owns its data, refreshes it on its own loop, and hands out
// point-in-time copies; handlers never wait on upstreams.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mercuryhq/mercuryd/internal/domain"
	"github.com/mercuryhq/mercuryd/internal/merge"
	"github.com/mercuryhq/mercuryd/internal/metrics"
)

// ListingFetcher produces one batch of raw listings from an upstream.
type ListingFetcher func(ctx context.Context) ([]domain.RawListing, error)

// Feed is one upstream source in merge priority order.
type Feed struct {
	Name  string
	Fetch ListingFetcher
}

// MarketCache merges the upstream feeds into the canonical market list on a
// fixed cadence and publishes the result as an atomic snapshot.
type MarketCache struct {
	feeds        []Feed
	interval     time.Duration
	cycleTimeout time.Duration
	logger       *slog.Logger

	mu       sync.RWMutex
	snapshot domain.MarketSnapshot

	publishMu sync.Mutex
	onPublish []func(domain.MarketSnapshot)
}

// NewMarketCache builds a cache over the given feeds. Feed order is merge
// priority: an earlier feed claims the canonical entry for a name.
func NewMarketCache(feeds []Feed, interval, cycleTimeout time.Duration, logger *slog.Logger) *MarketCache {
	return &MarketCache{
		feeds:        feeds,
		interval:     interval,
		cycleTimeout: cycleTimeout,
		logger:       logger,
		snapshot: domain.MarketSnapshot{
			Markets: []domain.Market{},
			Status:  domain.StatusStarting,
		},
	}
}

// OnPublish registers a callback invoked after every published snapshot.
// Register before Run; callbacks run on the refresh goroutine.
func (c *MarketCache) OnPublish(fn func(domain.MarketSnapshot)) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	c.onPublish = append(c.onPublish, fn)
}

// Snapshot returns the latest published snapshot. Never blocks on a refresh.
// The market slice is rebuilt wholesale each cycle; callers must not mutate it.
func (c *MarketCache) Snapshot() domain.MarketSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Run refreshes the cache until ctx is cancelled. The first cycle starts
// immediately; subsequent cycles start interval after the previous cycle's
// start, or immediately when a cycle overruns the interval.
func (c *MarketCache) Run(ctx context.Context) error {
	c.logger.Info("market cache started", "interval", c.interval, "feeds", len(c.feeds))
	for {
		started := time.Now()
		c.runCycle(ctx)

		delay := c.interval - time.Since(started)
		if delay < 0 {
			delay = 0
		}
		select {
		case <-ctx.Done():
			c.logger.Info("market cache stopped")
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

type fetchResult struct {
	idx      int
	listings []domain.RawListing
	err      error
}

func (c *MarketCache) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("market cycle panic", "panic", r)
		}
	}()

	started := time.Now()

	// Fetch every feed concurrently. The channel is buffered so a feed that
	// misses the cycle deadline can still deliver and let its goroutine exit;
	// we do not cancel stragglers, the next cycle simply runs without them.
	results := make(chan fetchResult, len(c.feeds))
	for i, feed := range c.feeds {
		go func(idx int, f Feed) {
			listings, err := f.Fetch(ctx)
			results <- fetchResult{idx: idx, listings: listings, err: err}
		}(i, feed)
	}

	batches := make([][]domain.RawListing, len(c.feeds))
	var failures []string
	deadline := time.After(c.cycleTimeout)
	pending := len(c.feeds)

collect:
	for pending > 0 {
		select {
		case res := <-results:
			pending--
			if res.err != nil {
				feed := c.feeds[res.idx]
				// Rate limiting and upstream outages are routine; anything
				// else deserves an error-level entry.
				level := slog.LevelError
				if errors.Is(res.err, domain.ErrRateLimited) || errors.Is(res.err, domain.ErrUnavailable) {
					level = slog.LevelWarn
				}
				c.logger.Log(ctx, level, "feed fetch failed", "feed", feed.Name, "error", res.err)
				metrics.RecordFetchError(feed.Name)
				failures = append(failures, feed.Name+": "+res.err.Error())
				continue
			}
			batches[res.idx] = res.listings
		case <-deadline:
			c.logger.Warn("cycle deadline reached", "pending", pending)
			failures = append(failures, "cycle deadline reached")
			break collect
		case <-ctx.Done():
			return
		}
	}

	now := time.Now()
	merged := merge.Merge(now, batches...)

	var polyCount, kalshiCount int
	for i := range merged {
		if merged[i].PolyPrice != nil {
			polyCount++
		}
		if merged[i].KalshiPrice != nil {
			kalshiCount++
		}
	}

	c.mu.Lock()
	prev := c.snapshot
	next := domain.MarketSnapshot{
		Markets:     merged,
		Status:      domain.StatusLive,
		LastUpdate:  now.UnixMilli(),
		PolyCount:   polyCount,
		KalshiCount: kalshiCount,
	}
	if len(failures) > 0 {
		next.Error = strings.Join(failures, "; ")
	}
	if len(merged) == 0 {
		if len(prev.Markets) > 0 {
			// Every source came back empty or failed; keep serving the last
			// good list rather than flashing an empty catalog.
			next.Markets = prev.Markets
			next.LastUpdate = prev.LastUpdate
			next.PolyCount = prev.PolyCount
			next.KalshiCount = prev.KalshiCount
			next.Status = domain.StatusStale
		} else {
			next.Status = domain.StatusError
		}
	}
	c.snapshot = next
	c.mu.Unlock()

	metrics.ObserveCycle("markets", time.Since(started), len(failures) > 0)
	metrics.SetMarketCount(len(next.Markets))
	c.logger.Info("market snapshot published",
		"status", next.Status,
		"markets", len(next.Markets),
		"poly", polyCount,
		"kalshi", kalshiCount,
		"took", time.Since(started).Round(time.Millisecond))

	c.notify(next)
}

func (c *MarketCache) notify(snap domain.MarketSnapshot) {
	c.publishMu.Lock()
	callbacks := c.onPublish
	c.publishMu.Unlock()
	for _, fn := range callbacks {
		fn(snap)
	}
}
