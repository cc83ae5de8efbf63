package proxy

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResponseCache stores recent upstream responses keyed by full URL.
type ResponseCache interface {
	Get(ctx context.Context, key string) (Cached, bool)
	Set(ctx context.Context, key string, resp Cached, ttl time.Duration)
}

// Cached is one stored upstream response.
type Cached struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type memoryEntry struct {
	resp    Cached
	expires time.Time
}

// MemoryCache is the default in-process response cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Cached, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		return Cached{}, false
	}
	return entry.resp, true
}

func (c *MemoryCache) Set(_ context.Context, key string, resp Cached, ttl time.Duration) {
	now := time.Now()
	c.mu.Lock()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = memoryEntry{resp: resp, expires: now.Add(ttl)}
	c.mu.Unlock()
}

// RedisCache shares the response cache across instances via Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps an existing Redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, prefix: "mercury:proxy:"}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Cached, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return Cached{}, false
	}
	var resp Cached
	if err := json.Unmarshal(data, &resp); err != nil {
		return Cached{}, false
	}
	return resp, true
}

func (c *RedisCache) Set(ctx context.Context, key string, resp Cached, ttl time.Duration) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	// Best effort: a failed write just means the next request refetches.
	c.client.Set(ctx, c.prefix+key, data, ttl)
}
