// Package apicache implements the time-bounded response cache that sits in
// front of every logical query. Entries live in process memory only; a
// restart always starts cold.
package apicache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lepinkainen/libris/internal/bookmeta"
)

// Default TTLs per query class. Author bibliographies change far less often
// than free-text relevance, and recommendation batches are the most
// expensive to recompute.
const (
	SearchTTL         = 5 * time.Minute
	AuthorTTL         = 10 * time.Minute
	RecommendationTTL = 15 * time.Minute
)

type entry struct {
	records  []bookmeta.Record
	storedAt time.Time
	ttl      time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) > e.ttl
}

// Cache is a mutex-guarded TTL map keyed by derived query keys. It owns its
// entries exclusively: values are copied on Set and on Get so no caller can
// mutate a cached batch in place.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry

	// now is injectable for expiry tests.
	now func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns a copy of the cached batch for key, or ok=false when the key
// is absent or expired. Expired entries are removed lazily on lookup.
func (c *Cache) Get(key string) ([]bookmeta.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		slog.Debug("Cache entry expired", "key", key, "age", c.now().Sub(e.storedAt))
		return nil, false
	}

	slog.Debug("Cache hit", "key", key, "records", len(e.records))
	return bookmeta.CloneBatch(e.records), true
}

// Set stores a copy of the batch under key with the given TTL. Empty
// batches are cached too, bounding how often a fruitless query is retried.
func (c *Cache) Set(key string, records []bookmeta.Record, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		records:  bookmeta.CloneBatch(records),
		storedAt: c.now(),
		ttl:      ttl,
	}
	slog.Debug("Cache set", "key", key, "records", len(records), "ttl", ttl)
}

// Invalidate removes the entry for key, if present.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Sweep removes all expired entries and returns how many were dropped.
// Purely memory hygiene: lazy expiry in Get already guarantees correctness.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("Cache sweep removed expired entries", "count", removed)
	}
	return removed
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}
