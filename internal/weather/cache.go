package weather

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultCacheTTL is how long a fetched reading is trusted.
const DefaultCacheTTL = 6 * time.Hour

// CacheEntry is a reading stored under a location+date key.
type CacheEntry struct {
	Key       string
	Reading   Reading
	FetchedAt time.Time
}

// CacheStatus describes the age of one cache entry.
type CacheStatus struct {
	Key        string `json:"key"`
	AgeMinutes int    `json:"ageMinutes"`
}

// Cache is a concurrency-safe, time-bounded store of readings. Expired
// entries are ignored on read and removed by PurgeExpired.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

// NewCache creates a Cache. A nil clock uses real time and a non-positive
// ttl falls back to DefaultCacheTTL.
func NewCache(ttl time.Duration, clock clockwork.Clock) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[string]CacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// CacheKey builds the composite key for a (location, date) pair.
func CacheKey(location string, date time.Time) string {
	return strings.TrimSpace(location) + "_" + date.UTC().Format(time.RFC3339)
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the reading under key if it is younger than the TTL.
func (c *Cache) Get(key string) (Reading, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Reading{}, false
	}
	// An entry without a sample time was never a valid reading.
	if e.Reading.SampledAt.IsZero() || e.FetchedAt.IsZero() {
		return Reading{}, false
	}
	if c.clock.Since(e.FetchedAt) >= c.ttl {
		return Reading{}, false
	}
	return e.Reading, true
}

// Put stores r under key with the current time as fetch time.
func (c *Cache) Put(key string, r Reading) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = CacheEntry{Key: key, Reading: r, FetchedAt: c.clock.Now()}
}

// PurgeExpired removes every entry older than the TTL and reports how many
// were removed.
func (c *Cache) PurgeExpired() int {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.FetchedAt) > c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Status lists all entries sorted by key.
func (c *Cache) Status() []CacheStatus {
	now := c.clock.Now()

	c.mu.RLock()
	out := make([]CacheStatus, 0, len(c.entries))
	for k, e := range c.entries {
		out = append(out, CacheStatus{
			Key:        k,
			AgeMinutes: int(now.Sub(e.FetchedAt).Round(time.Minute) / time.Minute),
		})
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
