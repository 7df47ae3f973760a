package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/TaylorDurden/rank-everything/internal/domain/evaluations"
)

const (
	// DefaultTTL bounds how long a cached analysis stays valid.
	DefaultTTL = 24 * time.Hour
	// DefaultMaxEntries bounds the cache size before eviction kicks in.
	DefaultMaxEntries = 1000
)

type entry struct {
	result     *evaluations.AnalysisResult
	tokenUsage int
	storedAt   time.Time
}

// Cache is an in-memory, TTL-bounded, capacity-bounded store of analysis
// results keyed by (assetId, templateId, metadataFingerprint). Safe for
// concurrent use.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func New(ttl time.Duration, maxEntries int) *Cache {
	return NewWithClock(ttl, maxEntries, time.Now)
}

// NewWithClock injects the clock, used by tests to step time.
func NewWithClock(ttl time.Duration, maxEntries int, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		entries:    make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        now,
	}
}

func key(assetID, templateID, fingerprint string) string {
	return fmt.Sprintf("ai:%s:%s:%s", assetID, templateID, fingerprint)
}

// Lookup returns the cached result when present and inside the TTL window.
// An expired entry is removed and treated as absent. Hits return a copy so
// callers cannot mutate the cached value through the pointer.
func (c *Cache) Lookup(assetID, templateID, fingerprint string) (*evaluations.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(assetID, templateID, fingerprint)
	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		delete(c.entries, k)
		return nil, false
	}
	r := *e.result
	return &r, true
}

// Store records a result. When the cache is full the oldest 20% of entries
// by stored-at time are evicted first.
func (c *Cache) Store(assetID, templateID, fingerprint string, result *evaluations.AnalysisResult, tokenUsage int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// expired entries do not count toward capacity
	for k, e := range c.entries {
		if c.now().Sub(e.storedAt) > c.ttl {
			delete(c.entries, k)
		}
	}
	if len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key(assetID, templateID, fingerprint)] = entry{
		result:     result,
		tokenUsage: tokenUsage,
		storedAt:   c.now(),
	}
}

// Clear drops every cached result for an asset/template pair, regardless
// of fingerprint.
func (c *Cache) Clear(assetID, templateID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := fmt.Sprintf("ai:%s:%s:", assetID, templateID)
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
}

// Len reports the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldest removes the oldest 20% of max capacity. Caller holds the lock.
func (c *Cache) evictOldest() {
	type aged struct {
		key      string
		storedAt time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{key: k, storedAt: e.storedAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].storedAt.Before(all[j].storedAt) })

	toEvict := c.maxEntries / 5
	if toEvict < 1 {
		toEvict = 1
	}
	if toEvict > len(all) {
		toEvict = len(all)
	}
	for _, a := range all[:toEvict] {
		delete(c.entries, a.key)
	}
}
