package cache

import (
	"sync"
	"time"
)

// cacheEntry holds a cached value with its expiry time.
type cacheEntry struct {
	value     string
	expiresAt time.Time // zero means never
}

func (e cacheEntry) valid(now time.Time) bool {
	return e.expiresAt.IsZero() || now.Before(e.expiresAt)
}

// InMemoryCache is a thread-safe in-memory cache with TTL support.
// It is the default cache of a Translator.
type InMemoryCache struct {
	cache map[string]cacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

// MemoryOption configures an InMemoryCache.
type MemoryOption func(*InMemoryCache)

// WithClock replaces the time source used for expiry checks.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *InMemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewInMemoryCache creates a new in-memory cache with the specified default TTL.
// If ttlSeconds is 0 or negative, entries stored without an explicit TTL never expire.
func NewInMemoryCache(ttlSeconds int, opts ...MemoryOption) *InMemoryCache {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}
	c := &InMemoryCache{
		cache: make(map[string]cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a value from the cache.
// Returns the value and true if found and not expired, empty string and false otherwise.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}

	now := c.now()
	if !entry.valid(now) {
		c.mu.Lock()
		// Another writer may have refreshed the entry meanwhile
		if cur, ok := c.cache[key]; ok && !cur.valid(now) {
			delete(c.cache, key)
		}
		c.mu.Unlock()
		return "", false
	}

	return entry.value, true
}

// Set stores a value in the cache.
func (c *InMemoryCache) Set(key string, value string, ttl time.Duration) error {
	c.setUntil(key, value, c.expiry(ttl))
	return nil
}

// SetUntil stores a value that expires at the given time. A zero time never expires.
func (c *InMemoryCache) SetUntil(key string, value string, expiresAt time.Time) {
	c.setUntil(key, value, expiresAt)
}

func (c *InMemoryCache) setUntil(key, value string, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = cacheEntry{
		value:     value,
		expiresAt: expiresAt,
	}
}

func (c *InMemoryCache) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = c.ttl
	}
	if ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(ttl)
}

// Len returns the number of entries in the cache (including expired ones).
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Clear removes all entries from the cache.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cacheEntry)
}

// Purge removes expired entries and returns how many were dropped.
func (c *InMemoryCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.cache {
		if !entry.valid(now) {
			delete(c.cache, key)
			removed++
		}
	}
	return removed
}

// Entry is a snapshot of a live cache entry.
type Entry struct {
	Value     string
	ExpiresAt time.Time
}

// Entries returns all non-expired entries.
// This is used for cache export.
func (c *InMemoryCache) Entries() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]Entry, len(c.cache))
	now := c.now()

	for key, entry := range c.cache {
		if !entry.valid(now) {
			continue
		}
		result[key] = Entry{Value: entry.value, ExpiresAt: entry.expiresAt}
	}

	return result
}

// Verify InMemoryCache implements TranslationCache
var _ TranslationCache = (*InMemoryCache)(nil)
