// Package cache provides translation caching implementations.
package cache

import "time"

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	// Get retrieves a cached translation. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a translation for ttl. A ttl of 0 uses the cache default.
	Set(key string, value string, ttl time.Duration) error
}
