package coverart

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of covers kept when no size is configured.
const DefaultCacheSize = 100

// Cache is a bounded LRU map from cover URL to processed image bytes.
//
// Get promotes an entry to most-recently-used; Add evicts the least
// recently used entry once the cache is full. Cache is safe for concurrent
// use.
type Cache struct {
	entries *lru.Cache[string, []byte]
}

// NewCache creates a cache holding at most size entries. Sizes below 1
// fall back to DefaultCacheSize.
func NewCache(size int) *Cache {
	if size < 1 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		// only returned for non-positive sizes
		panic(err)
	}
	return &Cache{entries: entries}
}

// Get returns the bytes stored for url and marks the entry as recently used.
func (c *Cache) Get(url string) ([]byte, bool) {
	return c.entries.Get(url)
}

// Contains reports whether url is cached without touching its recency.
func (c *Cache) Contains(url string) bool {
	return c.entries.Contains(url)
}

// Add stores data for url. It reports whether an older entry was evicted.
func (c *Cache) Add(url string, data []byte) (evicted bool) {
	return c.entries.Add(url, data)
}

// Len returns the number of cached covers.
func (c *Cache) Len() int { return c.entries.Len() }

// Keys returns the cached URLs from oldest to newest.
func (c *Cache) Keys() []string { return c.entries.Keys() }

// Purge removes every entry.
func (c *Cache) Purge() { c.entries.Purge() }
