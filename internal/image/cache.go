package image

import (
	"fmt"
	"os"
	"sync"

	"github.com/gogpu/chanavg"
)

// DecodeCache keeps decoded images keyed by path, size and modification
// time, so an unchanged file is decoded once. When the cache holds more
// than its limit, the least recently used entries are evicted.
//
// Cached planes are shared: callers must not modify them.
// DecodeCache is safe for concurrent use.
type DecodeCache struct {
	mu      sync.Mutex
	entries map[cacheKey]*cacheEntry
	limit   int
	tick    int64 // monotonic access counter
	hits    uint64
	misses  uint64
}

type cacheKey struct {
	path    string
	size    int64
	modTime int64
}

type cacheEntry struct {
	planes *chanavg.Planar
	info   Info
	atime  int64
}

// CacheStats contains decode cache statistics.
type CacheStats struct {
	Len    int
	Hits   uint64
	Misses uint64
}

// NewDecodeCache creates a cache holding at most limit images.
// A limit below 1 is treated as 1.
func NewDecodeCache(limit int) *DecodeCache {
	return &DecodeCache{
		entries: make(map[cacheKey]*cacheEntry),
		limit:   max(limit, 1),
	}
}

// Load returns the decoded image at path, decoding it only when the file
// changed since the last call.
func (c *DecodeCache) Load(path string) (*chanavg.Planar, Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("image: stat: %w", err)
	}
	key := cacheKey{path: path, size: st.Size(), modTime: st.ModTime().UnixNano()}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.tick++
		e.atime = c.tick
		c.hits++
		c.mu.Unlock()
		return e.planes, e.info, nil
	}
	c.misses++
	c.mu.Unlock()

	// Decode outside the lock; a racing decode of the same file is harmless.
	planes, info, err := Load(path)
	if err != nil {
		return nil, Info{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Older versions of the same file are stale.
	for k := range c.entries {
		if k.path == path && k != key {
			delete(c.entries, k)
		}
	}

	c.tick++
	c.entries[key] = &cacheEntry{planes: planes, info: info, atime: c.tick}
	c.evict()

	return planes, info, nil
}

// evict removes least recently used entries until the cache fits its limit.
// Caller must hold c.mu.
func (c *DecodeCache) evict() {
	for len(c.entries) > c.limit {
		var (
			oldest cacheKey
			atime  int64 = -1
		)
		for k, e := range c.entries {
			if atime < 0 || e.atime < atime {
				oldest, atime = k, e.atime
			}
		}
		delete(c.entries, oldest)
	}
}

// Len returns the number of cached images.
func (c *DecodeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *DecodeCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Len: len(c.entries), Hits: c.hits, Misses: c.misses}
}

// Clear removes all entries.
func (c *DecodeCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]*cacheEntry)
	c.tick = 0
}
