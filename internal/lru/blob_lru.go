package lru

import "math"

// SizeConstrainedCache caps total byte size rather than item count, so a
// handful of large values count against the budget the same way many small
// ones would. Nothing else in this module uses it.
type SizeConstrainedCache[K comparable, V ~[]byte] struct {
	lru     BasicLRU[K, V]
	maxSize uint64
	size    uint64
}

// NewSizeConstrainedCache creates a cache that evicts its least recently
// used entries once the combined byte length of its values exceeds maxSize.
func NewSizeConstrainedCache[K comparable, V ~[]byte](maxSize uint64) *SizeConstrainedCache[K, V] {
	return &SizeConstrainedCache[K, V]{
		lru:     *NewBasicLRU[K, V](math.MaxInt),
		maxSize: maxSize,
	}
}

// Add inserts or replaces a value, evicting least-recently-used entries to
// stay within maxSize. A single value larger than maxSize is still stored in
// full; it is evicted on the next Add once another entry exists to take its place.
func (c *SizeConstrainedCache[K, V]) Add(key K, value V) {
	if prev, exists := c.lru.Peek(key); exists {
		c.size -= uint64(len(prev))
	}
	c.lru.Add(key, value)
	c.size += uint64(len(value))

	for c.size > c.maxSize && c.lru.Len() > 1 {
		_, v, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		c.size -= uint64(len(v))
	}
}

// Get retrieves a value, marking it as recently used.
func (c *SizeConstrainedCache[K, V]) Get(key K) (V, bool) {
	return c.lru.Get(key)
}

// Contains reports whether key is present, without updating recency.
func (c *SizeConstrainedCache[K, V]) Contains(key K) bool {
	return c.lru.Contains(key)
}

// Purge empties the cache.
func (c *SizeConstrainedCache[K, V]) Purge() {
	c.lru.Purge()
	c.size = 0
}
