package cache

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// TTLCache is a size-bounded map whose entries expire after a fixed TTL.
// A full cache evicts its least recently used entry; expired entries are
// never returned and are purged in the background.
type TTLCache[K comparable, V any] struct {
	lru *expirable.LRU[K, V]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewTTLCache creates a cache. maxEntries <= 0 disables the size bound.
func NewTTLCache[K comparable, V any](ttl time.Duration, maxEntries int) *TTLCache[K, V] {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &TTLCache[K, V]{lru: expirable.NewLRU[K, V](maxEntries, nil, ttl)}
}

// Get returns the value if present and not expired
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	v, ok := c.lru.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set stores value under key, restarting its TTL
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.lru.Add(key, value)
}

// Delete removes key
func (c *TTLCache[K, V]) Delete(key K) {
	c.lru.Remove(key)
}

// Len returns the number of stored entries
func (c *TTLCache[K, V]) Len() int {
	return c.lru.Len()
}

// Stats returns hit and miss counts
func (c *TTLCache[K, V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
