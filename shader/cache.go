// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"container/list"
	"crypto/sha256"
	"sync"
	"sync/atomic"
)

// DefaultCacheCapacity is the capacity used when NewCache is given zero.
const DefaultCacheCapacity = 32

// cacheKey identifies a source by content and compile parameters.
type cacheKey struct {
	sum        [sha256.Size]byte
	entryPoint string
	kind       Kind
	language   Language
}

func keyOf(src Source) cacheKey {
	return cacheKey{
		sum:        sha256.Sum256(src.Code),
		entryPoint: src.EntryPoint,
		kind:       src.Kind,
		language:   src.Language,
	}
}

type cacheEntry struct {
	key   cacheKey
	words []uint32
}

// CacheStats holds cache counters.
type CacheStats struct {
	Len       int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is an LRU cache of compiled SPIR-V keyed by source content. Only
// successful compilations are cached. It is safe for concurrent use.
//
// Cached word slices are shared; callers must not modify them.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[cacheKey]*list.Element
	lru      *list.List

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewCache creates a cache holding up to capacity modules. If capacity <= 0,
// DefaultCacheCapacity is used.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[cacheKey]*list.Element),
		lru:      list.New(),
	}
}

// Compile returns the cached SPIR-V for src, compiling and caching it on a
// miss. A nil cache compiles every time.
func (c *Cache) Compile(src Source) ([]uint32, error) {
	if c == nil {
		return Compile(src)
	}
	key := keyOf(src)

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.lru.MoveToFront(el)
		words := el.Value.(*cacheEntry).words
		c.mu.Unlock()
		c.hits.Add(1)
		return words, nil
	}
	c.mu.Unlock()
	c.misses.Add(1)

	// Compile outside the lock; a concurrent miss on the same key compiles
	// twice and the second result replaces the first.
	words, err := Compile(src)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).words = words
		c.lru.MoveToFront(el)
		return words, nil
	}
	for c.lru.Len() >= c.capacity {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
		c.evictions.Add(1)
	}
	c.entries[key] = c.lru.PushFront(&cacheEntry{key: key, words: words})
	return words, nil
}

// Len returns the number of cached modules.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns the cache counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Len:       c.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
