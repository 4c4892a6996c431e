// Package searchcache memoises literal pattern searches over one immutable hive
// buffer.
//
// The cache is keyed on the raw pattern bytes and stores the ascending offset
// list produced by the first scan. A hive buffer never changes while it is
// loaded, so a cached result is always identical to a fresh scan. Callers
// must treat returned slices as read-only.
//
// Each loaded hive owns its own Cache; nothing is shared between buffers.
package searchcache

import (
	"container/list"
	"sync"
)

// DefaultCapacity is the number of distinct patterns retained per buffer.
// The extractor catalogue uses well under this many seeds.
const DefaultCapacity = 512

type entry struct {
	key     string
	offsets []int
}

// Cache is an LRU map from pattern bytes to match offsets.
// A zero capacity disables caching.
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = most recently used

	hits   uint64
	misses uint64
}

// New creates a cache holding at most capacity patterns.
func New(capacity int) *Cache {
	if capacity < 0 {
		capacity = 0
	}
	return &Cache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Lookup returns the cached offsets for pattern.
func (c *Cache) Lookup(pattern []byte) ([]int, bool) {
	if c == nil || c.capacity == 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.items[string(pattern)]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(elem)
	return elem.Value.(*entry).offsets, true
}

// Store records the offsets for pattern, evicting the least recently used
// pattern when full.
func (c *Cache) Store(pattern []byte, offsets []int) {
	if c == nil || c.capacity == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[string(pattern)]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*entry).offsets = offsets
		return
	}

	if c.order.Len() >= c.capacity {
		if back := c.order.Back(); back != nil {
			evicted := c.order.Remove(back).(*entry)
			delete(c.items, evicted.key)
		}
	}

	key := string(pattern)
	c.items[key] = c.order.PushFront(&entry{key: key, offsets: offsets})
}

// GetOrCompute returns the cached offsets for pattern, running scan and
// storing its result on a miss.
func (c *Cache) GetOrCompute(pattern []byte, scan func([]byte) []int) []int {
	if offsets, ok := c.Lookup(pattern); ok {
		return offsets
	}
	offsets := scan(pattern)
	c.Store(pattern, offsets)
	return offsets
}

// Reset drops all entries and counters.
func (c *Cache) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = make(map[string]*list.Element, c.capacity)
	c.order.Init()
	c.hits, c.misses = 0, 0
	c.mu.Unlock()
}

// Len returns the number of cached patterns.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns hit and miss counts since creation or the last Reset.
func (c *Cache) Stats() (hits, misses uint64) {
	if c == nil {
		return 0, 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
