// Package cache provides a small thread-safe LRU cache with hit/miss
// statistics. The gpu package uses it to deduplicate render pipelines
// across material instances; capacity bounds keep long sessions from
// accumulating stale GPU state objects.
package cache

import (
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the default maximum entry count.
const DefaultCapacity = 256

// Stats contains cache usage counters.
type Stats struct {
	// Len is the current entry count.
	Len int

	// Capacity is the maximum entry count.
	Capacity int

	// Hits is the number of lookups that found an entry.
	Hits uint64

	// Misses is the number of lookups that found nothing.
	Misses uint64

	// HitRate is Hits / (Hits + Misses), 0 when no lookups happened.
	HitRate float64

	// Evictions is the number of entries dropped to make room.
	Evictions uint64
}

// node is an intrusive doubly-linked LRU list node.
type node[K comparable, V any] struct {
	key        K
	value      V
	prev, next *node[K, V]
}

// Cache is a thread-safe LRU cache mapping K to V.
//
// Eviction order is least-recently-used; Get, Set and GetOrCreate all
// refresh recency. An EvictFunc, when set, observes every evicted value
// so owners of GPU state can route it into a deletion queue.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*node[K, V]
	head     *node[K, V] // most recently used
	tail     *node[K, V] // least recently used
	capacity int

	// EvictFunc, if non-nil, is called (with the lock held) for every
	// value evicted or removed. Keep it fast.
	EvictFunc func(K, V)

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache holding at most capacity entries.
// If capacity <= 0, DefaultCapacity is used.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[K, V]{
		entries:  make(map[K]*node[K, V], capacity),
		capacity: capacity,
	}
}

// Get retrieves a cached value, refreshing its recency.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.moveToFront(n)
	c.hits.Add(1)
	return n.value, true
}

// Set stores a value, evicting the least recently used entry when the
// cache is full.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		n.value = value
		c.moveToFront(n)
		return
	}
	c.evictIfFull()
	c.insertFront(key, value)
}

// GetOrCreate returns the cached value for key, calling create on a miss
// and caching its result. create runs with the cache lock held so
// concurrent callers never build the same value twice; keep it bounded.
// If create fails, nothing is cached and the error is returned.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		c.moveToFront(n)
		c.hits.Add(1)
		return n.value, nil
	}
	c.misses.Add(1)

	value, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.evictIfFull()
	c.insertFront(key, value)
	return value, nil
}

// Delete removes an entry, reporting whether it existed. EvictFunc
// observes the removed value.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		return false
	}
	c.unlink(n)
	delete(c.entries, key)
	if c.EvictFunc != nil {
		c.EvictFunc(n.key, n.value)
	}
	return true
}

// Clear removes every entry. EvictFunc observes each removed value.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.EvictFunc != nil {
		for n := c.head; n != nil; n = n.next {
			c.EvictFunc(n.key, n.value)
		}
	}
	c.entries = make(map[K]*node[K, V], c.capacity)
	c.head = nil
	c.tail = nil
}

// Len returns the current entry count.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the maximum entry count.
func (c *Cache[K, V]) Capacity() int { return c.capacity }

// Stats returns current usage counters.
func (c *Cache[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{
		Len:       c.Len(),
		Capacity:  c.capacity,
		Hits:      hits,
		Misses:    misses,
		HitRate:   hitRate,
		Evictions: c.evictions.Load(),
	}
}

// insertFront adds a new node at the head. Caller holds mu.
func (c *Cache[K, V]) insertFront(key K, value V) {
	n := &node[K, V]{key: key, value: value, next: c.head}
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
	c.entries[key] = n
}

// moveToFront refreshes a node's recency. Caller holds mu.
func (c *Cache[K, V]) moveToFront(n *node[K, V]) {
	if n == c.head {
		return
	}
	c.unlink(n)
	n.prev = nil
	n.next = c.head
	c.head.prev = n
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

// unlink detaches a node from the list. Caller holds mu.
func (c *Cache[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else if c.head == n {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else if c.tail == n {
		c.tail = n.prev
	}
	n.prev = nil
	n.next = nil
}

// evictIfFull drops the least recently used entry when at capacity.
// Caller holds mu.
func (c *Cache[K, V]) evictIfFull() {
	if len(c.entries) < c.capacity || c.tail == nil {
		return
	}
	victim := c.tail
	c.unlink(victim)
	delete(c.entries, victim.key)
	c.evictions.Add(1)
	if c.EvictFunc != nil {
		c.EvictFunc(victim.key, victim.value)
	}
}
