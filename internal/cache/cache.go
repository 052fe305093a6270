// Package cache provides a small thread-safe LRU cache.
//
//	c := cache.New[gridKey, []paper.DrawCommand](64)
//	cmds := c.GetOrCreate(key, func() []paper.DrawCommand { ... })
package cache

import (
	"container/list"
	"sync"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 64

// LRU is a thread-safe least-recently-used cache.
// LRU must not be copied after creation (has mutex).
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*list.Element
	order    *list.List // front is most recently used
	capacity int

	hits, misses, evictions uint64
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// New creates a cache holding at most capacity entries.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU[K, V]{
		entries:  make(map[K]*list.Element),
		order:    list.New(),
		capacity: capacity,
	}
}

// GetOrCreate returns the cached value or creates and stores it.
// create is called under lock so concurrent callers never duplicate work.
func (c *LRU[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.hits++
		c.order.MoveToFront(el)
		return el.Value.(*entry[K, V]).value
	}
	c.misses++
	value := create()
	c.insert(key, value)
	return value
}

// insert adds a new entry. Caller must hold c.mu.
func (c *LRU[K, V]) insert(key K, value V) {
	for c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry[K, V]).key)
		c.evictions++
	}
	c.entries[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})
}

// Clear removes all entries. Statistics are kept.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*list.Element)
	c.order.Init()
}

// Stats returns cache statistics.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       c.order.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

// Stats contains cache statistics.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	HitRate   float64 // 0.0 to 1.0
	Evictions uint64
}
