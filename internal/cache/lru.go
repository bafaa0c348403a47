// Package cache provides a concurrency-safe LRU cache for embeddings.
package cache

import (
	"container/list"
	"sync"
)

// DefaultCapacity bounds the embedding cache when none is configured.
const DefaultCapacity = 1024

type entry struct {
	key       string
	embedding []float32
}

// LRU is a fixed-capacity least-recently-used cache mapping text hashes
// to embedding vectors. Safe for concurrent readers and writers; the
// critical section covers only map and list bookkeeping, never an
// embedding call, so a miss on one key cannot block behind another
// key's fill.
type LRU struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

// NewLRU creates an LRU cache with the given capacity.
func NewLRU(capacity int) *LRU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached embedding for key and marks it recently used.
func (c *LRU) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).embedding, true
}

// Add stores an embedding, evicting the least recently used entry when
// the cache is full.
func (c *LRU) Add(key string, embedding []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry).embedding = embedding
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&entry{key: key, embedding: embedding})
	c.items[key] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}
}

// Len returns the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
