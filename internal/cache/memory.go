package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process LRU implementation of Cache with per-entry
// TTL expiration. Suitable for tests and single-node deployments; the
// Redis implementation is the shared production cache.
type Memory struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List
	nowFn    func() time.Time

	hits   int64
	misses int64
}

type entry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// NewMemory creates an in-process cache bounded to capacity entries.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Memory{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
		nowFn:    time.Now,
	}
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false, nil
	}

	e := elem.Value.(*entry)
	if c.nowFn().After(e.expiresAt) {
		c.removeElement(elem)
		c.misses++
		return nil, false, nil
	}

	c.order.MoveToFront(elem)
	c.hits++
	return e.value, true, nil
}

func (c *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.nowFn().Add(ttl)
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		e := elem.Value.(*entry)
		e.value = value
		e.expiresAt = expiresAt
		return nil
	}

	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}

	elem := c.order.PushFront(&entry{key: key, value: value, expiresAt: expiresAt})
	c.items[key] = elem
	return nil
}

func (c *Memory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
	return nil
}

func (c *Memory) DeleteByPrefix(_ context.Context, prefix string, limit int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deleted := 0
	for key, elem := range c.items {
		if limit > 0 && deleted >= limit {
			break
		}
		if strings.HasPrefix(key, prefix) {
			c.removeElement(elem)
			deleted++
		}
	}
	return deleted, nil
}

// Len returns the number of entries, including expired but not yet
// evicted ones.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns cache hit and miss counts.
func (c *Memory) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *Memory) evictOldest() {
	if oldest := c.order.Back(); oldest != nil {
		c.removeElement(oldest)
	}
}

func (c *Memory) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.items, elem.Value.(*entry).key)
}
