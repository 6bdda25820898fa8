package cache

import (
	"sync"
	"time"
)

// Item is a cached value with its expiry
type Item[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// Cache is a small in-memory TTL cache keyed by string
type Cache[V any] struct {
	items map[string]Item[V]
	mutex sync.Mutex
	now   func() time.Time
}

// New creates a new cache instance
func New[V any]() *Cache[V] {
	return &Cache[V]{
		items: make(map[string]Item[V]),
		now:   time.Now,
	}
}

// Get returns the value for key if present and not expired
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item, exists := c.items[key]
	if !exists {
		var zero V
		return zero, false
	}
	if c.now().After(item.ExpiresAt) {
		delete(c.items, key)
		var zero V
		return zero, false
	}
	return item.Value, true
}

// Set stores value under key for ttl
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = Item[V]{
		Value:     value,
		ExpiresAt: c.now().Add(ttl),
	}
}

// SetIfAbsent stores value only when key is missing or expired. It reports
// whether the value was stored.
func (c *Cache[V]) SetIfAbsent(key string, value V, ttl time.Duration) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	if item, exists := c.items[key]; exists && !now.After(item.ExpiresAt) {
		return false
	}
	c.items[key] = Item[V]{Value: value, ExpiresAt: now.Add(ttl)}
	return true
}

// Delete removes an item from the cache
func (c *Cache[V]) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *Cache[V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items = make(map[string]Item[V])
}

// Len returns the number of stored items, expired ones included
func (c *Cache[V]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}
