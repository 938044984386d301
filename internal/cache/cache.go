package cache

import (
	"container/list"
	"sync"
	"time"
)

type entry struct {
	key        string
	value      string
	insertedAt time.Time
}

// Cache is a bounded LRU cache with per-entry TTL.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	order      *list.List // front = most recently used
	items      map[string]*list.Element
	now        func() time.Time
}

// New creates a cache holding at most maxEntries values, each visible for
// ttl after insertion. maxEntries must be positive.
func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Cache{
		maxEntries: maxEntries,
		ttl:        ttl,
		order:      list.New(),
		items:      make(map[string]*list.Element),
		now:        time.Now,
	}
}

// Get returns the value for key and whether it is present and unexpired.
// A hit refreshes the entry's recency.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	ent := el.Value.(*entry)
	if c.expired(ent) {
		c.remove(el)
		return "", false
	}
	c.order.MoveToFront(el)
	return ent.value, true
}

// Has reports whether key is present and unexpired, refreshing recency.
func (c *Cache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Set inserts or replaces the value for key. Replacing refreshes both the
// entry's recency and its insertion time. Inserting into a full cache
// silently drops the least-recently-used entry first.
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		ent := el.Value.(*entry)
		ent.value = value
		ent.insertedAt = c.now()
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.maxEntries {
		if victim := c.order.Back(); victim != nil {
			c.remove(victim)
		}
	}

	el := c.order.PushFront(&entry{key: key, value: value, insertedAt: c.now()})
	c.items[key] = el
}

// Len returns the number of live entries. Expired entries are dropped as
// part of the count, so they never inflate the result.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if c.expired(el.Value.(*entry)) {
			c.remove(el)
		}
		el = prev
	}
	return c.order.Len()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
}

func (c *Cache) expired(ent *entry) bool {
	return c.ttl > 0 && c.now().Sub(ent.insertedAt) >= c.ttl
}

func (c *Cache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}
