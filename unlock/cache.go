package unlock

import (
	"time"

	terminal "github.com/0xmeta/terminal-go"
)

// Cache is the read/write service over a Store, applying the TTL on reads.
// Writes are serialized by the per-category in-flight guard upstream; the
// store itself handles concurrent access.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL overrides the default unlock window.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a cache over the given store.
func NewCache(store Store, opts ...CacheOption) *Cache {
	c := &Cache{
		store: store,
		ttl:   TTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Put overwrites the category's entry with the given items, timestamped now.
func (c *Cache) Put(categoryID string, items []terminal.NewsItem) error {
	return c.store.Put(categoryID, Entry{
		Items:     items,
		Timestamp: c.now().UnixMilli(),
	})
}

// Get returns the category's items when a fresh entry exists. An expired
// entry reads as absent but is left in the store untouched; only a later
// put replaces it.
func (c *Cache) Get(categoryID string) ([]terminal.NewsItem, bool) {
	entry, ok, err := c.store.Get(categoryID)
	if err != nil || !ok {
		return nil, false
	}

	age := c.now().UnixMilli() - entry.Timestamp
	if age >= c.ttl.Milliseconds() {
		return nil, false
	}
	return entry.Items, true
}

// Has reports whether a fresh entry exists for the category.
func (c *Cache) Has(categoryID string) bool {
	_, ok := c.Get(categoryID)
	return ok
}
