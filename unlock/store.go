// Package unlock is the durable, expiring store of unlocked content per
// category. Entries survive process restarts; expiry is evaluated lazily at
// read time rather than actively swept.
package unlock

import (
	"time"

	terminal "github.com/0xmeta/terminal-go"
)

// TTL is the unlock window: an entry older than this is treated as absent
// by every reader, though the underlying record stays in place until the
// next put overwrites it.
const TTL = 5 * time.Hour

// Entry is one category's unlocked content. Timestamp is unix milliseconds
// at the time of the unlock.
type Entry struct {
	Items     []terminal.NewsItem `json:"items"`
	Timestamp int64               `json:"timestamp"`
}

// Store is the persistence boundary of the cache: a keyed map from category
// id to entry. Implementations must be safe for concurrent use. The Cache
// reads and writes through this interface so tests can substitute an
// in-memory fake.
type Store interface {
	// Get returns the stored entry for a category, expired or not.
	Get(categoryID string) (Entry, bool, error)
	// Put overwrites the entry for a category.
	Put(categoryID string, entry Entry) error
}
