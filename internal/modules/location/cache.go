// README: Bounded offline cache of saved locations for unreachable-remote fallback.
package location

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"kerb/internal/types"
)

// offlineCacheSize bounds how many saved locations survive locally when the
// remote store is unreachable.
const offlineCacheSize = 5

// OfflineCache is a small most-recently-saved-first buffer keyed by record
// id. It is a resilience boundary, not a cache-invalidation system: entries
// are only ever read when the remote store fails, and the newest entry wins.
type OfflineCache struct {
	entries *lru.Cache[types.ID, *SavedLocation]
}

func NewOfflineCache() *OfflineCache {
	entries, err := lru.New[types.ID, *SavedLocation](offlineCacheSize)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(err)
	}
	return &OfflineCache{entries: entries}
}

// Put inserts or refreshes a record. Re-putting an existing id moves it to
// the front; beyond capacity the oldest entry is discarded.
func (c *OfflineCache) Put(loc *SavedLocation) {
	if loc == nil {
		return
	}
	c.entries.Add(loc.ID, loc)
}

// Newest returns the owner's most recently cached record, if any. The cache
// itself is process-wide, so entries belonging to other owners are skipped.
func (c *OfflineCache) Newest(owner types.ID) (*SavedLocation, bool) {
	keys := c.entries.Keys()
	for i := len(keys) - 1; i >= 0; i-- {
		loc, ok := c.entries.Peek(keys[i])
		if ok && loc.OwnerID == owner {
			return loc, true
		}
	}
	return nil, false
}

// Get looks a cached record up by id without refreshing its recency.
func (c *OfflineCache) Get(id types.ID) (*SavedLocation, bool) {
	return c.entries.Peek(id)
}

func (c *OfflineCache) Len() int {
	return c.entries.Len()
}
