package searcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/fulltext-mcp/pkg/types"
)

// cacheEntry holds the pages of one record with their expiration time
type cacheEntry struct {
	pages     []*types.Page
	expiresAt time.Time
}

// PageCache keeps the pages of recently searched records in memory. Cached
// pages are shared between requests and must be treated as read-only.
type PageCache struct {
	store PageStore
	ttl   time.Duration
	now   func() time.Time

	mu    sync.RWMutex
	cache *lru.Cache[types.RecordID, *cacheEntry]
}

// NewPageCache wraps store with an LRU cache of size records. A size of zero
// or less disables caching.
func NewPageCache(store PageStore, size int, ttl time.Duration) (*PageCache, error) {
	c := &PageCache{store: store, ttl: ttl, now: time.Now}
	if size <= 0 {
		return c, nil
	}
	cache, err := lru.New[types.RecordID, *cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

// PageExists is not cached; record existence checks are rare.
func (c *PageCache) PageExists(ctx context.Context, rec types.RecordID, pageID string) (bool, error) {
	return c.store.PageExists(ctx, rec, pageID)
}

// ListPages returns the pages of rec from the cache, loading them on a miss
// or after expiry.
func (c *PageCache) ListPages(ctx context.Context, rec types.RecordID) ([]*types.Page, error) {
	if pages, ok := c.lookup(rec); ok {
		return pages, nil
	}

	pages, err := c.store.ListPages(ctx, rec)
	if err != nil {
		return nil, err
	}
	if c.cache != nil && len(pages) > 0 {
		c.mu.Lock()
		c.cache.Add(rec, &cacheEntry{pages: pages, expiresAt: c.now().Add(c.ttl)})
		c.mu.Unlock()
	}
	return pages, nil
}

func (c *PageCache) lookup(rec types.RecordID) ([]*types.Page, bool) {
	if c.cache == nil {
		return nil, false
	}

	c.mu.RLock()
	entry, found := c.cache.Get(rec)
	c.mu.RUnlock()
	if !found {
		return nil, false
	}

	if c.ttl > 0 && c.now().After(entry.expiresAt) {
		c.mu.Lock()
		c.cache.Remove(rec)
		c.mu.Unlock()
		return nil, false
	}
	return entry.pages, true
}

// Invalidate drops the cached pages of rec
func (c *PageCache) Invalidate(rec types.RecordID) {
	if c.cache == nil {
		return
	}
	c.mu.Lock()
	c.cache.Remove(rec)
	c.mu.Unlock()
}

// Purge drops all cached pages
func (c *PageCache) Purge() {
	if c.cache == nil {
		return
	}
	c.mu.Lock()
	c.cache.Purge()
	c.mu.Unlock()
}

// Len returns the number of cached records
func (c *PageCache) Len() int {
	if c.cache == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache.Len()
}
