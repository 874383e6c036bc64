package searcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/fulltext-mcp/pkg/types"
)

func TestPageCache_HitAndExpiry(t *testing.T) {
	store := newFakeStore(greetingPage())
	cache, err := NewPageCache(store, 4, time.Minute)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	pages, err := cache.ListPages(ctx, testRecord)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
	assert.Equal(t, 1, cache.Len())

	_, err = cache.ListPages(ctx, testRecord)
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls)

	now = now.Add(2 * time.Minute)
	_, err = cache.ListPages(ctx, testRecord)
	require.NoError(t, err)
	assert.Equal(t, 2, store.listCalls)
}

func TestPageCache_EmptyRecordsNotCached(t *testing.T) {
	store := newFakeStore()
	cache, err := NewPageCache(store, 4, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cache.ListPages(ctx, testRecord)
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestPageCache_Eviction(t *testing.T) {
	other := types.RecordID{DatasetID: "a", LocalID: "b"}
	p := greetingPage()
	p.Record = other
	store := newFakeStore(greetingPage(), p)
	cache, err := NewPageCache(store, 1, 0)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cache.ListPages(ctx, testRecord)
	require.NoError(t, err)
	_, err = cache.ListPages(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	_, err = cache.ListPages(ctx, testRecord)
	require.NoError(t, err)
	assert.Equal(t, 3, store.listCalls)
}

func TestPageCache_Disabled(t *testing.T) {
	store := newFakeStore(greetingPage())
	cache, err := NewPageCache(store, 0, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err = cache.ListPages(ctx, testRecord)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, store.listCalls)
	assert.Equal(t, 0, cache.Len())

	// no-ops without a cache
	cache.Invalidate(testRecord)
	cache.Purge()
}

func TestPageCache_PageExistsPassesThrough(t *testing.T) {
	cache, err := NewPageCache(newFakeStore(greetingPage()), 4, time.Minute)
	require.NoError(t, err)

	ok, err := cache.PageExists(context.Background(), testRecord, "1")
	require.NoError(t, err)
	assert.True(t, ok)
}
