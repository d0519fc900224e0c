package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_BasicGetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10)

	require.NoError(t, c.Set(ctx, "a", []byte("one"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("two"), time.Minute))

	v, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("one"), v)

	_, ok, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_TTLExpiration(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10)

	now := time.Now()
	c.nowFn = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "a", []byte("v"), TTLDetail))

	_, ok, _ := c.Get(ctx, "a")
	assert.True(t, ok)

	// Advance past the detail TTL.
	c.nowFn = func() time.Time { return now.Add(TTLDetail + time.Second) }

	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok, "entry should have expired")
}

func TestMemory_PerEntryTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10)

	now := time.Now()
	c.nowFn = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", []byte("v"), time.Minute))
	require.NoError(t, c.Set(ctx, "long", []byte("v"), time.Hour))

	c.nowFn = func() time.Time { return now.Add(2 * time.Minute) }

	_, ok, _ := c.Get(ctx, "short")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "long")
	assert.True(t, ok)
}

func TestMemory_Eviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(3)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), time.Minute))

	// Touch "a" so "b" becomes least recently used.
	c.Get(ctx, "a")

	require.NoError(t, c.Set(ctx, "d", []byte("4"), time.Minute))

	_, ok, _ := c.Get(ctx, "b")
	assert.False(t, ok, "b should have been evicted")
	_, ok, _ = c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, 3, c.Len())
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10)

	require.NoError(t, c.Set(ctx, DetailKey("ethereum", "uniswap"), []byte("v"), TTLDetail))
	require.NoError(t, c.Delete(ctx, DetailKey("ethereum", "uniswap")))

	_, ok, _ := c.Get(ctx, DetailKey("ethereum", "uniswap"))
	assert.False(t, ok)

	// Deleting an absent key is a no-op.
	assert.NoError(t, c.Delete(ctx, "absent"))
}

func TestMemory_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10)

	require.NoError(t, c.Set(ctx, ListKey("abc"), []byte("1"), TTLList))
	require.NoError(t, c.Set(ctx, ListKey("def"), []byte("2"), TTLList))
	require.NoError(t, c.Set(ctx, StatsKey, []byte("3"), TTLStats))

	deleted, err := c.DeleteByPrefix(ctx, ListPrefix, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	_, ok, _ := c.Get(ctx, StatsKey)
	assert.True(t, ok, "non-matching key must survive")
}

func TestMemory_DeleteByPrefixCap(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(20)

	for _, h := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, c.Set(ctx, ListKey(h), []byte("v"), TTLList))
	}

	deleted, err := c.DeleteByPrefix(ctx, ListPrefix, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
	assert.Equal(t, 2, c.Len())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "airdrop:ethereum:uniswap", DetailKey("ethereum", "uniswap"))
	assert.Equal(t, "airdrop:list:h123", ListKey("h123"))
	assert.Equal(t, "sitemap:/airdrops", SitemapKey("/airdrops"))
	assert.Equal(t, "stats:global", StatsKey)
}
