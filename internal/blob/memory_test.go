package blob

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	key := ArtifactKey("ethereum", "uniswap-ethereum")
	require.NoError(t, s.Put(ctx, key, []byte(`{"v":1}`), "application/json"))

	data, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"v":1}`), data)

	// Overwrite under the same key.
	require.NoError(t, s.Put(ctx, key, []byte(`{"v":2}`), "application/json"))
	data, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"v":2}`), data)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_List(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ts := time.Unix(1700000000, 0)
	require.NoError(t, s.Put(ctx, DeadLetterKey(ts, "m1"), []byte("a"), "application/json"))
	require.NoError(t, s.Put(ctx, DeadLetterKey(ts.Add(time.Second), "m2"), []byte("b"), "application/json"))
	require.NoError(t, s.Put(ctx, ArtifactKey("base", "x-base"), []byte("c"), "application/json"))

	keys, err := s.List(ctx, DeadLetterPrefix, 0)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Contains(t, keys[0], "m1")
	assert.Contains(t, keys[1], "m2")

	keys, err = s.List(ctx, DeadLetterPrefix, 1)
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "k", []byte("v"), "text/plain"))
	require.NoError(t, s.Delete(ctx, "k"))

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is a no-op.
	assert.NoError(t, s.Delete(ctx, "k"))
}

func TestKeyFormats(t *testing.T) {
	assert.Equal(t, "contents/airdrop/ethereum/uniswap-ethereum.json",
		ArtifactKey("ethereum", "uniswap-ethereum"))

	ts := time.UnixMilli(1700000000123)
	assert.Equal(t, "dead-letters/1700000000123-abc.json", DeadLetterKey(ts, "abc"))
}
