package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache("storefront")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	missing, err := c.Get(ctx, "absent")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestMemoryCache_SetNX(t *testing.T) {
	c := NewMemoryCache("storefront")
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "lock", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "lock", "2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while the first holds the key")

	require.NoError(t, c.Delete(ctx, "lock"))
	ok, err = c.SetNX(ctx, "lock", "3", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	mc := NewMemoryCache("storefront").(*memoryCache)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", "v", time.Second))
	now = now.Add(2 * time.Second)

	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)

	ok, err := mc.SetNX(ctx, "k", "again", 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGenerateKey(t *testing.T) {
	c := NewMemoryCache("storefront")
	assert.Equal(t, "storefront:checkout:abc", c.GenerateKey("checkout", "abc"))
}

func TestMemoryCache_CompareAndDelete(t *testing.T) {
	c := NewMemoryCache("storefront")
	ctx := context.Background()

	ok, err := c.CompareAndDelete(ctx, "lock", "a")
	require.NoError(t, err)
	assert.False(t, ok, "absent key")

	require.NoError(t, c.Set(ctx, "lock", "b", time.Minute))
	ok, err = c.CompareAndDelete(ctx, "lock", "a")
	require.NoError(t, err)
	assert.False(t, ok, "a lock taken over by another holder must survive")
	got, err := c.Get(ctx, "lock")
	require.NoError(t, err)
	assert.Equal(t, "b", got)

	ok, err = c.CompareAndDelete(ctx, "lock", "b")
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = c.Get(ctx, "lock")
	require.NoError(t, err)
	assert.Empty(t, got)
}
