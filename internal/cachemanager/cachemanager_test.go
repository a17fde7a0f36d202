package cachemanager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInMemoryCacheManager(t *testing.T) {
	require.NotPanics(t, func() {
		NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval, nil)
	})
}

func TestInMemoryCacheManager_GetExistingValue(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("templates", DefaultExpiration, DefaultCleanupInterval, nil)
	cache.Set(context.Background(), "page.tmpl", "parsed", DefaultExpiration)

	got, ok := cache.Get(context.Background(), "page.tmpl")
	require.True(t, ok)
	require.Equal(t, "parsed", got)
	require.Equal(t, 1, cache.Count())
}

func TestInMemoryCacheManager_GetMissing(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("templates", DefaultExpiration, DefaultCleanupInterval, nil)

	got, ok := cache.Get(context.Background(), "page.tmpl")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWrongType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("templates", DefaultExpiration, DefaultCleanupInterval, nil)
	cache.cache.Set("page.tmpl", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "page.tmpl")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, int]("templates", DefaultExpiration, DefaultCleanupInterval, nil)
	cache.Set(ctx, "a", 1, NoExpiration)
	cache.Set(ctx, "b", 2, NoExpiration)
	cache.Set(ctx, "c", 3, NoExpiration)

	cache.Delete(ctx, "a", "b")
	_, ok := cache.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Count())

	cache.Flush(ctx)
	assert.Equal(t, 0, cache.Count())
}

func TestReadThroughCache_LoadsOnce(t *testing.T) {
	ctx := context.Background()
	calls := 0
	load := func(_ context.Context, in string) (string, error) {
		calls++
		return "loaded:" + in, nil
	}
	cache := NewInMemoryCacheManager[string, string]("templates", DefaultExpiration, DefaultCleanupInterval, nil)
	rt := NewReadThroughCache[string, string, string](cache, load, false)

	v, err := rt.Get(ctx, "k", "x", NoExpiration)
	require.NoError(t, err)
	assert.Equal(t, "loaded:x", v)
	v, err = rt.Get(ctx, "k", "x", NoExpiration)
	require.NoError(t, err)
	assert.Equal(t, "loaded:x", v)
	assert.Equal(t, 1, calls)
}

func TestReadThroughCache_SkipCache(t *testing.T) {
	ctx := context.Background()
	calls := 0
	load := func(_ context.Context, in string) (string, error) {
		calls++
		return in, nil
	}
	cache := NewInMemoryCacheManager[string, string]("templates", DefaultExpiration, DefaultCleanupInterval, nil)
	rt := NewReadThroughCache[string, string, string](cache, load, true)

	_, _ = rt.Get(ctx, "k", "x", NoExpiration)
	_, _ = rt.Get(ctx, "k", "x", NoExpiration)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, rt.Cache().Count())
}

func TestReadThroughCache_ErrorNotCached(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	calls := 0
	load := func(_ context.Context, _ string) (string, error) {
		calls++
		return "", boom
	}
	cache := NewInMemoryCacheManager[string, string]("templates", DefaultExpiration, DefaultCleanupInterval, nil)
	rt := NewReadThroughCache[string, string, string](cache, load, false)

	_, err := rt.Get(ctx, "k", "x", NoExpiration)
	require.ErrorIs(t, err, boom)
	_, err = rt.Get(ctx, "k", "x", NoExpiration)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
