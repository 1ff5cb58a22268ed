package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheZeroValueIsUsable(t *testing.T) {
	cache := NewCache[int64, string](0)

	_, ok := cache.Load(1)
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Count())
	assert.Empty(t, cache.Keys())

	cache.Delete(1)
	cache.Clear()
}

func TestCacheStoreLoadDelete(t *testing.T) {
	cache := NewCache[int64, string](10)

	cache.Store(1, "a")
	cache.Store(2, "b")

	value, ok := cache.Load(1)
	assert.True(t, ok)
	assert.Equal(t, "a", value)
	assert.Equal(t, 2, cache.Count())
	assert.ElementsMatch(t, []int64{1, 2}, cache.Keys())

	cache.Delete(1)

	_, ok = cache.Load(1)
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Count())
}

func TestCacheSetIfAbsent(t *testing.T) {
	cache := NewCache[int64, string](10)

	cache.SetIfAbsent(1, "a")
	cache.SetIfAbsent(1, "b")

	value, _ := cache.Load(1)
	assert.Equal(t, "a", value)
}

func TestDoubleCache(t *testing.T) {
	cache := NewDoubleCache[int64, int64, string](0, 10)

	cache.Store(1, 10, "a")
	cache.Store(1, 11, "b")
	cache.Store(2, 20, "c")

	value, ok := cache.Load(1, 10)
	assert.True(t, ok)
	assert.Equal(t, "a", value)

	_, ok = cache.Load(3, 30)
	assert.False(t, ok)

	assert.Equal(t, 2, cache.Count(1))
	assert.Equal(t, 0, cache.Count(3))
	assert.Equal(t, 3, cache.TotalCount())

	inner, ok := cache.Inner(1)
	assert.True(t, ok)
	assert.Equal(t, 2, inner.Count())

	cache.Delete(1, 10)
	assert.Equal(t, 1, cache.Count(1))

	cache.ClearKey(1)
	assert.Equal(t, 0, cache.Count(1))
	assert.Equal(t, 1, cache.TotalCount())
}
