package internal

import csmap "github.com/mhmtszr/concurrent-swiss-map"

// A single key to value cache
type Cache[K comparable, V any] struct {
	inner *csmap.CsMap[K, V]
	size  uint64
}

func NewCache[K comparable, V any](size uint64) Cache[K, V] {
	return Cache[K, V]{
		size: size,
	}
}

func (c *Cache[K, V]) Load(key K) (value V, ok bool) {
	if c.inner == nil {
		return
	}

	return c.inner.Load(key)
}

func (c *Cache[K, V]) Store(key K, value V) {
	if c.inner == nil {
		c.inner = csmap.Create(
			csmap.WithSize[K, V](c.size),
		)
	}

	c.inner.Store(key, value)
}

func (c *Cache[K, V]) Delete(key K) {
	if c.inner == nil {
		return
	}

	c.inner.Delete(key)
}

// Range If the callback function returns true iteration will stop.
func (c *Cache[K, V]) Range(fn func(key K, value V) bool) {
	if c.inner == nil {
		return
	}

	c.inner.Range(fn)
}

// Keys returns all keys currently in the cache, in iteration order.
func (c *Cache[K, V]) Keys() []K {
	if c.inner == nil {
		return []K{}
	}

	keys := make([]K, 0, c.inner.Count())

	c.inner.Range(func(key K, _ V) bool {
		keys = append(keys, key)
		return false
	})

	return keys
}

func (c *Cache[K, V]) Count() int {
	if c.inner == nil {
		return 0
	}

	return c.inner.Count()
}

func (c *Cache[K, V]) Clear() {
	if c.inner == nil {
		return
	}

	c.inner.Clear()
}

func (c *Cache[K, V]) SetIfAbsent(key K, value V) {
	if c.inner == nil {
		c.inner = csmap.Create(
			csmap.WithSize[K, V](c.size),
		)
	}

	c.inner.SetIfAbsent(key, value)
}

// A 2 key to value cache
type DoubleCache[KA comparable, KB comparable, V any] struct {
	inner     Cache[KA, Cache[KB, V]]
	sizeInner uint64
}

func NewDoubleCache[KA comparable, KB comparable, V any](sizeOuter uint64, sizeInner uint64) DoubleCache[KA, KB, V] {
	return DoubleCache[KA, KB, V]{
		inner:     NewCache[KA, Cache[KB, V]](sizeOuter),
		sizeInner: sizeInner,
	}
}

func (c *DoubleCache[KA, KB, V]) Inner(key KA) (value Cache[KB, V], ok bool) {
	return c.inner.Load(key)
}

func (c *DoubleCache[KA, KB, V]) Load(key KA, subKey KB) (value V, ok bool) {
	if inner, ok := c.inner.Load(key); ok {
		return inner.Load(subKey)
	}

	return
}

func (c *DoubleCache[KA, KB, V]) Store(key KA, subKey KB, value V) {
	if inner, ok := c.inner.Load(key); ok {
		inner.Store(subKey, value)
	} else {
		inner = NewCache[KB, V](c.sizeInner)
		inner.Store(subKey, value)

		c.inner.SetIfAbsent(key, inner)
	}
}

func (c *DoubleCache[KA, KB, V]) Delete(key KA, subKey KB) {
	if inner, ok := c.inner.Load(key); ok {
		inner.Delete(subKey)
	}
}

func (c *DoubleCache[KA, KB, V]) Range(fn func(key KA, value Cache[KB, V]) bool) {
	c.inner.Range(fn)
}

// Returns the total count of all values in the cache.
func (c *DoubleCache[KA, KB, V]) TotalCount() int {
	count := 0

	c.inner.Range(func(key KA, inner Cache[KB, V]) bool {
		count += inner.Count()

		return false
	})

	return count
}

// Returns the count of values in the cache for a specific key.
func (c *DoubleCache[KA, KB, V]) Count(key KA) int {
	if inner, ok := c.inner.Load(key); ok {
		return inner.Count()
	}

	return 0
}

// Clears the cache for a specific key.
func (c *DoubleCache[KA, KB, V]) ClearKey(key KA) {
	c.inner.Delete(key)
}
