package texture

import (
	"image"
	"sync"
)

// Cache is a concurrency-safe, reference-counted cache. Each key is loaded
// once; concurrent callers for the same key wait for that load. Entries are
// evicted when their last reference is released.
type Cache[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]*cacheEntry[V]
}

type cacheEntry[V any] struct {
	value V
	err   error
	refs  int
	ready chan struct{}
}

// NewCache creates an empty cache.
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{items: make(map[K]*cacheEntry[V])}
}

// ImageCache caches decoded and resized source images.
type ImageCache = Cache[string, *image.NRGBA]

// NewImageCache creates an empty image cache.
func NewImageCache() *ImageCache {
	return NewCache[string, *image.NRGBA]()
}

// Acquire returns the value for key, calling load if no live entry exists,
// and takes a reference that the caller must drop with Release. Failed loads
// are not cached and take no reference.
func (c *Cache[K, V]) Acquire(key K, load func() (V, error)) (V, error) {
	c.mu.Lock()
	if e, ok := c.items[key]; ok {
		e.refs++
		c.mu.Unlock()
		<-e.ready
		if e.err != nil {
			var zero V
			return zero, e.err
		}
		return e.value, nil
	}
	e := &cacheEntry[V]{refs: 1, ready: make(chan struct{})}
	c.items[key] = e
	c.mu.Unlock()

	e.value, e.err = load()
	if e.err != nil {
		c.mu.Lock()
		if c.items[key] == e {
			delete(c.items, key)
		}
		c.mu.Unlock()
	}
	close(e.ready)

	if e.err != nil {
		var zero V
		return zero, e.err
	}
	return e.value, nil
}

// Release drops one reference to key.
func (c *Cache[K, V]) Release(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(c.items, key)
	}
}

// Len returns the number of live entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
