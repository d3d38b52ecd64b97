package texture

import (
	"image"
	"sync"
)

// Resolver resolves a name to a decoded image, or nil.
type Resolver interface {
	Resolve(name string) *image.NRGBA
}

// Cache is a concurrency-safe image cache.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*image.NRGBA // nil when loading failed
	index *Index
}

// NewCache creates a new image cache backed by the given index.
func NewCache(index *Index) *Cache {
	return &Cache{
		items: make(map[string]*image.NRGBA),
		index: index,
	}
}

// Resolve loads and caches an image by name. Returns nil if not found or undecodable.
func (c *Cache) Resolve(name string) *image.NRGBA {
	path, ok := c.index.ResolvePath(name)
	if !ok {
		return nil
	}

	// Fast path: read lock
	c.mu.RLock()
	img, exists := c.items[path]
	c.mu.RUnlock()
	if exists {
		return img
	}

	// Slow path: load from disk
	img, _ = LoadImage(path)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, exists := c.items[path]; exists {
		return prev
	}
	c.items[path] = img
	return img
}
