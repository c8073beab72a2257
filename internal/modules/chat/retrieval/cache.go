package retrieval

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// IndexCache holds one loaded index per collection for the lifetime of the
// owner. Concurrent first requests share a single load; failed loads are
// not cached so a later turn can retry.
type IndexCache struct {
	loader Loader

	mu      sync.RWMutex
	indices map[string]Index
	group   singleflight.Group
}

func NewIndexCache(loader Loader) *IndexCache {
	return &IndexCache{loader: loader, indices: map[string]Index{}}
}

func (c *IndexCache) Get(ctx context.Context, collection string) (Index, error) {
	c.mu.RLock()
	idx, ok := c.indices[collection]
	c.mu.RUnlock()
	if ok {
		return idx, nil
	}

	v, err, _ := c.group.Do(collection, func() (any, error) {
		c.mu.RLock()
		idx, ok := c.indices[collection]
		c.mu.RUnlock()
		if ok {
			return idx, nil
		}
		loaded, err := c.loader.Load(ctx, collection)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.indices[collection] = loaded
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Index), nil
}

// Loaded reports whether the collection's index is already cached.
func (c *IndexCache) Loaded(collection string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.indices[collection]
	return ok
}
