package images

import (
	lru "github.com/hashicorp/golang-lru"
)

type surfaceKey struct {
	path   string
	width  int
	height int
}

// surfaceCache holds decoded surfaces keyed by path and requested size.
// The underlying LRU is synchronized, so the watcher may invalidate entries
// from its own goroutine.
type surfaceCache struct {
	lru *lru.Cache
}

func newSurfaceCache(size int) *surfaceCache {
	if size <= 0 {
		return nil
	}
	c, err := lru.New(size)
	if err != nil {
		return nil
	}
	return &surfaceCache{lru: c}
}

func (c *surfaceCache) get(key surfaceKey) (*Surface, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*Surface), true
}

func (c *surfaceCache) add(key surfaceKey, s *Surface) {
	if c == nil {
		return
	}
	c.lru.Add(key, s)
}

// invalidate drops every cached size of path and reports how many entries
// were removed.
func (c *surfaceCache) invalidate(path string) int {
	if c == nil {
		return 0
	}
	removed := 0
	for _, k := range c.lru.Keys() {
		key, ok := k.(surfaceKey)
		if !ok || key.path != path {
			continue
		}
		c.lru.Remove(key)
		removed++
	}
	return removed
}

func (c *surfaceCache) purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

func (c *surfaceCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
