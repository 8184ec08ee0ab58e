package tabular

import (
	"os"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type cacheKey struct {
	path    string
	modTime int64
	size    int64
}

// RowCache keeps decoded tables keyed by path, modification time and size, so
// a file that changed on disk never hits a stale entry.
type RowCache struct {
	cache *ttlcache.Cache[cacheKey, *Table]
}

// NewRowCache creates a cache holding at most capacity tables for ttl each.
// A zero capacity means unbounded.
func NewRowCache(ttl time.Duration, capacity uint64) *RowCache {
	opts := []ttlcache.Option[cacheKey, *Table]{
		ttlcache.WithTTL[cacheKey, *Table](ttl),
		ttlcache.WithDisableTouchOnHit[cacheKey, *Table](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[cacheKey, *Table](capacity))
	}
	return &RowCache{cache: ttlcache.New(opts...)}
}

// Load returns the cached table for the current version of path, decoding
// and storing it on a miss.
func (c *RowCache) Load(path string, decode func() (*Table, error)) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	key := cacheKey{path: path, modTime: info.ModTime().UnixNano(), size: info.Size()}

	if item := c.cache.Get(key); item != nil {
		return item.Value(), nil
	}

	t, err := decode()
	if err != nil {
		return nil, err
	}

	c.dropVersions(path, key)
	c.cache.Set(key, t, ttlcache.DefaultTTL)
	return t, nil
}

// Invalidate drops every cached version of path.
func (c *RowCache) Invalidate(path string) {
	c.dropVersions(path, cacheKey{})
}

// Purge empties the cache.
func (c *RowCache) Purge() {
	c.cache.DeleteAll()
}

// Len reports the number of cached tables.
func (c *RowCache) Len() int {
	return c.cache.Len()
}

func (c *RowCache) dropVersions(path string, keep cacheKey) {
	c.cache.DeleteExpired()
	for _, k := range c.cache.Keys() {
		if k.path == path && k != keep {
			c.cache.Delete(k)
		}
	}
}
