// Package cache provides in-memory caching for fetched result pages.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cinequery/cinequery/pkg/tmdb"
)

// PageKey identifies one fetched page: the endpoint mode, the
// canonical query (free text, or encoded discover parameters), and the
// page number.
type PageKey struct {
	Mode  string
	Query string
	Page  int
}

// PageCache is a thread-safe LRU cache of result pages, so repeating a
// query within a session does not re-hit the upstream API.
type PageCache struct {
	cache *lru.Cache[PageKey, *tmdb.MoviePage]
}

// NewPageCache creates an LRU page cache holding at most maxItems pages.
func NewPageCache(maxItems int) (*PageCache, error) {
	c, err := lru.New[PageKey, *tmdb.MoviePage](maxItems)
	if err != nil {
		return nil, err
	}
	return &PageCache{cache: c}, nil
}

// Get retrieves a cached page. Returns the page and true if present.
func (c *PageCache) Get(key PageKey) (*tmdb.MoviePage, bool) {
	return c.cache.Get(key)
}

// Put adds or updates a page in the cache.
func (c *PageCache) Put(key PageKey, page *tmdb.MoviePage) {
	c.cache.Add(key, page)
}

// Purge drops every cached page.
func (c *PageCache) Purge() {
	c.cache.Purge()
}

// Len returns the current number of cached pages.
func (c *PageCache) Len() int {
	return c.cache.Len()
}
