// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 512

// PageCache keeps recently fetched wikitext keyed by page title. It is safe
// for concurrent use.
type PageCache struct {
	c *lru.Cache[string, string]
}

// NewPageCache returns a cache holding at most size pages. A size of zero or
// less selects the default of 512.
func NewPageCache(size int) (*PageCache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &PageCache{c: c}, nil
}

// Get returns the cached wikitext for title.
func (p *PageCache) Get(title string) (string, bool) {
	if p == nil {
		return "", false
	}
	return p.c.Get(normalizeTitle(title))
}

// Put stores text for title, evicting the least recently used page when full.
func (p *PageCache) Put(title, text string) {
	if p == nil {
		return
	}
	p.c.Add(normalizeTitle(title), text)
}

// Len returns the number of cached pages.
func (p *PageCache) Len() int {
	if p == nil {
		return 0
	}
	return p.c.Len()
}
