package render

import (
	"crypto/sha256"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached memoizes a Renderer by content hash, so identical sources (a
// LICENSE copied into every package, say) are rendered once.
type Cached struct {
	next   Renderer
	cache  *lru.Cache[string, string]
	hits   atomic.Int64
	misses atomic.Int64
}

func NewCached(next Renderer, size int) (*Cached, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("render cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Render(markdown string) (string, error) {
	key := ContentHashHex([]byte(markdown))
	if html, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return html, nil
	}
	c.misses.Add(1)
	html, err := c.next.Render(markdown)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, html)
	return html, nil
}

// Stats returns cumulative cache hits and misses.
func (c *Cached) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
