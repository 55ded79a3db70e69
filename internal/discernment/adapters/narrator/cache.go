package narrator

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"axioma/internal/discernment/ports"
)

// CachedNarrator memoizes narratives by evaluation fingerprint. Identical
// evaluations produce identical canonical objects, so a hit skips the
// backend entirely. Failures are never cached.
type CachedNarrator struct {
	next  ports.Narrator
	cache *lru.Cache[string, string]
}

// NewCached wraps next with an LRU cache holding up to size narratives.
func NewCached(next ports.Narrator, size int) (*CachedNarrator, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive")
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("create narration cache: %w", err)
	}
	return &CachedNarrator{next: next, cache: cache}, nil
}

// Narrate implements ports.Narrator.
func (c *CachedNarrator) Narrate(ctx context.Context, req ports.NarrationRequest) (string, error) {
	if req.Fingerprint == "" {
		return c.next.Narrate(ctx, req)
	}
	if text, ok := c.cache.Get(req.Fingerprint); ok {
		return text, nil
	}
	text, err := c.next.Narrate(ctx, req)
	if err != nil {
		return "", err
	}
	c.cache.Add(req.Fingerprint, text)
	return text, nil
}

// Len reports the number of cached narratives.
func (c *CachedNarrator) Len() int {
	return c.cache.Len()
}
