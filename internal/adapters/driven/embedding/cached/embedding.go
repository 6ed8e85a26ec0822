// Package cached wraps an embedding service with an in-memory LRU cache.
// Question answering embeds the same query text repeatedly; the cache keeps
// those calls off the provider.
package cached

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/docmatch/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultSize is the default number of vectors kept.
const DefaultSize = 1000

// EmbeddingService returns cached vectors for repeated texts.
type EmbeddingService struct {
	inner driven.EmbeddingService
	cache *lru.Cache[string, []float32]
}

// New wraps inner with a cache of the given size.
func New(inner driven.EmbeddingService, size int) *EmbeddingService {
	if size <= 0 {
		size = DefaultSize
	}
	cache, _ := lru.New[string, []float32](size) //nolint:errcheck // size is positive
	return &EmbeddingService{inner: inner, cache: cache}
}

func (c *EmbeddingService) key(text string) string {
	sum := sha256.Sum256([]byte(text + "\x00" + c.inner.ModelName()))
	return hex.EncodeToString(sum[:])
}

// Embed returns the cached vector when present, otherwise calls the inner
// service and caches a successful result. Failures are never cached.
func (c *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)
	if vec, ok := c.cache.Get(key); ok {
		return clone(vec), nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, clone(vec))
	return vec, nil
}

// callers may normalise vectors in place
func clone(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}

// Len returns the number of cached vectors.
func (c *EmbeddingService) Len() int {
	return c.cache.Len()
}

// Dimensions passes through to the inner service.
func (c *EmbeddingService) Dimensions() int {
	return c.inner.Dimensions()
}

// ModelName passes through to the inner service.
func (c *EmbeddingService) ModelName() string {
	return c.inner.ModelName()
}

// Ping passes through to the inner service.
func (c *EmbeddingService) Ping(ctx context.Context) error {
	return c.inner.Ping(ctx)
}

// Close purges the cache and closes the inner service.
func (c *EmbeddingService) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}

// Inner returns the wrapped service.
func (c *EmbeddingService) Inner() driven.EmbeddingService {
	return c.inner
}
