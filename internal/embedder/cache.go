package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Shreyr69/hackrx/internal/rag"
)

// CachingEmbedder wraps another rag.Embedder with a TTL cache keyed on the
// model and the exact text. Only the texts missing from the cache are sent to
// the backend, preserving batch order in the result.
type CachingEmbedder struct {
	inner rag.Embedder
	model string
	cache *gocache.Cache
}

// NewCachingEmbedder wraps inner with a cache. Entries expire after ttl; the
// model name is mixed into the key so switching models never serves stale
// vectors.
func NewCachingEmbedder(inner rag.Embedder, model string, ttl time.Duration) *CachingEmbedder {
	return &CachingEmbedder{
		inner: inner,
		model: model,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Embed returns cached vectors where available and delegates the remainder to
// the wrapped embedder in a single batch.
func (c *CachingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingAt []int
	for i, text := range texts {
		if v, ok := c.cache.Get(c.key(text)); ok {
			out[i] = v.([]float32)
			continue
		}
		missing = append(missing, text)
		missingAt = append(missingAt, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := c.inner.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("caching embedder: expected %d embeddings, got %d: %w", len(missing), len(vectors), ErrMalformedResponse)
	}
	for j, v := range vectors {
		i := missingAt[j]
		out[i] = v
		c.cache.SetDefault(c.key(texts[i]), v)
	}
	return out, nil
}

func (c *CachingEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
