package answer

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache memoizes generated answers keyed on the exact retrieval context and
// question. Capacity-bounded LRU with per-entry TTL; safe for concurrent use.
type Cache struct {
	lru *expirable.LRU[string, string]
}

// NewCache constructs a Cache holding up to capacity entries, each expiring
// after ttl.
func NewCache(capacity int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[string, string](capacity, nil, ttl)}
}

// Get returns the cached answer for the context/question pair, if present.
func (c *Cache) Get(contextText, question string) (string, bool) {
	return c.lru.Get(cacheKey(contextText, question))
}

// Put stores a generated answer for the context/question pair.
func (c *Cache) Put(contextText, question, answer string) {
	c.lru.Add(cacheKey(contextText, question), answer)
}

// Len reports the number of live entries, for metrics and tests.
func (c *Cache) Len() int {
	return c.lru.Len()
}

func cacheKey(contextText, question string) string {
	sum := sha256.Sum256([]byte(contextText + "\x00" + question))
	return hex.EncodeToString(sum[:])
}
