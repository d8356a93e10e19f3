package lib

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type cacheEntry[V any] struct {
	value      V
	expiration time.Time
}

// Cache is a map with per-entry expiry. A zero ttl keeps entries forever.
type Cache[K comparable, V any] struct {
	logger  *zerolog.Logger
	entries map[K]cacheEntry[V]
	mu      sync.RWMutex
	ttl     time.Duration
}

func NewCache[K comparable, V any](ttl time.Duration, logger *zerolog.Logger) *Cache[K, V] {
	return &Cache[K, V]{
		logger:  logger,
		entries: make(map[K]cacheEntry[V]),
		ttl:     ttl,
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || (!entry.expiration.IsZero() && time.Now().After(entry.expiration)) {
		var zero V
		return zero, false
	}

	c.logger.Trace().
		Interface("key", key).
		Msg("cache hit")

	return entry.value, true
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := cacheEntry[V]{value: value}
	if c.ttl > 0 {
		entry.expiration = time.Now().Add(c.ttl)
	}
	c.entries[key] = entry
}

// GetOrCreate returns the cached value for key, calling create on a miss.
// Failed creations are not cached.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := create()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func HashParams(params ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(params, ",")))
	return fmt.Sprintf("%x", hash)
}
