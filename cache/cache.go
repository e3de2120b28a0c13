// Package cache provides a TTL key-value store whose loads are single-writer per key.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/aluiziolira/cinesent/metrics"
)

// Loader computes the value for a key on a miss.
type Loader[V any] func(ctx context.Context) (V, error)

// Store caches values of type V for a fixed TTL.
// Concurrent GetOrLoad calls for one key share a single Loader invocation; errors are never stored.
type Store[V any] struct {
	name    string
	lru     *expirable.LRU[string, V]
	group   singleflight.Group
	metrics *metrics.Metrics
}

// New returns a Store holding at most size entries, each valid for ttl.
func New[V any](name string, size int, ttl time.Duration, m *metrics.Metrics) *Store[V] {
	if size <= 0 {
		size = 1
	}
	return &Store[V]{
		name:    name,
		lru:     expirable.NewLRU[string, V](size, nil, ttl),
		metrics: m,
	}
}

// Get returns a live entry for key.
func (s *Store[V]) Get(key string) (V, bool) {
	v, ok := s.lru.Get(key)
	s.metrics.IncCache(s.name, ok)
	return v, ok
}

// Add stores value under key, replacing any previous entry.
func (s *Store[V]) Add(key string, value V) {
	s.lru.Add(key, value)
}

// Len returns the number of entries, including ones not yet purged after expiry.
func (s *Store[V]) Len() int {
	return s.lru.Len()
}

// GetOrLoad returns the cached value for key, or runs load once and stores its result.
// hit reports whether the value came from the store.
func (s *Store[V]) GetOrLoad(ctx context.Context, key string, load Loader[V]) (value V, hit bool, err error) {
	if v, ok := s.Get(key); ok {
		return v, true, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		// A concurrent caller may have filled the entry while this one waited.
		if v, ok := s.lru.Peek(key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		s.lru.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}
	return result.(V), false, nil
}

// Key joins an operation name and its parameters into a cache key.
func Key(operation string, parts ...string) string {
	normalized := make([]string, 0, len(parts)+1)
	normalized = append(normalized, operation)
	for _, p := range parts {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(p)))
	}
	return strings.Join(normalized, "|")
}

// Fingerprint hashes a secret so it can take part in a key without being stored.
func Fingerprint(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:8])
}

// IntPart formats an integer key part.
func IntPart(n int) string {
	return strconv.Itoa(n)
}
