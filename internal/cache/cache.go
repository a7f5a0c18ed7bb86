// Package cache provides the read-through cache client contract and the
// coherence manager that keeps cached reads from diverging past their TTL.
package cache

import (
	"context"
	"time"
)

// Cache is the client contract for the read-through caches. Evicting an
// absent key is a no-op, never an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Evict(ctx context.Context, keys ...string) error

	// EvictByPrefix removes every entry under a partition prefix, used for
	// listing aggregates that embed fields of many entities.
	EvictByPrefix(ctx context.Context, prefix string) error
}
