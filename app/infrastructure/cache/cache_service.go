package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redsync/redsync/v4"
)

// ErrCacheMiss reports that a key is absent. Anything else returned from Get
// is a cache-infrastructure fault.
var ErrCacheMiss = errors.New("cache: key not found")

// CacheService defines the interface for cache operations
type CacheService interface {
	// Set stores a value in cache with an expiration time
	Set(ctx context.Context, key string, value any, expiration time.Duration) error

	// Get retrieves a value from cache into dest
	Get(ctx context.Context, key string, dest any) error

	// GetWithFallback retrieves a value from cache, or executes the fallback
	// function on a miss and stores its result. The returned bool reports
	// whether the value was served from cache. Infrastructure faults degrade
	// to a direct fallback call and are never surfaced to the caller.
	GetWithFallback(ctx context.Context, key string, dest any, fallback func() (any, error), expiration time.Duration) (bool, error)

	// Delete removes a key from cache synchronously (blocking)
	Delete(ctx context.Context, key string) error

	// Unlink removes a key from cache asynchronously (non-blocking)
	Unlink(ctx context.Context, key string) error

	// DeletePattern removes all keys matching a glob pattern
	DeletePattern(ctx context.Context, pattern string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)

	// SlidingWindow counts one event against key and reports whether the
	// count stays within limit for the trailing window.
	SlidingWindow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)

	// Close closes the cache connection
	Close() error

	// HealthCheck verifies cache connectivity
	HealthCheck(ctx context.Context) error

	// NewMutex returns a distributed lock, or nil when the backend does not
	// support locking (callers must treat nil as "proceed without lock").
	NewMutex(name string, options ...redsync.Option) *redsync.Mutex
}
