// Package cache provides key-addressed JSON storage used for cached list
// state, optimistic-mutation snapshots, and post-commit invalidation.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is absent, regardless of backend.
var ErrCacheMiss = errors.New("cache: key not found")

// Store is the key-addressed read/write contract the core consumes.
// Values are JSON-serialized by the implementation.
type Store interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
