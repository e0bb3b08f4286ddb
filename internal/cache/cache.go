// Package cache provides the short-lived cache behind the schedule
// availability view, with Redis and in-memory backends.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is not found in cache
var ErrCacheMiss = errors.New("cache miss")

// Cache defines the cache interface
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// ScheduleKey is the cache key for the slot-occupancy view. Every
// appointment write must invalidate it.
const ScheduleKey = "appointments:schedule"
