package cache

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a key-value object cache with per-entry TTL.
//
// A positive TTL expires the entry after that duration, zero applies the
// backend's default TTL and a negative TTL keeps the entry until it is
// deleted or evicted.
type Cache[V any] interface {
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Close() error
}

var sfGroup singleflight.Group

type computed[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet returns the cached value for key or computes it with fn.
// Concurrent misses for the same key share one call to fn. Errors from fn
// are returned and nothing is cached; failures to store the computed value
// are ignored.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err, _ := sfGroup.Do(key, func() (any, error) {
		val, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return computed[V]{val: val, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	r := v.(computed[V])
	_ = c.Set(ctx, key, r.val, r.ttl)
	return r.val, nil
}

// Pull returns the value for key and removes it from the cache.
func Pull[V any](ctx context.Context, c Cache[V], key string) (V, error) {
	v, err := c.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := c.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		var zero V
		return zero, err
	}
	return v, nil
}
