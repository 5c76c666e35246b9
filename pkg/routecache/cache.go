package routecache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/pressgate/pkg/cache"
)

// DefaultTTL is how long a manifest stays in an object cache. Manifests
// are keyed by fingerprint, so stale entries only age out.
const DefaultTTL = 24 * time.Hour

// CacheStore keeps manifests in an object cache under
// "<env>.routes-generated:<fingerprint>". Concurrent misses for the same
// key build once.
type CacheStore struct {
	cache cache.Cache[*Manifest]
	ttl   time.Duration
}

// NewCacheStore creates a store over c. A non-positive ttl uses DefaultTTL.
func NewCacheStore(c cache.Cache[*Manifest], ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CacheStore{cache: c, ttl: ttl}
}

// NewRedisStore creates a store backed by Redis. Manifests are encoded as
// YAML, the same format the file store writes.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration, opts ...cache.RedisOption) *CacheStore {
	return NewCacheStore(cache.NewRedis(client, cache.YAML[*Manifest]{}, opts...), ttl)
}

// Key returns the cache key of the manifest for env and fingerprint.
func Key(env, fingerprint string) string {
	return env + ".routes-generated:" + fingerprint
}

// Fetch implements Store.
func (s *CacheStore) Fetch(ctx context.Context, env, fingerprint string, build BuildFunc) (*Manifest, bool, error) {
	hit := true
	m, err := cache.GetOrSet(ctx, s.cache, Key(env, fingerprint), func(ctx context.Context) (*Manifest, time.Duration, error) {
		hit = false
		m, err := build(ctx)
		if err != nil {
			return nil, 0, errors.Join(ErrBuild, err)
		}
		return m, s.ttl, nil
	})
	if err != nil {
		return nil, false, err
	}
	if !m.Valid(fingerprint) {
		return nil, false, ErrInvalidManifest
	}
	return m, hit, nil
}

// Forget removes the manifest for env and fingerprint.
func (s *CacheStore) Forget(ctx context.Context, env, fingerprint string) error {
	return s.cache.Delete(ctx, Key(env, fingerprint))
}
