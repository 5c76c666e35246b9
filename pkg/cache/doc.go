// Package cache provides a generic object cache with in-memory and Redis
// backends.
//
// Both backends implement [Cache]. Memory keeps entries in process with TTL
// expiry and optional LRU eviction; Redis encodes entries with a
// [Marshaler] (JSON by default, or YAML) and shares them between processes.
//
// [GetOrSet] computes missing values once even under concurrent misses:
//
//	m, err := cache.GetOrSet(ctx, c, key, func(ctx context.Context) (*Manifest, time.Duration, error) {
//		m, err := build(ctx)
//		return m, time.Hour, err
//	})
package cache
