// Package redis opens go-redis clients from a URL or a Config, retrying
// until the server answers, and provides readiness and shutdown hooks.
//
//	client, err := redis.Connect(ctx, cfg.Redis)
//	if err != nil {
//		return err
//	}
//	store := routecache.NewRedisStore(client, time.Hour, cache.WithPrefix("routes"))
package redis
