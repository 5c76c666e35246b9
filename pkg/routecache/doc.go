// Package routecache persists compiled route tables and resolved middleware
// maps between boots.
//
// A Manifest is identified by a fingerprint of the route declarations and
// the middleware configuration. Stores return a cached manifest only when
// the fingerprint matches, and otherwise build and store a fresh one:
//
//	fp, err := routecache.Fingerprint(router.Declarations(), cfg)
//	m, hit, err := store.Fetch(ctx, "prod", fp, build)
//
// FileStore writes "<env>.routes-generated.yaml" and
// "<env>.middleware-map-generated.yaml" into a directory. CacheStore keeps
// manifests in a cache.Cache, for example Redis via NewRedisStore.
package routecache
