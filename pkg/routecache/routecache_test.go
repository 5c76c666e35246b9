package routecache_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pressgate/pkg/cache"
	"github.com/dmitrymomot/pressgate/pkg/pipeline"
	"github.com/dmitrymomot/pressgate/pkg/routecache"
	"github.com/dmitrymomot/pressgate/pkg/routing"
)

func manifest(fp string) *routecache.Manifest {
	return &routecache.Manifest{
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Environment: "prod",
		Fingerprint: fp,
		Routes: []routing.Compiled{
			{Template: "/posts/{id}", Regex: `^/posts/((?:[0-9]+))$`, Params: []string{"id"}},
			{Template: "/about", Regex: `^/about$`},
		},
		RouteMiddleware: [][]string{{"auth", "throttle:60"}, {"request_id"}},
		UnmatchedMiddleware: map[string][]string{
			pipeline.GroupFrontend: {"request_id"},
		},
	}
}

func counting(m *routecache.Manifest, calls *int) routecache.BuildFunc {
	return func(context.Context) (*routecache.Manifest, error) {
		*calls++
		return m, nil
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	cfg := pipeline.Config{Groups: map[string][]string{"web": {"auth"}}}
	decl := []string{"web GET /posts/{id} name=posts.show"}

	a, err := routecache.Fingerprint(decl, cfg)
	require.NoError(t, err)
	b, err := routecache.Fingerprint(decl, cfg)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 64)

	c, err := routecache.Fingerprint(append(decl, "web GET /about name="), cfg)
	require.NoError(t, err)
	require.NotEqual(t, a, c)

	d, err := routecache.Fingerprint(decl, pipeline.Config{Priority: []string{"auth"}})
	require.NoError(t, err)
	require.NotEqual(t, a, d)
}

func TestCacheable(t *testing.T) {
	t.Parallel()

	require.True(t, routecache.Cacheable("prod"))
	require.False(t, routecache.Cacheable("dev"))
	require.True(t, routecache.Cacheable("staging", "prod", "staging"))
	require.False(t, routecache.Cacheable("prod", "staging"))
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("writes both files per environment", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s := routecache.NewFileStore(dir)
		require.Equal(t, filepath.Join(dir, "prod.routes-generated.yaml"), s.RoutesPath("prod"))
		require.Equal(t, filepath.Join(dir, "prod.middleware-map-generated.yaml"), s.MiddlewarePath("prod"))

		require.NoError(t, s.Save("prod", manifest("abc")))

		routes, err := os.ReadFile(s.RoutesPath("prod"))
		require.NoError(t, err)
		require.Contains(t, string(routes), "template: /posts/{id}")
		mw, err := os.ReadFile(s.MiddlewarePath("prod"))
		require.NoError(t, err)
		require.Contains(t, string(mw), "throttle:60")

		got, err := s.Load("prod")
		require.NoError(t, err)
		require.Equal(t, manifest("abc"), got)
	})

	t.Run("missing manifest", func(t *testing.T) {
		t.Parallel()

		_, err := routecache.NewFileStore(t.TempDir()).Load("prod")
		require.ErrorIs(t, err, routecache.ErrNotFound)
	})

	t.Run("torn manifest", func(t *testing.T) {
		t.Parallel()

		s := routecache.NewFileStore(t.TempDir())
		require.NoError(t, s.Save("prod", manifest("one")))
		other := routecache.NewFileStore(t.TempDir())
		require.NoError(t, other.Save("prod", manifest("two")))

		data, err := os.ReadFile(other.MiddlewarePath("prod"))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(s.MiddlewarePath("prod"), data, 0o644))

		_, err = s.Load("prod")
		require.ErrorIs(t, err, routecache.ErrInvalidManifest)
	})

	t.Run("fetch builds on miss and reuses on hit", func(t *testing.T) {
		t.Parallel()

		s := routecache.NewFileStore(t.TempDir())
		calls := 0

		m, hit, err := s.Fetch(ctx, "prod", "abc", counting(manifest("abc"), &calls))
		require.NoError(t, err)
		require.False(t, hit)
		require.Equal(t, "abc", m.Fingerprint)

		m, hit, err = s.Fetch(ctx, "prod", "abc", counting(manifest("abc"), &calls))
		require.NoError(t, err)
		require.True(t, hit)
		require.Equal(t, manifest("abc"), m)
		require.Equal(t, 1, calls)

		_, hit, err = s.Fetch(ctx, "prod", "changed", counting(manifest("changed"), &calls))
		require.NoError(t, err)
		require.False(t, hit)
		require.Equal(t, 2, calls)
	})

	t.Run("build errors", func(t *testing.T) {
		t.Parallel()

		s := routecache.NewFileStore(t.TempDir())
		boom := errors.New("boom")
		_, _, err := s.Fetch(ctx, "prod", "abc", func(context.Context) (*routecache.Manifest, error) {
			return nil, boom
		})
		require.ErrorIs(t, err, routecache.ErrBuild)
		require.ErrorIs(t, err, boom)
	})

	t.Run("clear", func(t *testing.T) {
		t.Parallel()

		s := routecache.NewFileStore(t.TempDir())
		require.NoError(t, s.Save("prod", manifest("abc")))
		require.NoError(t, s.Clear("prod"))
		require.NoError(t, s.Clear("prod"))

		_, err := s.Load("prod")
		require.ErrorIs(t, err, routecache.ErrNotFound)
	})
}

func TestCacheStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[*routecache.Manifest]()
		defer c.Close()
		s := routecache.NewCacheStore(c, 0)
		calls := 0

		_, hit, err := s.Fetch(ctx, "prod", "abc", counting(manifest("abc"), &calls))
		require.NoError(t, err)
		require.False(t, hit)

		m, hit, err := s.Fetch(ctx, "prod", "abc", counting(manifest("abc"), &calls))
		require.NoError(t, err)
		require.True(t, hit)
		require.Equal(t, "abc", m.Fingerprint)
		require.Equal(t, 1, calls)

		require.NoError(t, s.Forget(ctx, "prod", "abc"))
		_, hit, err = s.Fetch(ctx, "prod", "abc", counting(manifest("abc"), &calls))
		require.NoError(t, err)
		require.False(t, hit)
		require.Equal(t, 2, calls)
	})

	t.Run("redis", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		s := routecache.NewRedisStore(client, time.Hour, cache.WithPrefix("pressgate"))
		calls := 0

		_, hit, err := s.Fetch(ctx, "prod", "abc", counting(manifest("abc"), &calls))
		require.NoError(t, err)
		require.False(t, hit)

		key := "pressgate:" + routecache.Key("prod", "abc")
		require.True(t, mr.Exists(key))
		require.Equal(t, time.Hour, mr.TTL(key))

		m, hit, err := s.Fetch(ctx, "prod", "abc", counting(manifest("abc"), &calls))
		require.NoError(t, err)
		require.True(t, hit)
		require.Equal(t, manifest("abc"), m)
		require.Equal(t, 1, calls)
	})

	t.Run("manifest for another fingerprint is rejected", func(t *testing.T) {
		t.Parallel()

		c := cache.NewMemory[*routecache.Manifest]()
		defer c.Close()
		require.NoError(t, c.Set(ctx, routecache.Key("prod", "abc"), manifest("other"), 0))

		_, _, err := routecache.NewCacheStore(c, 0).Fetch(ctx, "prod", "abc", counting(manifest("abc"), new(int)))
		require.ErrorIs(t, err, routecache.ErrInvalidManifest)
	})
}
