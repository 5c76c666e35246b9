package routing_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pressgate/pkg/routing"
)

func TestGenerator_ToRoute(t *testing.T) {
	t.Parallel()

	c := build(t, func(r *routing.Router) {
		r.Get("/", text("home")).Name("home")
		r.Get("/users/{id}/{name?}", text("user")).Name("users.show").RequireNum("id")
		r.Get("/archive/{year?}/{month?}", text("archive")).Name("archive")
		r.Get("/files/{name}", text("file")).Name("file")
		r.Get("/docs/", text("docs")).Name("docs")
	})
	g := routing.NewGenerator(c, routing.URLContext{Host: "example.com", Scheme: "http", HTTPPort: 80, HTTPSPort: 443})

	t.Run("static route", func(t *testing.T) {
		t.Parallel()

		u, err := g.ToRoute("home", nil, routing.AbsolutePath)
		require.NoError(t, err)
		require.Equal(t, "/", u)

		u, err = g.ToRoute("docs", nil, routing.AbsolutePath)
		require.NoError(t, err)
		require.Equal(t, "/docs/", u)
	})

	t.Run("fills segments", func(t *testing.T) {
		t.Parallel()

		u, err := g.ToRoute("users.show", map[string]any{"id": 1, "name": "calvin"}, routing.AbsolutePath)
		require.NoError(t, err)
		require.Equal(t, "/users/1/calvin", u)
	})

	t.Run("omits missing optional segments", func(t *testing.T) {
		t.Parallel()

		u, err := g.ToRoute("users.show", map[string]any{"id": 1}, routing.AbsolutePath)
		require.NoError(t, err)
		require.Equal(t, "/users/1", u)

		u, err = g.ToRoute("archive", nil, routing.AbsolutePath)
		require.NoError(t, err)
		require.Equal(t, "/archive", u)
	})

	t.Run("later optional segment needs the earlier one", func(t *testing.T) {
		t.Parallel()

		_, err := g.ToRoute("archive", map[string]any{"month": 5}, routing.AbsolutePath)
		require.ErrorIs(t, err, routing.ErrMissingParameter)
	})

	t.Run("missing required segment", func(t *testing.T) {
		t.Parallel()

		_, err := g.ToRoute("users.show", map[string]any{"name": "calvin"}, routing.AbsolutePath)
		require.ErrorIs(t, err, routing.ErrMissingParameter)
	})

	t.Run("value must satisfy constraint", func(t *testing.T) {
		t.Parallel()

		_, err := g.ToRoute("users.show", map[string]any{"id": "abc"}, routing.AbsolutePath)
		require.ErrorIs(t, err, routing.ErrInvalidParameter)
	})

	t.Run("unknown route", func(t *testing.T) {
		t.Parallel()

		_, err := g.ToRoute("missing", nil, routing.AbsolutePath)
		require.ErrorIs(t, err, routing.ErrRouteNotFound)
	})

	t.Run("leftover params become query", func(t *testing.T) {
		t.Parallel()

		u, err := g.ToRoute("users.show", map[string]any{"id": 1, "tab": "posts", "page": 2, "_fragment": "top"}, routing.AbsolutePath)
		require.NoError(t, err)
		require.Equal(t, "/users/1?page=2&tab=posts#top", u)
	})

	t.Run("encodes values and keeps encoded slashes", func(t *testing.T) {
		t.Parallel()

		u, err := g.ToRoute("file", map[string]any{"name": "a/b c"}, routing.AbsolutePath)
		require.NoError(t, err)
		require.Equal(t, "/files/a%2Fb%20c", u)
	})

	t.Run("absolute and secure urls", func(t *testing.T) {
		t.Parallel()

		u, err := g.ToRoute("home", nil, routing.AbsoluteURL)
		require.NoError(t, err)
		require.Equal(t, "http://example.com/", u)

		u, err = g.ToRoute("home", nil, routing.SecureURL)
		require.NoError(t, err)
		require.Equal(t, "https://example.com/", u)
	})

	t.Run("non default ports", func(t *testing.T) {
		t.Parallel()

		g := g.WithContext(routing.URLContext{Host: "example.com", Scheme: "http", HTTPPort: 8080, HTTPSPort: 8443})

		u, err := g.To("/foo", nil, routing.AbsoluteURL)
		require.NoError(t, err)
		require.Equal(t, "http://example.com:8080/foo", u)

		u, err = g.To("foo", map[string]any{"a": 1}, routing.SecureURL)
		require.NoError(t, err)
		require.Equal(t, "https://example.com:8443/foo?a=1", u)
	})
}

func TestGenerator_RoundTrip(t *testing.T) {
	t.Parallel()

	c := build(t, func(r *routing.Router) {
		r.Get("/users/{id}/{name?}", text("user")).Name("user")
		r.Get("/posts/{year}/{slug}", text("post")).Name("post").RequireNum("year")
		r.Get("/files/{path}", text("file")).Name("file")
	})
	g := routing.NewGenerator(c, routing.DefaultURLContext())

	cases := []struct {
		name   string
		params map[string]any
	}{
		{"user", map[string]any{"id": 1, "name": "calvin"}},
		{"user", map[string]any{"id": 42}},
		{"post", map[string]any{"year": 2024, "slug": "hello world"}},
		{"file", map[string]any{"path": "docs/readme.md"}},
		{"file", map[string]any{"path": "ünïcode"}},
		{"file", map[string]any{"path": "100%25"}},
		{"file", map[string]any{"path": "a%41b"}},
		{"file", map[string]any{"path": "a%2Fb"}},
		{"file", map[string]any{"path": "50% off"}},
	}

	for _, tc := range cases {
		u, err := g.ToRoute(tc.name, tc.params, routing.AbsolutePath)
		require.NoError(t, err)

		res := mustMatch(t, c, http.MethodGet, u)
		require.Equal(t, tc.name, res.Route().Name())
		require.Equal(t, tc.params, res.Params(), u)
	}
}

func TestURLContextFromRequest(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "http://shop.test:8080/foo", nil)
	ctx := routing.URLContextFromRequest(req, routing.DefaultURLContext())
	require.Equal(t, "shop.test", ctx.Host)
	require.Equal(t, "http", ctx.Scheme)
	require.Equal(t, 8080, ctx.HTTPPort)
	require.Equal(t, 443, ctx.HTTPSPort)

	req = httptest.NewRequest(http.MethodGet, "http://shop.test/foo", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	ctx = routing.URLContextFromRequest(req, routing.DefaultURLContext())
	require.Equal(t, "https", ctx.Scheme)
}
