package routing_test

import (
	"net/http"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pressgate/pkg/routing"
)

func TestCollection_Add(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		declare func(r *routing.Router)
		err     error
	}{
		{
			name: "duplicate static path and method",
			declare: func(r *routing.Router) {
				r.Get("/foo", text("a"))
				r.Get("/foo", text("b"))
			},
			err: routing.ErrDuplicateRoute,
		},
		{
			name: "head overlaps get",
			declare: func(r *routing.Router) {
				r.Get("/foo", text("a"))
				r.Match([]string{http.MethodHead}, "/foo", text("b"))
			},
			err: routing.ErrDuplicateRoute,
		},
		{
			name: "static shadowed by earlier dynamic route",
			declare: func(r *routing.Router) {
				r.Get("/{foo}", text("a"))
				r.Get("/foo", text("b"))
			},
			err: routing.ErrBadRouteConfiguration,
		},
		{
			name: "duplicate dynamic pattern",
			declare: func(r *routing.Router) {
				r.Get("/posts/{id}", text("a"))
				r.Get("/posts/{slug}", text("b"))
			},
			err: routing.ErrDuplicateRoute,
		},
		{
			name: "route after fallback",
			declare: func(r *routing.Router) {
				r.Fallback(text("fallback"))
				r.Get("/foo", text("a"))
			},
			err: routing.ErrRouteAfterFallback,
		},
		{
			name: "same name and same url",
			declare: func(r *routing.Router) {
				r.Get("/foo", text("a")).Name("foo")
				r.Post("/foo", text("b")).Name("foo")
			},
			err: routing.ErrDuplicateRoute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := routing.NewRouter()
			tt.declare(r)
			_, err := r.Build()
			require.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("static before dynamic is allowed", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Get("/foo", text("a")).Name("static")
			r.Get("/{foo}", text("b")).Name("dynamic")
		})
		require.Equal(t, 2, c.Len())
		require.Equal(t, "static", mustMatch(t, c, http.MethodGet, "/foo").Route().Name())
		require.Equal(t, "dynamic", mustMatch(t, c, http.MethodGet, "/bar").Route().Name())
	})

	t.Run("same path with different methods", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Get("/foo", text("get"))
			r.Post("/foo", text("post"))
			r.Get("/{x}/edit", text("get"))
			r.Post("/{x}/edit", text("post"))
		})
		require.Equal(t, 4, c.Len())
	})

	t.Run("same name with different url takes over the name", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Get("/old", text("old")).Name("page")
			r.Get("/new", text("new")).Name("page")
		})

		route, ok := c.ByName("page")
		require.True(t, ok)
		require.Equal(t, "/new", route.Pattern())
	})

	t.Run("all keeps registration order", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Get("/{a}/x", text("1"))
			r.Get("/b", text("2"))
			r.Get("/c", text("3"))
			r.Fallback(text("4"))
		})

		var patterns []string
		for route := range c.All() {
			patterns = append(patterns, route.Pattern())
		}
		require.Equal(t, []string{"/{a}/x", "/b", "/c", "/{path:.*}"}, patterns)
		require.NotNil(t, c.Fallback())
		require.True(t, slices.Contains(c.Fallback().Methods(), http.MethodGet))
	})
}

func TestRouter_BadPatterns(t *testing.T) {
	t.Parallel()

	patterns := []string{
		"/users/{id",
		"/users/id}",
		"/users/{}",
		"/users/{1id}",
		"/users/{id}/{id}",
		"/users/{name?}/{id}",
		"/users/{id:(a|b)}",
		"/users/{id:[}",
		"/users//edit",
		"/{page?}/",
		"/files/{a?}{b?}",
		"/files/{a}-{b?}",
	}

	for _, p := range patterns {
		t.Run(p, func(t *testing.T) {
			t.Parallel()

			r := routing.NewRouter()
			r.Get(p, text("x"))
			_, err := r.Build()
			require.ErrorIs(t, err, routing.ErrBadRouteConfiguration)
		})
	}

	t.Run("requirement for unknown parameter", func(t *testing.T) {
		t.Parallel()

		r := routing.NewRouter()
		r.Get("/users/{id}", text("x")).RequireNum("uid")
		_, err := r.Build()
		require.ErrorIs(t, err, routing.ErrBadRouteConfiguration)
	})

	t.Run("all errors are reported", func(t *testing.T) {
		t.Parallel()

		r := routing.NewRouter()
		r.Get("/a/{", text("x"))
		r.Get("/b", text("x"))
		r.Get("/b", text("x"))
		_, err := r.Build()
		require.ErrorIs(t, err, routing.ErrBadRouteConfiguration)
		require.ErrorIs(t, err, routing.ErrDuplicateRoute)
	})
}
