package routing_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pressgate/pkg/pipeline"
	"github.com/dmitrymomot/pressgate/pkg/response"
	"github.com/dmitrymomot/pressgate/pkg/routing"
)

func text(body string) pipeline.HandlerFunc {
	return func(*http.Request) (*response.Response, error) {
		return response.Text(http.StatusOK, body)
	}
}

func build(t *testing.T, declare func(r *routing.Router)) *routing.Collection {
	t.Helper()

	r := routing.NewRouter()
	declare(r)
	c, err := r.Build()
	require.NoError(t, err)
	return c
}

func match(t *testing.T, c *routing.Collection, method, target string) (routing.Result, error) {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	return routing.NewMatcher(c).Match(routing.DefaultAreas().MatchContext(req))
}

func mustMatch(t *testing.T, c *routing.Collection, method, target string) routing.Result {
	t.Helper()

	res, err := match(t, c, method, target)
	require.NoError(t, err)
	require.True(t, res.IsMatch(), "expected %s %s to match", method, target)
	return res
}

func TestMatcher_Static(t *testing.T) {
	t.Parallel()

	c := build(t, func(r *routing.Router) {
		r.Get("/foo", text("foo")).Name("foo")
		r.Post("/bar", text("bar"))
	})

	t.Run("matches path and method", func(t *testing.T) {
		t.Parallel()

		res := mustMatch(t, c, http.MethodGet, "/foo")
		require.Equal(t, "foo", res.Route().Name())
		require.Empty(t, res.Params())
	})

	t.Run("get answers head", func(t *testing.T) {
		t.Parallel()

		res := mustMatch(t, c, http.MethodHead, "/foo")
		require.Equal(t, "foo", res.Route().Name())
	})

	t.Run("method mismatch", func(t *testing.T) {
		t.Parallel()

		_, err := match(t, c, http.MethodPost, "/foo")
		require.ErrorIs(t, err, routing.ErrMethodNotAllowed)

		var mna *routing.MethodNotAllowedError
		require.ErrorAs(t, err, &mna)
		require.Equal(t, "/foo", mna.Path)
		require.Equal(t, []string{http.MethodGet}, mna.Allowed)
	})

	t.Run("no match is not an error", func(t *testing.T) {
		t.Parallel()

		res, err := match(t, c, http.MethodGet, "/missing")
		require.NoError(t, err)
		require.False(t, res.IsMatch())
		require.Nil(t, res.Route())
	})

	t.Run("trailing slash is significant", func(t *testing.T) {
		t.Parallel()

		res, err := match(t, c, http.MethodGet, "/foo/")
		require.NoError(t, err)
		require.False(t, res.IsMatch())
	})
}

func TestMatcher_Conditions(t *testing.T) {
	t.Parallel()

	c := build(t, func(r *routing.Router) {
		r.Get("/foo", text("static")).Name("static").When(routing.QueryHas("preview"))
		r.Get("/{page}", text("dynamic")).Name("dynamic")
	})

	t.Run("static route with passing condition", func(t *testing.T) {
		t.Parallel()

		res := mustMatch(t, c, http.MethodGet, "/foo?preview=1")
		require.Equal(t, "static", res.Route().Name())
	})

	t.Run("failing condition falls through to dynamic routes", func(t *testing.T) {
		t.Parallel()

		res := mustMatch(t, c, http.MethodGet, "/foo")
		require.Equal(t, "dynamic", res.Route().Name())
		require.Equal(t, "foo", res.ParamString("page"))
	})

	t.Run("dynamic route with failing condition is skipped", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Get("/posts/{id}", text("json")).Name("json").When(routing.AcceptsJSON())
			r.Get("/posts/{id}", text("html")).Name("html").When(routing.Not(routing.AcceptsJSON()))
		})

		res := mustMatch(t, c, http.MethodGet, "/posts/1")
		require.Equal(t, "html", res.Route().Name())
	})
}

func TestMatcher_Dynamic(t *testing.T) {
	t.Parallel()

	t.Run("optional segment uses default", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Get("/users/{id}/{name?}", text("user")).Default("name", "default_user")
		})

		res := mustMatch(t, c, http.MethodGet, "/users/1")
		require.Equal(t, map[string]any{"id": 1, "name": "default_user"}, res.Params())

		res = mustMatch(t, c, http.MethodGet, "/users/1/calvin")
		require.Equal(t, map[string]any{"id": 1, "name": "calvin"}, res.Params())
	})

	t.Run("optional segment without default is absent", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Get("/users/{id}/{name?}", text("user"))
		})

		res := mustMatch(t, c, http.MethodGet, "/users/1")
		require.Equal(t, map[string]any{"id": 1}, res.Params())
	})

	t.Run("nested optional segments", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Get("/archive/{year?}/{month?}", text("archive"))
		})

		require.Equal(t, map[string]any{}, mustMatch(t, c, http.MethodGet, "/archive").Params())
		require.Equal(t, map[string]any{"year": 2024}, mustMatch(t, c, http.MethodGet, "/archive/2024").Params())
		require.Equal(t, map[string]any{"year": 2024, "month": 5}, mustMatch(t, c, http.MethodGet, "/archive/2024/05").Params())
	})

	t.Run("only optional segments", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Get("/{page?}", text("page"))
		})

		require.Empty(t, mustMatch(t, c, http.MethodGet, "/").Params())
		require.Equal(t, map[string]any{"page": "about"}, mustMatch(t, c, http.MethodGet, "/about").Params())
	})

	t.Run("optional segment with literal", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Get("/blog/page-{n?}", text("blog")).RequireNum("n")
		})

		require.Empty(t, mustMatch(t, c, http.MethodGet, "/blog").Params())
		require.Equal(t, map[string]any{"n": 3}, mustMatch(t, c, http.MethodGet, "/blog/page-3").Params())

		res, err := match(t, c, http.MethodGet, "/blog/page-x")
		require.NoError(t, err)
		require.False(t, res.IsMatch())
	})

	t.Run("requirements", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Get("/num/{id}", text("num")).RequireNum("id")
			r.Get("/alpha/{name}", text("alpha")).RequireAlpha("name")
			r.Get("/alnum/{code}", text("alnum")).RequireAlphaNum("code")
			r.Get("/lang/{lang}", text("lang")).RequireOneOf("lang", "en", "de")
			r.Get("/inline/{id:[0-9]{2}}", text("inline"))
		})

		cases := []struct {
			path string
			ok   bool
		}{
			{"/num/12", true},
			{"/num/ab", false},
			{"/alpha/abc", true},
			{"/alpha/ab1", false},
			{"/alnum/ab1", true},
			{"/alnum/ab-1", false},
			{"/lang/en", true},
			{"/lang/fr", false},
			{"/inline/42", true},
			{"/inline/123", false},
		}
		for _, tc := range cases {
			res, err := match(t, c, http.MethodGet, tc.path)
			require.NoError(t, err)
			require.Equal(t, tc.ok, res.IsMatch(), tc.path)
		}
	})

	t.Run("first registered wins", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Get("/posts/{slug}", text("first")).Name("first")
			r.Get("/posts/{id:[0-9]+}", text("second")).Name("second")
		})

		require.Equal(t, "first", mustMatch(t, c, http.MethodGet, "/posts/12").Route().Name())
	})

	t.Run("encoded slash stays in segment", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Get("/files/{name}", text("file"))
		})

		res := mustMatch(t, c, http.MethodGet, "/files/a%2Fb")
		require.Equal(t, "a%2Fb", res.RawParams()["name"])
		require.Equal(t, "a/b", res.Params()["name"])
	})

	t.Run("decodes values", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Get("/tags/{tag}", text("tag"))
		})

		res := mustMatch(t, c, http.MethodGet, "/tags/hello%20world")
		require.Equal(t, "hello world", res.Params()["tag"])

		res = mustMatch(t, c, http.MethodGet, "/tags/100%2525")
		require.Equal(t, "100%25", res.Params()["tag"])
		require.Equal(t, "100%25", res.ParamString("tag"))

		res = mustMatch(t, c, http.MethodGet, "/tags/a%252Fb")
		require.Equal(t, "a%2Fb", res.Params()["tag"])
	})

	t.Run("method not allowed on dynamic route", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Post("/posts/{id}", text("post"))
			r.Put("/posts/{id}", text("put"))
		})

		_, err := match(t, c, http.MethodGet, "/posts/1")
		var mna *routing.MethodNotAllowedError
		require.ErrorAs(t, err, &mna)
		require.Equal(t, []string{http.MethodPost, http.MethodPut}, mna.Allowed)
	})
}

func TestMatcher_Areas(t *testing.T) {
	t.Parallel()

	c := build(t, func(r *routing.Router) {
		r.Get("/wp-admin/settings", text("web")).Name("web")
		r.Admin(func(r *routing.Router) {
			r.Get("/settings", text("admin")).Name("admin.settings")
		})
		r.AdminPage("my-plugin", text("page")).Name("admin.page")
		r.API("/api/v1", func(r *routing.Router) {
			r.Get("/posts", text("api")).Name("api.posts")
		})
	})

	t.Run("admin requests only see admin routes", func(t *testing.T) {
		t.Parallel()

		res := mustMatch(t, c, http.MethodGet, "/wp-admin/settings")
		require.Equal(t, "admin.settings", res.Route().Name())
		require.Equal(t, routing.AreaAdmin, res.Route().Area())
	})

	t.Run("admin page query is rewritten", func(t *testing.T) {
		t.Parallel()

		res := mustMatch(t, c, http.MethodGet, "/wp-admin/admin.php?page=my-plugin")
		require.Equal(t, "admin.page", res.Route().Name())
	})

	t.Run("api routes match in web scope", func(t *testing.T) {
		t.Parallel()

		res := mustMatch(t, c, http.MethodGet, "/api/v1/posts")
		require.Equal(t, routing.AreaAPI, res.Route().Area())
	})

	t.Run("detect", func(t *testing.T) {
		t.Parallel()

		areas := routing.Areas{AdminPrefix: "/wp-admin", APIPrefixes: []string{"/api"}}
		require.Equal(t, routing.AreaAdmin, areas.Detect("/wp-admin"))
		require.Equal(t, routing.AreaAdmin, areas.Detect("/wp-admin/edit.php"))
		require.Equal(t, routing.AreaWeb, areas.Detect("/wp-administrator"))
		require.Equal(t, routing.AreaAPI, areas.Detect("/api/posts"))
		require.Equal(t, routing.AreaWeb, areas.Detect("/blog"))
	})
}

func TestMatcher_Fallback(t *testing.T) {
	t.Parallel()

	t.Run("captures whole path", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Get("/foo", text("foo"))
			r.Fallback(text("fallback"))
		})

		res := mustMatch(t, c, http.MethodGet, "/some/deep/page")
		require.True(t, res.Route().IsFallback())
		require.Equal(t, "some/deep/page", res.Params()[routing.FallbackParam])
	})

	t.Run("default excludes", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Fallback(text("fallback"))
		})

		for _, p := range []string{"/favicon.ico", "/robots.txt", "/sitemap.xml"} {
			res, err := match(t, c, http.MethodGet, p)
			require.NoError(t, err)
			require.False(t, res.IsMatch(), p)
		}
	})

	t.Run("custom excludes with alternation", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Fallback(text("fallback"), "wp-json(/.*)?|feed", "assets/.*")
		})

		for _, p := range []string{"/wp-json/v2", "/feed", "/assets/app.js"} {
			res, err := match(t, c, http.MethodGet, p)
			require.NoError(t, err)
			require.False(t, res.IsMatch(), p)
		}
		require.True(t, mustMatch(t, c, http.MethodGet, "/favicon.ico").Route().IsFallback())
		require.True(t, mustMatch(t, c, http.MethodGet, "/feed/atom").Route().IsFallback())
		require.True(t, mustMatch(t, c, http.MethodGet, "/assets").Route().IsFallback())
	})

	t.Run("excludes match whole paths", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Fallback(text("fallback"))
		})

		for _, p := range []string{"/robots.txt.bak", "/favicon.icons/x", "/sitemap.xml/page"} {
			require.True(t, mustMatch(t, c, http.MethodGet, p).Route().IsFallback(), p)
		}
	})

	t.Run("not used for admin requests", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Fallback(text("fallback"))
		})

		res, err := match(t, c, http.MethodGet, "/wp-admin/index.php")
		require.NoError(t, err)
		require.False(t, res.IsMatch())
	})

	t.Run("only answers get and head", func(t *testing.T) {
		t.Parallel()

		c := build(t, func(r *routing.Router) {
			r.Fallback(text("fallback"))
		})

		res, err := match(t, c, http.MethodPost, "/contact")
		require.NoError(t, err)
		require.False(t, res.IsMatch())
	})
}

func TestResult(t *testing.T) {
	t.Parallel()

	c := build(t, func(r *routing.Router) {
		r.Get("/a/{x}", text("a")).Name("a")
	})
	route, ok := c.ByName("a")
	require.True(t, ok)

	res := routing.Matched(route, map[string]string{"x": "007"})
	require.Equal(t, 7, res.Params()["x"])

	res2 := res.WithParams(map[string]string{"x": "abc"})
	require.Equal(t, "abc", res2.Params()["x"])
	require.Equal(t, 7, res.Params()["x"])

	require.False(t, routing.NoMatch().IsMatch())
	require.Empty(t, routing.NoMatch().Params())
	require.False(t, routing.NoMatch().WithParams(map[string]string{"x": "1"}).IsMatch())
}
