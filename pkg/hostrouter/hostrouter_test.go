package hostrouter_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pressgate/pkg/hostrouter"
)

func site(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, name)
	})
}

func get(h http.Handler, host string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = host
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter(t *testing.T) {
	t.Parallel()

	router := hostrouter.New(hostrouter.Routes{
		"shop.example.com":   site("shop"),
		"*.example.com":      site("sites"),
		"*.eu.example.com":   site("eu"),
		"Blog.Example.org":   site("blog"),
		"":                   site("ignored"),
		"[::1]":              site("loopback"),
		"nil.example.com":    nil,
		"*.internal.example": site("internal"),
	}, site("main"))

	tests := []struct {
		host string
		want string
	}{
		{"shop.example.com", "shop"},
		{"SHOP.example.com:8443", "shop"},
		{"shop.example.com.", "shop"},
		{"news.example.com", "sites"},
		{"a.b.example.com", "sites"},
		{"paris.eu.example.com", "eu"},
		{"eu.example.com", "sites"},
		{"example.com", "main"},
		{"blog.example.org", "blog"},
		{"other.test", "main"},
		{"[::1]:8080", "loopback"},
		{"nil.example.com", "sites"},
		{"x.internal.example", "internal"},
		{"internal.example", "main"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, get(router, tt.host).Body.String())
		})
	}

	t.Run("handler reports fallback", func(t *testing.T) {
		t.Parallel()

		_, ok := router.Handler("shop.example.com")
		require.True(t, ok)
		_, ok = router.Handler("other.test")
		require.False(t, ok)
	})
}

func TestRouter_NilFallback(t *testing.T) {
	t.Parallel()

	router := hostrouter.New(nil, nil)
	require.Equal(t, http.StatusNotFound, get(router, "example.com").Code)
}

func TestGetDomain(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"example.com":         "example.com",
		"example.com:8080":    "example.com",
		"API.Example.Com:443": "api.example.com",
		"example.com.":        "example.com",
		"192.168.1.1:8080":    "192.168.1.1",
		"[::1]":               "[::1]",
		"[::1]:8080":          "[::1]",
		"[2001:DB8::1]:443":   "[2001:db8::1]",
	}
	for host, want := range tests {
		t.Run(host, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = host
			require.Equal(t, want, hostrouter.GetDomain(req))
		})
	}
}

func TestGetSubdomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		base string
		want string
	}{
		{"foo.example.com", "example.com", "foo"},
		{"bar.foo.example.com:8080", "example.com", "bar.foo"},
		{"Foo.Example.com", "EXAMPLE.com", "foo"},
		{"example.com", "example.com", ""},
		{"other.com", "example.com", ""},
		{"notexample.com", "example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			require.Equal(t, tt.want, hostrouter.GetSubdomain(req, tt.base))
		})
	}
}
