package hostrouter

import (
	"cmp"
	"net/http"
	"slices"
	"strings"
)

// Routes maps host patterns to handlers: "shop.example.com" matches that
// host only, "*.example.com" matches any host below example.com.
type Routes map[string]http.Handler

type suffixRoute struct {
	suffix  string // ".example.com"
	handler http.Handler
}

// Router dispatches requests on their Host header.
type Router struct {
	exact    map[string]http.Handler
	wildcard []suffixRoute
	fallback http.Handler
}

// New creates a router. Exact patterns win over wildcards and longer
// wildcards win over shorter ones. A nil fallback answers 404.
func New(routes Routes, fallback http.Handler) *Router {
	if fallback == nil {
		fallback = http.NotFoundHandler()
	}
	r := &Router{exact: make(map[string]http.Handler), fallback: fallback}

	for pattern, h := range routes {
		pattern = normalizeHost(pattern)
		switch {
		case pattern == "" || h == nil:
		case strings.HasPrefix(pattern, "*."):
			r.wildcard = append(r.wildcard, suffixRoute{suffix: pattern[1:], handler: h})
		default:
			r.exact[pattern] = h
		}
	}
	slices.SortFunc(r.wildcard, func(a, b suffixRoute) int {
		return cmp.Compare(len(b.suffix), len(a.suffix))
	})
	return r
}

// Handler returns the handler for host, reporting false when the fallback
// would answer.
func (r *Router) Handler(host string) (http.Handler, bool) {
	host = normalizeHost(host)
	if h, ok := r.exact[host]; ok {
		return h, true
	}
	for _, w := range r.wildcard {
		if len(host) > len(w.suffix) && strings.HasSuffix(host, w.suffix) {
			return w.handler, true
		}
	}
	return r.fallback, false
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h, _ := r.Handler(req.Host)
	h.ServeHTTP(w, req)
}
