package routing

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/pressgate/pkg/pipeline"
	"github.com/dmitrymomot/pressgate/pkg/response"
)

// Redirect declares a route that redirects from to to with status. The
// query of the incoming request is carried over to the target and query is
// merged on top of it, replacing keys that are already present.
func (r *Router) Redirect(from, to string, status int, query map[string]string) *Definition {
	return r.Any(from, redirectTo(to, status, query))
}

// PermanentRedirect declares a 301 redirect.
func (r *Router) PermanentRedirect(from, to string) *Definition {
	return r.Redirect(from, to, http.StatusMovedPermanently, nil)
}

// TemporaryRedirect declares a 307 redirect.
func (r *Router) TemporaryRedirect(from, to string) *Definition {
	return r.Redirect(from, to, http.StatusTemporaryRedirect, nil)
}

// RedirectAway declares a redirect to an external absolute http or https
// URL. Any other target fails Build.
func (r *Router) RedirectAway(from, to string, status int) *Definition {
	d := r.Any(from, redirectTo(to, status, nil))
	if u, err := url.Parse(to); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		d.err = fmt.Errorf("%w: redirect target %q is not an absolute http(s) url", ErrBadRouteConfiguration, to)
	}
	return d
}

// RedirectToRoute declares a redirect to the URL of a named route. The URL
// is generated per request with the generator stored in the request context.
func (r *Router) RedirectToRoute(from, name string, params map[string]any, status int) *Definition {
	return r.Any(from, func(req *http.Request) (*response.Response, error) {
		g, ok := GeneratorFrom(req.Context())
		if !ok {
			return nil, ErrNoGenerator
		}
		target, err := g.ToRoute(name, params, AbsolutePath)
		if err != nil {
			return nil, err
		}
		return response.Redirect(status, target)
	})
}

// View declares a GET route that renders a component.
func (r *Router) View(path string, c response.Component) *Definition {
	return r.Get(path, func(req *http.Request) (*response.Response, error) {
		return response.Render(req.Context(), http.StatusOK, c)
	})
}

func redirectTo(to string, status int, query map[string]string) pipeline.HandlerFunc {
	return func(req *http.Request) (*response.Response, error) {
		return response.Redirect(status, mergeQuery(to, req.URL.Query(), query))
	}
}

func mergeQuery(target string, incoming url.Values, query map[string]string) string {
	if len(incoming) == 0 && len(query) == 0 {
		return target
	}
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	for k, v := range incoming {
		if _, ok := q[k]; !ok {
			q[k] = v
		}
	}
	for k, v := range query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
