package routing

import (
	"net/http"
	"slices"
	"strings"
)

// FallbackParam is the parameter that holds the captured path of the
// fallback route.
const FallbackParam = "path"

// DefaultFallbackExcludes are paths the fallback route never answers.
var DefaultFallbackExcludes = []string{"favicon.ico", "robots.txt", "sitemap.xml"}

// MatchContext is the request information the matcher works on.
type MatchContext struct {
	Method  string
	Path    string
	Area    Area
	Request *http.Request
}

// Matcher finds the route for a request in a Collection.
type Matcher struct {
	routes *Collection
}

// NewMatcher creates a matcher over routes.
func NewMatcher(routes *Collection) *Matcher {
	return &Matcher{routes: routes}
}

// Match looks up a route in this order:
//  1. static routes with exactly this path;
//  2. dynamic routes in registration order;
//  3. the fallback route for web requests.
//
// Admin requests only see admin routes, other requests only non-admin
// routes. A route whose conditions fail is skipped. When the path matched
// only routes for other methods, Match returns a *MethodNotAllowedError.
// No match is not an error.
func (m *Matcher) Match(mc MatchContext) (Result, error) {
	method := strings.ToUpper(mc.Method)
	admin := mc.Area == AreaAdmin
	inScope := func(r *Route) bool {
		return (r.area == AreaAdmin) == admin
	}

	var allowed []string

	for _, r := range m.routes.static[mc.Path] {
		if !inScope(r) {
			continue
		}
		if !r.Allows(method) {
			allowed = append(allowed, r.methods...)
			continue
		}
		if r.conditionsPass(mc.Request) {
			return matched(r, nil), nil
		}
	}

	for _, r := range m.routes.dynamic {
		if !inScope(r) {
			continue
		}
		values, ok := r.pattern.match(mc.Path)
		if !ok {
			continue
		}
		if !r.Allows(method) {
			allowed = append(allowed, r.methods...)
			continue
		}
		if r.conditionsPass(mc.Request) {
			return matched(r, values), nil
		}
	}

	if len(allowed) > 0 {
		slices.Sort(allowed)
		return NoMatch(), &MethodNotAllowedError{
			Path:    mc.Path,
			Method:  method,
			Allowed: slices.Compact(allowed),
		}
	}

	if fb := m.routes.fallback; fb != nil && !admin && mc.Area == AreaWeb {
		if fb.Allows(method) && !fb.excluded(mc.Path) && fb.conditionsPass(mc.Request) {
			return matched(fb, map[string]string{FallbackParam: strings.TrimPrefix(mc.Path, "/")}), nil
		}
	}

	return NoMatch(), nil
}

func matched(r *Route, values map[string]string) Result {
	if values == nil {
		values = make(map[string]string, len(r.defaults))
	}
	for k, v := range r.defaults {
		if _, ok := values[k]; !ok {
			values[k] = v
		}
	}
	return Matched(r, values)
}
