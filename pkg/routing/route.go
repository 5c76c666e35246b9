package routing

import (
	"maps"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/dmitrymomot/pressgate/pkg/pipeline"
)

// Route is a frozen route definition stored in a Collection.
type Route struct {
	name         string
	pattern      *pattern
	methods      []string
	handler      pipeline.HandlerFunc
	controller   string
	middleware   []string
	namespace    string
	requirements map[string]string
	defaults     map[string]string
	conditions   []Condition
	area         Area
	fallback     bool
	excludes     *regexp.Regexp
}

// Name returns the route name, or an empty string.
func (r *Route) Name() string { return r.name }

// Pattern returns the URL template.
func (r *Route) Pattern() string { return r.pattern.template }

// Methods returns the HTTP methods the route answers.
func (r *Route) Methods() []string { return slices.Clone(r.methods) }

// Handler returns the route handler. A nil handler means the route only runs
// middleware and delegates the request to the host application.
func (r *Route) Handler() pipeline.HandlerFunc { return r.handler }

// Controller returns the controller reference the handler was resolved from.
func (r *Route) Controller() string { return r.controller }

// Middleware returns the raw middleware specifiers attached to the route.
func (r *Route) Middleware() []string { return slices.Clone(r.middleware) }

// Namespace returns the controller namespace of the route.
func (r *Route) Namespace() string { return r.namespace }

// Requirements returns the per-parameter constraints.
func (r *Route) Requirements() map[string]string { return maps.Clone(r.requirements) }

// Defaults returns the default parameter values.
func (r *Route) Defaults() map[string]string { return maps.Clone(r.defaults) }

// Area returns the area the route is registered in.
func (r *Route) Area() Area { return r.area }

// IsFallback reports whether this is the fallback route.
func (r *Route) IsFallback() bool { return r.fallback }

// IsStatic reports whether the URL template has no parameters.
func (r *Route) IsStatic() bool { return r.pattern.isStatic() }

// Params returns the parameter names in template order.
func (r *Route) Params() []string { return slices.Clone(r.pattern.params) }

// Compiled returns the serializable compiled form of the pattern.
func (r *Route) Compiled() Compiled { return r.pattern.compiled() }

// Key identifies the route independently of its name.
func (r *Route) Key() string {
	return r.area.String() + " " + strings.Join(r.methods, "|") + " " + r.pattern.template
}

// Allows reports whether the route answers method. GET routes answer HEAD.
func (r *Route) Allows(method string) bool {
	if slices.Contains(r.methods, method) {
		return true
	}
	return method == http.MethodHead && slices.Contains(r.methods, http.MethodGet)
}

func (r *Route) sharesMethod(other *Route) bool {
	for _, m := range r.methods {
		if other.Allows(m) {
			return true
		}
	}
	for _, m := range other.methods {
		if r.Allows(m) {
			return true
		}
	}
	return false
}

func (r *Route) conditionsPass(req *http.Request) bool {
	for _, c := range r.conditions {
		if !c.Matches(req) {
			return false
		}
	}
	return true
}

func (r *Route) excluded(path string) bool {
	return r.excludes != nil && r.excludes.MatchString(strings.TrimPrefix(path, "/"))
}
