package routing

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/dmitrymomot/pressgate/pkg/pipeline"
)

// Group holds attributes shared by the routes declared inside a group.
// Nested groups compose them: prefixes are joined as paths, names with a
// dot, middleware is appended and a non-empty namespace replaces the
// parent's.
type Group struct {
	Prefix     string
	Name       string
	Namespace  string
	Middleware []string
}

func (g Group) merge(child Group) Group {
	out := Group{
		Prefix:     joinPath(g.Prefix, child.Prefix),
		Name:       joinName(g.Name, child.Name),
		Namespace:  g.Namespace,
		Middleware: append(slices.Clone(g.Middleware), child.Middleware...),
	}
	if child.Namespace != "" {
		out.Namespace = child.Namespace
	}
	return out
}

type declarations struct {
	defs        []*Definition
	apiPrefixes []string
	excludes    []string
	areas       Areas
}

// Router declares routes. Routes are collected in declaration order and
// frozen into a Collection by Build.
type Router struct {
	decl  *declarations
	group Group
	area  Area
}

// RouterOption configures a Router.
type RouterOption func(*declarations)

// WithAreas sets the area configuration used by Admin and AdminPage.
func WithAreas(a Areas) RouterOption {
	return func(d *declarations) {
		d.areas = a
	}
}

// WithFallbackExcludes sets the default exclusion patterns for Fallback.
// Each entry is a regular expression that must match the whole path without
// its leading slash: "feed" excludes /feed but not /feed/atom.
func WithFallbackExcludes(patterns ...string) RouterOption {
	return func(d *declarations) {
		d.excludes = patterns
	}
}

// NewRouter creates a router for the web area.
func NewRouter(opts ...RouterOption) *Router {
	d := &declarations{areas: DefaultAreas()}
	for _, q := range DefaultFallbackExcludes {
		d.excludes = append(d.excludes, regexp.QuoteMeta(q))
	}
	for _, opt := range opts {
		opt(d)
	}
	return &Router{decl: d, area: AreaWeb}
}

// Get declares a GET route. GET routes also answer HEAD.
func (r *Router) Get(path string, h pipeline.HandlerFunc) *Definition {
	return r.Match([]string{http.MethodGet}, path, h)
}

// Post declares a POST route.
func (r *Router) Post(path string, h pipeline.HandlerFunc) *Definition {
	return r.Match([]string{http.MethodPost}, path, h)
}

// Put declares a PUT route.
func (r *Router) Put(path string, h pipeline.HandlerFunc) *Definition {
	return r.Match([]string{http.MethodPut}, path, h)
}

// Patch declares a PATCH route.
func (r *Router) Patch(path string, h pipeline.HandlerFunc) *Definition {
	return r.Match([]string{http.MethodPatch}, path, h)
}

// Delete declares a DELETE route.
func (r *Router) Delete(path string, h pipeline.HandlerFunc) *Definition {
	return r.Match([]string{http.MethodDelete}, path, h)
}

// Options declares an OPTIONS route.
func (r *Router) Options(path string, h pipeline.HandlerFunc) *Definition {
	return r.Match([]string{http.MethodOptions}, path, h)
}

// Any declares a route for every common method.
func (r *Router) Any(path string, h pipeline.HandlerFunc) *Definition {
	return r.Match([]string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodOptions,
	}, path, h)
}

// Match declares a route for the given methods. A nil handler declares a
// middleware-only route that delegates to the host application.
func (r *Router) Match(methods []string, path string, h pipeline.HandlerFunc) *Definition {
	ms := make([]string, 0, len(methods))
	for _, m := range methods {
		m = strings.ToUpper(m)
		if !slices.Contains(ms, m) {
			ms = append(ms, m)
		}
	}
	d := &Definition{
		groupName:  r.group.Name,
		path:       joinPath(r.group.Prefix, path),
		methods:    ms,
		handler:    h,
		middleware: slices.Clone(r.group.Middleware),
		namespace:  r.group.Namespace,
		area:       r.area,
	}
	r.decl.defs = append(r.decl.defs, d)
	return d
}

// Group declares routes that share attrs.
func (r *Router) Group(attrs Group, fn func(r *Router)) {
	fn(&Router{decl: r.decl, group: r.group.merge(attrs), area: r.area})
}

// Prefix declares routes under a path prefix.
func (r *Router) Prefix(prefix string, fn func(r *Router)) {
	r.Group(Group{Prefix: prefix}, fn)
}

// Admin declares routes in the admin area, under the admin prefix.
func (r *Router) Admin(fn func(r *Router)) {
	fn(&Router{
		decl:  r.decl,
		group: r.group.merge(Group{Prefix: r.decl.areas.AdminPrefix}),
		area:  AreaAdmin,
	})
}

// AdminPage declares a GET route for the admin menu page with the given
// slug. The page is reachable as admin.php?page=slug.
func (r *Router) AdminPage(slug string, h pipeline.HandlerFunc) *Definition {
	sub := &Router{decl: r.decl, group: r.group, area: AreaAdmin}
	sub.group.Prefix = ""
	return sub.Get(r.decl.areas.AdminPage(slug), h)
}

// API declares routes in the api area under prefix.
func (r *Router) API(prefix string, fn func(r *Router)) {
	full := joinPath(r.group.Prefix, prefix)
	if !slices.Contains(r.decl.apiPrefixes, full) {
		r.decl.apiPrefixes = append(r.decl.apiPrefixes, full)
	}
	fn(&Router{decl: r.decl, group: r.group.merge(Group{Prefix: prefix}), area: AreaAPI})
}

// Fallback declares the catch-all route for web requests that matched no
// other route. excludes replaces the default exclusion patterns. The
// fallback must be declared last.
func (r *Router) Fallback(h pipeline.HandlerFunc, excludes ...string) *Definition {
	d := &Definition{
		path:       "/{" + FallbackParam + ":.*}",
		methods:    []string{http.MethodGet},
		handler:    h,
		middleware: slices.Clone(r.group.Middleware),
		namespace:  r.group.Namespace,
		groupName:  r.group.Name,
		area:       AreaWeb,
		fallback:   true,
		excludes:   excludes,
	}
	if len(d.excludes) == 0 {
		d.excludes = slices.Clone(r.decl.excludes)
	}
	r.decl.defs = append(r.decl.defs, d)
	return d
}

// APIPrefixes returns the prefixes of all API groups declared so far.
func (r *Router) APIPrefixes() []string {
	return slices.Clone(r.decl.apiPrefixes)
}

// Areas returns the area configuration.
func (r *Router) Areas() Areas {
	a := r.decl.areas
	for _, p := range r.decl.apiPrefixes {
		if !slices.Contains(a.APIPrefixes, p) {
			a.APIPrefixes = append(slices.Clone(a.APIPrefixes), p)
		}
	}
	return a
}

// Len returns the number of declared routes.
func (r *Router) Len() int {
	return len(r.decl.defs)
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	controllers *Controllers
	compiled    []Compiled
}

// WithControllers resolves controller references against c.
func WithControllers(c *Controllers) BuildOption {
	return func(b *buildConfig) {
		b.controllers = c
	}
}

// WithCompiled reuses compiled patterns listed in declaration order, as
// returned by Collection.Compiled. An entry whose template differs from
// the declared one is ignored.
func WithCompiled(compiled []Compiled) BuildOption {
	return func(b *buildConfig) {
		b.compiled = compiled
	}
}

// Build compiles every declared route and adds it to a new Collection in
// declaration order. All errors are returned joined.
func (r *Router) Build(opts ...BuildOption) (*Collection, error) {
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	c := NewCollection()
	var errs []error
	for i, d := range r.decl.defs {
		route, err := cfg.freeze(i, d)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := c.Add(route); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

func (b *buildConfig) freeze(i int, d *Definition) (*Route, error) {
	if d.err != nil {
		return nil, d.err
	}
	if len(d.methods) == 0 {
		return nil, fmt.Errorf("%w: route %q has no methods", ErrBadRouteConfiguration, d.path)
	}

	var cached *Compiled
	if i < len(b.compiled) {
		cached = &b.compiled[i]
	}
	p, err := compilePattern(d.path, d.requirements, cached)
	if err != nil {
		return nil, err
	}

	handler := d.handler
	if d.controller != "" {
		handler, err = b.controllers.Resolve(d.namespace, d.controller)
		if err != nil {
			return nil, fmt.Errorf("%w: route %q: %w", ErrBadRouteConfiguration, d.path, err)
		}
	}

	var excludes *regexp.Regexp
	if d.fallback && len(d.excludes) > 0 {
		excludes, err = regexp.Compile("^(?:" + strings.Join(d.excludes, "|") + ")$")
		if err != nil {
			return nil, fmt.Errorf("%w: fallback excludes: %w", ErrBadRouteConfiguration, err)
		}
	}

	return d.freeze(handler, p, excludes), nil
}

// Declarations describes every declared route in declaration order, one
// line per route. A line changes whenever an attribute that affects
// compilation, matching or middleware resolution changes.
func (r *Router) Declarations() []string {
	lines := make([]string, 0, len(r.decl.defs))
	for _, d := range r.decl.defs {
		lines = append(lines, d.describe())
	}
	return lines
}

func joinPath(prefix, p string) string {
	if prefix == "" {
		return p
	}
	if p == "" || p == "/" {
		return "/" + strings.Trim(prefix, "/")
	}
	joined := path.Join("/", prefix, p)
	if strings.HasSuffix(p, "/") {
		joined += "/"
	}
	return joined
}

func joinName(parent, child string) string {
	switch {
	case parent == "":
		return child
	case child == "":
		return parent
	default:
		return parent + "." + child
	}
}
