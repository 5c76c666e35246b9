package routing

import (
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/dmitrymomot/pressgate/pkg/pipeline"
)

// Common requirement expressions.
const (
	Alpha    = `[a-zA-Z]+`
	Num      = `[0-9]+`
	AlphaNum = `[a-zA-Z0-9]+`
)

// Definition collects the attributes of a route while routes are declared.
// Its methods return the receiver so calls can be chained. Definitions are
// frozen into Routes by Router.Build.
type Definition struct {
	name         string
	groupName    string
	path         string
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
	excludes     []string
	err          error
}

// Name sets the route name. Inside named groups the group name is prepended
// with a dot.
func (d *Definition) Name(name string) *Definition {
	d.name = name
	return d
}

// Middleware appends middleware specifiers.
func (d *Definition) Middleware(specs ...string) *Definition {
	d.middleware = append(d.middleware, specs...)
	return d
}

// Namespace sets the controller namespace, overriding the group's.
func (d *Definition) Namespace(ns string) *Definition {
	d.namespace = ns
	return d
}

// Where constrains a parameter with a regular expression.
func (d *Definition) Where(param, expr string) *Definition {
	if d.requirements == nil {
		d.requirements = make(map[string]string)
	}
	d.requirements[param] = expr
	return d
}

// Requirements constrains several parameters at once.
func (d *Definition) Requirements(reqs map[string]string) *Definition {
	for k, v := range reqs {
		d.Where(k, v)
	}
	return d
}

// RequireAlpha limits params to ASCII letters.
func (d *Definition) RequireAlpha(params ...string) *Definition {
	return d.requireEach(Alpha, params)
}

// RequireNum limits params to digits.
func (d *Definition) RequireNum(params ...string) *Definition {
	return d.requireEach(Num, params)
}

// RequireAlphaNum limits params to ASCII letters and digits.
func (d *Definition) RequireAlphaNum(params ...string) *Definition {
	return d.requireEach(AlphaNum, params)
}

// RequireOneOf limits param to one of values.
func (d *Definition) RequireOneOf(param string, values ...string) *Definition {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = regexp.QuoteMeta(v)
	}
	return d.Where(param, strings.Join(quoted, "|"))
}

func (d *Definition) requireEach(expr string, params []string) *Definition {
	for _, p := range params {
		d.Where(p, expr)
	}
	return d
}

// Default sets the value of a parameter when the request did not provide it.
func (d *Definition) Default(param, value string) *Definition {
	if d.defaults == nil {
		d.defaults = make(map[string]string)
	}
	d.defaults[param] = value
	return d
}

// Defaults sets several default values.
func (d *Definition) Defaults(values map[string]string) *Definition {
	for k, v := range values {
		d.Default(k, v)
	}
	return d
}

// When adds conditions that must all hold for the route to match.
func (d *Definition) When(conds ...Condition) *Definition {
	d.conditions = append(d.conditions, conds...)
	return d
}

// Handle sets the handler.
func (d *Definition) Handle(h pipeline.HandlerFunc) *Definition {
	d.handler = h
	d.controller = ""
	return d
}

// Controller sets the handler to a controller reference such as
// "PostController@show", resolved against registered controllers at build.
func (d *Definition) Controller(ref string) *Definition {
	d.controller = ref
	d.handler = nil
	return d
}

// fullName joins the group name and the route name.
func (d *Definition) fullName() string {
	switch {
	case d.name == "":
		return ""
	case d.groupName == "":
		return d.name
	default:
		return d.groupName + "." + d.name
	}
}

func (d *Definition) key() string {
	path := d.path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return d.area.String() + " " + strings.Join(d.methods, "|") + " " + path
}

func (d *Definition) describe() string {
	var b strings.Builder
	b.WriteString(d.key())
	b.WriteString(" name=" + d.fullName())
	b.WriteString(" mw=" + strings.Join(d.middleware, ","))
	b.WriteString(" ns=" + d.namespace)
	b.WriteString(" ctl=" + d.controller)
	b.WriteString(" req=" + joinSorted(d.requirements))
	b.WriteString(" def=" + joinSorted(d.defaults))
	if d.fallback {
		b.WriteString(" fallback=" + strings.Join(d.excludes, "|"))
	}
	return b.String()
}

func joinSorted(m map[string]string) string {
	keys := slices.Sorted(maps.Keys(m))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + m[k]
	}
	return strings.Join(parts, ",")
}

func (d *Definition) freeze(handler pipeline.HandlerFunc, p *pattern, excludes *regexp.Regexp) *Route {
	return &Route{
		name:         d.fullName(),
		pattern:      p,
		methods:      append([]string(nil), d.methods...),
		handler:      handler,
		controller:   d.controller,
		middleware:   append([]string(nil), d.middleware...),
		namespace:    d.namespace,
		requirements: maps.Clone(d.requirements),
		defaults:     maps.Clone(d.defaults),
		conditions:   append([]Condition(nil), d.conditions...),
		area:         d.area,
		fallback:     d.fallback,
		excludes:     excludes,
	}
}
