package routing

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// URLType selects the form of a generated URL.
type URLType uint8

const (
	// AbsolutePath renders "/path?query".
	AbsolutePath URLType = iota
	// AbsoluteURL renders "scheme://host/path?query" using the context scheme.
	AbsoluteURL
	// SecureURL renders an absolute URL that always uses https.
	SecureURL
)

// FragmentParam is the generator parameter rendered as the URL fragment.
const FragmentParam = "_fragment"

// URLContext holds what the generator needs to build absolute URLs.
type URLContext struct {
	Host      string `yaml:"host"`
	Scheme    string `yaml:"scheme"`
	HTTPPort  int    `yaml:"http_port"`
	HTTPSPort int    `yaml:"https_port"`
}

// DefaultURLContext returns a context for https://localhost.
func DefaultURLContext() URLContext {
	return URLContext{Host: "localhost", Scheme: "https", HTTPPort: 80, HTTPSPort: 443}
}

// URLContextFromRequest derives the context from an incoming request.
// Ports not present in the Host header keep the values of base.
func URLContextFromRequest(r *http.Request, base URLContext) URLContext {
	ctx := base
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	ctx.Scheme = scheme

	host := r.Host
	if h, p, ok := strings.Cut(host, ":"); ok && !strings.Contains(p, ":") {
		host = h
		if port, err := strconv.Atoi(p); err == nil {
			if scheme == "https" {
				ctx.HTTPSPort = port
			} else {
				ctx.HTTPPort = port
			}
		}
	}
	if host != "" {
		ctx.Host = host
	}
	return ctx
}

func (c URLContext) base(typ URLType) string {
	scheme := c.Scheme
	if scheme == "" {
		scheme = "https"
	}
	if typ == SecureURL {
		scheme = "https"
	}

	host := c.Host
	switch {
	case scheme == "https" && c.HTTPSPort != 0 && c.HTTPSPort != 443:
		host += ":" + strconv.Itoa(c.HTTPSPort)
	case scheme == "http" && c.HTTPPort != 0 && c.HTTPPort != 80:
		host += ":" + strconv.Itoa(c.HTTPPort)
	}
	return scheme + "://" + host
}

// Generator builds URLs for named routes and plain paths.
type Generator struct {
	routes *Collection
	ctx    URLContext
}

// NewGenerator creates a generator over routes.
func NewGenerator(routes *Collection, ctx URLContext) *Generator {
	return &Generator{routes: routes, ctx: ctx}
}

// WithContext returns a generator that renders absolute URLs for ctx.
func (g *Generator) WithContext(ctx URLContext) *Generator {
	return &Generator{routes: g.routes, ctx: ctx}
}

// Context returns the URL context.
func (g *Generator) Context() URLContext {
	return g.ctx
}

// ToRoute generates the URL of the named route. Parameters that fill path
// segments are validated against the segment constraint. The rest are added
// as a query string. Optional segments without a value are left out.
func (g *Generator) ToRoute(name string, params map[string]any, typ URLType) (string, error) {
	route, ok := g.routes.ByName(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrRouteNotFound, name)
	}

	extra := make(map[string]any, len(params))
	for k, v := range params {
		extra[k] = v
	}

	path, err := route.pattern.build(name, extra)
	if err != nil {
		return "", err
	}
	return g.To(path, extra, typ)
}

// To generates a URL for path with params as query arguments.
func (g *Generator) To(path string, params map[string]any, typ URLType) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var fragment string
	query := url.Values{}
	for k, v := range params {
		if k == FragmentParam {
			fragment = fmt.Sprint(v)
			continue
		}
		query.Set(k, fmt.Sprint(v))
	}

	var b strings.Builder
	if typ != AbsolutePath {
		b.WriteString(g.ctx.base(typ))
	}
	b.WriteString(path)
	if len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query.Encode())
	}
	if fragment != "" {
		b.WriteByte('#')
		b.WriteString(url.PathEscape(fragment))
	}
	return b.String(), nil
}

// build fills the template with values from params and removes the used
// keys from params.
func (p *pattern) build(name string, params map[string]any) (string, error) {
	if len(p.segments) == 0 {
		return "/", nil
	}

	var b strings.Builder
	omitted := ""
	for _, s := range p.segments {
		if s.optional {
			param := s.param()
			if _, ok := params[param]; !ok {
				if omitted == "" {
					omitted = param
				}
				continue
			}
			if omitted != "" {
				return "", fmt.Errorf("%w: %q for route %q requires optional parameter %q", ErrMissingParameter, param, name, omitted)
			}
		}

		b.WriteByte('/')
		for _, pc := range s.pieces {
			if !pc.isParam() {
				b.WriteString(pc.literal)
				continue
			}
			v, ok := params[pc.param]
			if !ok {
				return "", fmt.Errorf("%w: %q for route %q", ErrMissingParameter, pc.param, name)
			}
			value := fmt.Sprint(v)
			if !pc.validator.MatchString(routingSegment(value)) {
				return "", fmt.Errorf("%w: %q for route %q must match %q, got %q", ErrInvalidParameter, pc.param, name, pc.constraint, value)
			}
			b.WriteString(url.PathEscape(value))
			delete(params, pc.param)
		}
	}
	if p.trailingSlash {
		b.WriteByte('/')
	}
	if b.Len() == 0 {
		return "/", nil
	}
	return b.String(), nil
}

func (s segment) param() string {
	for _, pc := range s.pieces {
		if pc.isParam() {
			return pc.param
		}
	}
	return ""
}
