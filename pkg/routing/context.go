package routing

import (
	"context"
	"net/http"
)

type resultKey struct{}

type generatorKey struct{}

// WithResult stores the routing result in ctx.
func WithResult(ctx context.Context, res Result) context.Context {
	return context.WithValue(ctx, resultKey{}, res)
}

// ResultFrom returns the routing result stored in ctx, or no match.
func ResultFrom(ctx context.Context) Result {
	res, _ := ctx.Value(resultKey{}).(Result)
	return res
}

// WithGenerator stores a URL generator in ctx.
func WithGenerator(ctx context.Context, g *Generator) context.Context {
	return context.WithValue(ctx, generatorKey{}, g)
}

// GeneratorFrom returns the URL generator stored in ctx.
func GeneratorFrom(ctx context.Context) (*Generator, bool) {
	g, ok := ctx.Value(generatorKey{}).(*Generator)
	return g, ok && g != nil
}

// Param returns the URL-decoded value of a route parameter of the matched
// route, or an empty string.
func Param(r *http.Request, name string) string {
	return ResultFrom(r.Context()).ParamString(name)
}

// RouteName returns the name of the matched route, or an empty string.
func RouteName(r *http.Request) string {
	if route := ResultFrom(r.Context()).Route(); route != nil {
		return route.Name()
	}
	return ""
}

// URL generates a path for the named route with the request's generator.
func URL(r *http.Request, name string, params map[string]any) (string, error) {
	g, ok := GeneratorFrom(r.Context())
	if !ok {
		return "", ErrNoGenerator
	}
	return g.ToRoute(name, params, AbsolutePath)
}
