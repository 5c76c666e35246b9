package routing

import (
	"errors"
	"strings"
)

var (
	ErrBadRouteConfiguration = errors.New("routing: bad route configuration")
	ErrDuplicateRoute        = errors.New("routing: duplicate route")
	ErrRouteAfterFallback    = errors.New("routing: route registered after fallback route")
	ErrRouteNotFound         = errors.New("routing: route not found")
	ErrMissingParameter      = errors.New("routing: missing route parameter")
	ErrInvalidParameter      = errors.New("routing: invalid route parameter")
	ErrControllerNotFound    = errors.New("routing: controller not found")
	ErrMethodNotAllowed      = errors.New("routing: method not allowed")
	ErrNoGenerator           = errors.New("routing: no url generator in context")
)

// MethodNotAllowedError reports a path that matched a route for a different
// HTTP method.
type MethodNotAllowedError struct {
	Path    string
	Method  string
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string {
	return ErrMethodNotAllowed.Error() + ": " + e.Method + " " + e.Path + " (allowed: " + strings.Join(e.Allowed, ", ") + ")"
}

func (e *MethodNotAllowedError) Unwrap() error {
	return ErrMethodNotAllowed
}
