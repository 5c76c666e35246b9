package internal

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/pressgate/pkg/routing"
)

// Scalar lists the types route and query parameters convert to.
type Scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// ContextValue returns the value stored under key in ctx, or the zero value
// of T.
func ContextValue[T any](ctx context.Context, key any) T {
	if v, ok := ctx.Value(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// Param returns a route parameter of the matched route converted to T, or
// the zero value of T when it is missing or does not convert.
//
//	id := pressgate.Param[int](r, "id")
func Param[T Scalar](r *http.Request, name string) T {
	v, _ := convertParam[T](routing.Param(r, name))
	return v
}

// Query returns a query parameter converted to T, or the zero value of T.
func Query[T Scalar](r *http.Request, name string) T {
	v, _ := convertParam[T](r.URL.Query().Get(name))
	return v
}

// QueryDefault retrieves a typed query parameter with a default value.
// Returns defaultValue if the parameter is empty or cannot be parsed.
func QueryDefault[T Scalar](r *http.Request, name string, defaultValue T) T {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

// convertParam converts a raw string to the target type T.
func convertParam[T Scalar](raw string) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case string:
		return any(raw).(T), true
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	}
	return zero, false
}
