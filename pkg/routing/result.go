package routing

import (
	"maps"
	"net/url"
	"strconv"
	"sync"
)

// Result is the outcome of matching a request: either a matched route with
// its captured parameters or no match. Results are immutable.
type Result struct {
	route   *Route
	raw     map[string]string
	decoded *decodedParams
}

type decodedParams struct {
	once   sync.Once
	values map[string]any
}

// NoMatch returns the empty result.
func NoMatch() Result {
	return Result{}
}

// Matched creates a result for route with raw captured values.
func Matched(route *Route, raw map[string]string) Result {
	return Result{route: route, raw: maps.Clone(raw), decoded: &decodedParams{}}
}

// IsMatch reports whether a route matched.
func (r Result) IsMatch() bool {
	return r.route != nil
}

// Route returns the matched route or nil.
func (r Result) Route() *Route {
	return r.route
}

// RawParams returns the captured values as they appeared in the path.
func (r Result) RawParams() map[string]string {
	return maps.Clone(r.raw)
}

// Params returns the decoded values. Values made only of digits become int,
// all others are URL-decoded strings.
func (r Result) Params() map[string]any {
	if r.decoded == nil {
		return map[string]any{}
	}
	r.decoded.once.Do(func() {
		r.decoded.values = make(map[string]any, len(r.raw))
		for k, v := range r.raw {
			r.decoded.values[k] = decodeValue(v)
		}
	})
	return maps.Clone(r.decoded.values)
}

// Param returns a single decoded value.
func (r Result) Param(name string) (any, bool) {
	v, ok := r.Params()[name]
	return v, ok
}

// ParamString returns a single URL-decoded value as a string.
func (r Result) ParamString(name string) string {
	v, ok := r.raw[name]
	if !ok {
		return ""
	}
	if d, err := url.PathUnescape(v); err == nil {
		return d
	}
	return v
}

// WithParams returns a copy of r with raw replaced by params.
func (r Result) WithParams(params map[string]string) Result {
	if r.route == nil {
		return r
	}
	return Matched(r.route, params)
}

func decodeValue(v string) any {
	if v != "" && isDigits(v) {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	if d, err := url.PathUnescape(v); err == nil {
		return d
	}
	return v
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
