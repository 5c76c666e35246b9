package routing

import (
	"net/http"
	"slices"
	"strings"
)

// Condition is an extra predicate a request must satisfy for a route to
// match after its pattern and method already did.
type Condition interface {
	Matches(r *http.Request) bool
}

// ConditionFunc adapts a function to Condition.
type ConditionFunc func(r *http.Request) bool

// Matches implements Condition.
func (f ConditionFunc) Matches(r *http.Request) bool {
	return f(r)
}

// Not negates a condition.
func Not(c Condition) Condition {
	return ConditionFunc(func(r *http.Request) bool {
		return !c.Matches(r)
	})
}

// QueryHas matches when the query string contains key. With values given,
// the key must also hold one of them.
func QueryHas(key string, values ...string) Condition {
	return ConditionFunc(func(r *http.Request) bool {
		if r == nil {
			return false
		}
		q := r.URL.Query()
		if !q.Has(key) {
			return false
		}
		return len(values) == 0 || slices.Contains(values, q.Get(key))
	})
}

// HeaderEquals matches when the header has the given value.
func HeaderEquals(name, value string) Condition {
	return ConditionFunc(func(r *http.Request) bool {
		return r != nil && r.Header.Get(name) == value
	})
}

// AcceptsJSON matches requests that ask for a JSON response.
func AcceptsJSON() Condition {
	return ConditionFunc(func(r *http.Request) bool {
		return r != nil && strings.Contains(r.Header.Get("Accept"), "application/json")
	})
}
