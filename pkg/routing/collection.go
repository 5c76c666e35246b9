package routing

import (
	"fmt"
	"iter"
	"slices"
)

// Collection stores frozen routes in registration order. Static routes are
// indexed by path for direct lookup, dynamic routes are kept in a list that
// the matcher scans in order.
type Collection struct {
	routes   []*Route
	static   map[string][]*Route
	dynamic  []*Route
	byName   map[string]*Route
	fallback *Route
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{
		static: make(map[string][]*Route),
		byName: make(map[string]*Route),
	}
}

// Add stores route. It fails when:
//   - a fallback route was already added;
//   - the route name is taken by a route with the same URL template;
//   - the same static path and method exist in the same area;
//   - a static route would be shadowed by an earlier dynamic route;
//   - a dynamic route with the same pattern and method exists in the same
//     area and neither of them has conditions.
func (c *Collection) Add(route *Route) error {
	if c.fallback != nil {
		return fmt.Errorf("%w: %s", ErrRouteAfterFallback, route.Key())
	}

	if route.name != "" {
		if existing, ok := c.byName[route.name]; ok && existing.pattern.template == route.pattern.template {
			return fmt.Errorf("%w: name %q already used for %s", ErrDuplicateRoute, route.name, existing.Key())
		}
	}

	if route.fallback {
		if route.area != AreaWeb {
			return fmt.Errorf("%w: fallback route must be in the web area", ErrBadRouteConfiguration)
		}
		c.fallback = route
		c.routes = append(c.routes, route)
		c.index(route)
		return nil
	}

	if route.IsStatic() {
		path := route.pattern.template
		for _, existing := range c.static[path] {
			if existing.area == route.area && existing.sharesMethod(route) {
				return fmt.Errorf("%w: %s already registered as %s", ErrDuplicateRoute, route.Key(), existing.Key())
			}
		}
		for _, dyn := range c.dynamic {
			if dyn.area == route.area && dyn.sharesMethod(route) && dyn.pattern.regex.MatchString(path) {
				return fmt.Errorf("%w: static route %s is shadowed by dynamic route %s registered before it", ErrBadRouteConfiguration, route.Key(), dyn.Key())
			}
		}
		c.static[path] = append(c.static[path], route)
	} else {
		re := route.pattern.regex.String()
		for _, existing := range c.dynamic {
			if existing.area != route.area || !existing.sharesMethod(route) || existing.pattern.regex.String() != re {
				continue
			}
			if len(existing.conditions) == 0 && len(route.conditions) == 0 {
				return fmt.Errorf("%w: %s already registered as %s", ErrDuplicateRoute, route.Key(), existing.Key())
			}
		}
		c.dynamic = append(c.dynamic, route)
	}

	c.routes = append(c.routes, route)
	c.index(route)
	return nil
}

// index points the route name at route. A later route with the same name
// takes over the name.
func (c *Collection) index(route *Route) {
	if route.name != "" {
		c.byName[route.name] = route
	}
}

// All yields routes in registration order.
func (c *Collection) All() iter.Seq[*Route] {
	return slices.Values(c.routes)
}

// Len returns the number of routes.
func (c *Collection) Len() int {
	return len(c.routes)
}

// ByName returns the route registered under name.
func (c *Collection) ByName(name string) (*Route, bool) {
	r, ok := c.byName[name]
	return r, ok
}

// Fallback returns the fallback route, if any.
func (c *Collection) Fallback() *Route {
	return c.fallback
}

// Compiled returns the compiled pattern of every route in registration
// order, suitable for WithCompiled.
func (c *Collection) Compiled() []Compiled {
	out := make([]Compiled, len(c.routes))
	for i, r := range c.routes {
		out[i] = r.pattern.compiled()
	}
	return out
}
