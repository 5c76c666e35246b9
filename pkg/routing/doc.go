// Package routing declares, compiles and matches routes and generates URLs
// for them.
//
// Routes are declared on a Router and frozen into a Collection by Build:
//
//	r := routing.NewRouter()
//	r.Get("/posts/{slug}", showPost).Name("posts.show")
//	r.Group(routing.Group{Prefix: "/users", Name: "users", Middleware: []string{"auth"}}, func(r *routing.Router) {
//		r.Get("/{id}/{tab?}", showUser).Name("show").RequireNum("id").Default("tab", "profile")
//	})
//	r.Fallback(renderPage)
//
//	routes, err := r.Build()
//
// # Templates
//
// A template is a slash separated path. A segment in braces captures a
// parameter: {id} is required, {tab?} is optional and {id:[0-9]+} carries an
// inline constraint. Optional segments may only appear at the end. A
// trailing slash is part of the route and is never added or removed.
//
// # Matching
//
// Matcher tries static routes for the exact path first, then dynamic routes
// in declaration order, then the fallback route. Conditions attached with
// When are checked after the pattern and method match. A request whose path
// only matched routes for other methods yields a *MethodNotAllowedError. No
// match is reported as an empty Result.
//
// # Areas
//
// Requests are classified as web, admin or api by Areas. Admin requests are
// matched only against admin routes and admin.php?page=slug requests route
// as admin.php/slug.
//
// # URL generation
//
// Generator builds URLs for named routes. Parameters that do not fill a path
// segment become query arguments and "_fragment" becomes the URL fragment:
//
//	u, err := gen.ToRoute("users.show", map[string]any{"id": 7, "ref": "mail"}, routing.AbsolutePath)
//	// "/users/7?ref=mail"
package routing
