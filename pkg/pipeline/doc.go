// Package pipeline composes middleware chains and resolves middleware
// specifiers declared on routes.
//
// # Pipeline
//
// A Pipeline wraps a terminal HandlerFunc in ordered Middleware. The first
// middleware runs outermost, so it sees the request first and the response
// last:
//
//	h := pipeline.New(logRequests, recoverPanics).Then(showPost)
//	resp, err := h(req)
//
// # Specifiers
//
// Routes reference middleware by name using specifiers of the form
// "name" or "name:arg1,arg2". Arguments "true" and "false" become bool and
// integer strings become int before they reach the Factory.
//
// # Resolver
//
// The Resolver expands group names and aliases from a Config, detects group
// recursion, removes duplicates keeping the first occurrence and applies the
// priority order. Arguments on a group reference apply to every member of
// the group that has none of its own:
//
//	cfg := pipeline.Config{
//		Groups:   map[string][]string{"web": {"session", "csrf"}},
//		Aliases:  map[string]string{"auth": "authenticate"},
//		Priority: []string{"session"},
//	}
//	res, err := pipeline.NewResolver(cfg, registry)
//	p, err := res.Build([]string{"web", "auth:admin"})
package pipeline
