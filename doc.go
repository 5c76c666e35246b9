// Package pressgate is a routing kernel that sits in front of a CMS such as
// WordPress. Requests matching a declared route are handled in Go behind a
// configurable middleware pipeline; all other requests are delegated to the
// host handler unchanged, carrying any headers middleware added.
//
// # Routes
//
// Handlers declare routes on a Router:
//
//	type Shop struct{ products *repo.Products }
//
//	func (h *Shop) Routes(r *pressgate.Router) {
//	    r.Group(pressgate.Group{Prefix: "/shop", Name: "shop", Middleware: []string{"db_transaction"}}, func(r *pressgate.Router) {
//	        r.Get("/", h.index).Name("index")
//	        r.Get("/products/{id}", h.show).Name("product").RequireNum("id")
//	    })
//	    r.Admin(func(r *pressgate.Router) {
//	        r.Get("/admin.php/shop-settings", h.settings).Name("admin.shop")
//	    })
//	}
//
// Templates, matching order and URL generation are described in package
// routing.
//
// # Middleware
//
// Route middleware is referenced by name, with optional arguments
// ("timeout:5"). Names resolve through groups and aliases of the
// MiddlewareConfig and are ordered by its priority list. The groups global,
// frontend, admin and api apply to every route of their area; the groups
// listed as always-run also apply to requests no route matched.
//
//	app, err := pressgate.New(
//	    pressgate.WithHandlers(&Shop{products: products}),
//	    pressgate.WithMiddlewareRegistrar(func(reg *pressgate.MiddlewareRegistry) {
//	        middlewares.Register(reg, middlewares.Deps{Logger: log, DB: pool})
//	    }),
//	    pressgate.WithMiddlewareConfig(pressgate.MiddlewareConfig{
//	        Groups:    map[string][]string{"global": {"request_id", "recover"}},
//	        AlwaysRun: []string{"global"},
//	    }),
//	    pressgate.WithHost(wordpress),
//	)
//
// # Errors
//
// Handlers return errors; the kernel converts them into responses.
// *HTTPError chooses its own status, a method mismatch answers 405 with an
// Allow header and anything else answers 500. WithErrorHandler replaces the
// rendering.
//
// # Production
//
// WithRouteCache stores the compiled routes and resolved middleware per
// environment and reuses them while route declarations and middleware
// configuration are unchanged. WithHealthChecks and WithMetricsEndpoint add
// endpoints to the host router, and Run serves several sites by host name.
package pressgate
