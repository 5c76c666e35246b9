// Package internal provides the core types and implementation for the
// pressgate framework.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/pressgate" instead, which re-exports the public API.
//
// # Core Types
//
//   - App: holds the kernel, the host router and the server lifecycle
//   - Kernel: runs every request through error conversion, routing and
//     route dispatch
//   - Handler: implemented by types that declare routes on a routing.Router
//   - ErrorHandler: converts pipeline errors into responses
//   - HTTPError: an error that carries the response status and message
//
// # Request Flow
//
// The kernel middleware run for every request in this order:
//
//  1. error conversion: errors become responses through the ErrorHandler
//  2. user kernel middleware added with WithKernelMiddleware
//  3. routing: the request is matched and the result and a URL generator
//     are stored in the request context
//  4. dispatch: a matched route runs behind its resolved middleware
//     (global, then the area group, then the route's own); an unmatched
//     request runs the always-run groups of its area
//
// Unmatched requests, and routes declared without a handler, end in a
// delegated response. The App then copies headers set by middleware and
// passes the request to the host router: health checks, metrics, static
// files, host routes and finally the handler given with WithHost.
//
// # Configuration Errors
//
// Routes are compiled and middleware resolved inside New, so bad templates,
// duplicate routes, unknown middleware and group recursion are reported
// before the server starts.
//
// # Route Cache
//
// With WithRouteCache, cacheable environments load the compiled route table
// and the middleware map from a routecache.Store. The entry is keyed by a
// fingerprint of the route declarations and the middleware configuration,
// so any change rebuilds it.
//
// # Typed Helpers
//
//	id := internal.Param[int](r, "id")
//	page := internal.QueryDefault(r, "page", 1)
package internal
