// Package middlewares provides the built-in route middleware.
//
// Register adds them to a middleware registry so that configuration can
// refer to them by name:
//
//	app, err := pressgate.New(
//	    pressgate.WithLogger("site", middlewares.RequestIDExtractor()),
//	    pressgate.WithMiddlewareRegistrar(func(reg *pipeline.Registry) {
//	        middlewares.Register(reg, middlewares.Deps{Logger: log, DB: pool})
//	    }),
//	    pressgate.WithMiddlewareConfig(pipeline.Config{
//	        Groups: map[string][]string{
//	            "global": {"request_id", "recover", "metrics"},
//	            "api":    {"timeout:5", "db_transaction"},
//	        },
//	        Priority: []string{"request_id", "recover"},
//	    }),
//	)
//
// # Errors
//
// Recover turns panics into *PanicError and Timeout fails slow requests
// with *TimeoutError. Both carry their response status (500 and 503), which
// the kernel uses when converting them. Panics raised behind Timeout are
// re-raised on the request goroutine, so Recover may sit on either side of
// it.
//
// # Transactions
//
// db_transaction wraps the route in a transaction that handlers join through
// db.Conn. Errors and 5xx responses roll it back.
package middlewares
