package internal

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/pressgate/pkg/hostrouter"
)

// ErrNoApps is returned by Run when neither domains nor a fallback are set.
var ErrNoApps = errors.New("pressgate: no domains or fallback configured")

// Run starts a multi-site HTTP server and blocks until shutdown.
// Each site of a multisite install gets its own App under a domain
// pattern; requests for other hosts go to the fallback App.
//
// Example:
//
//	shop := pressgate.MustNew(
//	    pressgate.WithHandlers(handlers.NewShop(repo)),
//	    pressgate.WithHost(wordpress),
//	)
//
//	blog := pressgate.MustNew(
//	    pressgate.WithHandlers(handlers.NewBlog(repo)),
//	    pressgate.WithHost(wordpress),
//	)
//
//	err := pressgate.Run(
//	    pressgate.Domain("shop.acme.com", shop),
//	    pressgate.Fallback(blog),
//	    pressgate.Address(":8080"),
//	    pressgate.Logger(slog),
//	)
func Run(opts ...RunOption) error {
	cfg := newRunConfig(opts...)

	var handler http.Handler
	switch {
	case len(cfg.sites) > 0:
		routes := make(hostrouter.Routes, len(cfg.sites))
		for pattern, app := range cfg.sites {
			routes[pattern] = app
		}
		var fallback http.Handler = http.NotFoundHandler()
		if cfg.fallback != nil {
			fallback = cfg.fallback
		}
		handler = hostrouter.New(routes, fallback)
	case cfg.fallback != nil:
		handler = cfg.fallback
	default:
		return ErrNoApps
	}

	return serve(handler, cfg)
}
