package internal

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/pressgate/pkg/config"
)

// RunOption configures how an App, or a set of site Apps, is served.
type RunOption func(*runConfig)

// runConfig is the listener and lifecycle state shared by App.Run and Run.
// sites and fallback are only read by Run.
type runConfig struct {
	address  string
	grace    time.Duration
	log      *slog.Logger
	parent   context.Context
	startup  []func(context.Context) error
	shutdown []func(context.Context) error
	sites    map[string]*App
	fallback *App
}

func newRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{
		address: config.DefaultAddress,
		grace:   defaultShutdownTimeout,
		sites:   make(map[string]*App),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Address sets the listen address. Empty keeps ":8080".
func Address(addr string) RunOption {
	return func(c *runConfig) {
		if addr != "" {
			c.address = addr
		}
	}
}

// WithServerConfig applies the server section of a loaded config file.
// Zero fields keep their defaults.
func WithServerConfig(s config.Server) RunOption {
	return func(c *runConfig) {
		Address(s.Address)(c)
		ShutdownTimeout(s.ShutdownTimeout)(c)
	}
}

// Logger sets the lifecycle logger. Nil keeps it silent.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// ShutdownTimeout bounds the drain of delegated requests plus every
// shutdown hook. Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.grace = d
		}
	}
}

// StartupHook runs once the port is bound and before the host gets its
// first delegated request, e.g. to warm the route cache. The first
// failing hook aborts the start.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startup = append(c.startup, fn)
		}
	}
}

// ShutdownHook runs after in-flight requests drained, in registration
// order, with the remaining shutdown budget.
//
// Example:
//
//	pressgate.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdown = append(c.shutdown, fn)
		}
	}
}

// Domain serves one site of a multisite install. The pattern is an exact
// host ("shop.example.com") or a wildcard ("*.example.com").
//
// Example:
//
//	pressgate.Run(
//	    pressgate.Domain("shop.acme.com", shopApp),
//	    pressgate.Domain("*.acme.com", blogApp),
//	)
func Domain(pattern string, app *App) RunOption {
	return func(c *runConfig) {
		if pattern != "" && app != nil {
			c.sites[pattern] = app
		}
	}
}

// Fallback serves hosts no Domain pattern claims. Without domains it is
// the only site.
//
// Example:
//
//	pressgate.Run(
//	    pressgate.Domain("shop.acme.com", shopApp),
//	    pressgate.Fallback(mainApp),
//	)
func Fallback(app *App) RunOption {
	return func(c *runConfig) {
		if app != nil {
			c.fallback = app
		}
	}
}

// WithContext sets the parent of the signal context. Cancelling it stops
// the server like SIGTERM does.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.parent = ctx
		}
	}
}
