package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/pressgate/pkg/config"
	"github.com/dmitrymomot/pressgate/pkg/logger"
	"github.com/dmitrymomot/pressgate/pkg/pipeline"
	"github.com/dmitrymomot/pressgate/pkg/response"
	"github.com/dmitrymomot/pressgate/pkg/routecache"
	"github.com/dmitrymomot/pressgate/pkg/routing"
)

// Option configures the application.
type Option func(*App)

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during New, in order.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithRoutes declares routes with a function.
//
// Example:
//
//	pressgate.WithRoutes(func(r *routing.Router) {
//	    r.Get("/hello/{name}", hello).Name("hello")
//	    r.Fallback(pages.Render)
//	})
func WithRoutes(fn func(r *routing.Router)) Option {
	return WithHandlers(RoutesFunc(fn))
}

// WithControllers resolves "Controller@method" references of routes.
func WithControllers(c *routing.Controllers) Option {
	return func(a *App) {
		a.controllers = c
	}
}

// WithAreas configures the admin prefix and API prefixes used to classify
// requests. API prefixes declared with Router.API are added to these.
func WithAreas(areas routing.Areas) Option {
	return func(a *App) {
		a.areas = areas
	}
}

// WithFallbackExcludes replaces the default paths the fallback route never
// answers. Each entry is a regular expression matched against the whole
// path without its leading slash, e.g. "wp-json/.*".
func WithFallbackExcludes(patterns ...string) Option {
	return func(a *App) {
		a.fallbackExcludes = append([]string{}, patterns...)
	}
}

// WithURLContext sets the host, scheme and ports used for absolute URLs.
// Per request, host and scheme are taken from the request itself.
func WithURLContext(ctx routing.URLContext) Option {
	return func(a *App) {
		a.urlContext = ctx
	}
}

// WithMiddleware registers a named middleware factory. Routes and groups
// refer to it by name, with optional arguments: "throttle:60,1".
func WithMiddleware(name string, f pipeline.Factory) Option {
	return func(a *App) {
		a.registry.Register(name, f)
	}
}

// WithMiddlewareRegistrar runs fn against the middleware registry during
// New, after all options are applied.
//
// Example:
//
//	pressgate.WithMiddlewareRegistrar(func(reg *pipeline.Registry) {
//	    middlewares.Register(reg, middlewares.Deps{Logger: log, DB: pool})
//	})
func WithMiddlewareRegistrar(fn func(reg *pipeline.Registry)) Option {
	return func(a *App) {
		if fn != nil {
			a.registrars = append(a.registrars, fn)
		}
	}
}

// WithMiddlewareConfig sets middleware groups, aliases, priority and the
// groups that run for unmatched requests.
func WithMiddlewareConfig(cfg pipeline.Config) Option {
	return func(a *App) {
		a.middlewareConfig = cfg
	}
}

// WithKernelMiddleware adds middleware that runs for every request, after
// error conversion and before routing.
func WithKernelMiddleware(mw ...pipeline.Middleware) Option {
	return func(a *App) {
		a.kernelMiddleware = append(a.kernelMiddleware, mw...)
	}
}

// WithErrorHandler sets the handler that converts pipeline errors into
// responses.
//
// Example:
//
//	pressgate.WithErrorHandler(func(r *http.Request, err error) *response.Response {
//	    resp, _ := response.HTML(pressgate.StatusOf(err), errorPage(err))
//	    return resp
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithPreparer replaces the response preparer.
func WithPreparer(p *response.Preparer) Option {
	return func(a *App) {
		if p != nil {
			a.preparer = p
		}
	}
}

// WithHost sets the handler receiving delegated requests, typically the
// CMS the App sits in front of. Host routes registered on the App take
// precedence over it.
func WithHost(h http.Handler) Option {
	return func(a *App) {
		a.host = h
	}
}

// WithHostRoutes registers routes directly on the host router. They are
// only reached by delegated requests.
func WithHostRoutes(fn func(r chi.Router)) Option {
	return func(a *App) {
		if fn != nil {
			a.hostRoutes = append(a.hostRoutes, fn)
		}
	}
}

// WithStaticFiles mounts a static file handler at the given pattern on the
// host router. Directory listings are disabled. Files are served with
// default cache headers.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	pressgate.New(
//	    pressgate.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}

		fileServer := http.StripPrefix(strings.TrimSuffix(pattern, "/"), http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Block directory listings
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler, pattern})
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	pressgate.WithHealthChecks(
//	    pressgate.WithReadinessCheck("db", db.Healthcheck(pool)),
//	    pressgate.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithMetricsEndpoint exposes metrics from g on the host router.
// A nil gatherer uses the default Prometheus registry.
func WithMetricsEndpoint(path string, g prometheus.Gatherer) Option {
	return func(a *App) {
		if g == nil {
			g = prometheus.DefaultGatherer
		}
		if path == "" {
			path = "/metrics"
		}
		a.metrics = &metricsConfig{gatherer: g, path: path}
	}
}

// WithRouteCache loads compiled routes and the resolved middleware map from
// store in the listed environments (default: "prod"), rebuilding them when
// declarations or middleware configuration change.
func WithRouteCache(store routecache.Store, environments ...string) Option {
	return func(a *App) {
		a.routeCache = store
		a.cacheableEnvs = environments
	}
}

// WithEnvironment sets the environment tag, used to pick route cache
// entries.
func WithEnvironment(env string) Option {
	return func(a *App) {
		if env != "" {
			a.environment = env
		}
	}
}

// WithConfig applies file configuration: environment, areas, fallback
// excludes, URL context, middleware configuration and, when a cache
// directory is set, a file route cache.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		if cfg == nil {
			return
		}
		WithEnvironment(cfg.Environment)(a)
		WithAreas(cfg.Routing.Areas())(a)
		if cfg.Routing.FallbackExcludes != nil {
			WithFallbackExcludes(cfg.Routing.FallbackExcludes...)(a)
		}
		WithURLContext(cfg.Routing.URLContext())(a)
		WithMiddlewareConfig(cfg.Middleware)(a)
		if cfg.RouteCache.Dir != "" {
			WithRouteCache(routecache.NewFileStore(cfg.RouteCache.Dir), cfg.RouteCache.Environments...)(a)
		}
	}
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id).
//
// Example:
//
//	pressgate.New(
//	    pressgate.WithLogger("site", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(logger.WithExtractors(extractors...)).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
//
// Example:
//
//	customLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	pressgate.New(
//	    pressgate.WithCustomLogger(customLogger),
//	)
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}
