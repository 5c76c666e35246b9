package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/pressgate/pkg/health"
	"github.com/dmitrymomot/pressgate/pkg/logger"
	"github.com/dmitrymomot/pressgate/pkg/pipeline"
	"github.com/dmitrymomot/pressgate/pkg/response"
	"github.com/dmitrymomot/pressgate/pkg/routecache"
	"github.com/dmitrymomot/pressgate/pkg/routing"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// DefaultEnvironment is the environment tag used when none is configured.
const DefaultEnvironment = "dev"

// App sits in front of a host handler. Requests matching a route are served
// by the kernel; everything else is delegated to the host router, which
// also serves health, metrics and static files.
// App is immutable after creation - all configuration is done via New().
type App struct {
	kernel       *Kernel
	host         http.Handler
	mux          chi.Router
	preparer     *response.Preparer
	logger       *slog.Logger
	errorHandler ErrorHandler
	healthConfig *healthConfig
	metrics      *metricsConfig

	handlers         []Handler
	controllers      *routing.Controllers
	registry         *pipeline.Registry
	registrars       []func(*pipeline.Registry)
	middlewareConfig pipeline.Config
	kernelMiddleware []pipeline.Middleware
	areas            routing.Areas
	fallbackExcludes []string
	urlContext       routing.URLContext
	hostRoutes       []func(chi.Router)
	staticRoutes     []staticRoute

	environment   string
	routeCache    routecache.Store
	cacheableEnvs []string
	cacheHit      bool
}

// staticRoute represents a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

type metricsConfig struct {
	gatherer prometheus.Gatherer
	path     string
}

// New creates an application with the given options. Routes are compiled
// and middleware resolved immediately, so every configuration error
// (bad route templates, duplicate routes, unknown or recursive middleware)
// is returned here.
//
// Example:
//
//	app, err := pressgate.New(
//	    pressgate.WithConfig(cfg),
//	    pressgate.WithHost(wordpress),
//	    pressgate.WithHandlers(
//	        handlers.NewBlog(repo),
//	        handlers.NewShop(repo),
//	    ),
//	)
func New(opts ...Option) (*App, error) {
	a := &App{
		mux:          chi.NewRouter(),
		preparer:     response.NewPreparer(),
		logger:       logger.NewNope(),
		errorHandler: DefaultErrorHandler,
		registry:     pipeline.NewRegistry(),
		areas:        routing.DefaultAreas(),
		urlContext:   routing.DefaultURLContext(),
		environment:  DefaultEnvironment,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.setupHost()
	if err := a.build(context.Background()); err != nil {
		return nil, err
	}
	return a, nil
}

// MustNew is New that panics on configuration errors.
func MustNew(opts ...Option) *App {
	a, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Kernel returns the request kernel.
func (a *App) Kernel() *Kernel {
	return a.kernel
}

// Routes returns the compiled route collection.
func (a *App) Routes() *routing.Collection {
	return a.kernel.Routes()
}

// URL generates a URL for a named route with the configured URL context.
func (a *App) URL(name string, params map[string]any, typ routing.URLType) (string, error) {
	return a.kernel.Generator().ToRoute(name, params, typ)
}

// Environment returns the configured environment tag.
func (a *App) Environment() string {
	return a.environment
}

// RouteCacheHit reports whether routes and middleware were loaded from the
// route cache during New.
func (a *App) RouteCacheHit() bool {
	return a.cacheHit
}

// ServeHTTP implements http.Handler. A pipeline that ends without a
// response is a programming error and panics.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp, delegated, err := a.kernel.serve(r)
	if err != nil {
		panic(err)
	}

	if resp.IsDelegated() {
		for k, v := range resp.Header() {
			w.Header()[k] = v
		}
		a.logger.DebugContext(delegated.Context(), "request delegated to host",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		a.mux.ServeHTTP(w, delegated)
		return
	}

	if err := a.preparer.Prepare(resp, r).Send(w); err != nil {
		a.logger.WarnContext(r.Context(), "failed to write response", slog.Any("error", err))
	}
}

// Run starts an HTTP server for the App and blocks until shutdown.
// This is a convenience method for the common single-site case. A
// non-empty addr wins over Address and WithServerConfig.
//
// Example:
//
//	app := pressgate.MustNew(
//	    pressgate.WithHandlers(handlers.NewBlog(repo)),
//	)
//	err := app.Run(":8080", pressgate.Logger(slog))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := newRunConfig(opts...)
	Address(addr)(cfg)
	return serve(a, cfg)
}

// setupHost configures the host router that receives delegated requests.
func (a *App) setupHost() {
	if a.host != nil {
		a.mux.NotFound(a.host.ServeHTTP)
		a.mux.MethodNotAllowed(a.host.ServeHTTP)
	}

	for _, sr := range a.staticRoutes {
		a.mux.Mount(sr.pattern, sr.handler)
	}

	if a.healthConfig != nil {
		a.mux.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.mux.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks, health.WithLogger(a.logger)))
	}

	if a.metrics != nil {
		a.mux.Handle(a.metrics.path, promhttp.HandlerFor(a.metrics.gatherer, promhttp.HandlerOpts{}))
	}

	for _, fn := range a.hostRoutes {
		fn(a.mux)
	}
}

// build declares routes, resolves middleware and assembles the kernel,
// going through the route cache when the environment is cacheable.
func (a *App) build(ctx context.Context) error {
	routerOpts := []routing.RouterOption{routing.WithAreas(a.areas)}
	if a.fallbackExcludes != nil {
		routerOpts = append(routerOpts, routing.WithFallbackExcludes(a.fallbackExcludes...))
	}
	router := routing.NewRouter(routerOpts...)
	for _, h := range a.handlers {
		h.Routes(router)
	}

	for _, fn := range a.registrars {
		fn(a.registry)
	}
	resolver, err := pipeline.NewResolver(a.middlewareConfig, a.registry)
	if err != nil {
		return err
	}

	var (
		routes   *routing.Collection
		manifest *routecache.Manifest
	)
	compile := func(ctx context.Context, fingerprint string) (*routecache.Manifest, error) {
		c, err := router.Build(routing.WithControllers(a.controllers))
		if err != nil {
			return nil, err
		}
		routes = c
		return compileManifest(a.environment, fingerprint, c, resolver)
	}

	if a.routeCache != nil && routecache.Cacheable(a.environment, a.cacheableEnvs...) {
		fingerprint, err := routecache.Fingerprint(router.Declarations(), a.middlewareConfig)
		if err != nil {
			return err
		}
		manifest, a.cacheHit, err = a.routeCache.Fetch(ctx, a.environment, fingerprint, func(ctx context.Context) (*routecache.Manifest, error) {
			return compile(ctx, fingerprint)
		})
		switch {
		case manifest == nil:
			return err
		case err != nil:
			a.logger.WarnContext(ctx, "route cache not saved", slog.Any("error", err))
		}
		a.logger.InfoContext(ctx, "route cache loaded",
			slog.String("environment", a.environment),
			slog.Bool("hit", a.cacheHit),
		)

		if routes == nil {
			routes, err = router.Build(routing.WithControllers(a.controllers), routing.WithCompiled(manifest.Routes))
			if err != nil {
				return err
			}
		}
	} else {
		manifest, err = compile(ctx, "")
		if err != nil {
			return err
		}
	}

	routeSpecs, unmatchedSpecs, err := specsFromManifest(manifest, routes, a.registry)
	if err != nil {
		return err
	}

	a.kernel = newKernel(kernelConfig{
		routes:         routes,
		resolver:       resolver,
		areas:          router.Areas(),
		urlContext:     a.urlContext,
		errorHandler:   a.errorHandler,
		logger:         a.logger,
		middleware:     a.kernelMiddleware,
		routeSpecs:     routeSpecs,
		unmatchedSpecs: unmatchedSpecs,
	})
	return nil
}

var areaGroups = []string{pipeline.GroupFrontend, pipeline.GroupAdmin, pipeline.GroupAPI}

// compileManifest resolves the middleware of every route and of unmatched
// requests per area.
func compileManifest(env, fingerprint string, routes *routing.Collection, resolver *pipeline.Resolver) (*routecache.Manifest, error) {
	m := &routecache.Manifest{
		GeneratedAt:         time.Now().UTC(),
		Environment:         env,
		Fingerprint:         fingerprint,
		Routes:              routes.Compiled(),
		RouteMiddleware:     make([][]string, 0, routes.Len()),
		UnmatchedMiddleware: make(map[string][]string, len(areaGroups)),
	}

	var errs []error
	for route := range routes.All() {
		specs, err := resolver.Resolve(resolver.ForRoute(route.Area().Group(), route.Middleware()))
		if err != nil {
			errs = append(errs, fmt.Errorf("route %q: %w", route.Key(), err))
			continue
		}
		m.RouteMiddleware = append(m.RouteMiddleware, specStrings(specs))
	}
	for _, group := range areaGroups {
		specs, err := resolver.Resolve(resolver.ForUnmatched(group))
		if err != nil {
			errs = append(errs, fmt.Errorf("unmatched %s requests: %w", group, err))
			continue
		}
		if len(specs) > 0 {
			m.UnmatchedMiddleware[group] = specStrings(specs)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

// specsFromManifest maps the manifest onto routes and checks that every
// middleware it names is registered.
func specsFromManifest(m *routecache.Manifest, routes *routing.Collection, reg *pipeline.Registry) (map[*routing.Route][]pipeline.Spec, map[string][]pipeline.Spec, error) {
	if len(m.RouteMiddleware) != routes.Len() {
		return nil, nil, fmt.Errorf("%w: middleware map has %d entries for %d routes",
			routecache.ErrInvalidManifest, len(m.RouteMiddleware), routes.Len())
	}

	var errs []error
	parse := func(raw []string) []pipeline.Spec {
		specs := make([]pipeline.Spec, 0, len(raw))
		for _, s := range raw {
			spec := pipeline.ParseSpec(s)
			if !reg.Has(spec.Name) {
				errs = append(errs, fmt.Errorf("%w: %q is not registered", pipeline.ErrInvalidMiddleware, spec.Name))
			}
			specs = append(specs, spec)
		}
		return specs
	}

	routeSpecs := make(map[*routing.Route][]pipeline.Spec, routes.Len())
	i := 0
	for route := range routes.All() {
		routeSpecs[route] = parse(m.RouteMiddleware[i])
		i++
	}
	unmatched := make(map[string][]pipeline.Spec, len(m.UnmatchedMiddleware))
	for group, raw := range m.UnmatchedMiddleware {
		unmatched[group] = parse(raw)
	}

	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return routeSpecs, unmatched, nil
}

func specStrings(specs []pipeline.Spec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.String()
	}
	return out
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	pressgate.WithReadinessCheck("db", db.Healthcheck(pool))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
