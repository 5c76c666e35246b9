package pressgate

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/pressgate/internal"
	"github.com/dmitrymomot/pressgate/pkg/config"
	"github.com/dmitrymomot/pressgate/pkg/health"
	"github.com/dmitrymomot/pressgate/pkg/hostrouter"
	"github.com/dmitrymomot/pressgate/pkg/logger"
	"github.com/dmitrymomot/pressgate/pkg/pipeline"
	"github.com/dmitrymomot/pressgate/pkg/response"
	"github.com/dmitrymomot/pressgate/pkg/routecache"
	"github.com/dmitrymomot/pressgate/pkg/routing"
)

// Type aliases - public API
type (
	// App serves matched routes through the kernel and delegates the rest
	// to the host handler.
	App = internal.App

	// Kernel runs requests through error conversion, routing and dispatch.
	Kernel = internal.Kernel

	// Handler declares routes on a router.
	Handler = internal.Handler

	// RoutesFunc adapts a function to Handler.
	RoutesFunc = internal.RoutesFunc

	// ErrorHandler turns pipeline errors into responses.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// HTTPError is an error rendered with its own status and message.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// StatusCoder is implemented by errors that choose their response status.
	StatusCoder = internal.StatusCoder

	// Router declares routes.
	Router = routing.Router

	// Group holds attributes shared by the routes of a group.
	Group = routing.Group

	// Routes is the compiled, read-only route collection.
	Routes = routing.Collection

	// Route is a compiled route.
	Route = routing.Route

	// Controllers resolves "Controller@method" references.
	Controllers = routing.Controllers

	// Areas classifies requests as web, admin or api.
	Areas = routing.Areas

	// URLContext holds the host, scheme and ports of generated URLs.
	URLContext = routing.URLContext

	// HandlerFunc handles a request.
	HandlerFunc = pipeline.HandlerFunc

	// Middleware wraps a HandlerFunc.
	Middleware = pipeline.Middleware

	// MiddlewareFactory builds a middleware from specifier arguments.
	MiddlewareFactory = pipeline.Factory

	// MiddlewareConfig holds middleware groups, aliases and priority.
	MiddlewareConfig = pipeline.Config

	// MiddlewareRegistry maps middleware names to factories.
	MiddlewareRegistry = pipeline.Registry

	// Response is an outgoing response.
	Response = response.Response

	// Component renders HTML. It is templ.Component.
	Component = response.Component

	// Config is the file configuration.
	Config = config.Config

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor

	// RouteCache stores compiled routes and resolved middleware.
	RouteCache = routecache.Store

	// HostRoutes maps host patterns to handlers.
	HostRoutes = hostrouter.Routes
)

// Constructors

// New creates an application. Routes are compiled and middleware resolved
// here, so configuration errors are returned immediately.
//
// Example:
//
//	app, err := pressgate.New(
//	    pressgate.WithConfig(cfg),
//	    pressgate.WithHost(wordpress),
//	    pressgate.WithHandlers(handlers.NewShop(repo)),
//	)
//	if err != nil {
//	    return err
//	}
//	err = app.Run(":8080", pressgate.Logger(log))
func New(opts ...Option) (*App, error) {
	return internal.New(opts...)
}

// MustNew is New that panics on configuration errors.
func MustNew(opts ...Option) *App {
	return internal.MustNew(opts...)
}

// Run starts a multisite server and blocks until shutdown.
//
// Example:
//
//	err := pressgate.Run(
//	    pressgate.Domain("shop.acme.com", shop),
//	    pressgate.Domain("*.acme.com", sites),
//	    pressgate.Fallback(main),
//	    pressgate.Address(":8080"),
//	)
func Run(opts ...RunOption) error {
	return internal.Run(opts...)
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// App options

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithRoutes declares routes with a function.
func WithRoutes(fn func(r *Router)) Option {
	return internal.WithRoutes(fn)
}

// WithControllers resolves "Controller@method" references of routes.
func WithControllers(c *Controllers) Option {
	return internal.WithControllers(c)
}

// WithAreas configures the admin prefix and API prefixes.
func WithAreas(areas Areas) Option {
	return internal.WithAreas(areas)
}

// WithFallbackExcludes replaces the paths the fallback route never answers.
func WithFallbackExcludes(patterns ...string) Option {
	return internal.WithFallbackExcludes(patterns...)
}

// WithURLContext sets the host, scheme and ports used for absolute URLs.
func WithURLContext(ctx URLContext) Option {
	return internal.WithURLContext(ctx)
}

// WithMiddleware registers a named middleware factory.
//
// Example:
//
//	pressgate.WithMiddleware("auth", pressgate.StaticMiddleware(requireLogin))
func WithMiddleware(name string, f MiddlewareFactory) Option {
	return internal.WithMiddleware(name, f)
}

// StaticMiddleware wraps a middleware that takes no arguments.
func StaticMiddleware(mw Middleware) MiddlewareFactory {
	return pipeline.Static(mw)
}

// WithMiddlewareRegistrar runs fn against the middleware registry during New.
func WithMiddlewareRegistrar(fn func(reg *MiddlewareRegistry)) Option {
	return internal.WithMiddlewareRegistrar(fn)
}

// WithMiddlewareConfig sets middleware groups, aliases, priority and the
// groups that run for unmatched requests.
func WithMiddlewareConfig(cfg MiddlewareConfig) Option {
	return internal.WithMiddlewareConfig(cfg)
}

// WithKernelMiddleware adds middleware that runs for every request before
// routing.
func WithKernelMiddleware(mw ...Middleware) Option {
	return internal.WithKernelMiddleware(mw...)
}

// WithErrorHandler sets the handler that converts pipeline errors into
// responses.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithPreparer replaces the response preparer.
func WithPreparer(p *response.Preparer) Option {
	return internal.WithPreparer(p)
}

// WithHost sets the handler receiving delegated requests.
func WithHost(h http.Handler) Option {
	return internal.WithHost(h)
}

// WithHostRoutes registers routes directly on the host router.
func WithHostRoutes(fn func(r chi.Router)) Option {
	return internal.WithHostRoutes(fn)
}

// WithStaticFiles mounts a static file handler on the host router.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	pressgate.WithStaticFiles("/static/", assets, "public")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithHealthChecks enables liveness and readiness endpoints.
//
// Example:
//
//	pressgate.WithHealthChecks(
//	    pressgate.WithReadinessCheck("db", db.Healthcheck(pool)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithMetricsEndpoint exposes Prometheus metrics on the host router.
func WithMetricsEndpoint(path string, g prometheus.Gatherer) Option {
	return internal.WithMetricsEndpoint(path, g)
}

// WithRouteCache caches compiled routes and resolved middleware in store
// for the listed environments (default: "prod").
func WithRouteCache(store RouteCache, environments ...string) Option {
	return internal.WithRouteCache(store, environments...)
}

// WithEnvironment sets the environment tag.
func WithEnvironment(env string) Option {
	return internal.WithEnvironment(env)
}

// WithConfig applies file configuration.
func WithConfig(cfg *Config) Option {
	return internal.WithConfig(cfg)
}

// WithLogger creates a logger with a component name and optional extractors.
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Run options

// Address sets the HTTP server address. Defaults to ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// WithServerConfig applies the server section of a loaded config file.
func WithServerConfig(s config.Server) RunOption {
	return internal.WithServerConfig(s)
}

// Logger sets the server logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function to run before requests are served.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
//
// Example:
//
//	pressgate.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// Domain maps a host pattern to an App.
func Domain(pattern string, app *App) RunOption {
	return internal.Domain(pattern, app)
}

// Fallback sets the App for hosts no domain matches.
func Fallback(app *App) RunOption {
	return internal.Fallback(app)
}

// WithContext sets the base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Errors

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrConflict(message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrServiceUnavailable(message, opts...)
}

func WithTitle(title string) HTTPErrorOption {
	return internal.WithTitle(title)
}

func WithDetail(detail string) HTTPErrorOption {
	return internal.WithDetail(detail)
}

func WithErrorCode(code string) HTTPErrorOption {
	return internal.WithErrorCode(code)
}

func WithRequestID(id string) HTTPErrorOption {
	return internal.WithRequestID(id)
}

func WithError(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// IsHTTPError reports whether err wraps an HTTPError.
func IsHTTPError(err error) bool {
	return internal.IsHTTPError(err)
}

// AsHTTPError returns the HTTPError wrapped by err, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// StatusOf returns the response status the kernel uses for err.
func StatusOf(err error) int {
	return internal.StatusOf(err)
}

// DefaultErrorHandler renders errors as JSON for clients that accept it and
// as plain text otherwise.
func DefaultErrorHandler(r *http.Request, err error) *Response {
	return internal.DefaultErrorHandler(r, err)
}

// Request helpers

// Param returns a route parameter converted to T.
//
//	id := pressgate.Param[int](r, "id")
func Param[T internal.Scalar](r *http.Request, name string) T {
	return internal.Param[T](r, name)
}

// Query returns a query parameter converted to T.
func Query[T internal.Scalar](r *http.Request, name string) T {
	return internal.Query[T](r, name)
}

// QueryDefault returns a query parameter converted to T, or defaultValue.
func QueryDefault[T internal.Scalar](r *http.Request, name string, defaultValue T) T {
	return internal.QueryDefault(r, name, defaultValue)
}

// ContextValue returns the value stored under key in ctx as T.
func ContextValue[T any](ctx context.Context, key any) T {
	return internal.ContextValue[T](ctx, key)
}

// RouteName returns the name of the matched route.
func RouteName(r *http.Request) string {
	return routing.RouteName(r)
}

// URL generates a path for a named route.
func URL(r *http.Request, name string, params map[string]any) (string, error) {
	return routing.URL(r, name, params)
}

// RequestDomain returns the request host without port.
func RequestDomain(r *http.Request) string {
	return hostrouter.GetDomain(r)
}

// Subdomain returns the part of the request host below baseDomain, e.g.
// the site slug of a subdomain multisite install.
func Subdomain(r *http.Request, baseDomain string) string {
	return hostrouter.GetSubdomain(r, baseDomain)
}
