package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/dmitrymomot/pressgate/pkg/logger"
	"github.com/dmitrymomot/pressgate/pkg/pipeline"
	"github.com/dmitrymomot/pressgate/pkg/response"
	"github.com/dmitrymomot/pressgate/pkg/routing"
)

// Kernel turns requests into responses. Every request passes the kernel
// middleware: error conversion, any user kernel middleware, routing and
// route dispatch. Matched routes run behind their resolved middleware;
// unmatched requests run the always-run groups of their area and end in a
// delegated response.
type Kernel struct {
	routes       *routing.Collection
	matcher      *routing.Matcher
	generator    *routing.Generator
	resolver     *pipeline.Resolver
	areas        routing.Areas
	urlContext   routing.URLContext
	errorHandler ErrorHandler
	logger       *slog.Logger

	routeSpecs     map[*routing.Route][]pipeline.Spec
	unmatchedSpecs map[string][]pipeline.Spec

	handle pipeline.HandlerFunc
}

type kernelConfig struct {
	routes         *routing.Collection
	resolver       *pipeline.Resolver
	areas          routing.Areas
	urlContext     routing.URLContext
	errorHandler   ErrorHandler
	logger         *slog.Logger
	middleware     []pipeline.Middleware
	routeSpecs     map[*routing.Route][]pipeline.Spec
	unmatchedSpecs map[string][]pipeline.Spec
}

func newKernel(cfg kernelConfig) *Kernel {
	k := &Kernel{
		routes:         cfg.routes,
		matcher:        routing.NewMatcher(cfg.routes),
		generator:      routing.NewGenerator(cfg.routes, cfg.urlContext),
		resolver:       cfg.resolver,
		areas:          cfg.areas,
		urlContext:     cfg.urlContext,
		errorHandler:   cfg.errorHandler,
		logger:         cfg.logger,
		routeSpecs:     cfg.routeSpecs,
		unmatchedSpecs: cfg.unmatchedSpecs,
	}
	if k.errorHandler == nil {
		k.errorHandler = DefaultErrorHandler
	}
	if k.logger == nil {
		k.logger = logger.NewNope()
	}

	chain := pipeline.New(k.convertErrors)
	chain.Use(cfg.middleware...)
	chain.Use(k.route, k.dispatch)
	k.handle = chain.Then(delegate)
	return k
}

// Handle runs r through the kernel. The only error it returns is
// pipeline.ErrExhausted; every other error is converted into a response.
func (k *Kernel) Handle(r *http.Request) (*response.Response, error) {
	return k.handle(r)
}

// Routes returns the route collection.
func (k *Kernel) Routes() *routing.Collection {
	return k.routes
}

// Generator returns the URL generator built with the configured URL context.
func (k *Kernel) Generator() *routing.Generator {
	return k.generator
}

// Middleware returns the resolved middleware of route in execution order.
func (k *Kernel) Middleware(route *routing.Route) []pipeline.Spec {
	return k.routeSpecs[route]
}

// serve is Handle that also reports the request that reached the delegate,
// carrying any context middleware added on the way.
func (k *Kernel) serve(r *http.Request) (*response.Response, *http.Request, error) {
	d := &delegation{}
	d.req.Store(r)
	resp, err := k.handle(r.WithContext(context.WithValue(r.Context(), delegationKey{}, d)))
	return resp, d.req.Load(), err
}

func (k *Kernel) convertErrors(next pipeline.HandlerFunc) pipeline.HandlerFunc {
	return func(r *http.Request) (*response.Response, error) {
		resp, err := next(r)
		if err == nil || errors.Is(err, pipeline.ErrExhausted) {
			return resp, err
		}

		status := StatusOf(err)
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		k.logger.Log(r.Context(), level, "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Any("error", err),
		)

		if out := k.errorHandler(r, err); out != nil {
			return out, nil
		}
		return response.Text(status, http.StatusText(status))
	}
}

func (k *Kernel) route(next pipeline.HandlerFunc) pipeline.HandlerFunc {
	return func(r *http.Request) (*response.Response, error) {
		res, err := k.matcher.Match(k.areas.MatchContext(r))
		if err != nil {
			return nil, err
		}

		ctx := routing.WithResult(r.Context(), res)
		ctx = routing.WithGenerator(ctx, k.generator.WithContext(routing.URLContextFromRequest(r, k.urlContext)))
		return next(r.WithContext(ctx))
	}
}

func (k *Kernel) dispatch(next pipeline.HandlerFunc) pipeline.HandlerFunc {
	return func(r *http.Request) (*response.Response, error) {
		res := routing.ResultFrom(r.Context())
		if !res.IsMatch() {
			group := k.areas.Detect(routing.RoutingPath(r.URL)).Group()
			p, err := k.resolver.Instantiate(k.unmatchedSpecs[group])
			if err != nil {
				return nil, err
			}
			return p.Run(r, next)
		}

		route := res.Route()
		p, err := k.resolver.Instantiate(k.routeSpecs[route])
		if err != nil {
			return nil, err
		}
		h := route.Handler()
		if h == nil {
			h = delegate
		}
		return p.Run(r, h)
	}
}

type delegationKey struct{}

// delegation is written by handler goroutines that may outlive a timeout.
type delegation struct {
	req atomic.Pointer[http.Request]
}

// delegate ends the chain by handing the request back to the host.
func delegate(r *http.Request) (*response.Response, error) {
	if d, ok := r.Context().Value(delegationKey{}).(*delegation); ok {
		d.req.Store(r)
	}
	return response.Delegated(), nil
}
