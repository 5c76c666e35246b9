package middlewares

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/pressgate/internal"
	"github.com/dmitrymomot/pressgate/pkg/pipeline"
	"github.com/dmitrymomot/pressgate/pkg/response"
	"github.com/dmitrymomot/pressgate/pkg/routing"
)

const (
	// RouteUnmatched labels requests that matched no route.
	RouteUnmatched = "unmatched"
	// StatusDelegated labels requests handed to the host handler.
	StatusDelegated = "delegated"
)

// Metrics holds the request collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// Collectors already registered by an earlier call are reused.
// A nil reg means prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pressgate",
		Name:      "http_requests_total",
		Help:      "Requests handled by the kernel, by route, method and status.",
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pressgate",
		Name:      "http_request_duration_seconds",
		Help:      "Time spent in the middleware pipeline, by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return &Metrics{requests: requests, duration: duration}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, errors.Join(ErrMetricsRegistration, err)
	}
	return c, nil
}

// Middleware records every request passing through it. Routes are
// labelled by name, or by pattern when unnamed.
func (m *Metrics) Middleware() pipeline.Middleware {
	return func(next pipeline.HandlerFunc) pipeline.HandlerFunc {
		return func(r *http.Request) (*response.Response, error) {
			start := time.Now()
			resp, err := next(r)

			route := routeLabel(r)
			var status string
			switch {
			case err != nil:
				status = strconv.Itoa(internal.StatusOf(err))
			case resp != nil && resp.IsDelegated():
				status = StatusDelegated
			case resp != nil:
				status = strconv.Itoa(resp.Status())
			}

			m.requests.WithLabelValues(route, r.Method, status).Inc()
			m.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}

func routeLabel(r *http.Request) string {
	route := routing.ResultFrom(r.Context()).Route()
	switch {
	case route == nil:
		return RouteUnmatched
	case route.Name() != "":
		return route.Name()
	default:
		return route.Pattern()
	}
}
