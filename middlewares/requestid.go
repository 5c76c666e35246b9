package middlewares

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/pressgate/internal"
	"github.com/dmitrymomot/pressgate/pkg/logger"
	"github.com/dmitrymomot/pressgate/pkg/pipeline"
	"github.com/dmitrymomot/pressgate/pkg/response"
)

type requestIDKey struct{}

// DefaultRequestIDHeaders are the headers checked, in order, for an
// upstream request ID.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Request-Id", "X-Correlation-ID"}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator      func() string
	ResponseHeader string
	Headers        []string
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders sets the headers checked for an existing request ID.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Headers = headers
	}
}

// WithRequestIDGenerator sets the ID generator. Default: UUIDv4.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		if gen != nil {
			cfg.Generator = gen
		}
	}
}

// WithRequestIDResponseHeader sets the response header name.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.ResponseHeader = header
	}
}

// RequestID returns middleware that assigns an ID to each request.
// An ID from the request headers is kept, otherwise one is generated.
// The ID is stored in the request context, echoed in the response header
// and attached to returned *internal.HTTPError values that have none.
func RequestID(opts ...RequestIDOption) pipeline.Middleware {
	cfg := &RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      uuid.NewString,
		ResponseHeader: "X-Request-ID",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next pipeline.HandlerFunc) pipeline.HandlerFunc {
		return func(r *http.Request) (*response.Response, error) {
			var id string
			for _, h := range cfg.Headers {
				if v := r.Header.Get(h); v != "" {
					id = v
					break
				}
			}
			if id == "" {
				id = cfg.Generator()
			}

			resp, err := next(r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
			if err != nil {
				if he, ok := err.(*internal.HTTPError); ok && he.RequestID == "" {
					cp := *he
					cp.RequestID = id
					err = &cp
				}
				return resp, err
			}
			if resp != nil && cfg.ResponseHeader != "" {
				resp.Header().Set(cfg.ResponseHeader, id)
			}
			return resp, nil
		}
	}
}

// RequestIDFromContext returns the request ID, or an empty string.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// GetRequestID returns the ID of the request.
func GetRequestID(r *http.Request) string {
	return RequestIDFromContext(r.Context())
}

// RequestIDExtractor adds "request_id" to log records.
//
//	pressgate.WithLogger("site", middlewares.RequestIDExtractor())
func RequestIDExtractor() logger.ContextExtractor {
	return logger.StringExtractor(requestIDKey{}, "request_id")
}
