package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/pressgate/pkg/logger"
	"github.com/dmitrymomot/pressgate/pkg/pipeline"
	"github.com/dmitrymomot/pressgate/pkg/response"
)

// DefaultTimeout is the request timeout of "timeout" without arguments.
const DefaultTimeout = 30 * time.Second

// Timeout returns middleware that fails the request with *TimeoutError when
// the rest of the chain does not finish within d. The request context is
// cancelled at the deadline; the abandoned handler keeps running until it
// notices.
func Timeout(d time.Duration, log *slog.Logger) pipeline.Middleware {
	if d <= 0 {
		d = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNope()
	}

	type result struct {
		resp  *response.Response
		err   error
		panic any
	}

	return func(next pipeline.HandlerFunc) pipeline.HandlerFunc {
		return func(r *http.Request) (*response.Response, error) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			done := make(chan result, 1)
			go func() {
				var res result
				defer func() {
					// Re-raised on the request goroutine so Recover sees it.
					res.panic = recover()
					done <- res
				}()
				res.resp, res.err = next(r.WithContext(ctx))
			}()

			select {
			case res := <-done:
				if res.panic != nil {
					panic(res.panic)
				}
				return res.resp, res.err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					log.WarnContext(r.Context(), "request timeout",
						slog.String("path", r.URL.Path),
						slog.Duration("timeout", d),
					)
					return nil, &TimeoutError{Duration: d}
				}
				return nil, ctx.Err()
			}
		}
	}
}

// timeoutFactory reads "timeout:<seconds>".
func timeoutFactory(log *slog.Logger) pipeline.Factory {
	return func(args ...any) (pipeline.Middleware, error) {
		switch len(args) {
		case 0:
			return Timeout(DefaultTimeout, log), nil
		case 1:
			secs, ok := args[0].(int)
			if !ok || secs <= 0 {
				return nil, ErrInvalidTimeout
			}
			return Timeout(time.Duration(secs)*time.Second, log), nil
		default:
			return nil, ErrInvalidTimeout
		}
	}
}
