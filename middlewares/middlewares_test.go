package middlewares_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pressgate/internal"
	"github.com/dmitrymomot/pressgate/middlewares"
	"github.com/dmitrymomot/pressgate/pkg/logger"
	"github.com/dmitrymomot/pressgate/pkg/pipeline"
	"github.com/dmitrymomot/pressgate/pkg/response"
)

func ok(body string) pipeline.HandlerFunc {
	return func(*http.Request) (*response.Response, error) {
		return response.Text(http.StatusOK, body)
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates an id", func(t *testing.T) {
		t.Parallel()

		var seen string
		h := pipeline.Chain(func(r *http.Request) (*response.Response, error) {
			seen = middlewares.GetRequestID(r)
			return response.Text(http.StatusOK, "ok")
		}, middlewares.RequestID())

		resp, err := h(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Len(t, seen, 36)
		require.Equal(t, seen, resp.Header().Get("X-Request-ID"))
	})

	t.Run("keeps the upstream id", func(t *testing.T) {
		t.Parallel()

		h := pipeline.Chain(ok("ok"), middlewares.RequestID(middlewares.WithRequestIDHeaders("X-Correlation-ID")))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "abc")

		resp, err := h(req)
		require.NoError(t, err)
		require.Equal(t, "abc", resp.Header().Get("X-Request-ID"))
	})

	t.Run("custom generator and header", func(t *testing.T) {
		t.Parallel()

		h := pipeline.Chain(ok("ok"), middlewares.RequestID(
			middlewares.WithRequestIDGenerator(func() string { return "fixed" }),
			middlewares.WithRequestIDResponseHeader("X-Trace"),
		))

		resp, err := h(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, "fixed", resp.Header().Get("X-Trace"))
		require.Empty(t, resp.Header().Get("X-Request-ID"))
	})

	t.Run("stamps http errors", func(t *testing.T) {
		t.Parallel()

		notFound := internal.ErrNotFound("no such post")
		h := pipeline.Chain(func(*http.Request) (*response.Response, error) {
			return nil, notFound
		}, middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "req-1" })))

		_, err := h(httptest.NewRequest(http.MethodGet, "/", nil))
		he := internal.AsHTTPError(err)
		require.NotNil(t, he)
		require.Equal(t, "req-1", he.RequestID)
		require.Equal(t, http.StatusNotFound, he.Code)
		require.Empty(t, notFound.RequestID)
	})

	t.Run("extractor adds the id to logs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithExtractors(middlewares.RequestIDExtractor()))
		h := pipeline.Chain(func(r *http.Request) (*response.Response, error) {
			log.InfoContext(r.Context(), "handled")
			return response.NoContent(), nil
		}, middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "req-2" })))

		_, err := h(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Contains(t, buf.String(), `"request_id":"req-2"`)
	})
}

func TestRecover(t *testing.T) {
	t.Parallel()

	t.Run("converts panics", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := slog.New(slog.NewJSONHandler(&buf, nil))
		h := pipeline.Chain(func(*http.Request) (*response.Response, error) {
			panic("boom")
		}, middlewares.Recover(middlewares.WithRecoverLogger(log)))

		resp, err := h(httptest.NewRequest(http.MethodGet, "/crash", nil))
		require.Nil(t, resp)
		pe, isPanic := middlewares.AsPanicError(err)
		require.True(t, isPanic)
		require.Equal(t, "boom", pe.Value)
		require.NotEmpty(t, pe.Stack)
		require.Equal(t, http.StatusInternalServerError, internal.StatusOf(err))
		require.Contains(t, buf.String(), "panic recovered")
		require.Contains(t, buf.String(), `"path":"/crash"`)
	})

	t.Run("without stack", func(t *testing.T) {
		t.Parallel()

		h := pipeline.Chain(func(*http.Request) (*response.Response, error) {
			panic(errors.New("bad"))
		}, middlewares.Recover(middlewares.WithRecoverDisablePrintStack()))

		_, err := h(httptest.NewRequest(http.MethodGet, "/", nil))
		pe, isPanic := middlewares.AsPanicError(err)
		require.True(t, isPanic)
		require.Nil(t, pe.Stack)
		require.Equal(t, "panic: bad", err.Error())
	})

	t.Run("passes through", func(t *testing.T) {
		t.Parallel()

		resp, err := pipeline.Chain(ok("fine"), middlewares.Recover())(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, "fine", resp.String())
		require.False(t, middlewares.IsPanicError(err))
	})
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("fast handler", func(t *testing.T) {
		t.Parallel()

		resp, err := pipeline.Chain(ok("fast"), middlewares.Timeout(time.Second, nil))(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, "fast", resp.String())
	})

	t.Run("slow handler", func(t *testing.T) {
		t.Parallel()

		h := pipeline.Chain(func(*http.Request) (*response.Response, error) {
			time.Sleep(200 * time.Millisecond)
			return response.NoContent(), nil
		}, middlewares.Timeout(20*time.Millisecond, nil))

		_, err := h(httptest.NewRequest(http.MethodGet, "/", nil))
		te, isTimeout := middlewares.AsTimeoutError(err)
		require.True(t, isTimeout)
		require.Equal(t, 20*time.Millisecond, te.Duration)
		require.Equal(t, http.StatusServiceUnavailable, internal.StatusOf(err))
	})

	t.Run("caller cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		h := pipeline.Chain(func(*http.Request) (*response.Response, error) {
			time.Sleep(50 * time.Millisecond)
			return response.NoContent(), nil
		}, middlewares.Timeout(time.Second, nil))

		_, err := h(httptest.NewRequestWithContext(ctx, http.MethodGet, "/", nil))
		require.ErrorIs(t, err, context.Canceled)
		require.False(t, middlewares.IsTimeoutError(err))
	})

	t.Run("panic reaches outer recover", func(t *testing.T) {
		t.Parallel()

		h := pipeline.Chain(func(*http.Request) (*response.Response, error) {
			panic("inside timeout")
		}, middlewares.Recover(), middlewares.Timeout(time.Second, nil))

		_, err := h(httptest.NewRequest(http.MethodGet, "/", nil))
		pe, isPanic := middlewares.AsPanicError(err)
		require.True(t, isPanic)
		require.Equal(t, "inside timeout", pe.Value)
	})
}
