package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pressgate/pkg/logger"
)

type ctxKey struct{}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json with extractors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(
			logger.WithOutput(&buf),
			logger.WithExtractors(logger.StringExtractor(ctxKey{}, "request_id"), nil),
		)

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
		log.InfoContext(ctx, "hello", slog.Int("status", 200))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		require.Equal(t, "hello", rec["msg"])
		require.Equal(t, "req-1", rec["request_id"])
		require.InDelta(t, 200, rec["status"], 0)
	})

	t.Run("missing context value adds nothing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithExtractors(logger.StringExtractor(ctxKey{}, "request_id")))
		log.InfoContext(context.Background(), "hello")
		require.NotContains(t, buf.String(), "request_id")
	})

	t.Run("level and text format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn), logger.WithFormat("text"))
		log.Info("hidden")
		log.Warn("shown")

		require.NotContains(t, buf.String(), "hidden")
		require.True(t, strings.HasPrefix(buf.String(), "time="))
		require.Contains(t, buf.String(), "msg=shown")
	})

	t.Run("empty sentry dsn stays local", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithSentry(logger.SentryConfig{}))
		log.Error("boom")
		require.Contains(t, buf.String(), `"msg":"boom"`)
	})

	t.Run("attrs survive grouping", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithExtractors(logger.StringExtractor(ctxKey{}, "request_id")))
		ctx := context.WithValue(context.Background(), ctxKey{}, "req-2")
		log.With("component", "kernel").InfoContext(ctx, "hello")
		require.Contains(t, buf.String(), `"component":"kernel"`)
		require.Contains(t, buf.String(), `"request_id":"req-2"`)
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, logger.ParseLevel("debug"))
	require.Equal(t, slog.LevelWarn, logger.ParseLevel("WARN"))
	require.Equal(t, slog.LevelError, logger.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel(""))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel("loud"))
}
