package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pressgate/pkg/redis"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("validates url", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Open(ctx, "")
		require.ErrorIs(t, err, redis.ErrEmptyConnectionURL)

		for _, url := range []string{"http://localhost:6379", "localhost:6379", "postgres://localhost"} {
			_, err := redis.Open(ctx, url)
			require.ErrorIs(t, err, redis.ErrFailedToParseURL, url)
		}

		_, err = redis.Open(ctx, "redis://localhost:6379/notadb")
		require.ErrorIs(t, err, redis.ErrFailedToParseURL)
	})

	t.Run("connects", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		client, err := redis.Open(ctx, "redis://"+mr.Addr()+"/0", redis.WithPoolSize(2), redis.WithMinIdleConns(1))
		require.NoError(t, err)

		require.NoError(t, redis.Healthcheck(client)(ctx))
		require.NoError(t, redis.Shutdown(client)(ctx))
		require.ErrorIs(t, redis.Healthcheck(client)(ctx), redis.ErrHealthcheckFailed)
	})

	t.Run("gives up after retries", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := redis.Connect(ctx, redis.Config{
			URL:           "redis://" + addr,
			RetryAttempts: 2,
			RetryInterval: time.Millisecond,
			DialTimeout:   50 * time.Millisecond,
		})
		require.ErrorIs(t, err, redis.ErrConnectionFailed)
	})

	t.Run("stops waiting when context ends", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err := redis.Open(ctx, "redis://"+addr, redis.WithRetry(5, time.Second))
		require.ErrorIs(t, err, redis.ErrConnectionFailed)
	})
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, redis.Healthcheck(nil)(context.Background()), redis.ErrHealthcheckFailed)
}
