package db

import (
	"context"
	"errors"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthcheck returns a readiness check pinging the database.
func Healthcheck(db Pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		if db == nil {
			return ErrHealthcheckFailed
		}
		if err := db.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Shutdown returns a shutdown hook closing the pool.
//
//	app.Run(":8080", pressgate.ShutdownHook(db.Shutdown(pool)))
func Shutdown(pool interface{ Close() }) func(ctx context.Context) error {
	return func(context.Context) error {
		pool.Close()
		return nil
	}
}
