package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TxStarter begins transactions. *pgxpool.Pool, *pgx.Conn and pgx.Tx
// satisfy it.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Querier runs queries. *pgxpool.Pool and pgx.Tx satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// ContextWithTx returns a copy of ctx carrying tx.
func ContextWithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction stored in ctx, if any.
func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok && tx != nil
}

// Conn returns the transaction carried by ctx, or fallback outside of one.
// Repositories use it so they join a request-scoped transaction when the
// db_transaction middleware is active.
func Conn(ctx context.Context, fallback Querier) Querier {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return fallback
}

// WithTx runs fn inside a transaction. Inside an existing transaction in ctx
// it uses a savepoint instead. The transaction is rolled back if fn returns
// an error or panics, and committed otherwise. The context passed to fn
// carries the transaction.
func WithTx(ctx context.Context, db TxStarter, fn func(ctx context.Context, tx pgx.Tx) error) (err error) {
	var starter TxStarter = db
	if outer, ok := TxFromContext(ctx); ok {
		starter = outer
	}

	tx, err := starter.Begin(ctx)
	if err != nil {
		return errors.Join(ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(ContextWithTx(ctx, tx), tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, ErrRollbackTx, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Join(ErrCommitTx, err)
	}
	return nil
}
