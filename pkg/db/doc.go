// Package db bridges handlers to PostgreSQL through a pgx connection pool.
//
// Connect opens the pool from a Config, retrying until the database answers:
//
//	pool, err := db.Connect(ctx, cfg.Database)
//	if err != nil {
//		return err
//	}
//
// # Transactions
//
// WithTx runs a function inside a transaction and stores the transaction in
// the context it passes on. Nested calls use savepoints. Code that should
// join a surrounding transaction asks Conn for its querier:
//
//	err := db.WithTx(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
//		_, err := db.Conn(ctx, pool).Exec(ctx, "UPDATE posts SET views = views + 1 WHERE id = $1", id)
//		return err
//	})
//
// The db_transaction middleware wraps a whole route in WithTx.
//
// # Migrations
//
// Migrate applies embedded goose SQL migrations over the same pool:
//
//	//go:embed migrations/*.sql
//	var migrations embed.FS
//
//	err := db.Migrate(ctx, pool, migrations, db.WithMigrationDir("migrations"))
//
// Healthcheck and Shutdown plug the pool into the health endpoints and the
// server shutdown hooks.
package db
