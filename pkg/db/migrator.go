package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrymomot/pressgate/pkg/logger"
)

// DefaultMigrationTable records applied migration versions.
const DefaultMigrationTable = "schema_migrations"

type migrateConfig struct {
	table  string
	dir    string
	logger *slog.Logger
}

// MigrateOption configures Migrate.
type MigrateOption func(*migrateConfig)

// WithMigrationTable sets the version table. Default: schema_migrations.
func WithMigrationTable(name string) MigrateOption {
	return func(c *migrateConfig) {
		if name != "" {
			c.table = name
		}
	}
}

// WithMigrationDir sets the directory inside the migrations FS. Default: ".".
func WithMigrationDir(dir string) MigrateOption {
	return func(c *migrateConfig) {
		if dir != "" {
			c.dir = dir
		}
	}
}

// WithMigrationLogger receives goose progress messages.
func WithMigrationLogger(l *slog.Logger) MigrateOption {
	return func(c *migrateConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// goose keeps its settings in package state.
var gooseMu sync.Mutex

// Migrate applies all pending SQL migrations from migrations to the
// database behind pool.
//
//	//go:embed migrations/*.sql
//	var migrations embed.FS
//
//	err := db.Migrate(ctx, pool, migrations, db.WithMigrationDir("migrations"))
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, opts ...MigrateOption) error {
	if pool == nil {
		return errors.Join(ErrApplyMigrations, ErrNilPool)
	}
	cfg := &migrateConfig{table: DefaultMigrationTable, dir: ".", logger: logger.NewNope()}
	for _, opt := range opts {
		opt(cfg)
	}

	// Shares the pool's connections; closing it would close the pool.
	sqlDB := stdlib.OpenDBFromPool(pool)

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLogger{log: cfg.logger})
	goose.SetTableName(cfg.table)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	if err := goose.UpContext(ctx, sqlDB, cfg.dir); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g *gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...), slog.String("component", "migrations"))
}

// Fatalf only logs; goose returns the error to Migrate.
func (g *gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...), slog.String("component", "migrations"))
}
