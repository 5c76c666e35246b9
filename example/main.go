package main

import (
	"context"
	"embed"
	"flag"
	"log/slog"
	"net/http/httputil"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/pressgate"
	"github.com/dmitrymomot/pressgate/middlewares"
	"github.com/dmitrymomot/pressgate/pkg/cache"
	"github.com/dmitrymomot/pressgate/pkg/db"
	"github.com/dmitrymomot/pressgate/pkg/logger"
	"github.com/dmitrymomot/pressgate/pkg/redis"
	"github.com/dmitrymomot/pressgate/pkg/routecache"
)

//go:embed migrations/*.sql
var migrations embed.FS

func main() {
	configPath := flag.String("config", "example/config.yaml", "configuration file")
	flag.Parse()

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := pressgate.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	log := logger.FromConfig(cfg.Log, middlewares.RequestIDExtractor())

	if err := run(cfg, log); err != nil {
		log.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *pressgate.Config, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	upstream, err := url.Parse(getEnv("WORDPRESS_URL", "http://localhost:8081"))
	if err != nil {
		return err
	}

	opts := []pressgate.Option{
		pressgate.WithConfig(cfg),
		pressgate.WithCustomLogger(log),
		pressgate.WithHost(httputil.NewSingleHostReverseProxy(upstream)),
		pressgate.WithMetricsEndpoint("/metrics", prometheus.DefaultGatherer),
	}
	var (
		checks   []pressgate.HealthOption
		shutdown []pressgate.RunOption
		deps     = middlewares.Deps{Logger: log}
		shop     = &Shop{}
	)

	if cfg.Database.URL != "" {
		pool, err := db.Connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
		if err := db.Migrate(ctx, pool, migrations,
			db.WithMigrationDir("migrations"),
			db.WithMigrationLogger(log),
		); err != nil {
			pool.Close()
			return err
		}
		deps.DB = pool
		shop.db = pool
		checks = append(checks, pressgate.WithReadinessCheck("postgres", db.Healthcheck(pool)))
		shutdown = append(shutdown, pressgate.ShutdownHook(db.Shutdown(pool)))
	}

	if cfg.Redis.URL != "" {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		checks = append(checks, pressgate.WithReadinessCheck("redis", redis.Healthcheck(client)))
		shutdown = append(shutdown, pressgate.ShutdownHook(redis.Shutdown(client)))
		// Shared by every instance, unlike the file cache from the config.
		opts = append(opts, pressgate.WithRouteCache(
			routecache.NewRedisStore(client, routecache.DefaultTTL, cache.WithPrefix("pressgate")),
			cfg.RouteCache.Environments...,
		))
	}

	opts = append(opts,
		pressgate.WithHealthChecks(checks...),
		pressgate.WithMiddlewareRegistrar(func(reg *pressgate.MiddlewareRegistry) {
			middlewares.Register(reg, deps)
		}),
		pressgate.WithHandlers(shop),
	)

	app, err := pressgate.New(opts...)
	if err != nil {
		return err
	}
	log.Info("routes compiled",
		slog.Int("routes", app.Routes().Len()),
		slog.String("environment", app.Environment()),
		slog.Bool("route_cache_hit", app.RouteCacheHit()),
	)

	return app.Run("", append(shutdown,
		pressgate.WithServerConfig(cfg.Server),
		pressgate.Logger(log),
	)...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
