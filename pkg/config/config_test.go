package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pressgate/pkg/config"
	"github.com/dmitrymomot/pressgate/pkg/routing"
)

const document = `
environment: prod
server:
  address: ":9000"
  shutdown_timeout: 10s
routing:
  admin_prefix: /manage
  api_prefixes: [/wp-json, /api]
  fallback_excludes: ["^healthz$"]
  url:
    host: shop.test
    scheme: http
    http_port: 8080
middleware:
  middleware_groups:
    global: [request_id, recover]
    api: [timeout:5]
  middleware_aliases:
    tx: db_transaction
  middleware_priority: [recover, request_id]
  always_run_middleware_groups: [global]
route_cache:
  dir: var/cache
  environments: [prod, staging]
database:
  url: ${PRESSGATE_TEST_DB}
  max_conns: 4
redis:
  url: redis://localhost:6379/0
log:
  level: debug
  format: text
`

func TestLoad(t *testing.T) {
	t.Setenv("PRESSGATE_TEST_DB", "postgres://u:p@db:5432/app")

	path := filepath.Join(t.TempDir(), "pressgate.yaml")
	require.NoError(t, os.WriteFile(path, []byte(document), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Environment)
	require.Equal(t, ":9000", cfg.Server.Address)
	require.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	require.Equal(t, routing.Areas{AdminPrefix: "/manage", APIPrefixes: []string{"/wp-json", "/api"}}, cfg.Routing.Areas())
	require.Equal(t, []string{"^healthz$"}, cfg.Routing.FallbackExcludes)
	require.Equal(t, routing.URLContext{Host: "shop.test", Scheme: "http", HTTPPort: 8080, HTTPSPort: 443}, cfg.Routing.URLContext())

	require.Equal(t, []string{"request_id", "recover"}, cfg.Middleware.Groups["global"])
	require.Equal(t, "db_transaction", cfg.Middleware.Aliases["tx"])
	require.Equal(t, []string{"recover", "request_id"}, cfg.Middleware.Priority)
	require.Equal(t, []string{"global"}, cfg.Middleware.AlwaysRun)

	require.Equal(t, config.RouteCache{Dir: "var/cache", Environments: []string{"prod", "staging"}}, cfg.RouteCache)
	require.Equal(t, "postgres://u:p@db:5432/app", cfg.Database.URL)
	require.EqualValues(t, 4, cfg.Database.MaxConns)
	require.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("empty document keeps defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.Parse(strings.NewReader(""))
		require.NoError(t, err)
		require.Equal(t, config.Default(), cfg)
		require.Equal(t, routing.DefaultAreas(), cfg.Routing.Areas())
		require.Equal(t, routing.DefaultURLContext(), cfg.Routing.URLContext())
		require.Nil(t, cfg.Routing.FallbackExcludes)
	})

	t.Run("empty environment takes the default", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.Parse(strings.NewReader("environment: \"\"\n"))
		require.NoError(t, err)
		require.Equal(t, config.DefaultEnvironment, cfg.Environment)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		t.Parallel()

		_, err := config.Parse(strings.NewReader("enviroment: prod\n"))
		require.ErrorIs(t, err, config.ErrParseConfig)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		_, err := config.Parse(strings.NewReader("server: [\n"))
		require.ErrorIs(t, err, config.ErrParseConfig)
	})

	invalid := []struct {
		name string
		doc  string
	}{
		{"relative admin prefix", "routing:\n  admin_prefix: manage\n"},
		{"relative api prefix", "routing:\n  api_prefixes: [api]\n"},
		{"bad scheme", "routing:\n  url:\n    scheme: ftp\n"},
		{"bad port", "routing:\n  url:\n    http_port: 70000\n"},
		{"bad always run group", "middleware:\n  always_run_middleware_groups: [web]\n"},
		{"negative shutdown timeout", "server:\n  shutdown_timeout: -1s\n"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.Parse(strings.NewReader(tt.doc))
			require.ErrorIs(t, err, config.ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, config.ErrReadConfig)
	require.ErrorIs(t, err, os.ErrNotExist)
}
