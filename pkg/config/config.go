package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/pressgate/pkg/db"
	"github.com/dmitrymomot/pressgate/pkg/logger"
	"github.com/dmitrymomot/pressgate/pkg/pipeline"
	"github.com/dmitrymomot/pressgate/pkg/redis"
	"github.com/dmitrymomot/pressgate/pkg/routing"
)

const (
	DefaultEnvironment     = "dev"
	DefaultAddress         = ":8080"
	DefaultShutdownTimeout = 30 * time.Second
)

// Config is the file configuration of an application.
type Config struct {
	Environment string          `yaml:"environment"`
	Server      Server          `yaml:"server"`
	Routing     Routing         `yaml:"routing"`
	Middleware  pipeline.Config `yaml:"middleware"`
	RouteCache  RouteCache      `yaml:"route_cache"`
	Database    db.Config       `yaml:"database"`
	Redis       redis.Config    `yaml:"redis"`
	Log         logger.Config   `yaml:"log"`
}

// Server configures the HTTP listener.
type Server struct {
	Address         string        `yaml:"address"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Routing configures request areas, the fallback route and URL generation.
type Routing struct {
	AdminPrefix string   `yaml:"admin_prefix"`
	APIPrefixes []string `yaml:"api_prefixes"`
	// FallbackExcludes are regular expressions of paths the fallback route
	// never answers. Nil keeps the router defaults.
	FallbackExcludes []string            `yaml:"fallback_excludes"`
	URL              routing.URLContext `yaml:"url"`
}

// Areas returns the area configuration, defaulting the admin prefix.
func (r Routing) Areas() routing.Areas {
	areas := routing.DefaultAreas()
	if r.AdminPrefix != "" {
		areas.AdminPrefix = r.AdminPrefix
	}
	areas.APIPrefixes = r.APIPrefixes
	return areas
}

// URLContext returns the URL generation context with unset fields taken
// from routing.DefaultURLContext.
func (r Routing) URLContext() routing.URLContext {
	ctx := routing.DefaultURLContext()
	if r.URL.Host != "" {
		ctx.Host = r.URL.Host
	}
	if r.URL.Scheme != "" {
		ctx.Scheme = r.URL.Scheme
	}
	if r.URL.HTTPPort != 0 {
		ctx.HTTPPort = r.URL.HTTPPort
	}
	if r.URL.HTTPSPort != 0 {
		ctx.HTTPSPort = r.URL.HTTPSPort
	}
	return ctx
}

// RouteCache configures the file route cache. An empty Dir disables it.
type RouteCache struct {
	Dir          string   `yaml:"dir"`
	Environments []string `yaml:"environments"`
}

// Default returns the configuration used for keys absent from a file.
func Default() *Config {
	return &Config{
		Environment: DefaultEnvironment,
		Server: Server{
			Address:         DefaultAddress,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Routing: Routing{AdminPrefix: routing.DefaultAdminPrefix},
	}
}

// Load reads a YAML file. ${VAR} references are expanded from the
// environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrReadConfig, err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse reads a YAML document like Load. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Join(ErrReadConfig, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(strings.NewReader(os.ExpandEnv(string(data))))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrParseConfig, err)
	}

	// An unset ${APP_ENV} expands to an empty value.
	if cfg.Environment == "" {
		cfg.Environment = DefaultEnvironment
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at boot.
func (c *Config) Validate() error {
	var errs []error
	if c.Environment == "" {
		errs = append(errs, fmt.Errorf("%w: environment must not be empty", ErrInvalidConfig))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("%w: server.shutdown_timeout must not be negative", ErrInvalidConfig))
	}
	if p := c.Routing.AdminPrefix; p != "" && !strings.HasPrefix(p, "/") {
		errs = append(errs, fmt.Errorf("%w: routing.admin_prefix %q must start with /", ErrInvalidConfig, p))
	}
	for _, p := range c.Routing.APIPrefixes {
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, fmt.Errorf("%w: routing.api_prefixes entry %q must start with /", ErrInvalidConfig, p))
		}
	}
	if s := c.Routing.URL.Scheme; s != "" && s != "http" && s != "https" {
		errs = append(errs, fmt.Errorf("%w: routing.url.scheme %q must be http or https", ErrInvalidConfig, s))
	}
	for _, port := range []int{c.Routing.URL.HTTPPort, c.Routing.URL.HTTPSPort} {
		if port < 0 || port > 65535 {
			errs = append(errs, fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, port))
		}
	}
	if err := c.Middleware.Validate(); err != nil {
		errs = append(errs, errors.Join(ErrInvalidConfig, err))
	}
	return errors.Join(errs...)
}
