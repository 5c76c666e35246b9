package routecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/pressgate/pkg/pipeline"
	"github.com/dmitrymomot/pressgate/pkg/routing"
)

// DefaultEnvironment is the only environment cached unless configured
// otherwise.
const DefaultEnvironment = "prod"

// Manifest is the cached outcome of compiling routes and resolving their
// middleware.
type Manifest struct {
	GeneratedAt time.Time `yaml:"generated_at"`

	Environment string `yaml:"environment"`
	Fingerprint string `yaml:"fingerprint"`

	// Routes holds compiled patterns in declaration order.
	Routes []routing.Compiled `yaml:"routes"`

	// RouteMiddleware holds resolved middleware specifiers per route,
	// aligned with Routes.
	RouteMiddleware [][]string `yaml:"route_middleware"`

	// UnmatchedMiddleware holds the always-run middleware per area group.
	UnmatchedMiddleware map[string][]string `yaml:"unmatched_middleware,omitempty"`
}

// Valid reports whether m was generated for fingerprint and is internally
// consistent.
func (m *Manifest) Valid(fingerprint string) bool {
	return m != nil && m.Fingerprint == fingerprint && len(m.Routes) == len(m.RouteMiddleware)
}

// BuildFunc compiles a fresh manifest on a cache miss.
type BuildFunc func(ctx context.Context) (*Manifest, error)

// Store persists manifests per environment.
type Store interface {
	// Fetch returns the manifest for env whose fingerprint matches, calling
	// build and storing its result when there is none. hit reports whether
	// the stored manifest was used.
	Fetch(ctx context.Context, env, fingerprint string, build BuildFunc) (m *Manifest, hit bool, err error)
}

// Fingerprint hashes route declarations together with the middleware
// configuration. Any change to either yields a different fingerprint.
func Fingerprint(declarations []string, cfg pipeline.Config) (string, error) {
	data, err := yaml.Marshal(struct {
		Routes     []string        `yaml:"routes"`
		Middleware pipeline.Config `yaml:"middleware"`
	}{declarations, cfg})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Cacheable reports whether env is one of envs. An empty list means
// DefaultEnvironment only.
func Cacheable(env string, envs ...string) bool {
	if len(envs) == 0 {
		return env == DefaultEnvironment
	}
	for _, e := range envs {
		if e == env {
			return true
		}
	}
	return false
}
