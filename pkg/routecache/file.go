package routecache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/pressgate/pkg/routing"
)

const (
	routesSuffix     = ".routes-generated.yaml"
	middlewareSuffix = ".middleware-map-generated.yaml"
)

type routesDoc struct {
	GeneratedAt time.Time          `yaml:"generated_at"`
	Environment string             `yaml:"environment"`
	Fingerprint string             `yaml:"fingerprint"`
	Routes      []routing.Compiled `yaml:"routes"`
}

type middlewareDoc struct {
	Fingerprint         string              `yaml:"fingerprint"`
	RouteMiddleware     [][]string          `yaml:"route_middleware"`
	UnmatchedMiddleware map[string][]string `yaml:"unmatched_middleware,omitempty"`
}

// FileStore keeps manifests as two generated YAML files per environment in
// a directory: <env>.routes-generated.yaml and
// <env>.middleware-map-generated.yaml.
type FileStore struct {
	dir string
}

// NewFileStore creates a store writing into dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// RoutesPath returns the path of the compiled route table for env.
func (s *FileStore) RoutesPath(env string) string {
	return filepath.Join(s.dir, env+routesSuffix)
}

// MiddlewarePath returns the path of the resolved middleware map for env.
func (s *FileStore) MiddlewarePath(env string) string {
	return filepath.Join(s.dir, env+middlewareSuffix)
}

// Fetch implements Store.
func (s *FileStore) Fetch(ctx context.Context, env, fingerprint string, build BuildFunc) (*Manifest, bool, error) {
	m, err := s.Load(env)
	if err == nil && m.Valid(fingerprint) {
		return m, true, nil
	}

	m, err = build(ctx)
	if err != nil {
		return nil, false, errors.Join(ErrBuild, err)
	}
	if err := s.Save(env, m); err != nil {
		return m, false, err
	}
	return m, false, nil
}

// Load reads the manifest for env. Missing files yield ErrNotFound; files
// written for different fingerprints yield ErrInvalidManifest.
func (s *FileStore) Load(env string) (*Manifest, error) {
	var routes routesDoc
	if err := readYAML(s.RoutesPath(env), &routes); err != nil {
		return nil, err
	}
	var mw middlewareDoc
	if err := readYAML(s.MiddlewarePath(env), &mw); err != nil {
		return nil, err
	}
	if routes.Fingerprint != mw.Fingerprint {
		return nil, fmt.Errorf("%w: route table and middleware map fingerprints differ", ErrInvalidManifest)
	}

	return &Manifest{
		GeneratedAt:         routes.GeneratedAt,
		Environment:         routes.Environment,
		Fingerprint:         routes.Fingerprint,
		Routes:              routes.Routes,
		RouteMiddleware:     mw.RouteMiddleware,
		UnmatchedMiddleware: mw.UnmatchedMiddleware,
	}, nil
}

// Save writes the manifest for env. Each file is replaced atomically.
func (s *FileStore) Save(env string, m *Manifest) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Join(ErrSave, err)
	}

	routes := routesDoc{
		GeneratedAt: m.GeneratedAt,
		Environment: env,
		Fingerprint: m.Fingerprint,
		Routes:      m.Routes,
	}
	if err := writeYAML(s.RoutesPath(env), routes); err != nil {
		return err
	}
	mw := middlewareDoc{
		Fingerprint:         m.Fingerprint,
		RouteMiddleware:     m.RouteMiddleware,
		UnmatchedMiddleware: m.UnmatchedMiddleware,
	}
	return writeYAML(s.MiddlewarePath(env), mw)
}

// Clear removes the generated files for env.
func (s *FileStore) Clear(env string) error {
	var errs []error
	for _, p := range []string{s.RoutesPath(env), s.MiddlewarePath(env)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.Join(ErrInvalidManifest, err)
	}
	return nil
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Join(ErrSave, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return errors.Join(ErrSave, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Join(ErrSave, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrSave, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Join(ErrSave, err)
	}
	return nil
}
