package pipeline

import (
	"fmt"
	"slices"
	"sync"
)

// Factory builds a middleware instance from specifier arguments.
type Factory func(args ...any) (Middleware, error)

// Static wraps a middleware that takes no arguments.
func Static(mw Middleware) Factory {
	return func(args ...any) (Middleware, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("%w: middleware takes no arguments, got %v", ErrInvalidArgument, args)
		}
		return mw, nil
	}
}

// Registry maps middleware names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// RegisterIfAbsent adds f unless name is already registered.
// It reports whether f was added.
func (r *Registry) RegisterIfAbsent(name string, f Factory) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return false
	}
	r.factories[name] = f
	return true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Build instantiates the middleware described by s.
func (r *Registry) Build(s Spec) (Middleware, error) {
	r.mu.RLock()
	f, ok := r.factories[s.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown middleware %q", ErrInvalidMiddleware, s.Name)
	}
	mw, err := f(s.Values()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidMiddleware, s, err)
	}
	if mw == nil {
		return nil, fmt.Errorf("%w: factory for %q returned nil", ErrInvalidMiddleware, s.Name)
	}
	return mw, nil
}
