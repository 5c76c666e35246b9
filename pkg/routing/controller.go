package routing

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrymomot/pressgate/pkg/pipeline"
)

// Controllers maps controller references of the form
// "Namespace.Controller@method" to handlers.
type Controllers struct {
	mu       sync.RWMutex
	handlers map[string]pipeline.HandlerFunc
}

// NewControllers creates an empty controller registry.
func NewControllers() *Controllers {
	return &Controllers{handlers: make(map[string]pipeline.HandlerFunc)}
}

// Register binds ref to h.
func (c *Controllers) Register(ref string, h pipeline.HandlerFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[ref] = h
}

// RegisterMethods binds every method of a controller at once:
// RegisterMethods("Admin.PostController", map[string]pipeline.HandlerFunc{"index": ...}).
func (c *Controllers) RegisterMethods(controller string, methods map[string]pipeline.HandlerFunc) {
	for m, h := range methods {
		c.Register(controller+"@"+m, h)
	}
}

// Refs returns the registered references in sorted order.
func (c *Controllers) Refs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	refs := make([]string, 0, len(c.handlers))
	for r := range c.handlers {
		refs = append(refs, r)
	}
	sort.Strings(refs)
	return refs
}

// Resolve finds the handler for ref. Unqualified references, those without
// a dot before the @, are looked up under namespace first.
func (c *Controllers) Resolve(namespace, ref string) (pipeline.HandlerFunc, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: %q (no controllers registered)", ErrControllerNotFound, ref)
	}
	if !strings.Contains(ref, "@") {
		ref += "@__invoke"
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	controller, _, _ := strings.Cut(ref, "@")
	if namespace != "" && !strings.Contains(controller, ".") {
		if h, ok := c.handlers[namespace+"."+ref]; ok {
			return h, nil
		}
	}
	if h, ok := c.handlers[ref]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("%w: %q in namespace %q", ErrControllerNotFound, ref, namespace)
}
