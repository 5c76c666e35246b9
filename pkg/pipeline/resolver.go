package pipeline

import (
	"fmt"
	"slices"
	"strings"
)

// Resolver expands middleware specifiers into an ordered, deduplicated list
// of concrete middleware.
type Resolver struct {
	registry  *Registry
	groups    map[string][]string
	aliases   map[string]string
	priority  map[string]int
	alwaysRun []string
}

// NewResolver validates cfg and creates a resolver backed by registry.
func NewResolver(cfg Config, registry *Registry) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if registry == nil {
		registry = NewRegistry()
	}

	r := &Resolver{
		registry:  registry,
		groups:    make(map[string][]string, len(cfg.Groups)),
		aliases:   make(map[string]string, len(cfg.Aliases)),
		priority:  make(map[string]int, len(cfg.Priority)),
		alwaysRun: slices.Clone(cfg.AlwaysRun),
	}
	for name, members := range cfg.Groups {
		r.groups[name] = slices.Clone(members)
	}
	for name, target := range cfg.Aliases {
		r.aliases[name] = target
	}
	for _, name := range cfg.Priority {
		name = r.canonical(name)
		if _, ok := r.priority[name]; !ok {
			r.priority[name] = len(r.priority)
		}
	}
	return r, nil
}

// Registry returns the registry the resolver builds middleware from.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// HasGroup reports whether a group is defined.
func (r *Resolver) HasGroup(name string) bool {
	_, ok := r.groups[name]
	return ok
}

// AlwaysRuns reports whether group is configured to run for unmatched requests.
func (r *Resolver) AlwaysRuns(group string) bool {
	return slices.Contains(r.alwaysRun, group)
}

// ForRoute returns the raw specifiers that apply to a matched route:
// the global group, the route's area group, then the route's own middleware.
func (r *Resolver) ForRoute(areaGroup string, route []string) []string {
	raw := make([]string, 0, len(route)+2)
	if r.HasGroup(GroupGlobal) {
		raw = append(raw, GroupGlobal)
	}
	if areaGroup != "" && r.HasGroup(areaGroup) {
		raw = append(raw, areaGroup)
	}
	return append(raw, route...)
}

// ForUnmatched returns the raw specifiers that apply when no route matched.
// Only groups listed as always-run take part.
func (r *Resolver) ForUnmatched(areaGroup string) []string {
	var raw []string
	if r.AlwaysRuns(GroupGlobal) && r.HasGroup(GroupGlobal) {
		raw = append(raw, GroupGlobal)
	}
	if areaGroup != "" && r.AlwaysRuns(areaGroup) && r.HasGroup(areaGroup) {
		raw = append(raw, areaGroup)
	}
	return raw
}

// Resolve expands groups and aliases, removes duplicates keeping the first
// occurrence and sorts by priority. Middleware not in the priority list keep
// their relative order after the prioritized ones.
func (r *Resolver) Resolve(raw []string) ([]Spec, error) {
	var expanded []Spec
	for _, s := range raw {
		if err := r.expand(s, nil, nil, &expanded); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]struct{}, len(expanded))
	out := expanded[:0]
	for _, s := range expanded {
		key := s.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}

	slices.SortStableFunc(out, func(a, b Spec) int {
		return r.rank(a.Name) - r.rank(b.Name)
	})
	return out, nil
}

// Build resolves raw and instantiates every middleware into a pipeline.
func (r *Resolver) Build(raw []string) (*Pipeline, error) {
	specs, err := r.Resolve(raw)
	if err != nil {
		return nil, err
	}
	return r.Instantiate(specs)
}

// Instantiate builds a pipeline from already resolved specs.
func (r *Resolver) Instantiate(specs []Spec) (*Pipeline, error) {
	mw := make([]Middleware, 0, len(specs))
	for _, s := range specs {
		m, err := r.registry.Build(s)
		if err != nil {
			return nil, err
		}
		mw = append(mw, m)
	}
	return New(mw...), nil
}

func (r *Resolver) expand(raw string, path []string, inherited []string, out *[]Spec) error {
	s := ParseSpec(raw)
	if s.Name == "" {
		return fmt.Errorf("%w: empty middleware specifier", ErrInvalidMiddleware)
	}

	if members, ok := r.groups[s.Name]; ok {
		if slices.Contains(path, s.Name) {
			return &RecursionError{Path: append(slices.Clone(path), s.Name)}
		}
		next := append(slices.Clone(path), s.Name)
		args := s.Args
		if len(args) == 0 {
			args = inherited
		}
		for _, m := range members {
			if err := r.expand(m, next, args, out); err != nil {
				return err
			}
		}
		return nil
	}

	if len(s.Args) == 0 {
		s.Args = inherited
	}

	if target, ok := r.aliases[s.Name]; ok && ParseSpec(target).Name != s.Name {
		if slices.Contains(path, s.Name) {
			return &RecursionError{Path: append(slices.Clone(path), s.Name)}
		}
		t := ParseSpec(target)
		if len(s.Args) > 0 {
			t.Args = s.Args
		}
		return r.expand(t.String(), append(slices.Clone(path), s.Name), nil, out)
	}

	if !r.registry.Has(s.Name) {
		if len(path) > 0 {
			return fmt.Errorf("%w: unknown middleware %q referenced from %s", ErrInvalidMiddleware, s.Name, strings.Join(path, "->"))
		}
		return fmt.Errorf("%w: unknown middleware %q", ErrInvalidMiddleware, s.Name)
	}

	*out = append(*out, s)
	return nil
}

func (r *Resolver) canonical(name string) string {
	if target, ok := r.aliases[name]; ok {
		return ParseSpec(target).Name
	}
	return name
}

func (r *Resolver) rank(name string) int {
	if i, ok := r.priority[name]; ok {
		return i
	}
	return len(r.priority) + 1
}
