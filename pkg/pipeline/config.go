package pipeline

import (
	"fmt"
	"slices"
)

// Names of the groups the kernel treats specially.
const (
	GroupGlobal   = "global"
	GroupFrontend = "frontend"
	GroupAdmin    = "admin"
	GroupAPI      = "api"
)

// Config declares middleware groups, aliases and ordering.
type Config struct {
	// Groups maps a group name to the middleware and groups it expands to.
	Groups map[string][]string `yaml:"middleware_groups"`

	// Aliases maps a short name to a registered middleware name.
	Aliases map[string]string `yaml:"middleware_aliases"`

	// Priority lists middleware that must run first, in this order.
	Priority []string `yaml:"middleware_priority"`

	// AlwaysRun lists special groups that run even when no route matched.
	AlwaysRun []string `yaml:"always_run_middleware_groups"`
}

// Validate checks the configuration for structural errors.
func (c Config) Validate() error {
	special := []string{GroupGlobal, GroupFrontend, GroupAdmin, GroupAPI}
	for _, g := range c.AlwaysRun {
		if !slices.Contains(special, g) {
			return fmt.Errorf("%w: always-run group %q must be one of %v", ErrInvalidArgument, g, special)
		}
	}
	for name := range c.Groups {
		if _, ok := c.Aliases[name]; ok {
			return fmt.Errorf("%w: group and alias have the same name %q", ErrInvalidMiddleware, name)
		}
	}
	return nil
}
