package response

import (
	"context"
	"fmt"

	"github.com/a-h/templ"
)

// Component renders markup into a writer. It is templ.Component, so
// generated templ components, templ.ComponentFunc and templ.Raw all work.
type Component = templ.Component

// Render creates a text/html response from a component.
func Render(ctx context.Context, status int, c Component) (*Response, error) {
	resp, err := New(status)
	if err != nil {
		return nil, err
	}
	if err := c.Render(ctx, resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	resp.Header().Set("Content-Type", "text/html; charset=UTF-8")
	return resp, nil
}
