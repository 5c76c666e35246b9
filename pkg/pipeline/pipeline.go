package pipeline

import (
	"net/http"

	"github.com/dmitrymomot/pressgate/pkg/response"
)

// HandlerFunc produces a response for a request.
type HandlerFunc func(r *http.Request) (*response.Response, error)

// Middleware wraps a HandlerFunc. A middleware may return its own response
// without calling next, or call next with the original or a derived request
// and modify the response it gets back.
type Middleware func(next HandlerFunc) HandlerFunc

// Pipeline is an ordered chain of middleware around a terminal handler.
// Middleware are applied so that the first one added runs outermost.
type Pipeline struct {
	middleware []Middleware
}

// New creates a pipeline from middleware in execution order.
func New(mw ...Middleware) *Pipeline {
	return &Pipeline{middleware: append([]Middleware(nil), mw...)}
}

// Use appends middleware to the end of the chain.
func (p *Pipeline) Use(mw ...Middleware) *Pipeline {
	p.middleware = append(p.middleware, mw...)
	return p
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middleware)
}

// Then composes the chain around terminal and returns the resulting handler.
// A nil terminal, or one that returns neither a response nor an error,
// makes the handler fail with ErrExhausted.
func (p *Pipeline) Then(terminal HandlerFunc) HandlerFunc {
	h := guard(terminal)
	for i := len(p.middleware) - 1; i >= 0; i-- {
		h = p.middleware[i](h)
	}
	return exhausted(h)
}

// Run sends r through the chain into terminal.
func (p *Pipeline) Run(r *http.Request, terminal HandlerFunc) (*response.Response, error) {
	return p.Then(terminal)(r)
}

// Chain composes middleware around h in execution order.
func Chain(h HandlerFunc, mw ...Middleware) HandlerFunc {
	return New(mw...).Then(h)
}

// guard makes the terminal fail with ErrExhausted instead of handing
// (nil, nil) back through the middleware.
func guard(terminal HandlerFunc) HandlerFunc {
	if terminal == nil {
		return func(*http.Request) (*response.Response, error) {
			return nil, ErrExhausted
		}
	}
	return exhausted(terminal)
}

func exhausted(h HandlerFunc) HandlerFunc {
	return func(r *http.Request) (*response.Response, error) {
		resp, err := h(r)
		if resp == nil && err == nil {
			return nil, ErrExhausted
		}
		return resp, err
	}
}
