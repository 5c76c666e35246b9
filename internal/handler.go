package internal

import (
	"net/http"

	"github.com/dmitrymomot/pressgate/pkg/response"
	"github.com/dmitrymomot/pressgate/pkg/routing"
)

// Handler declares routes on a router.
//
// Example:
//
//	type BlogHandler struct {
//	    posts *repository.Posts
//	}
//
//	func (h *BlogHandler) Routes(r *routing.Router) {
//	    r.Get("/blog/{slug}", h.show).Name("blog.show")
//	    r.Post("/blog/{slug}/comments", h.comment).Middleware("auth")
//	}
type Handler interface {
	Routes(r *routing.Router)
}

// RoutesFunc adapts a function to Handler.
type RoutesFunc func(r *routing.Router)

func (f RoutesFunc) Routes(r *routing.Router) {
	f(r)
}

// ErrorHandler turns an error returned from the middleware pipeline into a
// response. Returning nil falls back to a plain status response.
type ErrorHandler func(r *http.Request, err error) *response.Response
