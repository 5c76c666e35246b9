// Package response provides the buffered response value passed through the
// middleware pipeline, constructors for common content types, the delegation
// marker and a Preparer that normalizes headers before a response is sent.
//
// Handlers return responses directly:
//
//	func show(r *http.Request) (*response.Response, error) {
//		return response.Text(http.StatusOK, "hello")
//	}
//
// A response built with Delegated tells the kernel that the request was not
// handled and must be served by the host application instead.
package response
