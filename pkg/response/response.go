package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Response is a buffered HTTP response produced by route handlers and
// middleware. The body is kept in memory until the response is sent so that
// middleware running after the handler can still inspect and modify it.
type Response struct {
	header    http.Header
	body      bytes.Buffer
	status    int
	delegated bool
}

// New creates an empty response with the given status code.
func New(status int) (*Response, error) {
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	return &Response{status: status, header: make(http.Header)}, nil
}

// Delegated returns the marker response that tells the kernel no route
// handled the request and it must be passed on to the host application.
func Delegated() *Response {
	return &Response{status: http.StatusOK, header: make(http.Header), delegated: true}
}

// Text creates a text/plain response.
func Text(status int, body string) (*Response, error) {
	resp, err := New(status)
	if err != nil {
		return nil, err
	}
	resp.header.Set("Content-Type", "text/plain; charset=UTF-8")
	resp.body.WriteString(body)
	return resp, nil
}

// HTML creates a text/html response.
func HTML(status int, body string) (*Response, error) {
	resp, err := New(status)
	if err != nil {
		return nil, err
	}
	resp.header.Set("Content-Type", "text/html; charset=UTF-8")
	resp.body.WriteString(body)
	return resp, nil
}

// JSON creates an application/json response with v encoded as the body.
func JSON(status int, v any) (*Response, error) {
	resp, err := New(status)
	if err != nil {
		return nil, err
	}
	if err := json.NewEncoder(&resp.body).Encode(v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	resp.header.Set("Content-Type", "application/json")
	return resp, nil
}

// NoContent creates an empty 204 response.
func NoContent() *Response {
	return &Response{status: http.StatusNoContent, header: make(http.Header)}
}

// Redirect creates a redirect response to url. Status must be a 3xx code.
func Redirect(status int, url string) (*Response, error) {
	if status < 300 || status > 399 {
		return nil, fmt.Errorf("%w: redirect requires a 3xx status, got %d", ErrInvalidStatus, status)
	}
	if url == "" {
		return nil, ErrEmptyLocation
	}
	resp, err := New(status)
	if err != nil {
		return nil, err
	}
	resp.header.Set("Location", url)
	return resp, nil
}

// Status returns the HTTP status code.
func (r *Response) Status() int {
	return r.status
}

// SetStatus changes the status code.
func (r *Response) SetStatus(status int) error {
	if err := validateStatus(status); err != nil {
		return err
	}
	r.status = status
	return nil
}

// Header returns the mutable header map.
func (r *Response) Header() http.Header {
	return r.header
}

// Body returns the buffered body. The returned slice aliases the buffer.
func (r *Response) Body() []byte {
	return r.body.Bytes()
}

// String returns the buffered body as a string.
func (r *Response) String() string {
	return r.body.String()
}

// Len returns the body size in bytes.
func (r *Response) Len() int {
	return r.body.Len()
}

// Write appends p to the body. It makes Response usable as an io.Writer for
// templates and encoders.
func (r *Response) Write(p []byte) (int, error) {
	return r.body.Write(p)
}

// WriteString appends s to the body.
func (r *Response) WriteString(s string) (int, error) {
	return r.body.WriteString(s)
}

// SetBody replaces the body.
func (r *Response) SetBody(b []byte) {
	r.body.Reset()
	r.body.Write(b)
}

// ResetBody drops the buffered body.
func (r *Response) ResetBody() {
	r.body.Reset()
}

// IsDelegated reports whether this is the delegation marker.
func (r *Response) IsDelegated() bool {
	return r.delegated
}

// IsRedirect reports whether the response is a 3xx with a Location header.
func (r *Response) IsRedirect() bool {
	return r.status >= 300 && r.status <= 399 && r.header.Get("Location") != ""
}

// Send writes headers, status and body to w.
func (r *Response) Send(w http.ResponseWriter) error {
	dst := w.Header()
	for k, v := range r.header {
		dst[k] = append([]string(nil), v...)
	}
	w.WriteHeader(r.status)
	if r.body.Len() == 0 {
		return nil
	}
	if _, err := w.Write(r.body.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func validateStatus(status int) error {
	if status < 100 || status > 599 {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, strconv.Itoa(status))
	}
	return nil
}
