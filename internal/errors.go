package internal

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/pressgate/pkg/response"
	"github.com/dmitrymomot/pressgate/pkg/routing"
)

// HTTPError is an error carrying everything needed to render it to the
// client. Handlers and middleware return it to choose the response status.
type HTTPError struct {
	// Err is the underlying cause. It is logged, never rendered.
	Err error

	// Message is the user-facing message.
	Message string

	Title     string
	Detail    string
	ErrorCode string
	RequestID string

	// Code is the HTTP status code.
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithTitle(title string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Title = title
	}
}

func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Detail = detail
	}
}

func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ErrorCode = code
	}
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.RequestID = id
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusConflict, message, opts...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, message, opts...)
}

// IsHTTPError reports whether err wraps an HTTPError.
func IsHTTPError(err error) bool {
	return AsHTTPError(err) != nil
}

// AsHTTPError returns the HTTPError wrapped by err, or nil.
func AsHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return nil
}

// StatusCoder is implemented by errors that choose their response status.
type StatusCoder interface {
	StatusCode() int
}

// StatusOf returns the response status for err: 405 for method mismatches,
// the code of the first StatusCoder in the chain, or 500.
func StatusOf(err error) int {
	if errors.Is(err, routing.ErrMethodNotAllowed) {
		return http.StatusMethodNotAllowed
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 400 && code <= 599 {
			return code
		}
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message   string `json:"message"`
	Title     string `json:"title,omitempty"`
	Detail    string `json:"detail,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Code      int    `json:"code"`
}

// DefaultErrorHandler renders err as plain text, or as JSON when the client
// accepts it. Messages of HTTPErrors are shown; any other error is reported
// by its status text only. Method mismatches carry an Allow header.
func DefaultErrorHandler(r *http.Request, err error) *response.Response {
	status := StatusOf(err)
	detail := errorDetail{Code: status, Message: http.StatusText(status)}
	if he := AsHTTPError(err); he != nil {
		detail.Message = he.Message
		detail.Title = he.Title
		detail.Detail = he.Detail
		detail.ErrorCode = he.ErrorCode
		detail.RequestID = he.RequestID
	}

	var (
		resp *response.Response
		rerr error
	)
	if routing.AcceptsJSON().Matches(r) {
		resp, rerr = response.JSON(status, errorBody{Error: detail})
	} else {
		resp, rerr = response.Text(status, detail.Message)
	}
	if rerr != nil {
		return nil
	}

	var mna *routing.MethodNotAllowedError
	if errors.As(err, &mna) {
		resp.Header().Set("Allow", strings.Join(mna.Allowed, ", "))
	}
	return resp
}
