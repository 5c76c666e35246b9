package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrInvalidTimeout      = errors.New("middlewares: timeout takes one positive number of seconds")
	ErrMetricsRegistration = errors.New("middlewares: failed to register metrics")
)

// PanicError represents a recovered panic.
type PanicError struct {
	Value any
	Stack []byte // nil if disabled
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// StatusCode implements internal.StatusCoder.
func (e *PanicError) StatusCode() int {
	return http.StatusInternalServerError
}

// TimeoutError represents a request timeout.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

// StatusCode implements internal.StatusCoder.
func (e *TimeoutError) StatusCode() int {
	return http.StatusServiceUnavailable
}

// IsPanicError reports whether err is a *PanicError.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// IsTimeoutError reports whether err is a *TimeoutError.
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// AsPanicError extracts the *PanicError from err.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// AsTimeoutError extracts the *TimeoutError from err.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
