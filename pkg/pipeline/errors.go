package pipeline

import (
	"errors"
	"strings"
)

var (
	ErrExhausted         = errors.New("pipeline: middleware chain exhausted without a response")
	ErrInvalidMiddleware = errors.New("pipeline: invalid middleware")
	ErrInvalidArgument   = errors.New("pipeline: invalid argument")
	ErrRecursion         = errors.New("pipeline: middleware group recursion detected")
)

// RecursionError reports a middleware group that references itself,
// directly or through other groups.
type RecursionError struct {
	Path []string
}

func (e *RecursionError) Error() string {
	return ErrRecursion.Error() + ": " + strings.Join(e.Path, "->")
}

func (e *RecursionError) Unwrap() error {
	return ErrRecursion
}
