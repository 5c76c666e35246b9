package response

import "errors"

var (
	ErrInvalidStatus = errors.New("response: invalid status code")
	ErrEmptyLocation = errors.New("response: redirect location is empty")
	ErrEncode        = errors.New("response: failed to encode body")
	ErrWrite         = errors.New("response: failed to write body")
	ErrRender        = errors.New("response: failed to render component")
)
