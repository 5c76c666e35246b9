package config

import "errors"

var (
	ErrReadConfig    = errors.New("config: failed to read configuration")
	ErrParseConfig   = errors.New("config: failed to parse configuration")
	ErrInvalidConfig = errors.New("config: invalid configuration")
)
