package config

import "errors"

// Sentinel kinds for configuration errors.
var (
	ErrInvalidConfig     = errors.New("invalid config")
	ErrUnsupportedFormat = errors.New("unsupported config format")
)
