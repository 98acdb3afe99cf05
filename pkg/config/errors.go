package config

import "errors"

var (
	// ErrParseFailed is returned when environment variables cannot be parsed
	// into the config struct.
	ErrParseFailed = errors.New("config: failed to parse environment")

	// ErrNilPointer is returned when a nil pointer is passed to Load.
	ErrNilPointer = errors.New("config: nil pointer")
)
