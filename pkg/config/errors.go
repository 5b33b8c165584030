package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct
	ErrParsingConfig = errors.New("config: failed to parse environment into config")

	// ErrReadingEnvFile is returned when an existing env file cannot be read or parsed
	ErrReadingEnvFile = errors.New("config: failed to read env file")

	// ErrMissingVariable is returned by Env.Require for absent keys
	ErrMissingVariable = errors.New("config: missing required variable")

	// ErrInvalidValue is returned when a variable cannot be converted to the requested type
	ErrInvalidValue = errors.New("config: invalid variable value")

	// ErrNilPointer is returned when a nil pointer is provided to Load or Parse
	ErrNilPointer = errors.New("config: nil pointer provided")
)
