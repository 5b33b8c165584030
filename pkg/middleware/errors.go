package middleware

import "errors"

var ErrInvalidRateLimit = errors.New("middleware: invalid rate limit config")
