package handler

import "errors"

// ErrNilResponse is reported when a typed handler returns no Response.
var ErrNilResponse = errors.New("handler: nil response")
