package binder

import (
	"errors"

	"github.com/dmitrymomot/elysium/pkg/httperror"
)

var (
	ErrUnsupportedMediaType = errors.New("binder: unsupported media type")
	ErrInvalidJSON          = errors.New("binder: invalid JSON body")
	ErrInvalidForm          = errors.New("binder: invalid form data")
	ErrInvalidQuery         = errors.New("binder: invalid query parameter")
	ErrInvalidPath          = errors.New("binder: invalid path parameter")
	ErrInvalidTarget        = errors.New("binder: target must be a non-nil pointer to struct")

	// ErrNotApplicable is returned by binders that have nothing to bind for
	// the request; handler.Wrap skips them.
	ErrNotApplicable = errors.New("binder: not applicable")
)

// badRequest wraps a binding failure into a 400 taxonomy error while keeping
// the sentinel reachable through errors.Is.
func badRequest(sentinel error, detail string) error {
	e := httperror.BadRequest(detail)
	e.Cause = sentinel
	return e
}
