package scaffold

import "errors"

var (
	ErrInvalidKind    = errors.New("scaffold: unknown scaffold type")
	ErrInvalidName    = errors.New("scaffold: invalid name")
	ErrExists         = errors.New("scaffold: file already exists")
	ErrUnknownVar     = errors.New("scaffold: unknown template variable")
	ErrModuleNotFound = errors.New("scaffold: go.mod not found")
)
