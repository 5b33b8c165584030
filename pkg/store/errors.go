package store

import "errors"

var (
	ErrNotFound         = errors.New("store: item not found")
	ErrInvalidName      = errors.New("store: invalid collection name")
	ErrEncode           = errors.New("store: failed to encode item")
	ErrDecode           = errors.New("store: failed to decode item")
	ErrConnect          = errors.New("store: failed to connect")
	ErrInvalidURL       = errors.New("store: invalid connection url")
	ErrHealthcheck      = errors.New("store: healthcheck failed")
	ErrCapacityNotValid = errors.New("store: cache capacity must be positive")
)
