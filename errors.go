package elysium

import "errors"

var (
	ErrInvalidConfig = errors.New("elysium: invalid configuration")
	ErrSetup         = errors.New("elysium: application setup failed")
	ErrRun           = errors.New("elysium: application stopped with error")
)
