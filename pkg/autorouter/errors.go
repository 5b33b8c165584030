package autorouter

import "errors"

var (
	ErrRootNotFound   = errors.New("autorouter: routes directory not found")
	ErrNilRouter      = errors.New("autorouter: router is nil")
	ErrModuleNotFound = errors.New("autorouter: module is not in the manifest")
	ErrLoaderNotFound = errors.New("autorouter: loader is not in the manifest")
	ErrNotTemplate    = errors.New("autorouter: page file is not a template")
	ErrCatchAllLast   = errors.New("autorouter: catch-all segment must be the last one")
	ErrModulePanic    = errors.New("autorouter: module registration panicked")
)
