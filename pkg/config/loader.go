package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
)

// Parse fills v from the given Env using struct tags
// (`env:"NAME"`, `envDefault:"..."`, `env:"NAME,required"`).
// A nil Env parses the process environment only.
func Parse[T any](v *T, e *Env) error {
	if v == nil {
		return ErrNilPointer
	}
	opts := env.Options{}
	if e != nil {
		opts.Environment = e.Map()
	}
	if err := env.ParseWithOptions(v, opts); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// configCache stores parsed configuration by type name.
type configCache struct {
	mu     sync.Mutex
	values map[string]any
}

var globalCache = &configCache{values: make(map[string]any)}

// Load parses the process environment into v once per configuration type.
// Subsequent calls for the same type return the cached copy.
//
// Example:
//
//	type DatabaseConfig struct {
//		URL string `env:"DATABASE_URL" envDefault:"file:app.db"`
//	}
//
//	var db DatabaseConfig
//	if err := config.Load(&db); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	key := typeName[T]()

	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()

	if cached, ok := globalCache.values[key]; ok {
		*v = cached.(T)
		return nil
	}
	if err := Parse(v, nil); err != nil {
		return err
	}
	globalCache.values[key] = *v
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// ResetCache drops every cached configuration. Intended for tests.
func ResetCache() {
	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()
	globalCache.values = make(map[string]any)
}

func typeName[T any]() string {
	t := reflect.TypeFor[T]()
	return t.PkgPath() + "." + t.String()
}
