package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// PublicPrefix marks variables that are safe to expose to clients.
const PublicPrefix = "PUBLIC_"

// Env is the merged view of the .env file family and the process environment.
type Env struct {
	values map[string]string
	files  []string
}

// EnvFiles returns the env file names for the given environment in
// precedence order, lowest first.
func EnvFiles(environment string) []string {
	files := []string{".env", ".env.local"}
	if environment != "" {
		files = append(files, ".env."+environment, ".env."+environment+".local")
	}
	return files
}

// LoadEnv reads .env, .env.local, .env.<environment> and
// .env.<environment>.local from dir. Later files override earlier ones and
// the process environment overrides all files. Missing files are skipped.
//
// Variable references (${VAR} or $VAR) are expanded; a file may reference
// values defined in any file loaded before it.
func LoadEnv(dir, environment string) (*Env, error) {
	var (
		src    bytes.Buffer
		loaded []string
	)
	for _, name := range EnvFiles(environment) {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Join(ErrReadingEnvFile, fmt.Errorf("%s: %w", path, err))
		}
		src.Write(data)
		src.WriteByte('\n')
		loaded = append(loaded, path)
	}

	values, err := godotenv.UnmarshalBytes(src.Bytes())
	if err != nil {
		return nil, errors.Join(ErrReadingEnvFile, err)
	}

	for key := range values {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	return &Env{values: values, files: loaded}, nil
}

// NewEnv builds an Env from a plain map, mostly useful in tests.
func NewEnv(values map[string]string) *Env {
	return &Env{values: maps.Clone(values)}
}

// Files returns the env files that were found and loaded.
func (e *Env) Files() []string {
	return slices.Clone(e.files)
}

// Apply exports the loaded values into the process environment.
// Variables already set in the process are left untouched.
func (e *Env) Apply() error {
	for key, value := range e.values {
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("config: set %s: %w", key, err)
		}
	}
	return nil
}

// Lookup returns the value of key from the files or the process environment.
func (e *Env) Lookup(key string) (string, bool) {
	if v, ok := e.values[key]; ok {
		return v, true
	}
	return os.LookupEnv(key)
}

// Map returns a copy of the file values merged with the process environment,
// the process taking precedence.
func (e *Env) Map() map[string]string {
	out := maps.Clone(e.values)
	if out == nil {
		out = make(map[string]string)
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}

// Public returns the PUBLIC_-prefixed variables. Keys keep their prefix.
func (e *Env) Public() map[string]string {
	out := make(map[string]string)
	for k, v := range e.Map() {
		if strings.HasPrefix(k, PublicPrefix) {
			out[k] = v
		}
	}
	return out
}

// String returns the value of key or def when it is absent or empty.
func (e *Env) String(key, def string) string {
	if v, ok := e.Lookup(key); ok && v != "" {
		return v
	}
	return def
}

// Require returns the value of key or ErrMissingVariable.
func (e *Env) Require(key string) (string, error) {
	v, ok := e.Lookup(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingVariable, key)
	}
	return v, nil
}

// Must is Require for startup code: it panics when key is missing.
func (e *Env) Must(key string) string {
	v, err := e.Require(key)
	if err != nil {
		panic(err)
	}
	return v
}

// Int returns key parsed as an int, def when absent.
func (e *Env) Int(key string, def int) (int, error) {
	return lookupAs(e, key, def, strconv.Atoi)
}

// Float returns key parsed as a float64, def when absent.
func (e *Env) Float(key string, def float64) (float64, error) {
	return lookupAs(e, key, def, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// Bool returns key parsed as a bool, def when absent.
// Accepts the strconv forms plus "yes"/"no" and "on"/"off".
func (e *Env) Bool(key string, def bool) (bool, error) {
	return lookupAs(e, key, def, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "yes", "on":
			return true, nil
		case "no", "off":
			return false, nil
		}
		return strconv.ParseBool(s)
	})
}

// Duration returns key parsed with time.ParseDuration, def when absent.
func (e *Env) Duration(key string, def time.Duration) (time.Duration, error) {
	return lookupAs(e, key, def, time.ParseDuration)
}

// Strings splits key by sep, trimming blanks. Returns def when absent.
func (e *Env) Strings(key, sep string, def []string) []string {
	v, ok := e.Lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	parts := strings.Split(v, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lookupAs[T any](e *Env, key string, def T, parse func(string) (T, error)) (T, error) {
	v, ok := e.Lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	parsed, err := parse(strings.TrimSpace(v))
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, key, v, err)
	}
	return parsed, nil
}
