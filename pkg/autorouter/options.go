package autorouter

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"slices"
)

// DefaultIgnore lists base-name patterns that never become routes.
var DefaultIgnore = []string{"*_test.go", "doc.go", "*.md"}

type config struct {
	log      *slog.Logger
	manifest Manifest
	ignore   []string
	globals  func(r *http.Request) map[string]any
}

// Option configures Scan and Register.
type Option func(*config)

func newConfig(opts []Option) *config {
	cfg := &config{
		log:    slog.Default(),
		ignore: slices.Clone(DefaultIgnore),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *config) ignored(name string) bool {
	for _, pattern := range c.ignore {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// WithLogger sets the logger for registration and render failures.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithManifest provides the handlers for module and loader files.
func WithManifest(m Manifest) Option {
	return func(c *config) {
		c.manifest = m
	}
}

// WithIgnore adds base-name patterns (filepath.Match syntax) to skip.
func WithIgnore(patterns ...string) Option {
	return func(c *config) {
		c.ignore = append(c.ignore, patterns...)
	}
}

// WithGlobals adds request-scoped data to every page render, before
// loaders run.
func WithGlobals(fn func(r *http.Request) map[string]any) Option {
	return func(c *config) {
		c.globals = fn
	}
}
