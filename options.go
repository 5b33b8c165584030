package elysium

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/elysium/pkg/autorouter"
	"github.com/dmitrymomot/elysium/pkg/config"
	"github.com/dmitrymomot/elysium/pkg/cron"
	"github.com/dmitrymomot/elysium/pkg/httpserver"
	"github.com/dmitrymomot/elysium/pkg/store"
)

// Option configures an App.
type Option func(*options)

type taskSpec struct {
	name       string
	expression string
	handler    cron.Handler
	opts       []cron.TaskOption
}

type options struct {
	logger        *slog.Logger
	manifest      autorouter.Manifest
	tasks         []taskSpec
	middlewares   []func(http.Handler) http.Handler
	routes        []func(chi.Router)
	checks        map[string]httpserver.Check
	env           *config.Env
	serverOptions []httpserver.Option
	routerOptions []autorouter.Option
}

// WithLogger replaces the logger built from Config.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.logger = log
	}
}

// WithManifest binds Go handlers to module and loader files in the
// routes directory.
func WithManifest(m autorouter.Manifest) Option {
	return func(o *options) {
		o.manifest = m
	}
}

// WithTask registers a cron task. Registration errors fail New.
func WithTask(name, expression string, h cron.Handler, opts ...cron.TaskOption) Option {
	return func(o *options) {
		o.tasks = append(o.tasks, taskSpec{name: name, expression: expression, handler: h, opts: opts})
	}
}

// WithMiddleware appends middlewares after the built-in stack.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(o *options) {
		o.middlewares = append(o.middlewares, mw...)
	}
}

// WithRoutes registers routes by hand, before the routes directory.
func WithRoutes(fn func(r chi.Router)) Option {
	return func(o *options) {
		if fn != nil {
			o.routes = append(o.routes, fn)
		}
	}
}

// WithStore adds s to the readiness check under name. Stores that do not
// talk to a remote service always report ok.
func WithStore(name string, s any) Option {
	return func(o *options) {
		o.checks[name] = store.Ping(s)
	}
}

// WithCheck adds a readiness check.
func WithCheck(name string, check httpserver.Check) Option {
	return func(o *options) {
		if check != nil {
			o.checks[name] = check
		}
	}
}

// WithEnv exposes the PUBLIC_ variables of e to every page as env.
func WithEnv(e *config.Env) Option {
	return func(o *options) {
		o.env = e
	}
}

// WithServerOptions passes options to the HTTP server.
func WithServerOptions(opts ...httpserver.Option) Option {
	return func(o *options) {
		o.serverOptions = append(o.serverOptions, opts...)
	}
}

// WithRouterOptions passes options to the auto router.
func WithRouterOptions(opts ...autorouter.Option) Option {
	return func(o *options) {
		o.routerOptions = append(o.routerOptions, opts...)
	}
}
