package elysium

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/elysium/handler"
	"github.com/dmitrymomot/elysium/pkg/autorouter"
	"github.com/dmitrymomot/elysium/pkg/cron"
	"github.com/dmitrymomot/elysium/pkg/environment"
	"github.com/dmitrymomot/elysium/pkg/httperror"
	"github.com/dmitrymomot/elysium/pkg/httpserver"
	"github.com/dmitrymomot/elysium/pkg/jwt"
	"github.com/dmitrymomot/elysium/pkg/logger"
	"github.com/dmitrymomot/elysium/pkg/middleware"
)

// Health endpoints mounted on every app.
const (
	LivenessPath  = "/health/live"
	ReadinessPath = "/health/ready"
)

// App is a composed application: one router, one scheduler and one HTTP
// listener.
type App struct {
	cfg       Config
	env       environment.Environment
	log       *slog.Logger
	logFile   io.Closer
	router    chi.Router
	routes    *autorouter.Table
	scheduler *cron.Scheduler
	jwt       *jwt.Service
	server    *httpserver.Server
}

// New wires the application described by cfg. Nothing listens until Run.
func New(cfg Config, opts ...Option) (*App, error) {
	o := &options{checks: make(map[string]httpserver.Check)}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{cfg: cfg, env: cfg.Environment()}
	if err := a.setupLogger(o.logger); err != nil {
		return nil, err
	}
	log := a.log

	if cfg.JWTSecret != "" {
		svc, err := jwt.New(cfg.JWTSecret,
			jwt.WithIssuer(cfg.JWTIssuer),
			jwt.WithAudience(cfg.JWTAudience),
			jwt.WithTTL(cfg.JWTTTL),
		)
		if err != nil {
			a.Close()
			return nil, errors.Join(ErrSetup, err)
		}
		a.jwt = svc
	}

	a.scheduler = cron.New(cron.WithLogger(log))
	for _, t := range o.tasks {
		if err := a.scheduler.AddTask(t.name, t.expression, t.handler, t.opts...); err != nil {
			a.Close()
			return nil, errors.Join(ErrSetup, fmt.Errorf("task %q: %w", t.name, err))
		}
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Logger(log),
		middleware.Recoverer(log),
		middleware.CORS(a.corsConfig()),
		environment.Middleware(a.env),
	)
	if cfg.RateLimitRPS > 0 {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			Capacity:       max(cfg.RateLimitBurst, cfg.RateLimitRPS),
			RefillRate:     cfg.RateLimitRPS,
			RefillInterval: time.Second,
		})
		if err != nil {
			a.Close()
			return nil, errors.Join(ErrSetup, err)
		}
		r.Use(limiter.Middleware)
	}
	r.Use(o.middlewares...)
	r.NotFound(handler.NotFoundHandler(log))
	r.MethodNotAllowed(handler.MethodNotAllowedHandler(log))

	r.Get(LivenessPath, httpserver.LivenessHandler())
	r.Get(ReadinessPath, httpserver.ReadinessHandler(log, o.checks))

	for _, fn := range o.routes {
		fn(r)
	}

	public := map[string]string{}
	if o.env != nil {
		public = o.env.Public()
	}
	routerOpts := append([]autorouter.Option{
		autorouter.WithLogger(log),
		autorouter.WithManifest(o.manifest),
		autorouter.WithGlobals(func(*http.Request) map[string]any {
			return map[string]any{"app": cfg.Name, "environment": a.env.String(), "env": public}
		}),
	}, o.routerOptions...)
	table, err := autorouter.Register(r, cfg.RoutesDir, routerOpts...)
	if err != nil {
		a.Close()
		return nil, errors.Join(ErrSetup, err)
	}
	a.router = r
	a.routes = table
	if cfg.OpenAPIPath != "" {
		r.Get(cfg.OpenAPIPath, table.OpenAPIHandler(cfg.Name, cfg.Version))
	}

	a.server = httpserver.NewFromConfig(cfg.HTTP, append([]httpserver.Option{httpserver.WithLogger(log)}, o.serverOptions...)...)

	log.Info("application configured",
		slog.String("routes_dir", cfg.RoutesDir),
		slog.Int("routes", len(table.Routes())),
		slog.Int("tasks", len(o.tasks)),
		slog.Bool("jwt", a.jwt != nil),
	)
	return a, nil
}

func (a *App) setupLogger(log *slog.Logger) error {
	if log != nil {
		a.log = log
		return nil
	}
	opts := []logger.Option{
		logger.WithEnvironment(a.env, a.cfg.Name),
		logger.WithContextExtractors(middleware.RequestIDExtractor()),
	}
	if a.cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevel(logger.ParseLevel(a.cfg.LogLevel)))
	}
	if a.cfg.LogFile != "" {
		f, err := logger.OpenFile(a.cfg.LogFile)
		if err != nil {
			return errors.Join(ErrSetup, err)
		}
		a.logFile = f
		opts = append(opts, logger.WithOutput(os.Stdout), logger.WithFile(f))
	}
	a.log = logger.New(opts...)
	return nil
}

func (a *App) corsConfig() middleware.CORSConfig {
	cfg := middleware.DefaultCORSConfig()
	if len(a.cfg.CORSOrigins) > 0 {
		cfg.AllowedOrigins = a.cfg.CORSOrigins
	}
	cfg.AllowCredentials = a.cfg.CORSCredentials
	return cfg
}

// Run starts the scheduler, the HTTP server and, when enabled, the
// template watcher, and blocks until ctx is done, a shutdown signal
// arrives or one of them fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return a.server.Run(ctx, a.router)
	})
	g.Go(func() error {
		return a.scheduler.Run(ctx)
	})
	if a.cfg.watch() {
		if _, err := os.Stat(a.routes.Root()); err == nil {
			g.Go(func() error {
				return a.routes.Watch(ctx)
			})
		}
	}

	if err := g.Wait(); err != nil {
		a.log.Error("application stopped", logger.Error(err))
		return errors.Join(ErrRun, err)
	}
	return nil
}

// Close releases the log file, if one was opened.
func (a *App) Close() error {
	if a.logFile != nil {
		return a.logFile.Close()
	}
	return nil
}

// Handler returns the composed router.
func (a *App) Handler() http.Handler { return a.router }

// Router returns the router for routes added after New.
func (a *App) Router() chi.Router { return a.router }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.log }

// Scheduler returns the cron scheduler.
func (a *App) Scheduler() *cron.Scheduler { return a.scheduler }

// Routes returns the table built from the routes directory.
func (a *App) Routes() *autorouter.Table { return a.routes }

// Server returns the HTTP server.
func (a *App) Server() *httpserver.Server { return a.server }

// Config returns the configuration the app was built from.
func (a *App) Config() Config { return a.cfg }

// JWT returns the token service, or nil when JWT_SECRET is not set.
func (a *App) JWT() *jwt.Service { return a.jwt }

// RequireAuth returns middleware that rejects requests without a valid
// bearer token. Without a token service every request gets a 500.
func (a *App) RequireAuth() func(http.Handler) http.Handler {
	if a.jwt == nil {
		return func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handler.WriteError(w, r, httperror.InternalServerError("authentication is not configured"), a.log)
			})
		}
	}
	return jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{Service: a.jwt, Logger: a.log})
}
