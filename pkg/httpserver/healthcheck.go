package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrymomot/elysium/handler"
	"github.com/dmitrymomot/elysium/pkg/logger"
)

// Check probes one dependency, e.g. a store Ping.
type Check func(ctx context.Context) error

// DefaultCheckTimeout bounds each readiness probe.
const DefaultCheckTimeout = 2 * time.Second

// LivenessHandler always answers 200 with the "ALIVE" envelope.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = handler.Message("ALIVE", http.StatusOK).Render(w, r)
	}
}

// ReadinessHandler runs every check with the request context and
// DefaultCheckTimeout. All passing yields 200 "READY"; any failure yields
// 503 "NOT_READY". data maps each check name to "ok" or "error"; failure
// details are logged, never returned.
func ReadinessHandler(log *slog.Logger, checks map[string]Check) http.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("healthcheck"))
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	slices.Sort(names)

	return func(w http.ResponseWriter, r *http.Request) {
		results := make(map[string]string, len(names))
		ready := true
		for _, name := range names {
			ctx, cancel := context.WithTimeout(r.Context(), DefaultCheckTimeout)
			err := checks[name](ctx)
			cancel()
			if err != nil {
				ready = false
				results[name] = "error"
				log.ErrorContext(r.Context(), "readiness check failed", slog.String("check", name), logger.Error(err))
				continue
			}
			results[name] = "ok"
		}

		if !ready {
			_ = handler.Success(results, "NOT_READY", http.StatusServiceUnavailable).Render(w, r)
			return
		}
		_ = handler.Success(results, "READY", http.StatusOK).Render(w, r)
	}
}
