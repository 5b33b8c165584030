package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/dmitrymomot/elysium/handler"
	"github.com/dmitrymomot/elysium/pkg/logger"
)

// Recoverer turns a handler panic into a logged 500 error envelope.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
func Recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(logger.Component("recoverer"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
				)
				handler.WriteError(w, r, fmt.Errorf("panic: %v", rec), logger.Discard())
			}()
			next.ServeHTTP(w, r)
		})
	}
}
