package handler

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrymomot/elysium/pkg/httperror"
	"github.com/dmitrymomot/elysium/pkg/logger"
)

// ValidationError maps field names to validation messages.
// It is reported as UnprocessableEntity.
type ValidationError map[string][]string

func (v ValidationError) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		for _, msg := range v[field] {
			messages = append(messages, fmt.Sprintf("%s: %s", field, msg))
		}
	}
	return strings.Join(messages, "; ")
}

// classifyError turns any error into a taxonomy error.
func classifyError(err error) *httperror.Error {
	var validationErr ValidationError
	if errors.As(err, &validationErr) {
		e := httperror.UnprocessableEntity(validationErr.Error())
		e.Cause = err
		return e
	}
	return httperror.From(err)
}

// logError logs client errors at warn level and server errors at error level.
func logError(log *slog.Logger, r *http.Request, err error, e *httperror.Error) {
	level := slog.LevelWarn
	if e.StatusCode() >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	log.LogAttrs(r.Context(), level, "request error",
		logger.Error(err),
		logger.Status(e.StatusCode()),
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		slog.Bool("htmx", IsHTMX(r)),
		logger.Component("error_handler"),
	)
}

// WriteError writes the error envelope for err:
//
//	{"error": "NotFound", "message": "...", "statusCode": 404}
//
// HTMX requests that do not ask for JSON receive an inline error fragment
// instead so the swap target shows the message. Internal errors are logged
// with their cause and reach the client only as a generic 500.
// A nil logger uses slog.Default().
func WriteError(w http.ResponseWriter, r *http.Request, err error, log *slog.Logger) {
	if err == nil {
		return
	}
	if log == nil {
		log = slog.Default()
	}
	e := classifyError(err)
	logError(log, r, err, e)

	if IsHTMX(r) && !acceptsJSON(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(e.StatusCode())
		fmt.Fprintf(w, `<div class="els-error" role="alert" data-status="%d">%s</div>`,
			e.StatusCode(), html.EscapeString(e.Message))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.StatusCode())
	if encErr := encodeJSON(w, e.Envelope()); encErr != nil {
		log.ErrorContext(r.Context(), "failed to encode error envelope", logger.Error(encErr))
	}
}

// NewErrorHandler creates the global error handler used by Wrap.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx Context, err error) {
		WriteError(ctx.ResponseWriter(), ctx.Request(), err, log)
	}
}

// NotFoundHandler answers unmatched routes with the NotFound envelope.
func NotFoundHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, httperror.NotFound("Route "+r.Method+" "+r.URL.Path+" not found"), log)
	}
}

// MethodNotAllowedHandler answers routes matched with the wrong verb.
func MethodNotAllowedHandler(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e := httperror.New(httperror.KindBadRequest, "Method "+r.Method+" not allowed")
		WriteError(w, r, e, log)
	}
}

func acceptsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
