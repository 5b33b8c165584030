package httperror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Kind is one of the fixed HTTP error categories.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnprocessableEntity
	KindTooManyRequests
	KindInternalServerError
	KindServiceUnavailable
)

type kindInfo struct {
	name    string
	status  int
	message string
}

var kinds = map[Kind]kindInfo{
	KindBadRequest:          {"BadRequest", http.StatusBadRequest, "Bad request"},
	KindUnauthorized:        {"Unauthorized", http.StatusUnauthorized, "Unauthorized"},
	KindForbidden:           {"Forbidden", http.StatusForbidden, "Forbidden"},
	KindNotFound:            {"NotFound", http.StatusNotFound, "Resource not found"},
	KindConflict:            {"Conflict", http.StatusConflict, "Resource conflict"},
	KindUnprocessableEntity: {"UnprocessableEntity", http.StatusUnprocessableEntity, "Unprocessable entity"},
	KindTooManyRequests:     {"TooManyRequests", http.StatusTooManyRequests, "Too many requests"},
	KindInternalServerError: {"InternalServerError", http.StatusInternalServerError, "Internal server error"},
	KindServiceUnavailable:  {"ServiceUnavailable", http.StatusServiceUnavailable, "Service unavailable"},
}

// Kinds returns every kind of the taxonomy in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindBadRequest,
		KindUnauthorized,
		KindForbidden,
		KindNotFound,
		KindConflict,
		KindUnprocessableEntity,
		KindTooManyRequests,
		KindInternalServerError,
		KindServiceUnavailable,
	}
}

func (k Kind) info() kindInfo {
	if info, ok := kinds[k]; ok {
		return info
	}
	return kinds[KindInternalServerError]
}

// String returns the kind name used in the error envelope, e.g. "NotFound".
func (k Kind) String() string { return k.info().name }

// StatusCode returns the HTTP status code of the kind.
func (k Kind) StatusCode() int { return k.info().status }

// DefaultMessage returns the message used when none is given at the throw site.
func (k Kind) DefaultMessage() string { return k.info().message }

// KindForStatus maps a status code back to its kind.
// Unknown codes map to KindInternalServerError for 5xx and KindBadRequest for 4xx.
func KindForStatus(status int) Kind {
	for _, k := range Kinds() {
		if k.StatusCode() == status {
			return k
		}
	}
	if status >= http.StatusInternalServerError {
		return KindInternalServerError
	}
	return KindBadRequest
}

// Error is an HTTP-semantic error carrying a kind, a client-facing message
// and an optional internal cause that is never serialized.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

// Unwrap returns the internal cause.
func (e *Error) Unwrap() error { return e.Cause }

// StatusCode returns the HTTP status code of the error kind.
func (e *Error) StatusCode() int { return e.Kind.StatusCode() }

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, httperror.NotFound()) works regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Envelope is the JSON body written for error responses.
type Envelope struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// Envelope returns the serializable form of the error.
func (e *Error) Envelope() Envelope {
	return Envelope{
		Error:      e.Kind.String(),
		Message:    e.Message,
		StatusCode: e.Kind.StatusCode(),
	}
}

// MarshalJSON encodes the error as its envelope.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Envelope())
}

// New creates an error of the given kind. An empty message falls back to
// the kind's default message.
func New(kind Kind, message string) *Error {
	if _, ok := kinds[kind]; !ok {
		kind = KindInternalServerError
	}
	if message == "" {
		message = kind.DefaultMessage()
	}
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind that keeps err as its internal cause.
// The client-facing message is the kind's default message.
func Wrap(kind Kind, err error) *Error {
	e := New(kind, "")
	e.Cause = err
	return e
}

// From classifies any error. Taxonomy errors are returned as is; anything
// else becomes an InternalServerError with the default message so no
// internal detail reaches the client.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(KindInternalServerError, err)
}

// IsKind reports whether err is a taxonomy error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func message(msg []string) string {
	if len(msg) > 0 {
		return msg[0]
	}
	return ""
}

// BadRequest creates a 400 error with an optional message override.
func BadRequest(msg ...string) *Error { return New(KindBadRequest, message(msg)) }

// Unauthorized creates a 401 error with an optional message override.
func Unauthorized(msg ...string) *Error { return New(KindUnauthorized, message(msg)) }

// Forbidden creates a 403 error with an optional message override.
func Forbidden(msg ...string) *Error { return New(KindForbidden, message(msg)) }

// NotFound creates a 404 error with an optional message override.
func NotFound(msg ...string) *Error { return New(KindNotFound, message(msg)) }

// Conflict creates a 409 error with an optional message override.
func Conflict(msg ...string) *Error { return New(KindConflict, message(msg)) }

// UnprocessableEntity creates a 422 error with an optional message override.
func UnprocessableEntity(msg ...string) *Error { return New(KindUnprocessableEntity, message(msg)) }

// TooManyRequests creates a 429 error with an optional message override.
func TooManyRequests(msg ...string) *Error { return New(KindTooManyRequests, message(msg)) }

// InternalServerError creates a 500 error with an optional message override.
func InternalServerError(msg ...string) *Error { return New(KindInternalServerError, message(msg)) }

// ServiceUnavailable creates a 503 error with an optional message override.
func ServiceUnavailable(msg ...string) *Error { return New(KindServiceUnavailable, message(msg)) }
