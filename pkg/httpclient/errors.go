package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidURL = errors.New("httpclient: invalid url")
	ErrEncode     = errors.New("httpclient: failed to encode request body")
	ErrDecode     = errors.New("httpclient: failed to decode response body")
	ErrRequest    = errors.New("httpclient: request failed")
)

// StatusError is returned for non-2xx responses. Body holds at most the
// first 64 KiB of the response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpclient: %s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
