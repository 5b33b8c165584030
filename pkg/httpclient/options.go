package httpclient

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL resolves relative request paths against base.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// WithTimeout bounds each attempt. Defaults to 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetries sets how many times idempotent requests are retried on
// network errors, 429 and 5xx. Defaults to 2.
func WithRetries(n uint64) Option {
	return func(c *Client) { c.retries = n }
}

// WithRetryInterval sets the first backoff delay; later delays double.
func WithRetryInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryInterval = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger logs retries at debug level.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.logger = log
		}
	}
}

// RequestOption adjusts a single request.
type RequestOption func(*http.Request)

// Header sets a header on one request.
func Header(key, value string) RequestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

// Query adds a query parameter to one request.
func Query(key, value string) RequestOption {
	return func(r *http.Request) {
		q := r.URL.Query()
		q.Add(key, value)
		r.URL.RawQuery = q.Encode()
	}
}

// BearerToken sets the Authorization header on one request.
func BearerToken(token string) RequestOption {
	return Header("Authorization", "Bearer "+token)
}
