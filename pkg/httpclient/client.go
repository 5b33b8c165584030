package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrymomot/elysium/pkg/logger"
)

const maxErrorBody = 64 << 10

// Client is a JSON HTTP client with a base URL, default headers, a
// per-attempt timeout and retries for idempotent methods.
type Client struct {
	http          *http.Client
	baseURL       string
	headers       http.Header
	timeout       time.Duration
	retries       uint64
	retryInterval time.Duration
	logger        *slog.Logger
}

// New creates a client.
func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		headers:       http.Header{},
		timeout:       10 * time.Second,
		retries:       2,
		retryInterval: 200 * time.Millisecond,
		logger:        slog.Default(),
	}
	c.headers.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("httpclient"))
	return c
}

// Get requests path and decodes the JSON response into out (may be nil).
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post sends body as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put sends body as JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

// Patch sends body as JSON.
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPatch, path, body, out, opts...)
}

// Delete requests deletion of path.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out, opts...)
}

// Do sends one request. A non-nil body is encoded as JSON; a 2xx response
// with content is decoded into out when out is non-nil. Non-2xx responses
// return *StatusError. GET, HEAD, PUT, DELETE and OPTIONS are retried with
// exponential backoff on transport errors, 429 and 5xx.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	target, err := c.resolve(path)
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		if payload, err = json.Marshal(body); err != nil {
			return errors.Join(ErrEncode, err)
		}
	}

	attempt := func(ctx context.Context) error {
		return c.attempt(ctx, method, target, payload, out, opts)
	}
	if !idempotent(method) || c.retries == 0 {
		return attempt(ctx)
	}

	tries := 0
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.retryInterval))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		tries++
		err := attempt(ctx)
		if err != nil && retryable(err) {
			c.logger.DebugContext(ctx, "retrying request",
				logger.Method(method),
				slog.String("url", target),
				slog.Int("attempt", tries),
				logger.Error(err),
			)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) attempt(ctx context.Context, method, target string, payload []byte, out any, opts []RequestOption) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return errors.Join(ErrInvalidURL, err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, URL: target, StatusCode: resp.StatusCode, Body: data}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

func (c *Client) resolve(path string) (string, error) {
	if c.baseURL == "" {
		return validateURL(path)
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", errors.Join(ErrInvalidURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", errors.Join(ErrInvalidURL, err)
	}
	return validateURL(base.ResolveReference(ref).String())
}

func validateURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Join(ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return raw, nil
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= http.StatusInternalServerError
	}
	return errors.Is(err, ErrRequest)
}
