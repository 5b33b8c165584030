package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/elysium/pkg/httperror"
	"github.com/dmitrymomot/elysium/pkg/logger"
	"github.com/dmitrymomot/elysium/pkg/middleware"
)

func ok(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	tests := []struct {
		name     string
		incoming string
		reused   bool
	}{
		{"generated when missing", "", false},
		{"reused when valid", "abc-123_XYZ", true},
		{"replaced when invalid", "bad id; drop table", false},
		{"replaced when too long", strings.Repeat("a", 129), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(middleware.RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(middleware.RequestIDHeader)
			require.NotEmpty(t, got)
			assert.Equal(t, got, seen)
			if tt.reused {
				assert.Equal(t, tt.incoming, got)
			} else {
				assert.NotEqual(t, tt.incoming, got)
				assert.Len(t, got, 36)
			}
		})
	}
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	extract := middleware.RequestIDExtractor()
	_, ok := extract(context.Background())
	assert.False(t, ok)

	attr, ok := extract(middleware.WithRequestID(context.Background(), "req-1"))
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "req-1", attr.Value.String())
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "192.0.2.1:1234", "192.0.2.1"},
		{"remote addr without port", nil, "192.0.2.1", "192.0.2.1"},
		{"cloudflare wins", map[string]string{"CF-Connecting-IP": "203.0.113.7", "X-Forwarded-For": "198.51.100.1"}, "10.0.0.1:1", "203.0.113.7"},
		{"first valid forwarded entry", map[string]string{"X-Forwarded-For": "garbage, 198.51.100.1, 10.0.0.2"}, "10.0.0.1:1", "198.51.100.1"},
		{"real ip", map[string]string{"X-Real-IP": "2001:db8::1"}, "10.0.0.1:1", "2001:db8::1"},
		{"invalid headers fall back", map[string]string{"X-Real-IP": "nope"}, "[2001:db8::2]:443", "2001:db8::2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, middleware.ClientIP(req))
		})
	}
}

func TestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithJSONFormatter(), logger.WithLevel(slog.LevelDebug))

	r := chi.NewRouter()
	r.Use(middleware.Logger(log))
	r.Get("/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/7", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http request", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/users/7", entry["path"])
	assert.Equal(t, "/users/{id}", entry["route"])
	assert.InDelta(t, 418, entry["status"], 0)
	assert.InDelta(t, 5, entry["bytes"], 0)
	assert.Equal(t, "http", entry["component"])
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	h := middleware.Recoverer(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("database exploded")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var env httperror.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "InternalServerError", env.Error)
	assert.NotContains(t, rec.Body.String(), "database exploded")

	abort := middleware.Recoverer(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		abort.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestCORS(t *testing.T) {
	t.Parallel()

	restricted := middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   []string{"https://app.example.com"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           600,
	})(http.HandlerFunc(ok))

	t.Run("no origin passes through", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		restricted.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "ok", rec.Body.String())
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allowed simple request", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		restricted.ServeHTTP(rec, req)
		assert.Equal(t, "ok", rec.Body.String())
		assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, middleware.RequestIDHeader, rec.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("allowed preflight", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		restricted.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("disallowed origin", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		restricted.ServeHTTP(rec, req)
		assert.Equal(t, "ok", rec.Body.String())
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec = httptest.NewRecorder()
		restricted.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("wildcard without credentials", func(t *testing.T) {
		t.Parallel()
		h := middleware.CORS(middleware.DefaultCORSConfig())(http.HandlerFunc(ok))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://anything.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	_, err := middleware.NewRateLimiter(middleware.RateLimitConfig{Capacity: 1})
	require.ErrorIs(t, err, middleware.ErrInvalidRateLimit)

	now := time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)
	limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Capacity:       2,
		RefillRate:     1,
		RefillInterval: time.Second,
		Now:            func() time.Time { return now },
	})
	require.NoError(t, err)
	h := limiter.Middleware(http.HandlerFunc(ok))

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := hit("10.0.0.1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1").Code)

	rec = hit("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	var body httperror.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TooManyRequests", body.Error)

	assert.Equal(t, http.StatusOK, hit("10.0.0.2").Code, "buckets are per key")

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, hit("10.0.0.1").Code, "refilled after the interval")
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1").Code)

	now = now.Add(time.Hour)
	allowed, remaining, _ := limiter.Allow("10.0.0.1")
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining, "refill is capped at capacity")
}
