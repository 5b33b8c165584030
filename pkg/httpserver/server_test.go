package httpserver_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrymomot/elysium/pkg/httpserver"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func listener(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

func waitDone(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		require.NoError(t, err, "run")
	case <-time.After(2 * time.Second):
		require.Fail(t, "run did not finish")
	}
}

func TestRunAndCancel(t *testing.T) {
	t.Parallel()

	started := make(chan string, 1)
	srv := httpserver.New(
		httpserver.WithListener(listener(t)),
		httpserver.WithoutSignalHandling(),
		httpserver.WithShutdownTimeout(100*time.Millisecond),
		httpserver.WithStartHook(func(_ context.Context, addr string) { started <- addr }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("hello"))
		}))
	}()

	addr := <-started
	assert.Equal(t, addr, srv.Addr())

	resp, err := http.Get("http://" + addr)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "hello", string(body))
	http.DefaultClient.CloseIdleConnections()

	cancel()
	waitDone(t, done)
	require.NoError(t, srv.Shutdown(context.Background()), "shutdown after run is a no-op")
}

func TestManualShutdownRunsStopHooks(t *testing.T) {
	t.Parallel()

	var stopped atomic.Bool
	started := make(chan struct{})
	srv := httpserver.New(
		httpserver.WithListener(listener(t)),
		httpserver.WithoutSignalHandling(),
		httpserver.WithStartHook(func(context.Context, string) { close(started) }),
		httpserver.WithStopHook(func(context.Context, string) { stopped.Store(true) }),
	)

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), nil) }()
	<-started

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, srv.Shutdown(context.Background()), "second shutdown")
	waitDone(t, done)
	assert.True(t, stopped.Load())
}

func TestStartError(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr(":invalid"), httpserver.WithoutSignalHandling())
	err := srv.Run(context.Background(), nil)
	assert.ErrorIs(t, err, httpserver.ErrStart)
	assert.Empty(t, srv.Addr())

	busy := listener(t)
	defer busy.Close()
	srv = httpserver.New(httpserver.WithAddr(busy.Addr().String()), httpserver.WithoutSignalHandling())
	assert.ErrorIs(t, srv.Run(context.Background(), nil), httpserver.ErrStart)
}

func TestAlreadyRunning(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	srv := httpserver.New(
		httpserver.WithListener(listener(t)),
		httpserver.WithoutSignalHandling(),
		httpserver.WithStartHook(func(context.Context, string) { close(started) }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, nil) }()
	<-started

	err := srv.Run(context.Background(), nil)
	assert.ErrorIs(t, err, httpserver.ErrStart)
	assert.ErrorIs(t, err, httpserver.ErrAlreadyRunning)

	cancel()
	waitDone(t, done)
}

func TestOptionsApply(t *testing.T) {
	t.Parallel()

	hs := &http.Server{ReadTimeout: 7 * time.Second}
	started := make(chan struct{})
	srv := httpserver.NewFromConfig(
		httpserver.Config{
			Addr:            "127.0.0.1:0",
			ReadTimeout:     time.Second,
			WriteTimeout:    2 * time.Second,
			IdleTimeout:     3 * time.Second,
			ShutdownTimeout: 50 * time.Millisecond,
		},
		httpserver.WithServer(hs),
		httpserver.WithoutSignalHandling(),
		httpserver.WithStartHook(func(context.Context, string) { close(started) }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, nil) }()
	<-started

	assert.Equal(t, 7*time.Second, hs.ReadTimeout, "server value wins")
	assert.Equal(t, 2*time.Second, hs.WriteTimeout)
	assert.Equal(t, 3*time.Second, hs.IdleTimeout)
	assert.Equal(t, "127.0.0.1:0", hs.Addr)
	assert.NotNil(t, hs.Handler)
	assert.NotEqual(t, "127.0.0.1:0", srv.Addr(), "bound port is reported")

	cancel()
	waitDone(t, done)
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func()
	}{
		{"addr", func() { httpserver.WithAddr("") }},
		{"read", func() { httpserver.WithReadTimeout(-time.Second) }},
		{"write", func() { httpserver.WithWriteTimeout(-time.Second) }},
		{"idle", func() { httpserver.WithIdleTimeout(-time.Second) }},
		{"shutdown", func() { httpserver.WithShutdownTimeout(-time.Second) }},
		{"server", func() { httpserver.WithServer(nil) }},
		{"listener", func() { httpserver.WithListener(nil) }},
		{"start hook", func() { httpserver.WithStartHook(nil) }},
		{"stop hook", func() { httpserver.WithStopHook(nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Panics(t, tt.fn)
		})
	}
	assert.NotPanics(t, func() { httpserver.WithLogger(nil) })
}

// Not parallel: the signal reaches every server that handles signals.
func TestSignalShutdown(t *testing.T) {
	started := make(chan struct{})
	srv := httpserver.New(
		httpserver.WithListener(listener(t)),
		httpserver.WithShutdownTimeout(50*time.Millisecond),
		httpserver.WithStartHook(func(context.Context, string) { close(started) }),
	)
	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), nil) }()
	<-started

	p, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, p.Signal(syscall.SIGTERM))
	waitDone(t, done)
}

func TestHealthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()
		rec := httptestRecorder(httpserver.LivenessHandler())
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":200,"message":"ALIVE"}`, rec.Body.String())
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		h := httpserver.ReadinessHandler(nil, map[string]httpserver.Check{
			"store": func(context.Context) error { return nil },
		})
		rec := httptestRecorder(h)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":200,"message":"READY","data":{"store":"ok"}}`, rec.Body.String())
	})

	t.Run("not ready hides details", func(t *testing.T) {
		t.Parallel()
		h := httpserver.ReadinessHandler(nil, map[string]httpserver.Check{
			"store": func(context.Context) error { return nil },
			"redis": func(ctx context.Context) error {
				_, ok := ctx.Deadline()
				if !ok {
					return errors.New("no deadline")
				}
				return errors.New("dial tcp 10.0.0.5:6379: refused")
			},
		})
		rec := httptestRecorder(h)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":503,"message":"NOT_READY","data":{"redis":"error","store":"ok"}}`, rec.Body.String())
		assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	})
}
