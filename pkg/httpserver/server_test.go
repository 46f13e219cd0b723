package httpserver_test

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modernmen/notifier/pkg/httpserver"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "unable to get free port")
	addr := l.Addr().String()
	require.NoError(t, l.Close(), "close listener")
	return addr
}

func waitListening(t *testing.T, addr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRunAndShutdown(t *testing.T) {
	t.Parallel()
	addr := freeAddr(t)
	srv := httpserver.New(httpserver.WithAddr(addr), httpserver.WithShutdownTimeout(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))
	}()
	waitListening(t, addr)

	resp, err := http.Get("http://" + addr)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err, "run")
	case <-time.After(time.Second):
		require.Fail(t, "run did not finish")
	}
	require.NoError(t, srv.Shutdown(context.Background()), "shutdown")
}

func TestDrainHookEndsStreams(t *testing.T) {
	t.Parallel()
	addr := freeAddr(t)

	drain := make(chan struct{})
	var drained, stopped atomic.Bool
	srv := httpserver.New(
		httpserver.WithAddr(addr),
		httpserver.WithShutdownTimeout(time.Second),
		httpserver.WithDrainHook(func() {
			drained.Store(true)
			close(drain)
		}),
		httpserver.WithStopHook(func(*slog.Logger) { stopped.Store(true) }),
	)

	streaming := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		close(streaming)
		<-drain
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, handler) }()
	waitListening(t, addr)

	go func() {
		resp, err := http.Get("http://" + addr)
		if err == nil {
			_ = resp.Body.Close()
		}
	}()
	<-streaming

	start := time.Now()
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		require.Fail(t, "run did not finish")
	}
	assert.Less(t, time.Since(start), time.Second, "shutdown waited for the timeout")
	assert.True(t, drained.Load())
	assert.True(t, stopped.Load())
}

func TestStartError(t *testing.T) {
	t.Parallel()
	srv := httpserver.New(httpserver.WithAddr(":invalid"))
	err := srv.Run(context.Background(), http.NewServeMux())
	require.Error(t, err)
	assert.ErrorIs(t, err, httpserver.ErrStart)
}

func TestAlreadyRunning(t *testing.T) {
	t.Parallel()
	addr := freeAddr(t)
	started := make(chan struct{})
	srv := httpserver.New(
		httpserver.WithAddr(addr),
		httpserver.WithShutdownTimeout(50*time.Millisecond),
		httpserver.WithStartHook(func(*slog.Logger) { close(started) }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = srv.Run(ctx, http.NewServeMux()) }()
	<-started

	err := srv.Run(context.Background(), http.NewServeMux())
	assert.ErrorIs(t, err, httpserver.ErrStart)
	assert.ErrorIs(t, err, httpserver.ErrAlreadyRunning)
	_ = srv.Shutdown(context.Background())
}

func TestShutdownBeforeRunAndTwice(t *testing.T) {
	t.Parallel()
	addr := freeAddr(t)
	srv := httpserver.New(httpserver.WithAddr(addr), httpserver.WithShutdownTimeout(50*time.Millisecond))
	require.NoError(t, srv.Shutdown(context.Background()), "shutdown before run")

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), http.NewServeMux()) }()
	waitListening(t, addr)

	require.NoError(t, srv.Shutdown(context.Background()), "first shutdown")
	require.NoError(t, srv.Shutdown(context.Background()), "second shutdown")
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "run did not finish")
	}
}

// Not parallel: the signal reaches every server running in the process.
func TestSignalShutdown(t *testing.T) {
	addr := freeAddr(t)
	srv := httpserver.New(httpserver.WithAddr(addr), httpserver.WithShutdownTimeout(50*time.Millisecond))
	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background(), http.NewServeMux()) }()
	waitListening(t, addr)

	p, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, p.Signal(syscall.SIGTERM))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "run did not finish")
	}
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		fn   func()
	}{
		{"addr", func() { httpserver.WithAddr("") }},
		{"read header", func() { httpserver.WithReadHeaderTimeout(0) }},
		{"read", func() { httpserver.WithReadTimeout(-time.Second) }},
		{"write", func() { httpserver.WithWriteTimeout(-time.Second) }},
		{"idle", func() { httpserver.WithIdleTimeout(-time.Second) }},
		{"shutdown", func() { httpserver.WithShutdownTimeout(-time.Second) }},
		{"start hook", func() { httpserver.WithStartHook(nil) }},
		{"drain hook", func() { httpserver.WithDrainHook(nil) }},
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

func TestNewFromConfigSkipsZeroValues(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() {
		httpserver.NewFromConfig(httpserver.Config{Addr: "127.0.0.1:0"})
	})
}

func TestHealthHandlers(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	httpserver.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALIVE", rec.Body.String())

	ok := httpserver.Check{Name: "postgres", Fn: func(context.Context) error { return nil }}
	rec = httptest.NewRecorder()
	httpserver.ReadinessHandler(nil, ok)(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "READY", rec.Body.String())

	bad := httpserver.Check{Name: "redis", Fn: func(context.Context) error { return errors.New("down") }}
	rec = httptest.NewRecorder()
	httpserver.ReadinessHandler(nil, ok, bad)(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "NOT_READY", rec.Body.String())
}
