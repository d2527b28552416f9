package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/logging"
)

func newTestServer(t *testing.T, mutate func(*Config)) *Server {
	t.Helper()
	cfg := Config{
		Addr:     "127.0.0.1:0",
		Security: DefaultSecurityConfig(),
		Workers:  2,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, logging.NewLogger(io.Discard, "server"))
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, http.NoBody))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestHandleFibonacci(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, nil).Handler()

	tests := []struct {
		name   string
		target string
		want   FibonacciResponse
	}{
		{"zero", "/fibonacci?n=0", FibonacciResponse{N: 0, Result: 0, Policy: "wrap"}},
		{"small", "/fibonacci?n=10", FibonacciResponse{N: 10, Result: 55, Policy: "wrap"}},
		{"largest exact", "/fibonacci?n=47", FibonacciResponse{N: 47, Result: 2971215073, Policy: "wrap"}},
		{"wraps", "/fibonacci?n=48", FibonacciResponse{N: 48, Result: 512559680, Policy: "wrap", Overflowed: true}},
		{"saturates", "/fibonacci?n=48&policy=saturate", FibonacciResponse{N: 48, Result: 4294967295, Policy: "saturate", Overflowed: true}},
		{"checked in range", "/fibonacci?n=20&policy=checked", FibonacciResponse{N: 20, Result: 6765, Policy: "checked"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := get(t, h, tt.target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.want, decode[FibonacciResponse](t, rec))
		})
	}
}

func TestHandleFibonacci_Errors(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, func(c *Config) { c.Security.MaxNValue = 1000 }).Handler()

	tests := []struct {
		name   string
		target string
		status int
		title  string
	}{
		{"missing n", "/fibonacci", http.StatusBadRequest, "Bad Request"},
		{"negative n", "/fibonacci?n=-1", http.StatusBadRequest, "Bad Request"},
		{"not a number", "/fibonacci?n=abc", http.StatusBadRequest, "Bad Request"},
		{"beyond uint32", "/fibonacci?n=4294967296", http.StatusBadRequest, "Bad Request"},
		{"beyond limit", "/fibonacci?n=1001", http.StatusBadRequest, "Bad Request"},
		{"unknown policy", "/fibonacci?n=5&policy=round", http.StatusBadRequest, "Bad Request"},
		{"checked overflow", "/fibonacci?n=48&policy=checked", http.StatusUnprocessableEntity, "Overflow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := get(t, h, tt.target)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.title, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestHandleBatch_ValidationNamesField(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, func(c *Config) { c.Security.MaxBatchCount = 10 }).Handler()

	tests := []struct {
		target string
		field  string
	}{
		{"/batch?n=5", `"count"`},
		{"/batch?count=3&n=x", `"n"`},
		{"/batch?count=3&n=5&policy=round", `"policy"`},
		{"/batch?count=11&n=5", `"count"`},
	}
	for _, tt := range tests {
		rec := get(t, h, tt.target)
		require.Equal(t, http.StatusBadRequest, rec.Code, tt.target)
		assert.Contains(t, decode[ErrorResponse](t, rec).Message, "validation error for "+tt.field, tt.target)
	}
}

func TestWriteComputeError(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		err    error
		status int
		title  string
	}{
		{"overflow", &fibonacci.OverflowError{N: 48}, http.StatusUnprocessableEntity, "Overflow"},
		{"deadline", fmt.Errorf("batch: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "Timeout"},
		{"canceled", context.Canceled, 499, "Canceled"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			s.writeComputeError(rec, httptest.NewRequest(http.MethodGet, "/batch", nil), tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.title, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestHandleFibonacci_CheckedOverflowNamesIndex(t *testing.T) {
	t.Parallel()
	rec := get(t, newTestServer(t, nil).Handler(), "/fibonacci?n=50&policy=checked")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Message, "F(50)")
}

func TestHandleFibonacci_DefaultPolicy(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, func(c *Config) { c.DefaultPolicy = fibonacci.PolicySaturate }).Handler()
	got := decode[FibonacciResponse](t, get(t, h, "/fibonacci?n=60"))
	assert.Equal(t, "saturate", got.Policy)
	assert.Equal(t, uint32(4294967295), got.Result)
}

func TestHandleBatch(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, nil).Handler()

	t.Run("values", func(t *testing.T) {
		t.Parallel()
		rec := get(t, h, "/batch?count=3&n=10")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, BatchResponse{Count: 3, N: 10, Policy: "wrap", Results: []uint32{55, 55, 55}}, decode[BatchResponse](t, rec))
	})

	t.Run("empty batch encodes an empty array", func(t *testing.T) {
		t.Parallel()
		rec := get(t, h, "/batch?count=0&n=10")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"count":0,"n":10,"policy":"wrap","results":[]}`, rec.Body.String())
	})

	t.Run("large parallel batch", func(t *testing.T) {
		t.Parallel()
		got := decode[BatchResponse](t, get(t, h, "/batch?count=10000&n=48&policy=saturate"))
		require.Len(t, got.Results, 10000)
		for i, v := range got.Results {
			if v != 4294967295 {
				t.Fatalf("results[%d] = %d, want 4294967295", i, v)
			}
		}
	})

	t.Run("checked overflow", func(t *testing.T) {
		t.Parallel()
		rec := get(t, h, "/batch?count=2&n=48&policy=checked")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestHandleBatch_Limits(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, func(c *Config) {
		c.Security.MaxNValue = 100
		c.Security.MaxBatchCount = 50
		c.Security.MaxBatchWork = 1000
	}).Handler()

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"within limits", "/batch?count=10&n=100", http.StatusOK},
		{"missing count", "/batch?n=5", http.StatusBadRequest},
		{"missing n", "/batch?count=5", http.StatusBadRequest},
		{"n beyond limit", "/batch?count=1&n=101", http.StatusBadRequest},
		{"count beyond limit", "/batch?count=51&n=1", http.StatusBadRequest},
		{"work beyond limit", "/batch?count=20&n=60", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := get(t, h, tt.target)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()
	rec := get(t, newTestServer(t, nil).Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", body.Status)
	assert.Positive(t, body.Timestamp)
}

func TestHandleMetrics(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	h := s.Handler()
	get(t, h, "/fibonacci?n=50")

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fibengine_requests_total{endpoint="/fibonacci",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), `fibengine_overflows_total{policy="wrap"} 1`)

	for _, method := range []string{http.MethodPost, http.MethodPut} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/metrics", http.NoBody))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, "GET, HEAD, OPTIONS", rec.Header().Get("Allow"))
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, nil).Handler()

	t.Run("generated", func(t *testing.T) {
		t.Parallel()
		rec := get(t, h, "/health")
		_, err := uuid.Parse(rec.Header().Get(requestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("propagated", func(t *testing.T) {
		t.Parallel()
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
		req.Header.Set(requestIDHeader, id)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, id, rec.Header().Get(requestIDHeader))
	})

	t.Run("malformed replaced", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
		req.Header.Set(requestIDHeader, "not-a-uuid")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.NotEqual(t, "not-a-uuid", rec.Header().Get(requestIDHeader))
	})
}

func TestRequestIDFromContext(t *testing.T) {
	t.Parallel()
	assert.Empty(t, RequestID(context.Background()))
	assert.Equal(t, "abc", RequestID(context.WithValue(context.Background(), ctxKey{}, "abc")))
}

func TestServe_GracefulShutdown(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, func(c *Config) { c.ShutdownTimeout = 2 * time.Second })
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/fibonacci?n=12")
	require.NoError(t, err)
	var body FibonacciResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, uint32(144), body.Result)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_NilLogger(t *testing.T) {
	t.Parallel()
	s := New(Config{Security: DefaultSecurityConfig()}, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_ListenError(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, func(c *Config) { c.Addr = "256.0.0.1:bad" })
	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
}
