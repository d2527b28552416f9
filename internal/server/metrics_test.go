package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/agbru/fibengine/internal/fibonacci"
)

func TestNewMetrics(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	if m.handler == nil {
		t.Fatal("Metrics.handler should be initialized")
	}
}

func TestMetrics_ActiveRequests(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	m.IncrementActiveRequests()
	m.IncrementActiveRequests()
	m.DecrementActiveRequests()
	if got := testutil.ToFloat64(m.activeRequests); got != 1 {
		t.Errorf("active requests = %v, want 1", got)
	}
}

func TestMetrics_Observations(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	m.ObserveRequest("/fibonacci", http.StatusOK, time.Millisecond)
	m.ObserveRequest("/fibonacci", http.StatusOK, time.Millisecond)
	m.ObserveRequest("/fibonacci", http.StatusBadRequest, time.Millisecond)
	m.ObserveOverflow(fibonacci.PolicySaturate)
	m.ObserveBatch(64)

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/fibonacci", "200")); got != 2 {
		t.Errorf("requests{200} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/fibonacci", "400")); got != 1 {
		t.Errorf("requests{400} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.overflowsTotal.WithLabelValues("saturate")); got != 1 {
		t.Errorf("overflows{saturate} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.batchSize); got != 1 {
		t.Errorf("batch size series = %d, want 1", got)
	}
}

// Separate instances must not share counters.
func TestMetrics_PrivateRegistry(t *testing.T) {
	t.Parallel()
	a, b := NewMetrics(), NewMetrics()
	a.ObserveOverflow(fibonacci.PolicyWrap)
	if got := testutil.ToFloat64(b.overflowsTotal.WithLabelValues("wrap")); got != 0 {
		t.Errorf("second registry saw %v overflows, want 0", got)
	}
}

func TestMetrics_WritePrometheus(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	m.ObserveRequest("/batch", http.StatusOK, 2*time.Millisecond)

	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"fibengine_requests_total",
		"fibengine_active_requests",
		"fibengine_request_duration_seconds",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
