package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAndHandler(t *testing.T) {
	m := New()
	m.ObserveHTTP("GET", "/api/v1/session", "200", 5*time.Millisecond)
	m.ObserveHTTP("GET", "/api/v1/session", "200", 5*time.Millisecond)
	m.ObserveReview("password", "approve")
	m.SetPending("password", 1)

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/session", "200")); got != 2 {
		t.Fatalf("expected 2 requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.pending.WithLabelValues("password")); got != 1 {
		t.Fatalf("expected pending gauge 1, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "request_reviews_total") {
		t.Fatalf("metrics output missing review counter")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveHTTP("GET", "/", "200", time.Millisecond)
	m.ObserveReview("manual", "reject")
	m.SetPending("manual", 0)
	m.ObserveLocation("attendance", "ok")
	m.ObserveLogin(false)
}
