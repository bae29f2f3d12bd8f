// Package metrics holds the prometheus collectors for the service. Methods
// are safe on a nil *Metrics so components can run without them.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	reviews         *prometheus.CounterVec
	pending         *prometheus.GaugeVec
	locationResults *prometheus.CounterVec
	logins          *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status_code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		reviews: f.NewCounterVec(prometheus.CounterOpts{
			Name: "request_reviews_total",
			Help: "Reviewed requests by kind and decision.",
		}, []string{"kind", "decision"}),
		pending: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "requests_pending",
			Help: "Requests waiting for review.",
		}, []string{"kind"}),
		locationResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "location_results_total",
			Help: "Location reads by purpose and outcome kind.",
		}, []string{"purpose", "outcome"}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, path, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveReview(kind, decision string) {
	if m == nil {
		return
	}
	m.reviews.WithLabelValues(kind, decision).Inc()
}

func (m *Metrics) SetPending(kind string, n int) {
	if m == nil {
		return
	}
	m.pending.WithLabelValues(kind).Set(float64(n))
}

func (m *Metrics) ObserveLocation(purpose, outcome string) {
	if m == nil {
		return
	}
	m.locationResults.WithLabelValues(purpose, outcome).Inc()
}

func (m *Metrics) ObserveLogin(ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.logins.WithLabelValues(result).Inc()
}
