// Package metrics exposes Prometheus metrics for the key-issuing service.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcome labels.
const (
	StatusOK           = "ok"
	StatusUnauthorized = "unauthorized"
	StatusBadRequest   = "bad_request"
	StatusFailed       = "failed"
)

// KeyServiceMetrics counts what the key-issuing handler does. A nil
// *KeyServiceMetrics records nothing.
type KeyServiceMetrics struct {
	requests      *prometheus.CounterVec
	issuedEntries prometheus.Counter
	issueFailures *prometheus.CounterVec
	latency       prometheus.Histogram
}

// NewKeyServiceMetrics creates the collectors and registers them with reg.
func NewKeyServiceMetrics(namespace string, reg prometheus.Registerer) (*KeyServiceMetrics, error) {
	m := &KeyServiceMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keychain_requests_total",
			Help:      "Keychain requests by outcome.",
		}, []string{"status"}),
		issuedEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keychain_entries_issued_total",
			Help:      "Keychain entries decrypted and returned to clients.",
		}),
		issueFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keychain_issue_failures_total",
			Help:      "Keychain entries that could not be issued, by feature point.",
		}, []string{"feature_point"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "keychain_request_duration_seconds",
			Help:      "Time spent answering keychain requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.issuedEntries, m.issueFailures, m.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *KeyServiceMetrics) ObserveRequest(status string, started time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(status).Inc()
	m.latency.Observe(time.Since(started).Seconds())
}

func (m *KeyServiceMetrics) AddIssued(n int) {
	if m == nil {
		return
	}
	m.issuedEntries.Add(float64(n))
}

func (m *KeyServiceMetrics) IncIssueFailure(featurePoint string) {
	if m == nil {
		return
	}
	m.issueFailures.WithLabelValues(featurePoint).Inc()
}

// MetricsServer serves the collectors of its registry on /metrics.
type MetricsServer struct {
	registry *prometheus.Registry
	metrics  *KeyServiceMetrics
	srv      *http.Server
}

// New creates a metrics server with its own registry holding the Go runtime
// and process collectors plus the key service metrics.
func New(namespace, listenAddr string) (*MetricsServer, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}

	m, err := NewKeyServiceMetrics(namespace, reg)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &MetricsServer{
		registry: reg,
		metrics:  m,
		srv: &http.Server{
			Addr:              listenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *MetricsServer) KeyService() *KeyServiceMetrics {
	return s.metrics
}

func (s *MetricsServer) Handler() http.Handler {
	return s.srv.Handler
}

func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
