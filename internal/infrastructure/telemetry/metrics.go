package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gate decision label values
const (
	GateDecisionAllow = "allow"
	GateDecisionDeny  = "deny"
	GateDecisionError = "error"
)

// Metrics holds the Prometheus collectors of the service.
// Safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	gateDecisions   *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	scanRuns        *prometheus.CounterVec
	scanStudents    prometheus.Gauge
	scanOverdue     prometheus.Gauge
	scanTotalOwed   prometheus.Gauge
	scanDuration    prometheus.Gauge
	scanLastSuccess prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry.
// namespace prefixes every metric name.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.gateDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_gate_decisions_total",
		Help:      "Payment gate decisions for student requests.",
	}, []string{"decision"})

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served.",
	}, []string{"method", "route", "status"})

	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	m.scanRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delinquency_scan_runs_total",
		Help:      "Runs of the system-wide delinquency scan.",
	}, []string{"result"})

	m.scanStudents = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "delinquent_students",
		Help:      "Delinquent students found by the last successful scan.",
	})
	m.scanOverdue = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "overdue_obligations",
		Help:      "Overdue obligations found by the last successful scan.",
	})
	m.scanTotalOwed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "overdue_amount_total",
		Help:      "Sum owed over overdue obligations at the last successful scan.",
	})
	m.scanDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "delinquency_scan_duration_seconds",
		Help:      "Duration of the last successful scan.",
	})
	m.scanLastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "delinquency_scan_last_success_timestamp_seconds",
		Help:      "Unix time of the last successful scan.",
	})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.gateDecisions,
		m.httpRequests,
		m.httpDuration,
		m.scanRuns,
		m.scanStudents,
		m.scanOverdue,
		m.scanTotalOwed,
		m.scanDuration,
		m.scanLastSuccess,
	)
	return m
}

// Registry returns the registry the collectors are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveGateDecision counts one payment gate outcome
func (m *Metrics) ObserveGateDecision(decision string) {
	m.gateDecisions.WithLabelValues(decision).Inc()
}

// ObserveHTTPRequest records one served request
func (m *Metrics) ObserveHTTPRequest(method, route, status string, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveScan records a scan run. Gauges only move on success.
func (m *Metrics) ObserveScan(at time.Time, students, overdue int, totalOwed float64, elapsed time.Duration, err error) {
	if err != nil {
		m.scanRuns.WithLabelValues("error").Inc()
		return
	}
	m.scanRuns.WithLabelValues("success").Inc()
	m.scanStudents.Set(float64(students))
	m.scanOverdue.Set(float64(overdue))
	m.scanTotalOwed.Set(totalOwed)
	m.scanDuration.Set(elapsed.Seconds())
	m.scanLastSuccess.Set(float64(at.Unix()))
}
