package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/hashprobe/internal/collision"
	"github.com/agbru/hashprobe/internal/oracle"
	"github.com/agbru/hashprobe/internal/sysmon"
)

const namespace = "hashprobe"

// Metrics holds the Prometheus instruments of a run. Each Metrics owns a
// private registry, so several instances can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	probesTotal     *prometheus.CounterVec
	probeDuration   prometheus.Histogram
	collisionsTotal *prometheus.CounterVec
	activeWorkers   prometheus.Gauge
	activeRequests  prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
}

var (
	_ oracle.ProbeRecorder        = (*Metrics)(nil)
	_ collision.CollisionRecorder = (*Metrics)(nil)
)

// NewMetrics creates and registers all instruments.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		probesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Oracle invocations by outcome.",
		}, []string{"outcome"}),
		probeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Latency of a single oracle invocation.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		collisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collisions_total",
			Help:      "Collisions detected by scope.",
		}, []string{"scope"}),
		activeWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_workers",
			Help:      "Workers currently probing their chunk.",
		}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_requests",
			Help:      "HTTP requests being served.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests served by status code.",
		}, []string{"code"}),
	}

	reg.MustRegister(
		m.probesTotal,
		m.probeDuration,
		m.collisionsTotal,
		m.activeWorkers,
		m.activeRequests,
		m.requestsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "oracle_processes",
			Help:      "Oracle child processes currently running.",
		}, func() float64 { return float64(sysmon.Sample().Children) }),
	)
	// Pre-create label values so a scrape before the first event shows zeros.
	for _, scope := range []collision.Scope{collision.ScopeLocal, collision.ScopeGlobal} {
		m.collisionsTotal.WithLabelValues(scope.String())
	}
	m.probesTotal.WithLabelValues(oracle.OutcomeOK)

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// ObserveProbe implements oracle.ProbeRecorder.
func (m *Metrics) ObserveProbe(outcome string, d time.Duration) {
	m.probesTotal.WithLabelValues(outcome).Inc()
	m.probeDuration.Observe(d.Seconds())
}

// ObserveCollision implements collision.CollisionRecorder.
func (m *Metrics) ObserveCollision(scope collision.Scope) {
	m.collisionsTotal.WithLabelValues(scope.String()).Inc()
}

// ActiveWorkers returns the gauge the orchestrator moves as workers start
// and finish.
func (m *Metrics) ActiveWorkers() prometheus.Gauge {
	return m.activeWorkers
}

// IncrementActiveRequests increments the in-flight HTTP request gauge.
func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

// DecrementActiveRequests decrements the in-flight HTTP request gauge.
func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// WritePrometheus serves the registry in the Prometheus exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
