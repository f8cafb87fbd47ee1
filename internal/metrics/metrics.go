// Package metrics provides Prometheus-based metrics collection for
// scuttle. Collectors track scan jobs, individual probes, and limiter
// behavior so long-running scans can be observed without affecting the
// scan itself.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// Namespace for all scuttle metrics.
	namespace = "scuttle"

	subsystemScan  = "scan"
	subsystemProbe = "probe"
)

// Metrics holds all Prometheus metric collectors.
type Metrics struct {
	scansTotal   *prometheus.CounterVec
	scanDuration *prometheus.HistogramVec
	probesTotal  *prometheus.CounterVec
	portsOpen    *prometheus.CounterVec
	activeProbes prometheus.Gauge
	rateWaits    prometheus.Counter

	registry *prometheus.Registry
}

// New creates a Metrics instance with all collectors registered on a
// private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystemScan,
				Name:      "jobs_total",
				Help:      "Total number of scan jobs executed.",
			},
			[]string{"type", "status"},
		),
		scanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystemScan,
				Name:      "duration_seconds",
				Help:      "Wall-clock duration of scan jobs.",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"type"},
		),
		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystemProbe,
				Name:      "total",
				Help:      "Total number of per-port probes by outcome.",
			},
			[]string{"type", "result"},
		),
		portsOpen: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystemScan,
				Name:      "open_ports_total",
				Help:      "Total open ports discovered.",
			},
			[]string{"type"},
		),
		activeProbes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystemProbe,
				Name:      "active",
				Help:      "Number of probes currently in flight.",
			},
		),
		rateWaits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystemProbe,
				Name:      "rate_limited_total",
				Help:      "Number of probes that waited on the rate limiter.",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.scansTotal,
		m.scanDuration,
		m.probesTotal,
		m.portsOpen,
		m.activeProbes,
		m.rateWaits,
	)
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry exposes the underlying registry for scraping or test
// gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncrementScansTotal records a completed scan job.
func (m *Metrics) IncrementScansTotal(scanType, status string) {
	m.scansTotal.WithLabelValues(scanType, status).Inc()
}

// RecordScanDuration records how long a scan job took.
func (m *Metrics) RecordScanDuration(scanType string, d time.Duration) {
	m.scanDuration.WithLabelValues(scanType).Observe(d.Seconds())
}

// IncrementProbes records a single probe result.
func (m *Metrics) IncrementProbes(scanType, result string) {
	m.probesTotal.WithLabelValues(scanType, result).Inc()
}

// IncrementOpenPorts records an open-port discovery.
func (m *Metrics) IncrementOpenPorts(scanType string) {
	m.portsOpen.WithLabelValues(scanType).Inc()
}

// ProbeStarted marks a probe as in flight.
func (m *Metrics) ProbeStarted() {
	m.activeProbes.Inc()
}

// ProbeFinished marks a probe as done.
func (m *Metrics) ProbeFinished() {
	m.activeProbes.Dec()
}

// IncrementRateWaits records a probe that blocked on the rate limiter.
func (m *Metrics) IncrementRateWaits() {
	m.rateWaits.Inc()
}

var (
	globalMetrics *Metrics
	globalOnce    sync.Once
)

// GetGlobalMetrics returns the process-wide metrics instance, creating
// it on first use.
func GetGlobalMetrics() *Metrics {
	globalOnce.Do(func() {
		globalMetrics = New()
	})
	return globalMetrics
}
