// Package instrument exports hostwatch's own sampling activity and the
// latest host readings as Prometheus metrics. A nil *Metrics is valid and
// records nothing, so callers never need to check whether metrics are on.
package instrument

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rileyhilliard/hostwatch/internal/errors"
	"github.com/rileyhilliard/hostwatch/internal/metrics"
)

const namespace = "hostwatch"

// Metrics holds the collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	samples     *prometheus.CounterVec
	sampleErrs  *prometheus.CounterVec
	connects    *prometheus.CounterVec
	execLatency *prometheus.HistogramVec
	busDepth    prometheus.Gauge

	memUsed  *prometheus.GaugeVec
	cpuUsage *prometheus.GaugeVec
	diskUsed *prometheus.GaugeVec
	netRate  *prometheus.GaugeVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Samples successfully parsed and stored.",
		}, []string{"host", "kind"}),
		sampleErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sample_errors_total",
			Help:      "Sampling failures by error code.",
		}, []string{"host", "kind", "code"}),
		connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_attempts_total",
			Help:      "SSH connection attempts by result.",
		}, []string{"host", "result"}),
		execLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "exec_duration_seconds",
			Help:      "Remote command round-trip time.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}, []string{"host", "kind"}),
		busDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bus_depth",
			Help:      "Events buffered on the event bus.",
		}),
		memUsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_used_percent",
			Help:      "Latest memory usage per host.",
		}, []string{"host"}),
		cpuUsage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_usage_percent",
			Help:      "Latest CPU usage per host.",
		}, []string{"host"}),
		diskUsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "disk_used_percent",
			Help:      "Latest aggregate disk usage per host.",
		}, []string{"host"}),
		netRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "network_bytes_per_second",
			Help:      "Latest interface throughput per host.",
		}, []string{"host", "iface", "direction"}),
	}

	m.registry.MustRegister(
		m.samples, m.sampleErrs, m.connects, m.execLatency, m.busDepth,
		m.memUsed, m.cpuUsage, m.diskUsed, m.netRate,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the registry in text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSample records a stored sample and updates the per-host gauges.
func (m *Metrics) ObserveSample(host string, s metrics.Sample) {
	if m == nil || s == nil {
		return
	}
	m.samples.WithLabelValues(host, s.Kind().String()).Inc()

	switch v := s.(type) {
	case *metrics.MemInfo:
		m.memUsed.WithLabelValues(host).Set(v.UsedPercent())
	case *metrics.CPUInfo:
		m.cpuUsage.WithLabelValues(host).Set(v.UsagePercent)
	case *metrics.DiskInfo:
		m.diskUsed.WithLabelValues(host).Set(v.UsedPercent())
	case *metrics.NetInfo:
		for _, iface := range v.Interfaces {
			m.netRate.WithLabelValues(host, iface.Name, "rx").Set(iface.RxRate)
			m.netRate.WithLabelValues(host, iface.Name, "tx").Set(iface.TxRate)
		}
	}
}

// ObserveError counts a sampling failure. kind is "" for host-level errors.
func (m *Metrics) ObserveError(host, kind string, err error) {
	if m == nil {
		return
	}
	code := errors.CodeOf(err)
	if code == "" {
		code = "UNKNOWN"
	}
	m.sampleErrs.WithLabelValues(host, kind, code).Inc()
}

// ObserveConnect counts a connection attempt.
func (m *Metrics) ObserveConnect(host string, ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.connects.WithLabelValues(host, result).Inc()
}

// ObserveExec records how long one remote command took.
func (m *Metrics) ObserveExec(host string, kind metrics.Kind, d time.Duration) {
	if m == nil {
		return
	}
	m.execLatency.WithLabelValues(host, kind.String()).Observe(d.Seconds())
}

// SetBusDepth records the current number of buffered events.
func (m *Metrics) SetBusDepth(n int) {
	if m == nil {
		return
	}
	m.busDepth.Set(float64(n))
}
