// ABOUTME: Prometheus collectors for registry, pool, generation and session activity
// ABOUTME: All recording methods are safe to call on a nil *Metrics

// Package metrics wraps the Prometheus collectors fitcheck exposes. A nil
// *Metrics disables recording, so components take one optionally.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fitcheck"

// Metrics holds the fitcheck collectors and their registry.
type Metrics struct {
	registry *prometheus.Registry

	assetsRegistered   *prometheus.CounterVec
	poolEvictions      prometheus.Counter
	poolSize           prometheus.Gauge
	generationRequests *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	optimizeRemoved    prometheus.Counter
	historyDepth       prometheus.Gauge
	busyRejections     prometheus.Counter
}

// New creates the collectors on a fresh registry, along with Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.assetsRegistered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assets_registered_total",
			Help:      "Total number of assets registered, by kind",
		},
		[]string{"kind"},
	)

	m.poolEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pool_evictions_total",
		Help:      "Total number of ids evicted from the transient pool",
	})

	m.poolSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_size",
		Help:      "Current number of ids in the transient pool",
	})

	m.generationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_requests_total",
			Help:      "Total number of generation requests, by operation and status",
		},
		[]string{"operation", "status"},
	)

	m.generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time taken by the generation collaborator",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2m
		},
		[]string{"operation"},
	)

	m.optimizeRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "optimize_removed_total",
		Help:      "Total number of unreachable assets removed by optimize",
	})

	m.historyDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "history_depth",
		Help:      "Current number of entries in the session history",
	})

	m.busyRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "busy_rejections_total",
		Help:      "Total number of session mutations rejected while another was in flight",
	})

	m.registry.MustRegister(
		m.assetsRegistered,
		m.poolEvictions,
		m.poolSize,
		m.generationRequests,
		m.generationDuration,
		m.optimizeRemoved,
		m.historyDepth,
		m.busyRejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// AssetRegistered counts one registered asset of kind.
func (m *Metrics) AssetRegistered(kind string) {
	if m == nil {
		return
	}
	m.assetsRegistered.WithLabelValues(kind).Inc()
}

// PoolEvicted counts one pool eviction.
func (m *Metrics) PoolEvicted() {
	if m == nil {
		return
	}
	m.poolEvictions.Inc()
}

// SetPoolSize records the pool size.
func (m *Metrics) SetPoolSize(n int) {
	if m == nil {
		return
	}
	m.poolSize.Set(float64(n))
}

// GenerationFinished records one generation call and its latency.
func (m *Metrics) GenerationFinished(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.generationRequests.WithLabelValues(operation, status).Inc()
	m.generationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// OptimizeRemoved counts assets removed by an optimize pass.
func (m *Metrics) OptimizeRemoved(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.optimizeRemoved.Add(float64(n))
}

// SetHistoryDepth records the session history length.
func (m *Metrics) SetHistoryDepth(n int) {
	if m == nil {
		return
	}
	m.historyDepth.Set(float64(n))
}

// BusyRejected counts one mutation rejected by the busy flag.
func (m *Metrics) BusyRejected() {
	if m == nil {
		return
	}
	m.busyRejections.Inc()
}
