// Package metrics defines Prometheus metrics for netforce and connects them
// to the observability hooks.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/netforce/pkg/observability"
)

const namespace = "netforce"

// Metrics holds every collector. It implements the relax, cache and store
// hook interfaces.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec

	ParseDuration *prometheus.HistogramVec
	ParseWarnings prometheus.Counter
	GraphNodes    prometheus.Histogram
	RelaxDuration *prometheus.HistogramVec
	RelaxTicks    prometheus.Counter
	BatchSpeed    prometheus.Histogram
	ActiveRelax   prometheus.Gauge
	ExportedEdges prometheus.Histogram

	CacheRequests *prometheus.CounterVec
	CacheBytes    *prometheus.CounterVec

	StoreDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),

		ParseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "parse_duration_seconds",
				Help:      "Time spent reading network sources",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"outcome"},
		),
		ParseWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_warnings_total",
			Help:      "Edges skipped because an endpoint was unknown",
		}),
		GraphNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Node count of parsed networks",
			Buckets:   prometheus.ExponentialBuckets(8, 4, 8),
		}),
		RelaxDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "relax_duration_seconds",
				Help:      "Wall-clock time of batched relaxations",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"outcome"},
		),
		RelaxTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relax_ticks_total",
			Help:      "Simulation ticks run",
		}),
		BatchSpeed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_max_speed",
			Help:      "Fastest node speed at the end of each batch",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 10, 8),
		}),
		ActiveRelax: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relax_active",
			Help:      "Relaxations currently running",
		}),
		ExportedEdges: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_edges",
			Help:      "Edge count of exported snapshots",
			Buckets:   prometheus.ExponentialBuckets(8, 4, 8),
		}),

		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_requests_total",
				Help:      "Cache lookups and writes by key type and result",
			},
			[]string{"key_type", "result"},
		),
		CacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_written_bytes_total",
				Help:      "Bytes written to the cache",
			},
			[]string{"key_type"},
		),

		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Snapshot store call duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"backend", "op", "outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestDuration, m.RequestsTotal,
		m.ParseDuration, m.ParseWarnings, m.GraphNodes,
		m.RelaxDuration, m.RelaxTicks, m.BatchSpeed, m.ActiveRelax, m.ExportedEdges,
		m.CacheRequests, m.CacheBytes,
		m.StoreDuration,
	)
	return m
}

// Install registers m as the process-wide observability hooks.
func (m *Metrics) Install() {
	observability.SetRelaxHooks(m)
	observability.SetCacheHooks(m)
	observability.SetStoreHooks(m)
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	s := strconv.Itoa(status)
	m.RequestDuration.WithLabelValues(method, route, s).Observe(d.Seconds())
	m.RequestsTotal.WithLabelValues(method, route, s).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// =============================================================================
// Hook implementations
// =============================================================================

func (m *Metrics) OnParseComplete(_ context.Context, nodes, _ int, warnings int, d time.Duration, err error) {
	m.ParseDuration.WithLabelValues(outcome(err)).Observe(d.Seconds())
	if err == nil {
		m.GraphNodes.Observe(float64(nodes))
		m.ParseWarnings.Add(float64(warnings))
	}
}

func (m *Metrics) OnRelaxStart(context.Context, int, int) {
	m.ActiveRelax.Inc()
}

func (m *Metrics) OnBatch(_ context.Context, _ int, maxSpeed float64) {
	m.BatchSpeed.Observe(maxSpeed)
}

func (m *Metrics) OnRelaxComplete(_ context.Context, ticks int, d time.Duration, err error) {
	m.ActiveRelax.Dec()
	m.RelaxTicks.Add(float64(ticks))
	m.RelaxDuration.WithLabelValues(outcome(err)).Observe(d.Seconds())
}

func (m *Metrics) OnExport(_ context.Context, edges, _ int) {
	m.ExportedEdges.Observe(float64(edges))
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheRequests.WithLabelValues(keyType, "set").Inc()
	m.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnStoreOp(_ context.Context, backend, op string, d time.Duration, err error) {
	m.StoreDuration.WithLabelValues(backend, op, outcome(err)).Observe(d.Seconds())
}

var (
	_ observability.RelaxHooks = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.StoreHooks = (*Metrics)(nil)
)
