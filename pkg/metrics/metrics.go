// Package metrics collects prometheus metrics about uploads and upload credentials.
//
// A nil *Metrics is valid and collects nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datahub"

// Outcomes of an uploaded item
const (
	OutcomeUploaded = "uploaded"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// Metrics holds the prometheus collectors for the SDK
type Metrics struct {
	registry           *prometheus.Registry
	items              *prometheus.CounterVec
	bytes              prometheus.Counter
	uploadDuration     prometheus.Histogram
	leaseRefreshes     prometheus.Counter
	leaseInvalidations prometheus.Counter
	activeWorkers      prometheus.Gauge
}

// New creates and registers the metrics on a dedicated registry
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_items_total",
			Help:      "Number of items processed by upload pipelines, by outcome",
		}, []string{"outcome"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Number of bytes uploaded to storage",
		}),
		uploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Time to upload and synchronize a single item",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		leaseRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lease_refreshes_total",
			Help:      "Number of upload credentials fetched from the server",
		}),
		leaseInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lease_invalidations_total",
			Help:      "Number of upload credentials invalidated after an authentication failure",
		}),
		activeWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upload_active_workers",
			Help:      "Number of upload workers currently busy",
		}),
	}

	registry.MustRegister(
		m.items,
		m.bytes,
		m.uploadDuration,
		m.leaseRefreshes,
		m.leaseInvalidations,
		m.activeWorkers,
	)
	return m
}

// Registry to gather the metrics from
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Uploaded records a successfully uploaded item
func (m *Metrics) Uploaded(size int64, start time.Time) {
	if m == nil {
		return
	}
	m.items.WithLabelValues(OutcomeUploaded).Inc()
	m.bytes.Add(float64(size))
	m.uploadDuration.Observe(time.Since(start).Seconds())
}

// Skipped records an item already present remotely
func (m *Metrics) Skipped() {
	if m == nil {
		return
	}
	m.items.WithLabelValues(OutcomeSkipped).Inc()
}

// Failed records an item which could not be uploaded
func (m *Metrics) Failed() {
	if m == nil {
		return
	}
	m.items.WithLabelValues(OutcomeFailed).Inc()
}

// LeaseRefreshed records a fresh lease
func (m *Metrics) LeaseRefreshed() {
	if m == nil {
		return
	}
	m.leaseRefreshes.Inc()
}

// LeaseInvalidated records an invalidated lease
func (m *Metrics) LeaseInvalidated() {
	if m == nil {
		return
	}
	m.leaseInvalidations.Inc()
}

// WorkerBusy tracks a busy worker. Call the returned func when the worker is done.
func (m *Metrics) WorkerBusy() func() {
	if m == nil {
		return func() {}
	}
	m.activeWorkers.Inc()
	return m.activeWorkers.Dec
}

// Handler returns an http.Handler that serves the metrics
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
