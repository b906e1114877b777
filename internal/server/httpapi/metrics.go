package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors exported on /metrics.
type Metrics struct {
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	uploads        *prometheus.CounterVec
	exports        *prometheus.CounterVec
	skipped        prometheus.Counter
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requestTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxvault_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),

		requestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taxvault_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to 16s
		}, []string{"route"}),

		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxvault_uploads_total",
			Help: "File uploads by outcome",
		}, []string{"outcome"}),

		exports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taxvault_exports_total",
			Help: "Tax year exports by outcome",
		}, []string{"outcome"}),

		skipped: f.NewCounter(prometheus.CounterOpts{
			Name: "taxvault_export_skipped_attachments_total",
			Help: "Attachments left out of exports because they could not be resolved",
		}),
	}
}

func (m *Metrics) RecordRequest(method, route, status string, seconds float64) {
	m.requestTotal.WithLabelValues(method, route, status).Inc()
	m.requestLatency.WithLabelValues(route).Observe(seconds)
}

func (m *Metrics) RecordUpload(outcome string) {
	m.uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordExport(outcome string, skipped int) {
	m.exports.WithLabelValues(outcome).Inc()
	m.skipped.Add(float64(skipped))
}
