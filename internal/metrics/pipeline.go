// Package metrics exposes Prometheus instrumentation for the claim pipeline.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	classifications    *prometheus.CounterVec
	outcomes           *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	decisions          *prometheus.CounterVec
	claimDuration      prometheus.Histogram
	claimsInFlight     prometheus.Gauge

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	classifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimflow",
			Subsystem: "pipeline",
			Name:      "classifications_total",
			Help:      "Documents classified, by resulting type.",
		},
		[]string{"type"},
	)
	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimflow",
			Subsystem: "pipeline",
			Name:      "document_outcomes_total",
			Help:      "Per-document outcomes by status, type and error kind.",
		},
		[]string{"status", "type", "error_kind"},
	)
	extractionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claimflow",
			Subsystem: "pipeline",
			Name:      "extraction_duration_seconds",
			Help:      "Extraction duration per document type.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"type"},
	)
	decisions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimflow",
			Subsystem: "pipeline",
			Name:      "decisions_total",
			Help:      "Claim decisions by status.",
		},
		[]string{"status"},
	)
	claimDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "claimflow",
			Subsystem: "pipeline",
			Name:      "claim_duration_seconds",
			Help:      "Wall-clock time to process a claim.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	claimsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "claimflow",
			Subsystem: "pipeline",
			Name:      "claims_in_flight",
			Help:      "Claims currently being processed.",
		},
	)
	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimflow",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claimflow",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(
		classifications,
		outcomes,
		extractionDuration,
		decisions,
		claimDuration,
		claimsInFlight,
		requestTotal,
		requestDuration,
	)

	return &Metrics{
		registry:           registry,
		classifications:    classifications,
		outcomes:           outcomes,
		extractionDuration: extractionDuration,
		decisions:          decisions,
		claimDuration:      claimDuration,
		claimsInFlight:     claimsInFlight,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) StartClaim() {
	if m == nil {
		return
	}
	m.claimsInFlight.Inc()
}

func (m *Metrics) FinishClaim(decision string, duration time.Duration) {
	if m == nil {
		return
	}
	m.claimsInFlight.Dec()
	m.claimDuration.Observe(duration.Seconds())
	m.decisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) ObserveClassification(docType string) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(docType).Inc()
}

func (m *Metrics) ObserveExtraction(docType string, duration time.Duration) {
	if m == nil {
		return
	}
	m.extractionDuration.WithLabelValues(docType).Observe(duration.Seconds())
}

func (m *Metrics) ObserveOutcome(status, docType, errorKind string) {
	if m == nil {
		return
	}
	if errorKind == "" {
		errorKind = "none"
	}
	m.outcomes.WithLabelValues(status, docType, errorKind).Inc()
}

// GinMiddleware records request counts and latency keyed by route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
