package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is what the sync path reports to
type Recorder interface {
	RecordSync(platform, outcome string)
	RecordPlatformRequest(platform, status string, duration time.Duration)
	RecordCertificationWriteFailure(platform string)
}

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Sync Metrics
	SyncsTotal                     *prometheus.CounterVec
	PlatformRequestDuration        *prometheus.HistogramVec
	PlatformRequestsTotal          *prometheus.CounterVec
	CertificationWriteFailureTotal *prometheus.CounterVec

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init returns Prometheus-backed metrics when enabled, NoopMetrics otherwise.
// Registration happens once per process.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

func initMetrics() *Metrics {
	return &Metrics{
		SyncsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skill_platform_syncs_total",
				Help: "Total number of skill platform sync requests",
			},
			[]string{"platform", "outcome"}, // verified, unverified, unsupported
		),
		PlatformRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "skill_platform_request_duration_seconds",
				Help:    "Duration of outbound calls to external skill platforms",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"platform"},
		),
		PlatformRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skill_platform_requests_total",
				Help: "Total number of outbound calls to external skill platforms",
			},
			[]string{"platform", "status"}, // ok, not_found, unavailable
		),
		CertificationWriteFailureTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skill_platform_certification_write_failures_total",
				Help: "Certification rows that failed to persist",
			},
			[]string{"platform"},
		),
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),
	}
}

// RecordSync records the outcome of one sync request
func (m *Metrics) RecordSync(platform, outcome string) {
	m.SyncsTotal.WithLabelValues(platform, outcome).Inc()
}

// RecordPlatformRequest records one outbound platform call
func (m *Metrics) RecordPlatformRequest(platform, status string, duration time.Duration) {
	m.PlatformRequestsTotal.WithLabelValues(platform, status).Inc()
	m.PlatformRequestDuration.WithLabelValues(platform).Observe(duration.Seconds())
}

// RecordCertificationWriteFailure records a certification row that was not saved
func (m *Metrics) RecordCertificationWriteFailure(platform string) {
	m.CertificationWriteFailureTotal.WithLabelValues(platform).Inc()
}
