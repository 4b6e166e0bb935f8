// Package metrics exposes dashboard activity for Prometheus scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suricata-ml/dashboard/internal/dashboard"
)

const namespace = "suricata_dashboard"

// Compile-time interface check.
var _ dashboard.Recorder = (*Metrics)(nil)

// Metrics records file selections and backend round trips.
type Metrics struct {
	registry *prometheus.Registry

	filesOffered     *prometheus.CounterVec
	analysesTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		filesOffered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_offered_total",
			Help:      "Files offered to the upload panel, by source and outcome.",
		}, []string{"source", "outcome"}),
		analysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Backend analyses, by backend and outcome.",
		}, []string{"backend", "outcome"}),
		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Backend round-trip time.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"backend"}),
	}

	m.registry.MustRegister(m.filesOffered, m.analysesTotal, m.analysisDuration)
	return m
}

// TrackSessions exposes the number of live sessions as a gauge.
func (m *Metrics) TrackSessions(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Dashboard sessions currently held in memory.",
	}, func() float64 { return float64(count()) }))
}

// TrackStoredFiles exposes the number of selected files held on disk.
func (m *Metrics) TrackStoredFiles(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stored_files",
		Help:      "Selected files waiting in the upload store.",
	}, func() float64 { return float64(count()) }))
}

// FileOffered implements dashboard.Recorder.
func (m *Metrics) FileOffered(src dashboard.Source, accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	m.filesOffered.WithLabelValues(string(src), outcome).Inc()
}

// AnalysisFinished implements dashboard.Recorder.
func (m *Metrics) AnalysisFinished(backend string, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.analysesTotal.WithLabelValues(backend, outcome).Inc()
	m.analysisDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
