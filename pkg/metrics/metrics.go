// Package metrics defines the Prometheus collectors for a reformulation run
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Line statuses.
const (
	StatusOK        = "ok"
	StatusMalformed = "malformed"
)

// Metrics holds all Prometheus collectors for the reformulator. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	LinesTotal      *prometheus.CounterVec
	TermsTotal      prometheus.Counter
	SinkWritesTotal *prometheus.CounterVec
	RunDuration     prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LinesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reformulate_lines_total",
				Help: "Input lines processed by status (ok, malformed).",
			},
			[]string{"status"},
		),
		TermsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reformulate_terms_total",
				Help: "Query terms expanded into #WSUM groups.",
			},
		),
		SinkWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reformulate_sink_writes_total",
				Help: "Entries handed to the sink chain by status.",
			},
			[]string{"sink", "status"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reformulate_run_duration_seconds",
				Help:    "Wall time of a reformulation run.",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),
	}

	reg.MustRegister(
		m.LinesTotal,
		m.TermsTotal,
		m.SinkWritesTotal,
		m.RunDuration,
	)

	return m
}

func (m *Metrics) ObserveLine(status string, terms int) {
	if m == nil {
		return
	}
	m.LinesTotal.WithLabelValues(status).Inc()
	m.TermsTotal.Add(float64(terms))
}

func (m *Metrics) ObserveSinkWrite(sink string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.SinkWritesTotal.WithLabelValues(sink, status).Inc()
}

func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
