package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the pipeline counters. A nil *Metrics records nothing.
type Metrics struct {
	executions    *prometheus.CounterVec
	editsApplied  prometheus.Counter
	applyErrors   prometheus.Counter
	oracleLatency prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cli_editor",
			Name:      "executions_total",
			Help:      "Execution requests by terminal status.",
		}, []string{"status"}),
		editsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cli_editor",
			Name:      "edits_applied_total",
			Help:      "Proposed edits written to disk.",
		}),
		applyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cli_editor",
			Name:      "apply_errors_total",
			Help:      "Proposed edits that failed to apply.",
		}),
		oracleLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cli_editor",
			Name:      "oracle_request_seconds",
			Help:      "Latency of the edit oracle call.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.executions, m.editsApplied, m.applyErrors, m.oracleLatency)
	}
	return m
}

func (m *Metrics) finished(status string, applied, failed int) {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(status).Inc()
	m.editsApplied.Add(float64(applied))
	m.applyErrors.Add(float64(failed))
}

func (m *Metrics) oracleCall(start time.Time) {
	if m == nil {
		return
	}
	m.oracleLatency.Observe(time.Since(start).Seconds())
}
