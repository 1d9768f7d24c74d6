// Package metrics exposes Prometheus instrumentation for export runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run results.
const (
	ResultSuccess = "success"
	ResultEmpty   = "empty"
	ResultFailure = "failure"
)

// ExportMetrics tracks export runs.
//
// Metrics:
//   - <ns>_export_runs_total: runs by result
//   - <ns>_export_failures_total: failed runs by stage
//   - <ns>_export_records_total: records written to artifacts
//   - <ns>_export_run_duration_seconds: run latency by result
//
// A nil *ExportMetrics is valid and records nothing.
type ExportMetrics struct {
	runsTotal     *prometheus.CounterVec
	failuresTotal *prometheus.CounterVec
	recordsTotal  prometheus.Counter
	runDuration   *prometheus.HistogramVec
}

// NewExportMetrics creates and registers export metrics with registry.
func NewExportMetrics(namespace string, registry prometheus.Registerer) *ExportMetrics {
	m := &ExportMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "export",
				Name:      "runs_total",
				Help:      "Total number of export runs by result",
			},
			[]string{"result"},
		),
		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "export",
				Name:      "failures_total",
				Help:      "Total number of failed export runs by stage",
			},
			[]string{"stage"},
		),
		recordsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "export",
				Name:      "records_total",
				Help:      "Total number of records written to export artifacts",
			},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "export",
				Name:      "run_duration_seconds",
				Help:      "Duration of export runs in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(m.runsTotal, m.failuresTotal, m.recordsTotal, m.runDuration)
	return m
}

// ObserveRun records the end of a run.
func (m *ExportMetrics) ObserveRun(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(result).Inc()
	m.runDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

// ObserveFailure records the stage a run failed in.
func (m *ExportMetrics) ObserveFailure(stage string) {
	if m == nil {
		return
	}
	m.failuresTotal.WithLabelValues(stage).Inc()
}

// AddRecords counts records written to an artifact.
func (m *ExportMetrics) AddRecords(n int) {
	if m == nil {
		return
	}
	m.recordsTotal.Add(float64(n))
}

// Handler serves the metrics gathered by gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
