package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics of one preprocessing run
type Metrics struct {
	Registry *prometheus.Registry

	RowsRead      *prometheus.CounterVec
	OutputColumns prometheus.Gauge
	StageDuration *prometheus.HistogramVec
	RunsTotal     *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mlprep",
			Subsystem: "transform",
			Name:      "rows_read_total",
			Help:      "Rows read per dataset split",
		}, []string{"split"}),
		OutputColumns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mlprep",
			Subsystem: "transform",
			Name:      "output_columns",
			Help:      "Columns of the transformed arrays, target included",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mlprep",
			Subsystem: "transform",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each preprocessing stage",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mlprep",
			Name:      "runs_total",
			Help:      "Preprocessing runs by outcome",
		}, []string{"status"}),
	}
	reg.MustRegister(m.RowsRead, m.OutputColumns, m.StageDuration, m.RunsTotal)
	return m
}

// ObserveStage records the time elapsed since start under stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordRun counts a finished run.
func (m *Metrics) RecordRun(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
