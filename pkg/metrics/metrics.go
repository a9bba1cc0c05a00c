// Package metrics exports the counters of a finished run in Prometheus
// text format, for pickup by the node_exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ccollicutt/hitlog/pkg/output"
)

// Exporter holds one registry of gauges describing analyzed files.
// Each Observe replaces the series for that source.
type Exporter struct {
	registry *prometheus.Registry

	lines     *prometheus.GaugeVec
	bytesSent *prometheus.GaugeVec
	status    *prometheus.GaugeVec
	methods   *prometheus.GaugeVec
	formats   *prometheus.GaugeVec
	duration  *prometheus.GaugeVec
	lastRun   *prometheus.GaugeVec
}

// NewExporter creates an Exporter with its own registry.
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hitlog_lines",
			Help: "Lines read from the access log, by classification result",
		}, []string{"source", "result"}),
		bytesSent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hitlog_bytes_sent",
			Help: "Sum of response sizes of parsed lines",
		}, []string{"source"}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hitlog_status_requests",
			Help: "Parsed requests by HTTP status code (top entries)",
		}, []string{"source", "code"}),
		methods: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hitlog_method_requests",
			Help: "Parsed requests by HTTP method (top entries)",
		}, []string{"source", "method"}),
		formats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hitlog_format_lines",
			Help: "Parsed lines by matched log format",
		}, []string{"source", "format"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hitlog_analysis_duration_seconds",
			Help: "Wall time of the analysis run",
		}, []string{"source"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hitlog_last_run_timestamp_seconds",
			Help: "Unix time the analysis finished",
		}, []string{"source"}),
	}

	e.registry.MustRegister(e.lines, e.bytesSent, e.status, e.methods, e.formats, e.duration, e.lastRun)
	return e
}

// Registry exposes the underlying registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Observe records a report. Address and path tables are left out; their
// cardinality is unbounded.
func (e *Exporter) Observe(report *output.Report) {
	src := report.SourceFile
	s := report.Summary

	e.lines.WithLabelValues(src, "parsed").Set(float64(s.Parsed))
	e.lines.WithLabelValues(src, "unparsed").Set(float64(s.Unparsed))
	e.bytesSent.WithLabelValues(src).Set(float64(s.Bytes))

	for _, row := range s.Status {
		e.status.WithLabelValues(src, row.Key).Set(float64(row.Count))
	}
	for _, row := range s.Methods {
		e.methods.WithLabelValues(src, row.Key).Set(float64(row.Count))
	}
	for _, row := range s.Formats {
		e.formats.WithLabelValues(src, row.Key).Set(float64(row.Count))
	}

	e.duration.WithLabelValues(src).Set(report.Metadata.Duration.Seconds())
	if !report.Metadata.AnalyzedAt.IsZero() {
		e.lastRun.WithLabelValues(src).Set(float64(report.Metadata.AnalyzedAt.Unix()))
	}
}

// WriteFile writes every observed series to path. The write goes through a
// temporary file and rename.
func (e *Exporter) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
