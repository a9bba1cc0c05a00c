// Package output provides formatting and persistence for analysis reports.
package output

import (
	"path/filepath"
	"time"

	"github.com/ccollicutt/hitlog/pkg/analyzer"
	"github.com/ccollicutt/hitlog/pkg/summary"
)

// AppName heads every report.
const AppName = "Apache / Web Log Analyzer"

// Report is the complete output of one analysis run.
type Report struct {
	// Title is the report heading, normally AppName.
	Title string `json:"title"`

	// SourceFile is the base name of the analyzed file.
	SourceFile string `json:"source_file"`

	// Summary holds the counters and ranked tables.
	Summary *summary.Report `json:"summary"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// Source is the full path that was analyzed.
	Source string `json:"source"`

	// Workers is the number of aggregation workers used.
	Workers int `json:"workers"`

	// AnalyzedAt is when the analysis finished.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration_ns"`
}

// NewReport creates a Report from analysis results.
func NewReport(result *analyzer.AnalysisResult, top summary.TopN, opts ...summary.Option) *Report {
	return &Report{
		Title:      AppName,
		SourceFile: filepath.Base(result.Metadata.Source),
		Summary:    summary.Render(result.State, top, opts...),
		Metadata: Metadata{
			Source:     result.Metadata.Source,
			Workers:    result.Metadata.Workers,
			AnalyzedAt: result.Metadata.EndTime,
			Duration:   result.Metadata.Duration(),
		},
	}
}
