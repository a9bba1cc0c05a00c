package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ccollicutt/hitlog/pkg/summary"
)

const (
	ruleWidth = 60
	barGlyph  = "█"
	noData    = "(no data)"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Extension returns the saved report extension.
func (f *TextFormatter) Extension() string {
	return ".txt"
}

// Format renders the report as text. Lines are separated by "\n" and the
// last line carries no terminator.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	_, err := io.WriteString(w, strings.Join(f.lines(report), "\n"))
	return err
}

func (f *TextFormatter) lines(report *Report) []string {
	s := report.Summary

	title := report.Title
	if title == "" {
		title = AppName
	}

	lines := []string{
		title + " - Analysis Report",
		strings.Repeat("=", ruleWidth),
		"Source File : " + report.SourceFile,
		fmt.Sprintf("Total Lines : %d", s.Total),
		fmt.Sprintf("Parsed      : %d", s.Parsed),
		fmt.Sprintf("Unparsed    : %d", s.Unparsed),
		"Bytes Sent  : " + s.BytesHuman,
		"",
		"== Status Codes ==",
		barChart(s.Status, s.BarWidth),
		"",
		"== HTTP Methods ==",
		barChart(s.Methods, s.BarWidth),
		"",
		fmt.Sprintf("== Top %d IP Addresses ==", heading(s.Top.Addresses, len(s.Addresses))),
	}
	for _, row := range s.Addresses {
		lines = append(lines, fmt.Sprintf("%16s : %d", row.Key, row.Count))
	}

	lines = append(lines, "", fmt.Sprintf("== Top %d Requested Paths ==", heading(s.Top.Paths, len(s.Paths))))
	for _, row := range s.Paths {
		lines = append(lines, fmt.Sprintf("%6d  %s", row.Count, row.Key))
	}

	if f.opts.Verbose {
		lines = append(lines, "", "== Detected Formats ==", barChart(s.Formats, s.BarWidth))
		lines = append(lines, "", fmt.Sprintf("Duration    : %s", report.Metadata.Duration.Round(1e6)))
	}

	return lines
}

// barChart renders one "%8s | %-Ns %d (%.1f%%)" line per row.
func barChart(rows []summary.Row, width int) string {
	if len(rows) == 0 {
		return noData
	}
	if width <= 0 {
		width = summary.BarWidth
	}

	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, fmt.Sprintf("%8s | %-*s %d (%.1f%%)",
			row.Key, width, strings.Repeat(barGlyph, row.Bar), row.Count, row.Fraction*100))
	}
	return strings.Join(out, "\n")
}

// heading returns the number shown in a "Top N" heading: the configured
// limit, or the row count when the table was not limited.
func heading(limit, rows int) int {
	if limit > 0 {
		return limit
	}
	return rows
}
