// Package summary turns aggregation state into ranked, presentation-ready
// views. It holds no styling; formatters in pkg/output decide the layout.
package summary

import (
	"math"
	"sort"

	"github.com/ccollicutt/hitlog/pkg/analyzer"
)

// BarWidth is the default width of a full-scale bar.
const BarWidth = 30

// TopN limits how many rows each ranked table keeps.
// A non-positive limit keeps every row.
type TopN struct {
	Status    int `json:"status" yaml:"status"`
	Methods   int `json:"methods" yaml:"methods"`
	Addresses int `json:"addresses" yaml:"addresses"`
	Paths     int `json:"paths" yaml:"paths"`
}

// DefaultTopN returns the standard report limits.
func DefaultTopN() TopN {
	return TopN{
		Status:    20,
		Methods:   10,
		Addresses: 20,
		Paths:     20,
	}
}

// Row is one ranked table entry.
type Row struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`

	// Fraction is Count over the table total, 0 for an empty table.
	Fraction float64 `json:"fraction"`

	// Bar is floor(Fraction * bar width).
	Bar int `json:"bar"`
}

// Report is the ranked summary of one run. It is built once by Render and
// never modified.
type Report struct {
	Total      int64  `json:"total_lines"`
	Parsed     int64  `json:"parsed"`
	Unparsed   int64  `json:"unparsed"`
	Bytes      int64  `json:"bytes"`
	BytesHuman string `json:"bytes_human"`

	Status    []Row `json:"status_codes"`
	Methods   []Row `json:"methods"`
	Addresses []Row `json:"addresses"`
	Paths     []Row `json:"paths"`

	// Formats lists every matched format, unlimited.
	Formats []Row `json:"formats,omitempty"`

	// Top records the limits the tables were cut to.
	Top TopN `json:"top"`

	// BarWidth is the width used for Bar values.
	BarWidth int `json:"bar_width"`
}

// Option configures Render.
type Option func(*renderer)

type renderer struct {
	barWidth int
}

// WithBarWidth overrides BarWidth.
func WithBarWidth(width int) Option {
	return func(r *renderer) {
		if width > 0 {
			r.barWidth = width
		}
	}
}

// Render ranks every table of state and keeps the top entries per limit.
// Ties keep the order in which keys were first seen.
func Render(state *analyzer.State, top TopN, opts ...Option) *Report {
	r := &renderer{barWidth: BarWidth}
	for _, opt := range opts {
		opt(r)
	}

	return &Report{
		Total:      state.Total,
		Parsed:     state.Parsed,
		Unparsed:   state.Unparsed,
		Bytes:      state.Bytes,
		BytesHuman: FormatBytes(state.Bytes),
		Status:     r.rank(state.Status, top.Status),
		Methods:    r.rank(state.Methods, top.Methods),
		Addresses:  r.rank(state.Addresses, top.Addresses),
		Paths:      r.rank(state.Paths, top.Paths),
		Formats:    r.rank(state.Formats, 0),
		Top:        top,
		BarWidth:   r.barWidth,
	}
}

func (r *renderer) rank(table *analyzer.FrequencyTable, limit int) []Row {
	entries := table.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	total := table.Total()
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		var frac float64
		if total > 0 {
			frac = float64(e.Count) / float64(total)
		}
		rows = append(rows, Row{
			Key:      e.Key,
			Count:    e.Count,
			Fraction: frac,
			Bar:      int(math.Floor(frac * float64(r.barWidth))),
		})
	}
	return rows
}
