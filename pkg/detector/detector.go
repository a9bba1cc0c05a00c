// Package detector samples a log file and reports which access-log formats
// its lines match.
package detector

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ccollicutt/hitlog/pkg/parser"
)

// DefaultSampleSize is the number of lines sampled unless overridden.
const DefaultSampleSize = 100

// DetectionResult holds the result of analyzing a log file.
type DetectionResult struct {
	Matches       []FormatMatch // Formats that matched, sorted by confidence descending
	SampledLines  int           // Number of lines sampled
	ParsedLines   int           // Number of lines any format matched
	UnparsedLines int           // Number of lines no format matched
	UnparsedLine  string        // Example line no format matched
	TimestampNote string        // Warning when matched lines carry unparseable timestamps
}

// FormatMatch represents a format that matched with its confidence score.
type FormatMatch struct {
	Format     *parser.Format
	Confidence float64   // 0.0 to 1.0 (share of sampled lines)
	MatchCount int       // Number of lines classified as this format
	BadTimes   int       // Matched lines whose timestamp did not parse
	SampleLine string    // Example line that matched
	ParsedTime time.Time // Parsed timestamp from sample
}

// Detector classifies a sample of lines from a log file.
type Detector struct {
	classifier *parser.Classifier
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithClassifier replaces the default classifier.
func WithClassifier(c *parser.Classifier) Option {
	return func(d *Detector) {
		if c != nil {
			d.classifier = c
		}
	}
}

// New creates a new Detector with default formats.
func New(opts ...Option) *Detector {
	d := &Detector{
		classifier: parser.NewClassifier(),
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples a log file (plain or gzip) and classifies it.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines classifies a slice of log lines.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{}

	type formatStats struct {
		order int
		match FormatMatch
	}
	stats := make(map[string]*formatStats)

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.SampledLines++

		m, ok := d.classifier.Classify(line)
		if !ok {
			result.UnparsedLines++
			if result.UnparsedLine == "" {
				result.UnparsedLine = line
			}
			continue
		}
		result.ParsedLines++

		s := stats[m.Format.Name]
		if s == nil {
			s = &formatStats{
				order: formatOrder(d.classifier, m.Format),
				match: FormatMatch{Format: m.Format, SampleLine: line},
			}
			s.match.ParsedTime, _ = parser.ParseTimestamp(m.Fields.Time)
			stats[m.Format.Name] = s
		}
		s.match.MatchCount++
		if _, ok := parser.ParseTimestamp(m.Fields.Time); !ok {
			s.match.BadTimes++
		}
	}

	ordered := make([]*formatStats, 0, len(stats))
	for _, s := range stats {
		s.match.Confidence = float64(s.match.MatchCount) / float64(result.SampledLines)
		ordered = append(ordered, s)
	}

	// Sort by confidence descending, then by classifier order
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].match.MatchCount != ordered[j].match.MatchCount {
			return ordered[i].match.MatchCount > ordered[j].match.MatchCount
		}
		return ordered[i].order < ordered[j].order
	})

	badTimes := 0
	for _, s := range ordered {
		result.Matches = append(result.Matches, s.match)
		badTimes += s.match.BadTimes
	}

	if badTimes > 0 {
		result.TimestampNote = "Some matched lines have timestamps that do not fit " +
			parser.TimestampLayout + "; they are still counted, but their time is ignored."
	}

	return result
}

func formatOrder(c *parser.Classifier, f *parser.Format) int {
	for i, cf := range c.Formats() {
		if cf == f {
			return i
		}
	}
	return len(c.Formats())
}

// sampleFile reads up to sampleSize non-empty lines from a file.
// Uses simple head sampling for efficiency.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	source := parser.NewFileSource(path)
	defer source.Close()

	var lines []string
	for len(lines) < d.sampleSize {
		line, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line.Content) != "" {
			lines = append(lines, line.Content)
		}
	}

	return lines, nil
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one format matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}

// UnparsedShare returns the share of sampled lines no format matched.
func (r *DetectionResult) UnparsedShare() float64 {
	if r.SampledLines == 0 {
		return 0
	}
	return float64(r.UnparsedLines) / float64(r.SampledLines)
}
