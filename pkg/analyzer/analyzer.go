package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ccollicutt/hitlog/pkg/parser"
)

// Defaults for analyzer options.
const (
	DefaultProgressInterval = 200000
	DefaultBatchSize        = 4096
)

// ErrCanceled is returned when a run is aborted through its context.
var ErrCanceled = errors.New("analysis canceled")

// namer is implemented by sources that can name themselves before the
// first line is read.
type namer interface {
	Name() string
}

// ProgressFunc receives the number of lines read so far.
type ProgressFunc func(lines int64)

// Analyzer drives a LogSource through an Aggregator.
type Analyzer struct {
	classifier *parser.Classifier

	// Options
	workers          int
	batchSize        int
	progressInterval int64
	onProgress       ProgressFunc
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithClassifier replaces the default classifier.
func WithClassifier(c *parser.Classifier) AnalyzerOption {
	return func(a *Analyzer) {
		if c != nil {
			a.classifier = c
		}
	}
}

// WithWorkers sets the number of aggregation workers. Values above 1
// switch to chunked parallel aggregation.
func WithWorkers(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithBatchSize sets how many lines each parallel batch holds.
func WithBatchSize(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.batchSize = n
		}
	}
}

// WithProgress calls fn every interval lines. An interval of 0 disables
// progress reporting.
func WithProgress(interval int64, fn ProgressFunc) AnalyzerOption {
	return func(a *Analyzer) {
		a.progressInterval = interval
		a.onProgress = fn
	}
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		classifier:       parser.NewClassifier(),
		workers:          1,
		batchSize:        DefaultBatchSize,
		progressInterval: DefaultProgressInterval,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// AnalysisResult contains the complete analysis output.
type AnalysisResult struct {
	// State is the final aggregation state. Read-only.
	State *State

	// Metadata provides context about the analysis.
	Metadata AnalysisMetadata
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	// Source is the path of the analyzed file, taken from the lines read.
	Source string

	// Workers is the number of aggregation workers used.
	Workers int

	// StartTime is when analysis began.
	StartTime time.Time

	// EndTime is when analysis completed.
	EndTime time.Time
}

// Duration returns how long the run took.
func (m AnalysisMetadata) Duration() time.Duration {
	return m.EndTime.Sub(m.StartTime)
}

// Analyze reads source to exhaustion and returns the aggregated state.
// Malformed lines never fail the run; only read errors and cancellation do.
func (a *Analyzer) Analyze(ctx context.Context, source parser.LogSource) (*AnalysisResult, error) {
	result := &AnalysisResult{
		Metadata: AnalysisMetadata{
			Workers:   a.workers,
			StartTime: time.Now(),
		},
	}

	var (
		state *State
		err   error
	)
	if a.workers > 1 {
		state, err = a.analyzeParallel(ctx, source, &result.Metadata)
	} else {
		state, err = a.analyzeSequential(ctx, source, &result.Metadata)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
		}
		return nil, fmt.Errorf("reading log source: %w", err)
	}

	if result.Metadata.Source == "" {
		if n, ok := source.(namer); ok {
			result.Metadata.Source = n.Name()
		}
	}

	result.State = state
	result.Metadata.EndTime = time.Now()

	return result, nil
}

func (a *Analyzer) analyzeSequential(ctx context.Context, source parser.LogSource, meta *AnalysisMetadata) (*State, error) {
	agg := NewAggregator(a.classifier)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if meta.Source == "" {
			meta.Source = line.Source
		}

		agg.Update(line.Content)
		a.progress(agg.State().Total)
	}

	return agg.State(), nil
}

func (a *Analyzer) progress(lines int64) {
	if a.onProgress == nil || a.progressInterval <= 0 {
		return
	}
	if lines%a.progressInterval == 0 {
		a.onProgress(lines)
	}
}
