package analyzer

import (
	"context"
	"io"
	"sync"

	"github.com/ccollicutt/hitlog/pkg/parser"
)

// batch is a contiguous run of lines tagged with its position in the stream.
type batch struct {
	seq   int
	lines []string
}

// partial is the aggregation of one batch.
type partial struct {
	seq int
	agg *Aggregator
}

// analyzeParallel cuts the stream into batches, aggregates them on
// a.workers goroutines and merges the partial results strictly in stream
// order. Merging in order keeps first-seen ordering identical to a
// sequential pass, so ranked output does not depend on scheduling.
func (a *Analyzer) analyzeParallel(ctx context.Context, source parser.LogSource, meta *AnalysisMetadata) (*State, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches := make(chan batch, a.workers)
	partials := make(chan partial, a.workers)

	var wg sync.WaitGroup
	for w := 0; w < a.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range batches {
				agg := NewAggregator(a.classifier)
				for _, line := range b.lines {
					agg.Update(line)
				}
				select {
				case partials <- partial{seq: b.seq, agg: agg}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	readErr := make(chan error, 1)
	go func() {
		defer close(batches)
		readErr <- a.readBatches(ctx, source, batches, meta)
	}()

	go func() {
		wg.Wait()
		close(partials)
	}()

	total := NewAggregator(a.classifier)
	pending := make(map[int]*Aggregator)
	next := 0
	for p := range partials {
		pending[p.seq] = p.agg
		for {
			agg, ok := pending[next]
			if !ok {
				break
			}
			total.Merge(agg)
			delete(pending, next)
			next++
		}
	}

	if err := <-readErr; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return total.State(), nil
}

// readBatches reads source into batches of a.batchSize lines.
func (a *Analyzer) readBatches(ctx context.Context, source parser.LogSource, out chan<- batch, meta *AnalysisMetadata) error {
	seq := 0
	var read int64
	buf := make([]string, 0, a.batchSize)

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		select {
		case out <- batch{seq: seq, lines: buf}:
		case <-ctx.Done():
			return ctx.Err()
		}
		seq++
		buf = make([]string, 0, a.batchSize)
		return nil
	}

	for {
		line, err := source.Next(ctx)
		if err == io.EOF {
			return flush()
		}
		if err != nil {
			return err
		}

		if meta.Source == "" {
			meta.Source = line.Source
		}

		buf = append(buf, line.Content)
		read++
		a.progress(read)

		if len(buf) >= a.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
}
