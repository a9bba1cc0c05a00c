package analyzer

import (
	"github.com/ccollicutt/hitlog/pkg/parser"
)

// Aggregator owns the State of one run and updates it line by line.
// It is not safe for concurrent use; parallel runs give each worker its
// own Aggregator and merge the results.
type Aggregator struct {
	classifier *parser.Classifier
	state      *State
}

// NewAggregator creates an Aggregator. A nil classifier uses the default
// formats.
func NewAggregator(classifier *parser.Classifier) *Aggregator {
	if classifier == nil {
		classifier = parser.NewClassifier()
	}
	return &Aggregator{
		classifier: classifier,
		state:      NewState(),
	}
}

// Update classifies one line and folds it into the state.
// Returns true when the line matched a known format.
func (a *Aggregator) Update(line string) bool {
	a.state.Total++

	m, ok := a.classifier.Classify(line)
	if !ok {
		a.state.Unparsed++
		return false
	}

	a.record(parser.Normalize(m))
	return true
}

// record folds a normalized record into the state.
func (a *Aggregator) record(rec parser.Record) {
	s := a.state
	s.Parsed++
	s.Status.Inc(rec.Status)
	s.Methods.Inc(rec.Method)
	s.Addresses.Inc(rec.Addr)
	s.Paths.Inc(rec.Path)
	s.Formats.Inc(rec.Format)
	s.Bytes += rec.Size
}

// Merge folds other's state into a.
func (a *Aggregator) Merge(other *Aggregator) {
	a.state.Merge(other.state)
}

// State returns the live state. Callers must not modify it.
func (a *Aggregator) State() *State {
	return a.state
}
