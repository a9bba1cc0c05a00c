// Package analyzer aggregates classified access-log lines into frequency
// tables and counters.
package analyzer

import (
	"fmt"
)

// Entry is a key and its occurrence count.
type Entry struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// FrequencyTable maps keys to counts and remembers the order in which keys
// were first seen. Keys are never removed.
type FrequencyTable struct {
	index   map[string]int
	entries []Entry
	total   int64
}

// NewFrequencyTable creates an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{
		index: make(map[string]int),
	}
}

// Inc adds one occurrence of key.
func (t *FrequencyTable) Inc(key string) {
	t.Add(key, 1)
}

// Add adds n occurrences of key.
func (t *FrequencyTable) Add(key string, n int64) {
	if i, ok := t.index[key]; ok {
		t.entries[i].Count += n
	} else {
		t.index[key] = len(t.entries)
		t.entries = append(t.entries, Entry{Key: key, Count: n})
	}
	t.total += n
}

// Count returns the count for key, 0 if never seen.
func (t *FrequencyTable) Count(key string) int64 {
	if i, ok := t.index[key]; ok {
		return t.entries[i].Count
	}
	return 0
}

// Len returns the number of distinct keys.
func (t *FrequencyTable) Len() int {
	return len(t.entries)
}

// Total returns the sum of all counts.
func (t *FrequencyTable) Total() int64 {
	return t.total
}

// Entries returns a copy of all entries in first-seen order.
func (t *FrequencyTable) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Map returns the counts as a plain map.
func (t *FrequencyTable) Map() map[string]int64 {
	out := make(map[string]int64, len(t.entries))
	for _, e := range t.entries {
		out[e.Key] = e.Count
	}
	return out
}

// Merge adds every count of other into t. Keys new to t are appended in
// other's first-seen order.
func (t *FrequencyTable) Merge(other *FrequencyTable) {
	for _, e := range other.entries {
		t.Add(e.Key, e.Count)
	}
}

// State is the complete aggregation state of one analysis run.
type State struct {
	Total    int64
	Parsed   int64
	Unparsed int64

	// Bytes is the sum of response sizes of parsed lines.
	Bytes int64

	Status    *FrequencyTable
	Methods   *FrequencyTable
	Addresses *FrequencyTable
	Paths     *FrequencyTable

	// Formats counts parsed lines per matched format name.
	Formats *FrequencyTable
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		Status:    NewFrequencyTable(),
		Methods:   NewFrequencyTable(),
		Addresses: NewFrequencyTable(),
		Paths:     NewFrequencyTable(),
		Formats:   NewFrequencyTable(),
	}
}

// Merge adds other into s. Counts combine by addition, so merging is
// associative and commutative on counts.
func (s *State) Merge(other *State) {
	s.Total += other.Total
	s.Parsed += other.Parsed
	s.Unparsed += other.Unparsed
	s.Bytes += other.Bytes

	s.Status.Merge(other.Status)
	s.Methods.Merge(other.Methods)
	s.Addresses.Merge(other.Addresses)
	s.Paths.Merge(other.Paths)
	s.Formats.Merge(other.Formats)
}

// Check verifies the counter invariants: total == parsed + unparsed and
// every table sums to parsed.
func (s *State) Check() error {
	if s.Total != s.Parsed+s.Unparsed {
		return fmt.Errorf("total %d != parsed %d + unparsed %d", s.Total, s.Parsed, s.Unparsed)
	}

	tables := []struct {
		name  string
		table *FrequencyTable
	}{
		{"status", s.Status},
		{"methods", s.Methods},
		{"addresses", s.Addresses},
		{"paths", s.Paths},
		{"formats", s.Formats},
	}
	for _, tt := range tables {
		if tt.table.Total() != s.Parsed {
			return fmt.Errorf("%s table sums to %d, want %d", tt.name, tt.table.Total(), s.Parsed)
		}
	}

	return nil
}
