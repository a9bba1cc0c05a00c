// Package parser classifies access-log lines and reads them from plain or
// gzip-compressed files.
package parser

import "time"

// LogLine is one raw input line.
type LogLine struct {
	// Content is the line text with the trailing newline removed and
	// invalid UTF-8 replaced.
	Content string

	// Source is the file path this line came from.
	Source string

	// LineNum is the 1-based line number in the source file.
	LineNum int
}

// Fields holds the raw captures of a line that matched a format.
// Captures that did not participate in the match are empty.
type Fields struct {
	VHost    string
	Addr     string
	Time     string
	Method   string
	Path     string
	Protocol string
	Status   string
	Size     string
	Referrer string
	Agent    string
}

// Match is the result of a successful classification.
type Match struct {
	// Format is the pattern that matched.
	Format *Format

	// Fields are the named captures of that pattern.
	Fields Fields
}

// Placeholder replaces absent keys so every parsed record contributes
// exactly one entry per frequency table.
const Placeholder = "-"

// Record is a normalized, typed view of a matched line.
type Record struct {
	// Format is the name of the format that matched.
	Format string

	VHost string

	// Addr is the client address, used verbatim.
	Addr string

	// Time is the request timestamp. Only meaningful when TimeValid is set.
	Time      time.Time
	TimeValid bool

	Method   string
	Path     string
	Protocol string

	// Status is the status token, possibly "-".
	Status string

	// Size is the response size in bytes, 0 when malformed.
	Size int64

	Referrer string
	Agent    string
}
