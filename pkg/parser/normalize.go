package parser

import (
	"strconv"
	"strings"
)

// Normalize converts the raw captures of a match into a Record.
// It never fails: malformed values fall back to defaults.
func Normalize(m Match) Record {
	f := m.Fields
	rec := Record{
		VHost:    f.VHost,
		Addr:     orPlaceholder(f.Addr),
		Method:   orPlaceholder(f.Method),
		Path:     NormalizePath(f.Path),
		Protocol: f.Protocol,
		Status:   orPlaceholder(f.Status),
		Size:     ParseSize(f.Size),
		Referrer: f.Referrer,
		Agent:    f.Agent,
	}
	if m.Format != nil {
		rec.Format = m.Format.Name
	}
	rec.Time, rec.TimeValid = ParseTimestamp(f.Time)
	return rec
}

// NormalizePath drops the query string. An empty result becomes the
// placeholder so it still aggregates under a single key.
func NormalizePath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return orPlaceholder(path)
}

// ParseSize parses a base-10 response size. Non-numeric and negative
// values yield 0.
func ParseSize(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
