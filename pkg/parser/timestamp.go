package parser

import (
	"time"
)

// TimestampLayout is the access-log time layout, e.g. 10/Oct/2000:13:55:36 -0700.
const TimestampLayout = "02/Jan/2006:15:04:05 -0700"

// Some servers do not zero-pad the day.
var timestampLayouts = []string{
	TimestampLayout,
	"2/Jan/2006:15:04:05 -0700",
}

// ParseTimestamp parses a bracketed access-log timestamp (without brackets).
// Returns false when the value does not fit the layout; callers keep the
// record regardless.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
