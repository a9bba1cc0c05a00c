package parser

import "regexp"

// Format is one access-log line shape the classifier knows.
type Format struct {
	Name       string         // Stable identifier (combined, common_vhost, ...)
	Title      string         // Human-readable name
	PatternStr string         // Pattern source, for detect output
	Pattern    *regexp.Regexp // Compiled pattern
	Example    string         // Example line
}

// Building blocks shared by every format. The request line tolerates a
// missing method and protocol, status may be "-", and size is any token.
const (
	commonBody = `(?P<ip>\S+)\s+\S+\s+\S+\s+\[(?P<time>[^\]]+)\]\s+` +
		`"(?P<method>\S+)?\s*(?P<path>[^"]*?)\s*(?P<protocol>HTTP/\d\.\d)?"\s+` +
		`(?P<status>\d{3}|-)\s+(?P<size>\S+)`
	combinedTail = `\s+"(?P<referrer>[^"]*)"\s+"(?P<agent>[^"]*)"`
	vhostPrefix  = `(?P<vhost>\S+)\s+`
)

// DefaultFormats returns the built-in formats in the order they are tried.
//
// Virtual-host variants come first. A vhost line carries four tokens before
// the bracketed timestamp and the plain patterns require exactly three, so
// a line can only ever match one family; trying vhost first keeps the
// hostname out of the client address field. Within a family combined comes
// before common because every combined line also satisfies common.
func DefaultFormats() []*Format {
	formats := []*Format{
		{
			Name:       "combined_vhost",
			Title:      "Combined with virtual host",
			PatternStr: `^` + vhostPrefix + commonBody + combinedTail,
			Example:    `example.com 127.0.0.1 - - [10/Oct/2000:13:55:36 -0700] "GET /index.html HTTP/1.1" 200 2326 "-" "curl/8.0"`,
		},
		{
			Name:       "common_vhost",
			Title:      "Common with virtual host",
			PatternStr: `^` + vhostPrefix + commonBody,
			Example:    `example.com 127.0.0.1 - - [10/Oct/2000:13:55:36 -0700] "GET /index.html HTTP/1.1" 200 2326`,
		},
		{
			Name:       "combined",
			Title:      "Combined (Apache/Nginx)",
			PatternStr: `^` + commonBody + combinedTail,
			Example:    `127.0.0.1 - - [10/Oct/2000:13:55:36 -0700] "GET /index.html HTTP/1.1" 200 2326 "-" "curl/8.0"`,
		},
		{
			Name:       "common",
			Title:      "Common Log Format",
			PatternStr: `^` + commonBody,
			Example:    `127.0.0.1 - frank [10/Oct/2000:13:55:36 -0700] "GET /apache_pb.gif HTTP/1.0" 200 2326`,
		},
	}

	for _, f := range formats {
		f.Pattern = regexp.MustCompile(f.PatternStr)
	}

	return formats
}

// Classifier matches lines against an ordered list of formats.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	formats []*Format
	groups  []groupIndex
}

// groupIndex caches submatch positions for one format; -1 means the
// format has no such group.
type groupIndex struct {
	vhost, ip, time, method, path, protocol, status, size, referrer, agent int
}

// NewClassifier creates a classifier over the default formats.
func NewClassifier() *Classifier {
	return NewClassifierWithFormats(DefaultFormats())
}

// NewClassifierWithFormats creates a classifier that tries formats in the
// given order.
func NewClassifierWithFormats(formats []*Format) *Classifier {
	c := &Classifier{
		formats: formats,
		groups:  make([]groupIndex, len(formats)),
	}
	for i, f := range formats {
		re := f.Pattern
		c.groups[i] = groupIndex{
			vhost:    re.SubexpIndex("vhost"),
			ip:       re.SubexpIndex("ip"),
			time:     re.SubexpIndex("time"),
			method:   re.SubexpIndex("method"),
			path:     re.SubexpIndex("path"),
			protocol: re.SubexpIndex("protocol"),
			status:   re.SubexpIndex("status"),
			size:     re.SubexpIndex("size"),
			referrer: re.SubexpIndex("referrer"),
			agent:    re.SubexpIndex("agent"),
		}
	}
	return c
}

// Formats returns the formats in the order they are tried.
func (c *Classifier) Formats() []*Format {
	return c.formats
}

// Classify returns the captures of the first format that matches line.
// The second return value is false when no format matches; no partial
// extraction is attempted in that case.
func (c *Classifier) Classify(line string) (Match, bool) {
	for i, f := range c.formats {
		m := f.Pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		g := c.groups[i]
		return Match{
			Format: f,
			Fields: Fields{
				VHost:    capture(m, g.vhost),
				Addr:     capture(m, g.ip),
				Time:     capture(m, g.time),
				Method:   capture(m, g.method),
				Path:     capture(m, g.path),
				Protocol: capture(m, g.protocol),
				Status:   capture(m, g.status),
				Size:     capture(m, g.size),
				Referrer: capture(m, g.referrer),
				Agent:    capture(m, g.agent),
			},
		}, true
	}
	return Match{}, false
}

func capture(m []string, idx int) string {
	if idx < 0 || idx >= len(m) {
		return ""
	}
	return m[idx]
}
