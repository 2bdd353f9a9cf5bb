package core

import (
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// knownLayouts are tried before falling back to format detection.
var knownLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	http.TimeFormat,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
}

// ParseTime parses a date-time string leniently. Common wire formats
// (RFC 3339, HTTP-date and its legacy variants) are matched exactly first;
// anything else goes through dateparse's format detection.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, NewDateParseError(s, nil)
	}

	for _, layout := range knownLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, NewDateParseError(s, err)
	}
	return t, nil
}

// FormatHTTPDate formats t as an HTTP-date (RFC 7231 IMF-fixdate, always GMT).
func FormatHTTPDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}
