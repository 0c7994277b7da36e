package chrono

import (
	"strconv"
	"strings"
	"time"
)

// timestampLayouts lists the string layouts the external feeds are known to
// produce, most specific first. Layouts without a zone are interpreted in
// local time, matching how the upstream feed records them.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseString parses a date-like string. The second return value reports
// whether parsing succeeded; an unparsable value degrades to absent rather
// than becoming an error, so a single bad record never fails a batch.
func ParseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if strings.Contains(layout, "Z07:00") {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}

	// Epoch seconds or milliseconds as a string.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromEpoch(n), true
	}

	return time.Time{}, false
}

// Parse accepts the timestamp shapes a JSON feed can carry: RFC3339-ish
// strings, epoch numbers (seconds or milliseconds), or an already-parsed
// time.Time.
func Parse(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false
		}
		return v, true
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return *v, true
	case string:
		return ParseString(v)
	case float64:
		return fromEpoch(int64(v)), true
	case int64:
		return fromEpoch(v), true
	case int:
		return fromEpoch(int64(v)), true
	default:
		return time.Time{}, false
	}
}

// fromEpoch interprets n as epoch milliseconds when it is too large to be a
// plausible epoch-seconds value.
func fromEpoch(n int64) time.Time {
	// Anything above ~year 5000 in seconds is really milliseconds.
	const millisCutoff = 100_000_000_000
	if n >= millisCutoff {
		return time.UnixMilli(n)
	}
	return time.Unix(n, 0)
}
