package table

import (
	"strings"
	"time"
)

// TimeLayout is the layout timestamps are written with.
const TimeLayout = time.RFC3339Nano

// timeLayouts are tried in order when reading. They cover files written by
// this module, pandas-style timestamps, plain dates and the date formats
// spreadsheet exports produce.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/06 15:04",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"01-02-06 15:04",
	"2/1/2006 15:04",
}

// ParseTime reads s with the first layout that accepts it.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Time reads the value as a timestamp. Null and unparseable cells report
// false.
func (v Value) Time() (time.Time, bool) {
	if v.kind != KindString {
		return time.Time{}, false
	}
	return ParseTime(v.str)
}

// FormatTime renders t with TimeLayout; the zero time renders as "".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}
