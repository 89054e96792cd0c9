package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/cisec/logsift/internal/record"
)

// ResolveTime combines a caller-supplied year with a record's raw month, day
// and time components. The timezone abbreviation is not applied; it stays a
// separate attribute. Returns false when the components do not form a valid
// date, which is a per-record condition, never fatal.
func ResolveTime(r record.Record, year int) (time.Time, bool) {
	if year == 0 || r.Month == "" || r.Day == "" || r.Time == "" {
		return time.Time{}, false
	}
	// The layout accepts an optional fractional second after the seconds
	// field when parsing.
	t, err := time.Parse("2006 Jan 2 15:04:05",
		fmt.Sprintf("%d %s %s %s", year, r.Month, r.Day, r.Time))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ResolveTimeString resolves the record's datetime and formats it with the
// same fractional-second precision the raw time component carried, e.g.
// "2025-09-18T08:00:01.001".
func ResolveTimeString(r record.Record, year int) (string, bool) {
	t, ok := ResolveTime(r, year)
	if !ok {
		return "", false
	}
	layout := "2006-01-02T15:04:05"
	if i := strings.IndexByte(r.Time, '.'); i >= 0 {
		layout += "." + strings.Repeat("0", len(r.Time)-i-1)
	}
	return t.Format(layout), true
}
