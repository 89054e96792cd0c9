// Package export serializes record sets to CSV and JSON, losslessly with
// respect to the attributes present on each record.
package export

import (
	"sort"
	"strconv"

	"github.com/cisec/logsift/internal/record"
)

// Options configures an export.
type Options struct {
	// Year, when non-zero, resolves a full datetime per record from the
	// raw month/day/time components. Resolution failures leave the
	// record's datetime empty and never abort the export.
	Year int

	// NDJSON emits one JSON object per line instead of a single array.
	// CSV export ignores it.
	NDJSON bool
}

// envelopeColumns is the fixed leading column order shared by both formats.
var envelopeColumns = []string{
	"seq", "month", "day", "time", "tz",
	"facility", "severity", "severity_name", "mnemonic",
	"event_type", "message",
}

// Columns returns the CSV header for a record set: the envelope columns,
// datetime when a year is supplied, then every event field name that appears
// on at least one record, prefixed with "f_". Field columns appear in
// first-seen record order, alphabetical within a record.
func Columns(records []record.Record, opts Options) []string {
	cols := make([]string, 0, len(envelopeColumns)+8)
	cols = append(cols, envelopeColumns...)
	if opts.Year != 0 {
		cols = append(cols, "datetime")
	}

	seen := make(map[string]struct{})
	for _, r := range records {
		if r.Event == nil {
			continue
		}
		names := fieldNames(r.Event)
		for _, name := range names {
			col := "f_" + name
			if _, ok := seen[col]; ok {
				continue
			}
			seen[col] = struct{}{}
			cols = append(cols, col)
		}
	}
	return cols
}

// Row flattens a record into string values for CSV. Inapplicable columns are
// empty strings.
func Row(r record.Record, cols []string, opts Options) []string {
	row := make([]string, len(cols))
	for i, col := range cols {
		row[i] = value(r, col, opts)
	}
	return row
}

func value(r record.Record, col string, opts Options) string {
	switch col {
	case "seq":
		if r.Sequence == nil {
			return ""
		}
		return strconv.Itoa(*r.Sequence)
	case "month":
		return r.Month
	case "day":
		return r.Day
	case "time":
		return r.Time
	case "tz":
		return r.Timezone
	case "facility":
		return r.Facility
	case "severity":
		if r.Severity == nil {
			return ""
		}
		return strconv.Itoa(*r.Severity)
	case "severity_name":
		return r.SeverityName()
	case "mnemonic":
		return r.Mnemonic
	case "event_type":
		return r.EventType
	case "message":
		return r.Message
	case "datetime":
		if s, ok := ResolveTimeString(r, opts.Year); ok {
			return s
		}
		return ""
	}
	if len(col) > 2 && col[:2] == "f_" {
		v, _ := r.Field(col[2:])
		return v
	}
	return ""
}

// Object flattens a record into a JSON object, omitting attributes that do
// not apply: no envelope keys on unparseable lines, no field keys for other
// event types, no explicit nulls.
func Object(r record.Record, opts Options) map[string]any {
	obj := make(map[string]any, 12)
	if r.Sequence != nil {
		obj["seq"] = *r.Sequence
	}
	if r.Month != "" {
		obj["month"] = r.Month
		obj["day"] = r.Day
		obj["time"] = r.Time
		obj["tz"] = r.Timezone
	}
	if r.Facility != "" {
		obj["facility"] = r.Facility
	}
	if r.Severity != nil {
		obj["severity"] = *r.Severity
		obj["severity_name"] = r.SeverityName()
	}
	if r.Mnemonic != "" {
		obj["mnemonic"] = r.Mnemonic
	}
	obj["event_type"] = r.EventType
	obj["message"] = r.Message
	if opts.Year != 0 {
		if s, ok := ResolveTimeString(r, opts.Year); ok {
			obj["datetime"] = s
		}
	}
	if r.Event != nil {
		for name, v := range r.Event.Fields() {
			obj["f_"+name] = v
		}
	}
	return obj
}

// fieldNames returns an event's field names in sorted order.
func fieldNames(e record.Event) []string {
	fields := e.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
