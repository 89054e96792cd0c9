// Package record defines the normalized log record model produced by the
// classification pipeline.
package record

// EventUnclassified is the event type assigned when no extractor matched the
// message tail, or when the envelope itself could not be parsed.
const EventUnclassified = "unclassified"

// Event is one classified occurrence extracted from a message tail. Each
// event type is a concrete struct; Fields flattens it to string key/value
// pairs for the serialization boundary (CSV columns, JSON keys).
type Event interface {
	// Type returns the normalized event type, e.g. "link_state".
	Type() string

	// Fields returns the event-specific fields as a flat string map.
	// Keys never collide with envelope attribute names.
	Fields() map[string]string
}

// Record is one classified log line. Records are immutable after assembly:
// the filter engine selects, the summary and export engines read.
type Record struct {
	// Sequence is the leading "N:" counter. Nil on platforms that do not
	// emit one and on unparseable lines.
	Sequence *int

	// Raw timestamp components as printed. No semantic date is constructed
	// unless the caller supplies a year at export time.
	Month    string
	Day      string
	Time     string
	Timezone string

	Facility string

	// Severity is 0-7, nil when the envelope did not parse.
	Severity *int

	Mnemonic string

	// Message is the remainder of the line after the %FAC-N-MNEM: marker,
	// or the full original line when the envelope did not parse.
	Message string

	// EventType is assigned by the first matching extractor, or
	// EventUnclassified.
	EventType string

	// Event holds the typed extractor output; nil for unclassified records.
	Event Event
}

// severityNames maps severity 0-7 to its syslog name.
var severityNames = [8]string{
	"EMERGENCY",
	"ALERT",
	"CRITICAL",
	"ERROR",
	"WARNING",
	"NOTICE",
	"INFORMATIONAL",
	"DEBUG",
}

// SeverityName returns the name for a severity level 0-7, or "" outside
// that range.
func SeverityName(severity int) string {
	if severity < 0 || severity >= len(severityNames) {
		return ""
	}
	return severityNames[severity]
}

// SeverityName returns the record's severity name, or "" when the envelope
// did not parse.
func (r Record) SeverityName() string {
	if r.Severity == nil {
		return ""
	}
	return SeverityName(*r.Severity)
}

// Field returns the named event field and whether it is present. Records
// without a matched event have no fields.
func (r Record) Field(name string) (string, bool) {
	if r.Event == nil {
		return "", false
	}
	v, ok := r.Event.Fields()[name]
	return v, ok
}
