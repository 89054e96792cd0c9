// Package filter selects records by a conjunction of independent criteria.
package filter

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/cisec/logsift/internal/record"
)

// Spec is a set of zero or more criteria combined by logical AND. An empty
// Spec passes every record. Set-valued criteria match as provided, with no
// case folding.
type Spec struct {
	Facilities []string `yaml:"facilities" json:"facilities,omitempty"`
	Mnemonics  []string `yaml:"mnemonics" json:"mnemonics,omitempty"`
	EventTypes []string `yaml:"event_types" json:"event_types,omitempty"`
	Severities []int    `yaml:"severities" json:"severities,omitempty"`
	Interfaces []string `yaml:"interfaces" json:"interfaces,omitempty"`
	Users      []string `yaml:"users" json:"users,omitempty"`

	// Field and Pattern form the regex criterion: Pattern is matched
	// against the named attribute or event field. A record without that
	// field is excluded, not an error.
	Field   string `yaml:"field" json:"field,omitempty"`
	Pattern string `yaml:"pattern" json:"pattern,omitempty"`
}

// Filter is a compiled Spec. Compilation validates the criteria up front so
// malformed input is reported before any record is processed.
type Filter struct {
	facilities map[string]struct{}
	mnemonics  map[string]struct{}
	eventTypes map[string]struct{}
	severities map[int]struct{}
	interfaces map[string]struct{}
	users      map[string]struct{}
	field      string
	pattern    *regexp.Regexp
}

// Compile validates the spec and builds a Filter.
func (s Spec) Compile() (*Filter, error) {
	f := &Filter{
		facilities: toSet(s.Facilities),
		mnemonics:  toSet(s.Mnemonics),
		eventTypes: toSet(s.EventTypes),
		interfaces: toSet(s.Interfaces),
		users:      toSet(s.Users),
		field:      s.Field,
	}

	if len(s.Severities) > 0 {
		f.severities = make(map[int]struct{}, len(s.Severities))
		for _, sev := range s.Severities {
			if sev < 0 || sev > 7 {
				return nil, fmt.Errorf("severity %d out of range 0-7", sev)
			}
			f.severities[sev] = struct{}{}
		}
	}

	if s.Pattern != "" && s.Field == "" {
		return nil, fmt.Errorf("pattern criterion requires a field name")
	}
	if s.Field != "" {
		if s.Pattern == "" {
			return nil, fmt.Errorf("field criterion requires a pattern")
		}
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling field pattern: %w", err)
		}
		f.pattern = re
	}

	return f, nil
}

// Match reports whether the record satisfies every criterion.
func (f *Filter) Match(r record.Record) bool {
	if f.facilities != nil {
		if _, ok := f.facilities[r.Facility]; !ok {
			return false
		}
	}
	if f.mnemonics != nil {
		if _, ok := f.mnemonics[r.Mnemonic]; !ok {
			return false
		}
	}
	if f.eventTypes != nil {
		if _, ok := f.eventTypes[r.EventType]; !ok {
			return false
		}
	}
	if f.severities != nil {
		if r.Severity == nil {
			return false
		}
		if _, ok := f.severities[*r.Severity]; !ok {
			return false
		}
	}
	if f.interfaces != nil {
		iface, ok := r.Field("interface")
		if !ok {
			return false
		}
		if _, ok := f.interfaces[iface]; !ok {
			return false
		}
	}
	if f.users != nil {
		user, ok := r.Field("user")
		if !ok {
			return false
		}
		if _, ok := f.users[user]; !ok {
			return false
		}
	}
	if f.pattern != nil {
		v, ok := Value(r, f.field)
		if !ok {
			return false
		}
		if !f.pattern.MatchString(v) {
			return false
		}
	}
	return true
}

// Apply returns the order-preserved subsequence of records matching the
// filter. Records are never mutated.
func (f *Filter) Apply(records []record.Record) []record.Record {
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Value resolves an attribute name against a record for the regex criterion.
// Envelope attributes are addressed by name; event fields by bare name or
// with the export "f_" prefix.
func Value(r record.Record, name string) (string, bool) {
	switch name {
	case "message":
		return r.Message, true
	case "seq":
		if r.Sequence == nil {
			return "", false
		}
		return strconv.Itoa(*r.Sequence), true
	case "severity":
		if r.Severity == nil {
			return "", false
		}
		return strconv.Itoa(*r.Severity), true
	case "facility":
		return r.Facility, r.Facility != ""
	case "mnemonic":
		return r.Mnemonic, r.Mnemonic != ""
	case "event_type":
		return r.EventType, true
	case "severity_name":
		n := r.SeverityName()
		return n, n != ""
	case "month":
		return r.Month, r.Month != ""
	case "day":
		return r.Day, r.Day != ""
	case "time":
		return r.Time, r.Time != ""
	case "tz":
		return r.Timezone, r.Timezone != ""
	}
	if len(name) > 2 && name[:2] == "f_" {
		return r.Field(name[2:])
	}
	return r.Field(name)
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
