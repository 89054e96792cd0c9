// Package envelope parses the structured prefix of Cisco-style syslog lines.
package envelope

import (
	"regexp"
	"strconv"
)

// Envelope holds the parsed line prefix preceding the free-text message.
type Envelope struct {
	// Sequence is the leading "N:" counter; nil when the line carries none.
	Sequence *int

	Month    string
	Day      string
	Time     string
	Timezone string

	Facility string
	Severity int
	Mnemonic string

	// Message is everything after the %FACILITY-SEVERITY-MNEMONIC: marker.
	Message string
}

// Parser parses Cisco envelope prefixes of the form
//
//	[<seq>: ]<Mon> <D> <HH:MM:SS.mmm> <TZ>: %<FACILITY>-<0-7>-<MNEMONIC>: <message>
//
// Parsing is all-or-nothing: any deviation from the grammar is a non-match
// for the whole envelope, never a partial one.
type Parser struct {
	prefix *regexp.Regexp
}

// NewParser creates an envelope parser.
func NewParser() *Parser {
	return &Parser{
		// e.g. "1: Sep 18 08:00:01.001 CDT: %LINEPROTO-5-UPDOWN: <message>"
		prefix: regexp.MustCompile(
			`^\s*(?:(?P<seq>\d+):\s+)?` +
				`(?P<month>Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+` +
				`(?P<day>\d{1,2})\s+` +
				`(?P<time>\d{2}:\d{2}:\d{2}(?:\.\d{1,6})?)\s+` +
				`(?P<tz>[A-Z]{2,5})\s*:\s*` +
				`%(?P<facility>[A-Z0-9_]+)-(?P<severity>\d)-(?P<mnemonic>[A-Z0-9_]+):\s*` +
				`(?P<message>.*)$`),
	}
}

// Parse parses one raw line. The second return value is false when the line
// does not match the envelope grammar, including severities outside 0-7.
func (p *Parser) Parse(line string) (*Envelope, bool) {
	m := p.prefix.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	env := &Envelope{}
	for i, name := range p.prefix.SubexpNames() {
		switch name {
		case "seq":
			if m[i] != "" {
				n, err := strconv.Atoi(m[i])
				if err != nil {
					return nil, false
				}
				env.Sequence = &n
			}
		case "month":
			env.Month = m[i]
		case "day":
			env.Day = m[i]
		case "time":
			env.Time = m[i]
		case "tz":
			env.Timezone = m[i]
		case "facility":
			env.Facility = m[i]
		case "severity":
			sev, err := strconv.Atoi(m[i])
			if err != nil || sev < 0 || sev > 7 {
				return nil, false
			}
			env.Severity = sev
		case "mnemonic":
			env.Mnemonic = m[i]
		case "message":
			env.Message = m[i]
		}
	}
	return env, true
}
