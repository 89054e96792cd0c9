package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cisec/logsift/internal/record"
)

// Extractor inspects a message tail and, on match, yields a typed event.
// Extractors are pure and stateless: classification of one line never
// depends on any other line.
type Extractor interface {
	// Name returns the unique extractor name, used for registry insertion
	// anchors.
	Name() string

	// Extract returns the matched event, or (nil, false) when the message
	// does not match. A non-match is the expected steady state, not an
	// error.
	Extract(message string) (record.Event, bool)
}

// aclExtractor matches software-path ACL permit/deny lines, e.g.
// "list acl-vty-in permitted tcp 32.245.68.191(47424) -> 230.0.0.185(22), 8 packets".
type aclExtractor struct {
	re *regexp.Regexp
}

func newACLExtractor() *aclExtractor {
	return &aclExtractor{
		re: regexp.MustCompile(
			`list\s+(?P<acl>\S+)\s+(?P<action>permitted|denied)\s+` +
				`(?P<proto>\S+)\s+` +
				`(?P<src_ip>\d+\.\d+\.\d+\.\d+)\((?P<src_port>\d+)\)\s*->\s*` +
				`(?P<dst_ip>\d+\.\d+\.\d+\.\d+)\((?P<dst_port>\d+)\),\s+` +
				`(?P<packets>\d+)\s+packets?`),
	}
}

func (e *aclExtractor) Name() string { return "acl" }

func (e *aclExtractor) Extract(message string) (record.Event, bool) {
	m := match(e.re, message)
	if m == nil {
		return nil, false
	}
	return &ACLEvent{
		ACL:      m["acl"],
		Action:   m["action"],
		Protocol: m["proto"],
		SrcIP:    m["src_ip"],
		SrcPort:  m["src_port"],
		DstIP:    m["dst_ip"],
		DstPort:  m["dst_port"],
		Packets:  m["packets"],
	}, true
}

// aclHardwareExtractor matches hardware-path ACL denies with a MAC and
// ingress interface, e.g.
// "list acl-core denied 27 6c:b7:cd:85:0c:e0 186.235.35.107 GigabitEthernet3/1-> 237.0.0.189, 2 packets".
type aclHardwareExtractor struct {
	re *regexp.Regexp
}

func newACLHardwareExtractor() *aclHardwareExtractor {
	return &aclHardwareExtractor{
		re: regexp.MustCompile(
			`(?i)list\s+(?P<acl>\S+)\s+denied\s+(?P<proto_code>\d+)\s+` +
				`(?P<src_mac>[0-9a-f]{2}(?::[0-9a-f]{2}){5})\s+` +
				`(?P<src_ip>\d+\.\d+\.\d+\.\d+)\s+` +
				`(?P<ingress_if>\S+)->\s+` +
				`(?P<dst_ip>\d+\.\d+\.\d+\.\d+),\s+` +
				`(?P<packets>\d+)\s+packets`),
	}
}

func (e *aclHardwareExtractor) Name() string { return "acl_hw" }

func (e *aclHardwareExtractor) Extract(message string) (record.Event, bool) {
	m := match(e.re, message)
	if m == nil {
		return nil, false
	}
	return &ACLHardwareDenyEvent{
		ACL:              m["acl"],
		ProtocolCode:     m["proto_code"],
		SrcMAC:           m["src_mac"],
		SrcIP:            m["src_ip"],
		IngressInterface: m["ingress_if"],
		DstIP:            m["dst_ip"],
		Packets:          m["packets"],
	}, true
}

// linkStateExtractor matches LINK and LINEPROTO UPDOWN transitions.
type linkStateExtractor struct {
	link      *regexp.Regexp
	lineProto *regexp.Regexp
}

func newLinkStateExtractor() *linkStateExtractor {
	return &linkStateExtractor{
		lineProto: regexp.MustCompile(
			`Line protocol on Interface\s+(?P<interface>\S+),\s+changed state to\s+(?P<state>\w+)`),
		link: regexp.MustCompile(
			`Interface\s+(?P<interface>\S+),\s+changed state to\s+(?P<state>\w+)`),
	}
}

func (e *linkStateExtractor) Name() string { return "link_state" }

func (e *linkStateExtractor) Extract(message string) (record.Event, bool) {
	// Line protocol first: its message embeds the plain interface form.
	if m := match(e.lineProto, message); m != nil {
		return &LinkStateEvent{Interface: m["interface"], State: m["state"], LineProtocol: true}, true
	}
	if m := match(e.link, message); m != nil {
		return &LinkStateEvent{Interface: m["interface"], State: m["state"]}, true
	}
	return nil, false
}

// loginExtractor matches login success and failure audit lines.
type loginExtractor struct {
	success *regexp.Regexp
	failed  *regexp.Regexp
}

func newLoginExtractor() *loginExtractor {
	return &loginExtractor{
		success: regexp.MustCompile(
			`Login Success \[user:\s*(?P<user>.+?)\]\s*\[Source:\s*(?P<src_ip>\d+\.\d+\.\d+\.\d+)\]`),
		failed: regexp.MustCompile(
			`Login failed \[user:\s*(?P<user>.+?)\]\s*\[Source:\s*(?P<src_ip>\d+\.\d+\.\d+\.\d+)\]\s*\[Reason:\s*(?P<reason>.+?)\]`),
	}
}

func (e *loginExtractor) Name() string { return "login" }

func (e *loginExtractor) Extract(message string) (record.Event, bool) {
	if m := match(e.failed, message); m != nil {
		return &LoginEvent{User: m["user"], SourceIP: m["src_ip"], Reason: m["reason"], Failed: true}, true
	}
	if m := match(e.success, message); m != nil {
		return &LoginEvent{User: m["user"], SourceIP: m["src_ip"]}, true
	}
	return nil, false
}

// logoutExtractor matches tty session exits.
type logoutExtractor struct {
	re *regexp.Regexp
}

func newLogoutExtractor() *logoutExtractor {
	return &logoutExtractor{
		re: regexp.MustCompile(
			`User\s+(?P<user>\S+)\s+has exited tty session\s+\d+\((?P<src_ip>\d+\.\d+\.\d+\.\d+)\)`),
	}
}

func (e *logoutExtractor) Name() string { return "logout" }

func (e *logoutExtractor) Extract(message string) (record.Event, bool) {
	m := match(e.re, message)
	if m == nil {
		return nil, false
	}
	return &LogoutEvent{User: m["user"], SourceIP: m["src_ip"]}, true
}

// configExtractor matches console configuration events.
type configExtractor struct {
	re *regexp.Regexp
}

func newConfigExtractor() *configExtractor {
	return &configExtractor{
		re: regexp.MustCompile(
			`Configured from console by\s+(?P<user>\S+)\s+on\s+(?P<line>\S+)\s+\((?P<src_ip>\d+\.\d+\.\d+\.\d+)\)`),
	}
}

func (e *configExtractor) Name() string { return "config" }

func (e *configExtractor) Extract(message string) (record.Event, bool) {
	m := match(e.re, message)
	if m == nil {
		return nil, false
	}
	return &ConsoleConfigEvent{User: m["user"], Line: m["line"], SourceIP: m["src_ip"]}, true
}

// commandExtractor matches parser command audit entries.
type commandExtractor struct {
	re *regexp.Regexp
}

func newCommandExtractor() *commandExtractor {
	return &commandExtractor{
		re: regexp.MustCompile(`User:(?P<user>\S+)\s+logged command:(?P<command>.+)$`),
	}
}

func (e *commandExtractor) Name() string { return "command" }

func (e *commandExtractor) Extract(message string) (record.Event, bool) {
	m := match(e.re, message)
	if m == nil {
		return nil, false
	}
	return &CommandEvent{User: m["user"], Command: strings.TrimSpace(m["command"])}, true
}

// RegexExtractor is a config-defined rule: a pattern whose named capture
// groups become the event fields.
type RegexExtractor struct {
	name      string
	eventType string
	re        *regexp.Regexp
}

// NewRegexExtractor compiles a custom extractor rule. The pattern must
// contain at least one named capture group.
func NewRegexExtractor(name, eventType, pattern string) (*RegexExtractor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling extractor %q: %w", name, err)
	}
	named := 0
	for _, n := range re.SubexpNames() {
		if n != "" {
			named++
		}
	}
	if named == 0 {
		return nil, fmt.Errorf("extractor %q: pattern has no named capture groups", name)
	}
	return &RegexExtractor{name: name, eventType: eventType, re: re}, nil
}

func (e *RegexExtractor) Name() string { return e.name }

func (e *RegexExtractor) Extract(message string) (record.Event, bool) {
	m := match(e.re, message)
	if m == nil {
		return nil, false
	}
	return &GenericEvent{EventType: e.eventType, EventFields: m}, true
}

// match runs re against s and returns the named groups, or nil on no match.
func match(re *regexp.Regexp, s string) map[string]string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}
	return groups
}
