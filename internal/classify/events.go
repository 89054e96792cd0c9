package classify

import "github.com/cisec/logsift/internal/record"

// Event type names assigned by the built-in extractors.
const (
	EventACLPermitted      = "acl_permitted"
	EventACLDenied         = "acl_denied"
	EventACLDeniedHW       = "acl_denied_hw"
	EventLinkState         = "link_state"
	EventLineProtoState    = "lineproto_state"
	EventLoginSuccess      = "login_success"
	EventLoginFailed       = "login_failed"
	EventLogout            = "logout"
	EventConfigFromConsole = "config_from_console"
	EventLoggedCommand     = "logged_command"
)

// ACLEvent is a software-path ACL permit or deny with full 5-tuple detail.
type ACLEvent struct {
	ACL      string
	Action   string // "permitted" or "denied"
	Protocol string
	SrcIP    string
	SrcPort  string
	DstIP    string
	DstPort  string
	Packets  string
}

func (e *ACLEvent) Type() string {
	if e.Action == "permitted" {
		return EventACLPermitted
	}
	return EventACLDenied
}

func (e *ACLEvent) Fields() map[string]string {
	return map[string]string{
		"acl":      e.ACL,
		"action":   e.Action,
		"proto":    e.Protocol,
		"src_ip":   e.SrcIP,
		"src_port": e.SrcPort,
		"dst_ip":   e.DstIP,
		"dst_port": e.DstPort,
		"packets":  e.Packets,
	}
}

// ACLHardwareDenyEvent is a hardware-path ACL deny carrying the source MAC
// and ingress interface instead of ports.
type ACLHardwareDenyEvent struct {
	ACL              string
	ProtocolCode     string
	SrcMAC           string
	SrcIP            string
	IngressInterface string
	DstIP            string
	Packets          string
}

func (e *ACLHardwareDenyEvent) Type() string { return EventACLDeniedHW }

func (e *ACLHardwareDenyEvent) Fields() map[string]string {
	return map[string]string{
		"acl":        e.ACL,
		"proto_code": e.ProtocolCode,
		"src_mac":    e.SrcMAC,
		"src_ip":     e.SrcIP,
		"ingress_if": e.IngressInterface,
		"dst_ip":     e.DstIP,
		"packets":    e.Packets,
	}
}

// LinkStateEvent is a physical-link or line-protocol state transition.
type LinkStateEvent struct {
	Interface string
	State     string
	// LineProtocol marks LINEPROTO transitions as opposed to LINK.
	LineProtocol bool
}

func (e *LinkStateEvent) Type() string {
	if e.LineProtocol {
		return EventLineProtoState
	}
	return EventLinkState
}

func (e *LinkStateEvent) Fields() map[string]string {
	return map[string]string{
		"interface": e.Interface,
		"state":     e.State,
	}
}

// LoginEvent is an authentication outcome. Reason is only set on failures.
type LoginEvent struct {
	User     string
	SourceIP string
	Reason   string
	Failed   bool
}

func (e *LoginEvent) Type() string {
	if e.Failed {
		return EventLoginFailed
	}
	return EventLoginSuccess
}

func (e *LoginEvent) Fields() map[string]string {
	f := map[string]string{
		"user":   e.User,
		"src_ip": e.SourceIP,
	}
	if e.Failed {
		f["reason"] = e.Reason
	}
	return f
}

// LogoutEvent is a tty session termination.
type LogoutEvent struct {
	User     string
	SourceIP string
}

func (e *LogoutEvent) Type() string { return EventLogout }

func (e *LogoutEvent) Fields() map[string]string {
	return map[string]string{
		"user":   e.User,
		"src_ip": e.SourceIP,
	}
}

// ConsoleConfigEvent is a configuration session opened from a console line.
type ConsoleConfigEvent struct {
	User     string
	Line     string
	SourceIP string
}

func (e *ConsoleConfigEvent) Type() string { return EventConfigFromConsole }

func (e *ConsoleConfigEvent) Fields() map[string]string {
	return map[string]string{
		"user":   e.User,
		"line":   e.Line,
		"src_ip": e.SourceIP,
	}
}

// CommandEvent is a command audit log entry.
type CommandEvent struct {
	User    string
	Command string
}

func (e *CommandEvent) Type() string { return EventLoggedCommand }

func (e *CommandEvent) Fields() map[string]string {
	return map[string]string{
		"user":    e.User,
		"command": e.Command,
	}
}

// GenericEvent carries the named capture groups of a config-defined
// extractor. Its type is whatever the rule declares.
type GenericEvent struct {
	EventType   string
	EventFields map[string]string
}

func (e *GenericEvent) Type() string { return e.EventType }

func (e *GenericEvent) Fields() map[string]string { return e.EventFields }

var _ record.Event = (*ACLEvent)(nil)
var _ record.Event = (*GenericEvent)(nil)
