package summary

import (
	"reflect"
	"testing"

	"github.com/cisec/logsift/internal/classify"
	"github.com/cisec/logsift/internal/record"
)

func eventRecord(facility, mnemonic string, severity int, ev record.Event) record.Record {
	r := record.Record{
		Facility:  facility,
		Severity:  &severity,
		Mnemonic:  mnemonic,
		Message:   "message",
		EventType: record.EventUnclassified,
	}
	if ev != nil {
		r.Event = ev
		r.EventType = ev.Type()
	}
	return r
}

func linkFlap(iface, state string) record.Record {
	return eventRecord("LINEPROTO", "UPDOWN", 5, &classify.LinkStateEvent{
		Interface: iface, State: state, LineProtocol: true,
	})
}

func failedLogin(src string) record.Record {
	return eventRecord("SEC_LOGIN", "LOGIN_FAILED", 4, &classify.LoginEvent{
		User: "admin", SourceIP: src, Reason: "bad password", Failed: true,
	})
}

func TestSummarizeCounts(t *testing.T) {
	records := []record.Record{
		linkFlap("Gi1/0", "up"),
		failedLogin("10.0.0.5"),
		linkFlap("Gi1/0", "down"),
		eventRecord("SYS", "RELOAD", 5, nil),
	}

	sum := Summarize(records, 0)

	if sum.Total != 4 {
		t.Errorf("Total = %d, want 4", sum.Total)
	}

	wantEvents := []Count{
		{Key: "lineproto_state", Count: 2},
		{Key: "login_failed", Count: 1},
		{Key: record.EventUnclassified, Count: 1},
	}
	if !reflect.DeepEqual(sum.ByEventType, wantEvents) {
		t.Errorf("ByEventType = %v, want %v", sum.ByEventType, wantEvents)
	}

	wantSeverity := []Count{
		{Key: "NOTICE", Count: 3},
		{Key: "WARNING", Count: 1},
	}
	if !reflect.DeepEqual(sum.BySeverity, wantSeverity) {
		t.Errorf("BySeverity = %v, want %v", sum.BySeverity, wantSeverity)
	}
}

func TestInterfaceFlaps(t *testing.T) {
	records := []record.Record{
		linkFlap("Gi1/0", "up"),
		linkFlap("Gi1/0", "down"),
		linkFlap("Gi2/0", "down"),
		linkFlap("Gi1/0", "up"),
	}

	sum := Summarize(records, 0)

	want := []Count{
		{Key: "Gi1/0", Count: 3},
		{Key: "Gi2/0", Count: 1},
	}
	if !reflect.DeepEqual(sum.InterfaceFlaps, want) {
		t.Errorf("InterfaceFlaps = %v, want %v", sum.InterfaceFlaps, want)
	}
}

func TestTopFailedSources(t *testing.T) {
	records := []record.Record{
		failedLogin("10.0.0.1"),
		failedLogin("10.0.0.2"),
		failedLogin("10.0.0.2"),
		failedLogin("10.0.0.3"),
		failedLogin("10.0.0.3"),
	}

	sum := Summarize(records, 2)

	// 10.0.0.2 and 10.0.0.3 tie; first seen ranks first. The top-2 bound
	// drops 10.0.0.1.
	want := []Count{
		{Key: "10.0.0.2", Count: 2},
		{Key: "10.0.0.3", Count: 2},
	}
	if !reflect.DeepEqual(sum.TopFailedSources, want) {
		t.Errorf("TopFailedSources = %v, want %v", sum.TopFailedSources, want)
	}
}

func TestACLActivity(t *testing.T) {
	records := []record.Record{
		eventRecord("SEC", "IPACCESSLOGP", 6, &classify.ACLEvent{
			ACL: "acl-vty-in", Action: "permitted", Protocol: "tcp",
			SrcIP: "1.1.1.1", SrcPort: "1", DstIP: "2.2.2.2", DstPort: "22", Packets: "1",
		}),
		eventRecord("SEC", "IPACCESSLOGP", 6, &classify.ACLEvent{
			ACL: "acl-vty-in", Action: "denied", Protocol: "tcp",
			SrcIP: "3.3.3.3", SrcPort: "2", DstIP: "2.2.2.2", DstPort: "22", Packets: "4",
		}),
		eventRecord("FMANFP", "IPACCESSLOGLNP", 6, &classify.ACLHardwareDenyEvent{
			ACL: "acl-core", ProtocolCode: "27", SrcMAC: "6c:b7:cd:85:0c:e0",
			SrcIP: "4.4.4.4", IngressInterface: "Gi3/1", DstIP: "5.5.5.5", Packets: "2",
		}),
		eventRecord("SEC", "IPACCESSLOGP", 6, &classify.ACLEvent{
			ACL: "acl-vty-in", Action: "denied", Protocol: "udp",
			SrcIP: "3.3.3.3", SrcPort: "5", DstIP: "2.2.2.2", DstPort: "53", Packets: "1",
		}),
	}

	sum := Summarize(records, 0)

	want := []ACLCount{
		{ACL: "acl-vty-in", Action: "permitted", Count: 1},
		{ACL: "acl-vty-in", Action: "denied", Count: 2},
		{ACL: "acl-core", Action: "denied", Count: 1},
	}
	if !reflect.DeepEqual(sum.ACLActivity, want) {
		t.Errorf("ACLActivity = %v, want %v", sum.ACLActivity, want)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil, 0)
	if sum.Total != 0 {
		t.Errorf("Total = %d, want 0", sum.Total)
	}
	if len(sum.ByEventType) != 0 || len(sum.InterfaceFlaps) != 0 {
		t.Errorf("empty input produced aggregates: %+v", sum)
	}
}

func TestSummarizeDeterministic(t *testing.T) {
	records := []record.Record{
		failedLogin("10.0.0.1"),
		linkFlap("Gi1/0", "up"),
		failedLogin("10.0.0.2"),
	}

	first := Summarize(records, 5)
	for i := 0; i < 10; i++ {
		if got := Summarize(records, 5); !reflect.DeepEqual(got, first) {
			t.Fatalf("Summarize() not deterministic: %+v vs %+v", got, first)
		}
	}
}
