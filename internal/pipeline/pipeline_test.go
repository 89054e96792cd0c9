package pipeline

import (
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cisec/logsift/internal/classify"
	"github.com/cisec/logsift/internal/record"
)

func newTestPipeline(opts ...Option) *Pipeline {
	return New(classify.NewRegistry(), zerolog.Nop(), opts...)
}

func TestProcessLine(t *testing.T) {
	p := newTestPipeline()

	tests := []struct {
		name  string
		line  string
		check func(record.Record) bool
	}{
		{
			name: "classified lineproto transition",
			line: "1: Sep 18 08:00:01.001 CDT: %LINEPROTO-5-UPDOWN: Line protocol on Interface GigabitEthernet1/0, changed state to up",
			check: func(r record.Record) bool {
				return r.Sequence != nil && *r.Sequence == 1 &&
					r.Facility == "LINEPROTO" &&
					r.Severity != nil && *r.Severity == 5 &&
					r.SeverityName() == "NOTICE" &&
					r.Mnemonic == "UPDOWN" &&
					r.EventType == classify.EventLineProtoState &&
					reflect.DeepEqual(r.Event.Fields(), map[string]string{
						"interface": "GigabitEthernet1/0",
						"state":     "up",
					})
			},
		},
		{
			name: "valid envelope, unmatched message",
			line: "2: Sep 18 08:00:02.002 CDT: %SYS-5-RESTART: System restarted",
			check: func(r record.Record) bool {
				return r.Facility == "SYS" &&
					r.EventType == record.EventUnclassified &&
					r.Event == nil &&
					r.Message == "System restarted"
			},
		},
		{
			name: "unparseable envelope degrades, never drops",
			line: "some line without a facility marker",
			check: func(r record.Record) bool {
				return r.Sequence == nil && r.Severity == nil &&
					r.Facility == "" && r.Mnemonic == "" &&
					r.Message == "some line without a facility marker" &&
					r.EventType == record.EventUnclassified
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := p.ProcessLine(tt.line)
			if !tt.check(rec) {
				t.Errorf("ProcessLine() check failed: %+v", rec)
			}
		})
	}
}

func TestRunCountsNonBlankLines(t *testing.T) {
	input := strings.Join([]string{
		"1: Sep 18 08:00:01.001 CDT: %LINEPROTO-5-UPDOWN: Line protocol on Interface Gi1/0, changed state to up",
		"",
		"garbage line",
		"   ",
		"2: Sep 18 08:00:02.002 CDT: %SYS-5-RESTART: System restarted",
	}, "\n")

	p := newTestPipeline()
	records, err := p.Run(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Three non-blank lines, three records.
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
}

func TestRunSurvivesOversizedLine(t *testing.T) {
	input := strings.Repeat("x", 2*1024*1024) + "\n" +
		"1: Sep 18 08:00:01.001 CDT: %LINEPROTO-5-UPDOWN: Line protocol on Interface Gi1/0, changed state to up\n"

	records, err := newTestPipeline().Run(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].EventType != record.EventUnclassified {
		t.Errorf("oversized line EventType = %q, want unclassified", records[0].EventType)
	}
	if records[1].EventType != classify.EventLineProtoState {
		t.Errorf("EventType after oversized line = %q", records[1].EventType)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	lines := make([]string, 0, 400)
	base := []string{
		"1: Sep 18 08:00:01.001 CDT: %LINEPROTO-5-UPDOWN: Line protocol on Interface Gi1/0, changed state to up",
		"2: Sep 18 08:00:02.002 CDT: %SEC-6-IPACCESSLOGP: list acl-vty-in permitted tcp 1.2.3.4(80) -> 5.6.7.8(443), 3 packets",
		"3: Sep 18 08:00:03.003 CDT: %SEC_LOGIN-4-LOGIN_FAILED: Login failed [user: admin] [Source: 10.0.0.5] [Reason: bad password]",
		"not a syslog line",
	}
	for i := 0; i < 100; i++ {
		lines = append(lines, base...)
	}

	sequential := newTestPipeline().Process(lines)
	parallel := newTestPipeline(WithWorkers(8)).Process(lines)

	if len(sequential) != len(parallel) {
		t.Fatalf("lengths differ: %d vs %d", len(sequential), len(parallel))
	}
	for i := range sequential {
		if sequential[i].EventType != parallel[i].EventType ||
			sequential[i].Message != parallel[i].Message {
			t.Fatalf("record %d differs: %+v vs %+v", i, sequential[i], parallel[i])
		}
	}
}

func TestFirstExtractorWins(t *testing.T) {
	reg := classify.NewEmptyRegistry()
	first, err := classify.NewRegexExtractor("first", "type_a", `state to (?P<state>\w+)`)
	if err != nil {
		t.Fatal(err)
	}
	second, err := classify.NewRegexExtractor("second", "type_b", `state to (?P<state>\w+)`)
	if err != nil {
		t.Fatal(err)
	}
	reg.Register(first)
	reg.Register(second)

	p := New(reg, zerolog.Nop())
	rec := p.ProcessLine("1: Sep 18 08:00:01.001 CDT: %LINK-3-UPDOWN: Interface Gi1/0, changed state to down")
	if rec.EventType != "type_a" {
		t.Errorf("EventType = %q, want type_a (first registered wins)", rec.EventType)
	}
}
