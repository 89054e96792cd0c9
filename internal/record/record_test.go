package record

import "testing"

func TestSeverityName(t *testing.T) {
	tests := []struct {
		severity int
		want     string
	}{
		{0, "EMERGENCY"},
		{1, "ALERT"},
		{2, "CRITICAL"},
		{3, "ERROR"},
		{4, "WARNING"},
		{5, "NOTICE"},
		{6, "INFORMATIONAL"},
		{7, "DEBUG"},
		{8, ""},
		{-1, ""},
	}

	for _, tt := range tests {
		if got := SeverityName(tt.severity); got != tt.want {
			t.Errorf("SeverityName(%d) = %q, want %q", tt.severity, got, tt.want)
		}
	}
}

func TestRecordSeverityName(t *testing.T) {
	sev := 5
	r := Record{Severity: &sev}
	if got := r.SeverityName(); got != "NOTICE" {
		t.Errorf("SeverityName() = %q, want NOTICE", got)
	}

	degraded := Record{Message: "garbage", EventType: EventUnclassified}
	if got := degraded.SeverityName(); got != "" {
		t.Errorf("SeverityName() = %q, want empty for unparsed envelope", got)
	}
}

func TestField(t *testing.T) {
	r := Record{EventType: EventUnclassified}
	if _, ok := r.Field("user"); ok {
		t.Error("Field() on record without event should report absent")
	}
}
