package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logsift.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q", cfg.Logging.Level)
	}
	if cfg.Server.Listen == "" {
		t.Error("default listen address empty")
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
pipeline:
  workers: 4
server:
  listen: ":9090"
extractors:
  - name: duplex
    event_type: duplex_mismatch
    pattern: 'duplex mismatch discovered on (?P<interface>\S+)'
    insert_before: link_state
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Pipeline.Workers != 4 {
		t.Errorf("Pipeline.Workers = %d", cfg.Pipeline.Workers)
	}
	if cfg.Server.Listen != ":9090" {
		t.Errorf("Server.Listen = %q", cfg.Server.Listen)
	}
	// Defaults survive partial files.
	if cfg.Server.StreamBuffer != 64 {
		t.Errorf("Server.StreamBuffer = %d, want default 64", cfg.Server.StreamBuffer)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "malformed yaml",
			content: "logging: [not a map",
		},
		{
			name: "extractor missing pattern",
			content: `
extractors:
  - name: broken
    event_type: x
`,
		},
		{
			name: "negative workers",
			content: `
pipeline:
  workers: -1
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() should fail")
			}
		})
	}

	if _, err := Load("/nonexistent/logsift.yaml"); err == nil {
		t.Error("Load() should fail for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LOGSIFT_LOG_LEVEL", "error")
	t.Setenv("LOGSIFT_LISTEN", ":7070")

	cfg, err := Load(writeConfig(t, "logging:\n  level: info\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want env override error", cfg.Logging.Level)
	}
	if cfg.Server.Listen != ":7070" {
		t.Errorf("Server.Listen = %q, want env override :7070", cfg.Server.Listen)
	}
}

func TestBuildRegistry(t *testing.T) {
	cfg := Default()
	cfg.Extractors = []ExtractorRule{
		{
			Name:         "duplex",
			EventType:    "duplex_mismatch",
			Pattern:      `duplex mismatch discovered on (?P<interface>\S+)`,
			InsertBefore: "link_state",
		},
	}

	reg, err := cfg.BuildRegistry()
	if err != nil {
		t.Fatalf("BuildRegistry() error = %v", err)
	}

	names := reg.Names()
	for i, name := range names {
		if name == "duplex" {
			if i+1 >= len(names) || names[i+1] != "link_state" {
				t.Errorf("duplex not inserted before link_state: %v", names)
			}
		}
	}

	ev, ok := reg.Classify("duplex mismatch discovered on GigabitEthernet0/1 (not half duplex)")
	if !ok || ev.Type() != "duplex_mismatch" {
		t.Errorf("Classify() = (%v, %v)", ev, ok)
	}

	// Bad pattern surfaces at build time.
	cfg.Extractors[0].Pattern = "(?P<broken"
	if _, err := cfg.BuildRegistry(); err == nil {
		t.Error("BuildRegistry() should fail for invalid pattern")
	}

	// Unknown anchor surfaces at build time.
	cfg.Extractors[0].Pattern = `x (?P<v>\d+)`
	cfg.Extractors[0].InsertBefore = "no_such_extractor"
	if _, err := cfg.BuildRegistry(); err == nil {
		t.Error("BuildRegistry() should fail for unknown anchor")
	}
}
