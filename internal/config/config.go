// Package config handles logsift configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cisec/logsift/internal/classify"
)

// Config holds the full logsift configuration.
type Config struct {
	Logging    LoggingSettings  `yaml:"logging"`
	Pipeline   PipelineSettings `yaml:"pipeline"`
	Extractors []ExtractorRule  `yaml:"extractors"`
	Server     ServerSettings   `yaml:"server"`
}

// LoggingSettings contains logging configuration.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PipelineSettings contains classification pipeline settings.
type PipelineSettings struct {
	// Workers is the classification goroutine count; 0 or 1 means
	// sequential.
	Workers int `yaml:"workers"`
}

// ExtractorRule defines a custom extractor: a regex with named capture
// groups that yields the declared event type on match. InsertBefore names an
// existing extractor to take priority over; empty appends at the lowest
// priority.
type ExtractorRule struct {
	Name         string `yaml:"name"`
	EventType    string `yaml:"event_type"`
	Pattern      string `yaml:"pattern"`
	InsertBefore string `yaml:"insert_before"`
}

// ServerSettings contains API server settings.
type ServerSettings struct {
	Listen       string        `yaml:"listen"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// APIKeyHash is a bcrypt hash of the required bearer token. Empty
	// disables authentication.
	APIKeyHash string `yaml:"api_key_hash"`

	// StreamBuffer is the per-subscriber message buffer for /api/stream.
	StreamBuffer int `yaml:"stream_buffer"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingSettings{
			Level:  "info",
			Format: "json",
		},
		Pipeline: PipelineSettings{
			Workers: 1,
		},
		Server: ServerSettings{
			Listen:       ":8085",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			StreamBuffer: 64,
		},
	}
}

// Load loads configuration from a YAML file, applying environment overrides
// and validating the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("LOGSIFT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if listen := os.Getenv("LOGSIFT_LISTEN"); listen != "" {
		c.Server.Listen = listen
	}
	if hash := os.Getenv("LOGSIFT_API_KEY_HASH"); hash != "" {
		c.Server.APIKeyHash = hash
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("pipeline.workers must not be negative")
	}

	for i, rule := range c.Extractors {
		if rule.Name == "" {
			return fmt.Errorf("extractors[%d].name is required", i)
		}
		if rule.EventType == "" {
			return fmt.Errorf("extractors[%d].event_type is required", i)
		}
		if rule.Pattern == "" {
			return fmt.Errorf("extractors[%d].pattern is required", i)
		}
	}

	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.StreamBuffer <= 0 {
		return fmt.Errorf("server.stream_buffer must be positive")
	}

	return nil
}

// BuildRegistry creates the extractor registry: the built-in extractors plus
// the configured custom rules at their requested positions.
func (c *Config) BuildRegistry() (*classify.Registry, error) {
	reg := classify.NewRegistry()
	for _, rule := range c.Extractors {
		ex, err := classify.NewRegexExtractor(rule.Name, rule.EventType, rule.Pattern)
		if err != nil {
			return nil, err
		}
		if rule.InsertBefore != "" {
			if err := reg.InsertBefore(rule.InsertBefore, ex); err != nil {
				return nil, fmt.Errorf("extractor %q: %w", rule.Name, err)
			}
		} else {
			reg.Register(ex)
		}
	}
	return reg, nil
}
