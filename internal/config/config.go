// Package config loads and validates the optional vsbridge YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the automation connection.
const (
	DefaultRetryDelay = 99 * time.Millisecond
	DefaultMaxLines   = 50
)

// DefaultProgIDs are tried in order when no prog_ids are configured.
// The unversioned ProgID resolves to whichever instance registered last.
var DefaultProgIDs = []string{"VisualStudio.DTE", "VisualStudio.DTE.18.0"}

// Config holds the parsed vsbridge configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version        int      `yaml:"version"`
	ProgIDs        []string `yaml:"prog_ids"`
	RawRetryDelay  string   `yaml:"retry_delay"`  // e.g. "99ms"
	RawRetryBudget string   `yaml:"retry_budget"` // e.g. "30s"; empty retries forever
	RawMaxLines    *int     `yaml:"max_lines"`    // default line limit for read_output_pane
	LogCalls       bool     `yaml:"log_calls"`
}

// CandidateProgIDs returns the configured ProgIDs, falling back to defaults.
func (c *Config) CandidateProgIDs() []string {
	if len(c.ProgIDs) > 0 {
		return c.ProgIDs
	}
	return DefaultProgIDs
}

// RetryDelay returns how long the message filter waits before retrying a
// call the IDE rejected as busy.
func (c *Config) RetryDelay() time.Duration {
	if c.RawRetryDelay != "" {
		d, err := time.ParseDuration(c.RawRetryDelay)
		if err == nil && d > 0 {
			return d
		}
	}
	return DefaultRetryDelay
}

// RetryBudget returns the total time a busy call may be retried before it is
// cancelled. Zero means no limit.
func (c *Config) RetryBudget() time.Duration {
	if c.RawRetryBudget != "" {
		d, err := time.ParseDuration(c.RawRetryBudget)
		if err == nil && d > 0 {
			return d
		}
	}
	return 0
}

// MaxLines returns the default line limit used when read_output_pane is
// called without max_lines. A configured value <= 0 means unlimited.
func (c *Config) MaxLines() int {
	if c.RawMaxLines != nil {
		return *c.RawMaxLines
	}
	return DefaultMaxLines
}

// DefaultPath returns <UserConfigDir>/vsbridge/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(dir, "vsbridge", "config.yaml"), nil
}

// Load reads the config file at path. An empty path means DefaultPath.
// If the file does not exist, a default Config is returned.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			// No config dir (e.g. $HOME unset); run on defaults.
			return &Config{}, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
