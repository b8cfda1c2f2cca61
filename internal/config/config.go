// Package config reads and writes the noterecorder configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leandrodaf/noterecorder/sdk/contracts"
	"go.uber.org/multierr"
)

// Duration is a time.Duration stored as a string such as "1.5s".
type Duration struct {
	time.Duration
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"250ms\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the main configuration structure
type Config struct {
	InputDevice  string      `json:"inputDevice,omitempty"`  // input port name, exact or substring
	OutputDevice string      `json:"outputDevice,omitempty"` // output port name, exact or substring
	LogLevel     string      `json:"logLevel,omitempty"`
	LogFile      string      `json:"logFile,omitempty"`
	SpinWindow   Duration    `json:"spinWindow"`
	LoopDelay    *Duration   `json:"loopDelay,omitempty"`
	Inactivity   Duration    `json:"inactivity"`
	Programs     map[int]int `json:"programs,omitempty"` // MIDI channel (1-16) to program (0-127)
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel:   contracts.InfoLevel.String(),
		SpinWindow: Duration{contracts.DefaultSpinWindow},
		Inactivity: Duration{3 * time.Second},
	}
}

// Dir returns the config directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "noterecorder"), nil
}

// Path returns the full path to config.json
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config at path, or at Path when path is empty. A missing
// file yields the defaults. Values absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, or to Path when path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Validate reports every invalid value.
func (c *Config) Validate() error {
	var errs error
	if _, ok := contracts.ParseLogLevel(c.LogLevel); !ok && c.LogLevel != "" {
		errs = multierr.Append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if c.Inactivity.Duration <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("inactivity must be positive, got %v", c.Inactivity))
	}
	if c.LoopDelay != nil && c.LoopDelay.Duration < 0 {
		errs = multierr.Append(errs, fmt.Errorf("loop delay must not be negative, got %v", c.LoopDelay))
	}
	for ch, prog := range c.Programs {
		if ch < 1 || ch > 16 || prog < 0 || prog > 127 {
			errs = multierr.Append(errs, fmt.Errorf("program %d on channel %d out of range", prog, ch))
		}
	}
	return errs
}

// Level returns the configured log level.
func (c *Config) Level() contracts.LogLevel {
	level, _ := contracts.ParseLogLevel(c.LogLevel)
	return level
}
