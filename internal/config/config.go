// Package config loads simulation parameters from YAML, layered over
// defaults that reproduce the reference experiment.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/mini-diffusion/internal/engine"
)

// Config contains every setting of a diffusim run.
type Config struct {
	// Network describes the population and its appreciation thresholds.
	Network NetworkConfig `json:"network" yaml:"network"`

	// Simulation bounds the step loop.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Seed feeds the single random source. Zero picks a time-based seed.
	Seed int64 `json:"seed" yaml:"seed"`

	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// NetworkConfig mirrors engine.Params.
type NetworkConfig struct {
	Entities    int     `json:"entities" yaml:"entities"`
	BPCount     int     `json:"bp_count" yaml:"bp_count"`
	MPCount     int     `json:"mp_count" yaml:"mp_count"`
	BPThreshold float64 `json:"bp_threshold" yaml:"bp_threshold"`
	MPThreshold float64 `json:"mp_threshold" yaml:"mp_threshold"`
}

// SimulationConfig holds the arguments to Network.Run.
type SimulationConfig struct {
	MaxSteps      int `json:"max_steps" yaml:"max_steps"`
	Items         int `json:"items" yaml:"items"`
	ItemRetention int `json:"item_retention" yaml:"item_retention"`
}

// LoggingConfig configures operational logging.
type LoggingConfig struct {
	// Level is "info" (default), "debug" or "trace".
	Level string `json:"level" yaml:"level"`

	// File, when set, also receives JSON log records.
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// Default returns the reference experiment: five entities (one "bp", four
// "mp"), thresholds 0.2/0.8, fifteen steps, five items retained three steps.
func Default() *Config {
	return &Config{
		Network: NetworkConfig{
			Entities:    5,
			BPCount:     1,
			MPCount:     4,
			BPThreshold: 0.2,
			MPThreshold: 0.8,
		},
		Simulation: SimulationConfig{
			MaxSteps:      15,
			Items:         5,
			ItemRetention: 3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML file over the defaults. A missing file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Params converts the network section into engine parameters.
func (c *Config) Params() engine.Params {
	return engine.Params{
		EntityCount: c.Network.Entities,
		GroupCounts: [2]int{c.Network.BPCount, c.Network.MPCount},
		BPThreshold: c.Network.BPThreshold,
		MPThreshold: c.Network.MPThreshold,
	}
}

// Validate checks ranges and cross-field consistency.
func (c *Config) Validate() error {
	var errs []error
	n := c.Network
	if n.Entities < 0 || n.BPCount < 0 || n.MPCount < 0 {
		errs = append(errs, errors.New("network counts must be non-negative"))
	}
	if n.BPCount+n.MPCount != n.Entities {
		errs = append(errs, fmt.Errorf("bp_count + mp_count = %d, want entities = %d", n.BPCount+n.MPCount, n.Entities))
	}
	if n.BPThreshold < 0 || n.BPThreshold > 1 {
		errs = append(errs, fmt.Errorf("bp_threshold %v outside [0, 1]", n.BPThreshold))
	}
	if n.MPThreshold < 0 || n.MPThreshold > 1 {
		errs = append(errs, fmt.Errorf("mp_threshold %v outside [0, 1]", n.MPThreshold))
	}
	s := c.Simulation
	if s.MaxSteps < 0 || s.Items < 0 || s.ItemRetention < 0 {
		errs = append(errs, errors.New("simulation values must be non-negative"))
	}
	switch c.Logging.Level {
	case "", "info", "debug", "trace":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}
