package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SolverConfig is the YAML-decoded shape a CLI invocation loads to
// configure a Solver, mirroring the teacher's own `internal/ext` config
// loading but over this engine's own settings: which cycle strategy to
// use, how deep a derivation may go before Overflow, and whether to emit
// trace output (internal/trace.Verbose).
type SolverConfig struct {
	CycleStrategy string `yaml:"cycle_strategy"`
	OverflowDepth int    `yaml:"overflow_depth"`
	Trace         bool   `yaml:"trace"`
}

// DefaultSolverConfig is what a Solver uses when no config file is given.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{CycleStrategy: DefaultCycleStrategy, OverflowDepth: DefaultOverflowDepth}
}

// LoadSolverConfig reads and decodes a SolverConfig from path, filling in
// defaults for any field the file leaves zero-valued.
func LoadSolverConfig(path string) (SolverConfig, error) {
	cfg := DefaultSolverConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	if cfg.CycleStrategy == "" {
		cfg.CycleStrategy = DefaultCycleStrategy
	}
	if cfg.OverflowDepth == 0 {
		cfg.OverflowDepth = DefaultOverflowDepth
	}
	return cfg, nil
}
