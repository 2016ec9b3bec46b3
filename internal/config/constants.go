// Package config holds process-wide settings: the engine's version, mode
// flags set once at startup, and the YAML-decoded solver configuration
// consumed by the CLI layer (spec.md section 6.3 and the supplemented
// ambient configuration stack).
package config

// Version is the current engine version, set at build time via -ldflags
// the same way the teacher's own Version var is.
var Version = "0.1.0"

// IsTestMode indicates the process is running under `go test`, set once at
// startup the way the teacher's evaluator gates test-only behavior.
var IsTestMode = false

// DefaultOverflowDepth is the derivation-depth bound a Solver uses when no
// SolverConfig overrides it (spec.md section 4.6).
const DefaultOverflowDepth = 10

// DefaultCycleStrategy names the cycle strategy a SolverConfig uses when
// its own CycleStrategy field is left blank.
const DefaultCycleStrategy = "tabling"
