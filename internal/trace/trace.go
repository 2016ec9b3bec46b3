// Package trace provides the engine's debug-context register and
// verbosity-gated logging: a process-wide "current program" stack for
// pretty-printing ItemIds by name (spec.md section 9, "global debug
// context"), and a per-solver-invocation correlation id for tracing a
// derivation through nested goal solving.
package trace

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/latticelang/traitcore/internal/program"
)

// Verbose gates Span.Logf output. Set once at startup from SolverConfig,
// the way the teacher gates behavior with config.IsTestMode/IsLSPMode.
var Verbose = false

var (
	mu           sync.Mutex
	programStack []*program.Program
)

// WithCurrentProgram pushes p as the current program for the duration of
// fn, popping it on the way out on every path including a panic — the Go
// equivalent of chalk's `tls::set_current_program` scoped guard.
func WithCurrentProgram(p *program.Program, fn func()) {
	mu.Lock()
	programStack = append(programStack, p)
	mu.Unlock()
	defer func() {
		mu.Lock()
		programStack = programStack[:len(programStack)-1]
		mu.Unlock()
	}()
	fn()
}

// CurrentProgram returns the innermost program pushed by WithCurrentProgram,
// or nil outside any such scope. Debug formatting is the only sanctioned
// use (spec.md section 9): nothing in internal/solve's own control flow may
// depend on it.
func CurrentProgram() *program.Program {
	mu.Lock()
	defer mu.Unlock()
	if len(programStack) == 0 {
		return nil
	}
	return programStack[len(programStack)-1]
}

// Span correlates every log line emitted during one top-level solve call.
type Span struct {
	ID    uuid.UUID
	Label string
}

// NewSpan starts a span, normally one per Solver.SolveClosedGoal call.
func NewSpan(label string) Span {
	return Span{ID: uuid.New(), Label: label}
}

// Logf writes a trace line to stderr when Verbose is set, tagged with the
// span's correlation id so interleaved nested solves stay distinguishable.
func (s Span) Logf(format string, args ...any) {
	if !Verbose {
		return
	}
	prefix := fmt.Sprintf("[%s %s] ", s.ID.String()[:8], s.Label)
	fmt.Fprintf(os.Stderr, prefix+format+"\n", args...)
}
