// Package replcore implements the read-eval-print loop a caller wires up
// behind a terminal: load a program, inspect it, and solve the goals it
// declares. The command set and loop shape follow chalki, the original
// engine's own REPL (help/program/load/print/lowered, arbitrary input
// falling through to a solve attempt); the scanner-driven loop and command
// dispatch are carried over from the teacher's own interactive CLI.
package replcore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/latticelang/traitcore/internal/ir"
	"github.com/latticelang/traitcore/internal/program"
	"github.com/latticelang/traitcore/internal/program/fixture"
	"github.com/latticelang/traitcore/internal/querycache"
	"github.com/latticelang/traitcore/internal/solve"
)

// REPL holds the one loaded program (if any) and the named goals it
// declares, plus the solving parameters new goal attempts run under.
type REPL struct {
	input   io.Reader
	output  io.Writer
	scanner *bufio.Scanner
	color   bool

	Strategy      solve.CycleStrategy
	OverflowDepth int

	source string
	prog   *program.Program
	goals  map[string]ir.InEnvironment[*ir.Goal]

	cache *querycache.Cache
}

// SetCache attaches a query cache; once set, solved goals are memoized and
// re-solves of the same program and goal name are served from disk instead
// of rerunning the derivation. The solver itself is never made aware of
// this — memoization is strictly a REPL-layer concern.
func (r *REPL) SetCache(c *querycache.Cache) {
	r.cache = c
}

// New builds a REPL reading commands from input and writing to output.
// Colorization is auto-detected from output when it is an *os.File.
func New(input io.Reader, output io.Writer) *REPL {
	r := &REPL{
		input:  input,
		output: output,
	}
	if f, ok := output.(*os.File); ok {
		r.color = colorsEnabled(f)
	}
	return r
}

// Run drives the loop until EOF, printing a "?- " prompt before each line
// the way chalki does.
func (r *REPL) Run() {
	r.scanner = bufio.NewScanner(r.input)
	for {
		fmt.Fprint(r.output, "?- ")
		if !r.scanner.Scan() {
			fmt.Fprintln(r.output)
			return
		}
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		if err := r.process(line); err != nil {
			fmt.Fprintf(r.output, "%s\n", paint(r.color, ansiRed, "error: "+err.Error()))
		}
	}
}

func (r *REPL) process(command string) error {
	switch {
	case command == "help":
		printHelp(r.output)
		return nil
	case command == "program":
		text := r.readBlock("| ")
		return r.loadText(text)
	case strings.HasPrefix(command, "load "):
		path := strings.TrimSpace(command[len("load "):])
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return r.loadText(string(data))
	case command == "print":
		if r.prog == nil {
			return fmt.Errorf("no program currently loaded")
		}
		fmt.Fprint(r.output, r.source)
		return nil
	case command == "lowered":
		if r.prog == nil {
			return fmt.Errorf("no program currently loaded")
		}
		r.printLowered()
		return nil
	default:
		return r.solveNamedGoal(command)
	}
}

// loadText decodes text as a fixture document and replaces the currently
// loaded program and its named goals.
func (r *REPL) loadText(text string) error {
	var doc fixture.Doc
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return fmt.Errorf("decoding program: %w", err)
	}
	prog, goals, err := fixture.Build(doc)
	if err != nil {
		return fmt.Errorf("building program: %w", err)
	}
	r.source = text
	r.prog = prog
	r.goals = goals
	return nil
}

// readBlock reads lines from the scanner under prompt until a blank line
// or EOF, the way chalki's own readline_loop collects a multi-line
// program from stdin.
func (r *REPL) readBlock(prompt string) string {
	fmt.Fprintln(r.output, "Enter a program; press an empty line when finished")
	var b strings.Builder
	for {
		fmt.Fprint(r.output, prompt)
		if !r.scanner.Scan() {
			break
		}
		line := r.scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// solveNamedGoal looks command up among the loaded document's declared
// goals and solves it. The fixture surface syntax has no expression
// grammar of its own to parse an arbitrary goal from free text (see
// internal/program/fixture's own grounding note on the missing
// chalk_parse grammar), so a typed goal is named rather than written out.
func (r *REPL) solveNamedGoal(name string) error {
	if r.prog == nil {
		return fmt.Errorf("no program currently loaded")
	}
	goal, ok := r.goals[name]
	if !ok {
		return fmt.Errorf("no such command or declared goal: %q", name)
	}

	// The loaded source text plus the goal's own name identify this exact
	// derivation: the same text always lowers to the same program, and a
	// goal name only means something relative to the document that
	// declared it.
	queryKey := r.source + "\x00" + name

	if r.cache != nil {
		if entry, ok, err := r.cache.Lookup(queryKey); err != nil {
			return err
		} else if ok {
			r.printEntry(entry, true)
			return nil
		}
	}

	strategy := r.Strategy
	depth := r.OverflowDepth
	s := solve.NewSolver(r.prog, strategy, depth)
	solution, err := s.SolveClosedGoal(goal)
	if err != nil {
		fmt.Fprintf(r.output, "%s\n", paint(r.color, ansiYellow, "No possible solution: "+err.Error()))
		return nil
	}

	entry := querycache.Entry{
		SuccessKind: solution.Successful.String(),
		RefinedGoal: solution.RefinedGoal.String(),
		Constraints: constraintsText(solution.Constraints),
	}
	if r.cache != nil {
		if err := r.cache.Store(queryKey, entry); err != nil {
			return err
		}
	}
	r.printEntry(entry, false)
	return nil
}

func constraintsText(constraints []ir.InEnvironment[ir.Constraint]) string {
	parts := make([]string, len(constraints))
	for i, c := range constraints {
		parts[i] = c.Goal.String()
	}
	return strings.Join(parts, "; ")
}

func (r *REPL) printEntry(entry querycache.Entry, cached bool) {
	label := paint(r.color, ansiGreen, entry.SuccessKind)
	if cached {
		label = paint(r.color, ansiDim, "(cached) ") + label
	}
	fmt.Fprintf(r.output, "%s: %s\n", label, entry.RefinedGoal)
	if entry.Constraints != "" {
		fmt.Fprintf(r.output, "  %s %s\n", paint(r.color, ansiDim, "constraint:"), entry.Constraints)
	}
}

func (r *REPL) printLowered() {
	for name, id := range r.prog.TypeIds {
		kind := r.prog.TypeKinds[id]
		sort := "struct"
		if kind.Sort == program.TypeSortTrait {
			sort = "trait"
		}
		fmt.Fprintf(r.output, "%s %s/%d\n", sort, name, len(kind.Binders.Kinds))
	}
	for _, clause := range r.prog.ProgramClauses {
		fmt.Fprintf(r.output, "forall<%d> %s\n", len(clause.Kinds), clause.Value)
	}
	for name, goal := range r.goals {
		fmt.Fprintf(r.output, "goal %s: %s\n", name, goal.Goal)
	}
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `Commands:
  help         print this output
  program      provide a program via stdin
  load <file>  load a program fixture from <file>
  print        print the current program's source text
  lowered      print the lowered program and its declared goals
  <goal name>  attempt to solve a goal declared in the current program
`)
}
