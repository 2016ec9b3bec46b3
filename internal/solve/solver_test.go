package solve_test

import (
	"errors"
	"os"
	"testing"

	"github.com/latticelang/traitcore/internal/ir"
	"github.com/latticelang/traitcore/internal/program/fixture"
	"github.com/latticelang/traitcore/internal/solve"
)

func TestScenarios(t *testing.T) {
	data, err := os.ReadFile("testdata/scenarios.txtar")
	if err != nil {
		t.Fatalf("read fixture archive: %v", err)
	}
	programs, goalsByDoc, err := fixture.LoadArchive(data)
	if err != nil {
		t.Fatalf("load fixture archive: %v", err)
	}

	solveOne := func(t *testing.T, doc, goalName string, strategy solve.CycleStrategy, depth int) (solve.Solution, error) {
		t.Helper()
		prog, ok := programs[doc]
		if !ok {
			t.Fatalf("no program for document %q", doc)
		}
		goal, ok := goalsByDoc[doc][goalName]
		if !ok {
			t.Fatalf("no goal %q in document %q", goalName, doc)
		}
		s := solve.NewSolver(prog, strategy, depth)
		return s.SolveClosedGoal(goal)
	}

	t.Run("s1 simple impl resolves uniquely", func(t *testing.T) {
		sol, err := solveOne(t, "s1", "s1", solve.Tabling, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sol.Successful != solve.SuccessUnique {
			t.Fatalf("got %s, want unique", sol.Successful)
		}
	})

	t.Run("s2 existential binds to the sole implementor", func(t *testing.T) {
		sol, err := solveOne(t, "s2", "s2", solve.Tabling, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sol.Successful != solve.SuccessRefined && sol.Successful != solve.SuccessUnique {
			t.Fatalf("got %s, want refined or unique witness binding", sol.Successful)
		}
	})

	t.Run("s3 associated type normalizes", func(t *testing.T) {
		sol, err := solveOne(t, "s3", "s3", solve.Tabling, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sol.Successful != solve.SuccessUnique {
			t.Fatalf("got %s, want unique", sol.Successful)
		}
	})

	t.Run("s4 universally quantified goal has no applicable clause", func(t *testing.T) {
		_, err := solveOne(t, "s4", "s4", solve.Tabling, 0)
		var nac *ir.NoApplicableClauseError
		if !errors.As(err, &nac) {
			t.Fatalf("got %v, want NoApplicableClauseError", err)
		}
	})

	t.Run("s5 lifetime equality defers a region constraint", func(t *testing.T) {
		sol, err := solveOne(t, "s5", "s5", solve.Tabling, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sol.Successful != solve.SuccessUnique {
			t.Fatalf("got %s, want unique", sol.Successful)
		}
		if len(sol.Constraints) != 1 {
			t.Fatalf("got %d constraints, want 1", len(sol.Constraints))
		}
		if sol.Constraints[0].Goal.Kind != ir.ConstraintLifetimeEq {
			t.Fatalf("got constraint kind %v, want ConstraintLifetimeEq", sol.Constraints[0].Goal.Kind)
		}
	})

	t.Run("s6 self-referential trait under tabling is ambiguous", func(t *testing.T) {
		sol, err := solveOne(t, "s6", "s6", solve.Tabling, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sol.Successful != solve.SuccessAmbiguous {
			t.Fatalf("got %s, want ambiguous (tabling defers the re-entrant verdict rather than treating it as a proof)", sol.Successful)
		}
	})

	t.Run("s6 self-referential trait under recursive strategy overflows", func(t *testing.T) {
		_, err := solveOne(t, "s6", "s6", solve.Recursive, 0)
		var overflow *ir.OverflowError
		if !errors.As(err, &overflow) {
			t.Fatalf("got %v, want OverflowError", err)
		}
	})
}
