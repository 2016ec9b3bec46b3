package replcore

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/latticelang/traitcore/internal/querycache"
)

func TestREPLLoadAndSolve(t *testing.T) {
	script := `help
program
traits:
  - name: Eq
structs:
  - name: Foo
impls:
  - trait: {name: Eq, params: [{ty: {apply: {name: Foo}}}]}
goals:
  s1:
    implemented: {name: Eq, params: [{ty: {apply: {name: Foo}}}]}

print
lowered
s1
`
	var out bytes.Buffer
	r := New(strings.NewReader(script), &out)
	r.OverflowDepth = 10
	r.Run()

	output := out.String()
	if !strings.Contains(output, "Commands:") {
		t.Fatalf("expected help output, got:\n%s", output)
	}
	if !strings.Contains(output, "unique:") {
		t.Fatalf("expected goal s1 to solve uniquely, got:\n%s", output)
	}
	if strings.Contains(output, "no such command") {
		t.Fatalf("goal s1 should have been recognized, got:\n%s", output)
	}
}

func TestREPLUnknownCommandErrors(t *testing.T) {
	var out bytes.Buffer
	r := New(strings.NewReader("nonexistent\n"), &out)
	r.Run()

	if !strings.Contains(out.String(), "no program currently loaded") {
		t.Fatalf("expected an error about no loaded program, got:\n%s", out.String())
	}
}

func TestREPLSolveIsCachedAcrossRepeatSolves(t *testing.T) {
	cache, err := querycache.Open(filepath.Join(t.TempDir(), "queries.db"))
	if err != nil {
		t.Fatalf("querycache.Open: %v", err)
	}
	defer cache.Close()

	script := `program
traits:
  - name: Eq
structs:
  - name: Foo
impls:
  - trait: {name: Eq, params: [{ty: {apply: {name: Foo}}}]}
goals:
  s1:
    implemented: {name: Eq, params: [{ty: {apply: {name: Foo}}}]}

s1
s1
`
	var out bytes.Buffer
	r := New(strings.NewReader(script), &out)
	r.SetCache(cache)
	r.Run()

	output := out.String()
	if strings.Count(output, "unique:") != 2 {
		t.Fatalf("expected two successful solves, got:\n%s", output)
	}
	if !strings.Contains(output, "(cached)") {
		t.Fatalf("expected the second solve to be served from cache, got:\n%s", output)
	}
}

func TestREPLLoadRejectsGarbage(t *testing.T) {
	var out bytes.Buffer
	r := New(strings.NewReader("program\ntraits: [\n\n"), &out)
	r.Run()

	if !strings.Contains(out.String(), "error:") {
		t.Fatalf("expected a decode error to be reported, got:\n%s", out.String())
	}
}
