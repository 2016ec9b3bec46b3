package querycache

import (
	"path/filepath"
	"testing"
)

func TestCacheStoreAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if _, ok, err := c.Lookup("Foo: Eq"); err != nil {
		t.Fatalf("Lookup on empty cache: %v", err)
	} else if ok {
		t.Fatalf("expected no entry before Store")
	}

	entry := Entry{SuccessKind: "unique", RefinedGoal: "Foo: Eq", Constraints: ""}
	if err := c.Store("Foo: Eq", entry); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, ok, err := c.Lookup("Foo: Eq")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatalf("expected entry after Store")
	}
	if got != entry {
		t.Fatalf("got %+v, want %+v", got, entry)
	}
}

func TestCacheStoreOverwritesPriorEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if err := c.Store("X: A", Entry{SuccessKind: "unique", RefinedGoal: "X: A"}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := c.Store("X: A", Entry{SuccessKind: "ambiguous", RefinedGoal: "X: A"}); err != nil {
		t.Fatalf("Store (overwrite): %v", err)
	}

	got, ok, err := c.Lookup("X: A")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatalf("expected entry")
	}
	if got.SuccessKind != "ambiguous" {
		t.Fatalf("got success kind %q, want overwritten value %q", got.SuccessKind, "ambiguous")
	}
}

func TestCacheReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Store("Foo: Eq", Entry{SuccessKind: "unique", RefinedGoal: "Foo: Eq"}); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	c2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c2.Close()

	_, ok, err := c2.Lookup("Foo: Eq")
	if err != nil {
		t.Fatalf("Lookup after reopen: %v", err)
	}
	if !ok {
		t.Fatalf("expected entry to persist across reopen")
	}
}
