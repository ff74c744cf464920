package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMemory_NotifiesOtherContextsOnly(t *testing.T) {
	mem := NewMemory()
	a := mem.Context()
	b := mem.Context()

	if err := a.Set(KeyWindows, "[]"); err != nil {
		t.Fatalf("set: %v", err)
	}

	select {
	case c := <-b.Changes():
		if c.Key != KeyWindows || c.OldValue != "" || c.NewValue != "[]" {
			t.Fatalf("unexpected change: %+v", c)
		}
	default:
		t.Fatalf("expected change delivered to other context")
	}

	select {
	case c := <-a.Changes():
		t.Fatalf("writer must not see its own change, got %+v", c)
	default:
	}

	v, ok, err := b.Get(KeyWindows)
	if err != nil || !ok || v != "[]" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}
	if a.Writes() != 1 || b.Writes() != 0 {
		t.Fatalf("writes = %d/%d, want 1/0", a.Writes(), b.Writes())
	}
}

func TestMemory_ClearRemovesAllKeys(t *testing.T) {
	mem := NewMemory()
	c := mem.Context()
	_ = c.Set(KeyWindows, "[]")
	_ = c.Set(KeyCount, "3")

	if err := c.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	for _, key := range []string{KeyWindows, KeyCount} {
		if _, ok, _ := c.Get(key); ok {
			t.Fatalf("expected %q absent after clear", key)
		}
	}
}

func TestMemory_ClosedContextStopsReceiving(t *testing.T) {
	mem := NewMemory()
	a := mem.Context()
	b := mem.Context()
	_ = b.Close()

	if err := a.Set(KeyCount, "1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok := <-b.Changes(); ok {
		t.Fatalf("expected closed channel")
	}
}

func openTestSQLite(t *testing.T, path string) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_GetSetClear(t *testing.T) {
	s := openTestSQLite(t, filepath.Join(t.TempDir(), "storage.db"))

	if _, ok, err := s.Get(KeyCount); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}
	if err := s.Set(KeyCount, "1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(KeyCount, "2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(KeyCount)
	if err != nil || !ok || v != "2" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := s.Get(KeyCount); ok {
		t.Fatalf("expected count absent after clear")
	}
}

func TestSQLite_CollectReportsForeignWritesOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.db")
	a := openTestSQLite(t, path)
	_ = a.Set(KeyWindows, `[{"id":1}]`)

	// b opens after the first write, so that write is history, not a change.
	b := openTestSQLite(t, path)
	changes, err := b.collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("expected no changes for history, got %+v", changes)
	}

	_ = a.Set(KeyWindows, `[{"id":1},{"id":2}]`)
	_ = b.Set(KeyCount, "2")

	changes, err = b.collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %+v", changes)
	}
	got := changes[0]
	if got.Key != KeyWindows || got.OldValue != `[{"id":1}]` || got.NewValue != `[{"id":1},{"id":2}]` {
		t.Fatalf("unexpected change: %+v", got)
	}

	changes, err = a.collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(changes) != 1 || changes[0].Key != KeyCount || changes[0].NewValue != "2" {
		t.Fatalf("expected a to see b's count write, got %+v", changes)
	}
}

func TestSQLite_WritesAfterClearAreStillReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.db")
	a := openTestSQLite(t, path)
	b := openTestSQLite(t, path)

	_ = a.Set(KeyCount, "5")
	if _, err := b.collect(); err != nil {
		t.Fatalf("collect: %v", err)
	}
	_ = a.Clear()
	_ = a.Set(KeyCount, "1")

	changes, err := b.collect()
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(changes) != 1 || changes[0].NewValue != "1" {
		t.Fatalf("expected write after clear to be reported, got %+v", changes)
	}
}

func TestOpenSQLite_RejectsEmptyPath(t *testing.T) {
	if _, err := OpenSQLite(context.Background(), SQLiteConfig{Path: "  "}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
