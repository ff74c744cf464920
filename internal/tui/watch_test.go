package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/winscene/internal/registry"
	"github.com/1broseidon/winscene/internal/store"
)

func seededStore(t *testing.T) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	st := mem.Context()
	wins := []registry.WindowRecord{
		{ID: 1, Shape: registry.Rect{X: 10, Y: 20, W: 300, H: 200}, Metadata: map[string]any{"pid": 10, "title": "cubes"}},
		{ID: 3, Shape: registry.Rect{X: 400, Y: 20, W: 300, H: 200}, Metadata: map[string]any{"pid": 30}},
	}
	if err := registry.SaveWindows(st, wins); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := st.Set(store.KeyCount, "3"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return mem
}

func TestModel_LoadsSnapshot(t *testing.T) {
	mem := seededStore(t)
	m := newModel(WatchConfig{Store: mem.Context(), Alive: func(pid int) bool { return pid == 10 }})

	msg := m.load()()
	next, _ := m.Update(msg)
	m = next.(model)

	if len(m.windows) != 2 || m.count != 3 {
		t.Fatalf("snapshot not applied: %d windows, count %d", len(m.windows), m.count)
	}
	rows := m.rows()
	if rows[0][1] != "1" || rows[0][6] != "10" || rows[0][7] != "cubes" {
		t.Fatalf("unexpected first row %v", rows[0])
	}
	if rows[1][0] != deadDot {
		t.Fatalf("exited owner should render the dead marker")
	}
	view := m.View()
	if !strings.Contains(view, "2 window(s)") || !strings.Contains(view, "next id 4") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestModel_ClearNeedsConfirmation(t *testing.T) {
	mem := seededStore(t)
	m := newModel(WatchConfig{Store: mem.Context(), Alive: func(int) bool { return true }})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	m = next.(model)
	if !m.confirming || cmd != nil {
		t.Fatalf("expected confirmation prompt")
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	m = next.(model)
	if m.confirming || len(mem.Snapshot()) == 0 {
		t.Fatalf("cancelled clear must leave the store alone")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	m = next.(model)
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if cmd == nil {
		t.Fatalf("expected clear command")
	}
	if res, ok := cmd().(actionMsg); !ok || res.err != nil {
		t.Fatalf("clear failed: %+v", res)
	}
	if len(mem.Snapshot()) != 0 {
		t.Fatalf("store not cleared: %v", mem.Snapshot())
	}
}

func TestModel_PruneRemovesDeadOwners(t *testing.T) {
	mem := seededStore(t)
	m := newModel(WatchConfig{Store: mem.Context(), Alive: func(pid int) bool { return pid == 10 }})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	res, ok := cmd().(actionMsg)
	if !ok || res.err != nil || res.text != "pruned 1 stale window(s)" {
		t.Fatalf("unexpected prune result %+v", res)
	}
}

func TestModel_QuitKey(t *testing.T) {
	m := newModel(WatchConfig{Store: store.NewMemory().Context()})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
}

func TestRunPlain_PrintsEachWindowSet(t *testing.T) {
	mem := seededStore(t)
	watcher := mem.Context()
	other := mem.Context()

	if err := registry.SaveWindows(other, []registry.WindowRecord{{ID: 1, Shape: registry.Rect{W: 5, H: 5}}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := other.Set(store.KeyCount, "9"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := other.Set(store.KeyWindows, "not json"); err != nil {
		t.Fatalf("set: %v", err)
	}
	_ = watcher.Close()

	var buf bytes.Buffer
	if err := RunPlain(context.Background(), &buf, watcher); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[1], "1 window(s): #1[0,0 5x5]") {
		t.Fatalf("unexpected change line %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "malformed window set") {
		t.Fatalf("unexpected malformed line %q", lines[2])
	}
}
