package daemon

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/1broseidon/winscene/internal/registry"
	"github.com/1broseidon/winscene/internal/store"
)

func seed(t *testing.T, st store.Store, wins []registry.WindowRecord) {
	t.Helper()
	if err := registry.SaveWindows(st, wins); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestReconcileNow_RemovesDeadOwners(t *testing.T) {
	mem := store.NewMemory()
	st := mem.Context()
	seed(t, st, []registry.WindowRecord{
		{ID: 1, Metadata: map[string]any{"pid": 100}},
		{ID: 2, Metadata: map[string]any{"pid": 200}},
		{ID: 3},
	})

	alive := func(pid int) bool { return pid == 200 }
	r := NewReconciler(ReconcilerConfig{}, st, alive)

	removed, err := r.ReconcileNow()
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	wins, _ := registry.LoadWindows(st)
	if len(wins) != 2 || wins[0].ID != 2 || wins[1].ID != 3 {
		t.Fatalf("unexpected remaining windows %+v", wins)
	}
}

func TestReconcileNow_NoWriteWhenNothingStale(t *testing.T) {
	mem := store.NewMemory()
	st := mem.Context()
	seed(t, st, []registry.WindowRecord{{ID: 1, Metadata: map[string]any{"pid": 100}}})
	before := st.Writes()

	r := NewReconciler(ReconcilerConfig{}, st, func(int) bool { return true })
	removed, err := r.ReconcileNow()
	if err != nil || removed != 0 {
		t.Fatalf("reconcile = %d, %v", removed, err)
	}
	if st.Writes() != before {
		t.Fatalf("reconcile wrote without removing anything")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	mem := store.NewMemory()
	r := NewReconciler(ReconcilerConfig{Interval: time.Millisecond}, mem.Context(), func(int) bool { return true })
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("reconciler did not stop")
	}
}

func TestProcessAlive(t *testing.T) {
	if !ProcessAlive(os.Getpid()) {
		t.Fatalf("own process reported dead")
	}
	if ProcessAlive(0) || ProcessAlive(-1) {
		t.Fatalf("non-positive pids must be dead")
	}
}
