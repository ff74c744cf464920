package registry

import (
	"errors"
	"testing"

	"github.com/1broseidon/winscene/internal/store"
)

type fakeHost struct {
	shape Rect
}

func (h *fakeHost) ScreenPosition() (int, int) { return h.shape.X, h.shape.Y }
func (h *fakeHost) ViewportSize() (int, int)   { return h.shape.W, h.shape.H }

func newTestRegistry(t *testing.T, st store.Store, shape Rect) (*Registry, *fakeHost) {
	t.Helper()
	host := &fakeHost{shape: shape}
	return New(Config{Store: st, Host: host}), host
}

func TestInitialize_IDsStrictlyIncrease(t *testing.T) {
	mem := store.NewMemory()

	prev := 0
	for i := 0; i < 5; i++ {
		r, _ := newTestRegistry(t, mem.Context(), Rect{X: i, Y: i, W: 100, H: 100})
		if err := r.Initialize(nil); err != nil {
			t.Fatalf("initialize %d: %v", i, err)
		}
		if r.ID() <= prev {
			t.Fatalf("id %d not greater than previous %d", r.ID(), prev)
		}
		prev = r.ID()

		// Ids are never reused, even after the window leaves the set.
		if i%2 == 0 {
			if err := r.Shutdown(); err != nil {
				t.Fatalf("shutdown: %v", err)
			}
		}
	}
	if prev != 5 {
		t.Fatalf("expected last id 5, got %d", prev)
	}
}

func TestInitialize_FirstWindowGetsIDOneAndPersists(t *testing.T) {
	mem := store.NewMemory()
	ctx := mem.Context()
	r, _ := newTestRegistry(t, ctx, Rect{X: 10, Y: 20, W: 300, H: 200})

	if err := r.Initialize(map[string]any{"foo": "bar"}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if r.ID() != 1 {
		t.Fatalf("expected id 1, got %d", r.ID())
	}

	snap := mem.Snapshot()
	if snap[store.KeyCount] != "1" {
		t.Fatalf("expected count 1, got %q", snap[store.KeyCount])
	}
	wins, err := DecodeWindows(snap[store.KeyWindows])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(wins) != 1 || wins[0].ID != 1 || wins[0].Shape != (Rect{X: 10, Y: 20, W: 300, H: 200}) {
		t.Fatalf("unexpected stored windows: %+v", wins)
	}
	if ctx.Writes() != 2 {
		t.Fatalf("expected 2 writes (count, windows), got %d", ctx.Writes())
	}
}

func TestInitialize_MalformedStateTreatedAsEmpty(t *testing.T) {
	mem := store.NewMemory()
	seed := mem.Context()
	_ = seed.Set(store.KeyWindows, "{not json")
	_ = seed.Set(store.KeyCount, "garbage")

	r, _ := newTestRegistry(t, mem.Context(), Rect{W: 1, H: 1})
	if err := r.Initialize(nil); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if r.ID() != 1 {
		t.Fatalf("expected id 1, got %d", r.ID())
	}
	if got := r.Windows(); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only own record, got %+v", got)
	}
}

func TestInitialize_Twice(t *testing.T) {
	r, _ := newTestRegistry(t, store.NewMemory().Context(), Rect{})
	if err := r.Initialize(nil); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := r.Initialize(nil); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestIndexOfID(t *testing.T) {
	mem := store.NewMemory()
	a, _ := newTestRegistry(t, mem.Context(), Rect{})
	b, _ := newTestRegistry(t, mem.Context(), Rect{})

	if got := b.IndexOfID(1); got != NotFound {
		t.Fatalf("expected NotFound before registration, got %d", got)
	}
	_ = a.Initialize(nil)
	_ = b.Initialize(nil)

	if got := b.IndexOfID(b.ID()); got != 1 {
		t.Fatalf("expected own index 1, got %d", got)
	}
	if got := b.IndexOfID(a.ID()); got != 0 {
		t.Fatalf("expected index 0 for first window, got %d", got)
	}
	if got := b.IndexOfID(99); got != NotFound {
		t.Fatalf("expected NotFound for unknown id, got %d", got)
	}
}

func TestRefresh_NoopWhenShapeUnchanged(t *testing.T) {
	ctx := store.NewMemory().Context()
	r, _ := newTestRegistry(t, ctx, Rect{X: 1, Y: 2, W: 3, H: 4})
	_ = r.Initialize(nil)

	calls := 0
	r.OnShapeChange(func() { calls++ })
	writes := ctx.Writes()

	for i := 0; i < 3; i++ {
		if err := r.Refresh(); err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}
	if ctx.Writes() != writes {
		t.Fatalf("expected no writes, got %d", ctx.Writes()-writes)
	}
	if calls != 0 {
		t.Fatalf("expected no callbacks, got %d", calls)
	}
}

func TestRefresh_EachFieldTriggersOneWriteAndCallback(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rect)
	}{
		{"x", func(r *Rect) { r.X++ }},
		{"y", func(r *Rect) { r.Y-- }},
		{"w", func(r *Rect) { r.W += 10 }},
		{"h", func(r *Rect) { r.H = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemory()
			ctx := mem.Context()
			r, host := newTestRegistry(t, ctx, Rect{X: 100, Y: 100, W: 640, H: 480})
			_ = r.Initialize(nil)

			calls := 0
			r.OnShapeChange(func() { calls++ })
			writes := ctx.Writes()

			tt.mutate(&host.shape)
			if err := r.Refresh(); err != nil {
				t.Fatalf("refresh: %v", err)
			}
			if got := ctx.Writes() - writes; got != 1 {
				t.Fatalf("expected 1 write, got %d", got)
			}
			if calls != 1 {
				t.Fatalf("expected 1 callback, got %d", calls)
			}
			if r.Self().Shape != host.shape {
				t.Fatalf("self shape = %+v, want %+v", r.Self().Shape, host.shape)
			}
			wins, _ := DecodeWindows(mem.Snapshot()[store.KeyWindows])
			if wins[0].Shape != host.shape {
				t.Fatalf("stored shape = %+v, want %+v", wins[0].Shape, host.shape)
			}

			// A second refresh with the same geometry is a no-op again.
			_ = r.Refresh()
			if calls != 1 || ctx.Writes()-writes != 1 {
				t.Fatalf("expected second refresh to be a no-op")
			}
		})
	}
}

func TestRefresh_BeforeInitialize(t *testing.T) {
	r, _ := newTestRegistry(t, store.NewMemory().Context(), Rect{})
	if err := r.Refresh(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestWindowsChanged(t *testing.T) {
	ids := func(ids ...int) []WindowRecord {
		out := make([]WindowRecord, len(ids))
		for i, id := range ids {
			out[i] = WindowRecord{ID: id, Shape: Rect{X: i * 7}}
		}
		return out
	}
	tests := []struct {
		name string
		prev []WindowRecord
		next []WindowRecord
		want bool
	}{
		{"length differs", ids(1), ids(), true},
		{"id differs at position", ids(1, 2), ids(1, 3), true},
		{"identical ids", ids(1, 2), ids(1, 2), false},
		{"same ids other fields differ", ids(1, 2), []WindowRecord{{ID: 1, Shape: Rect{X: 50}}, {ID: 2, Metadata: "x"}}, false},
		{"reordered", ids(1, 2), ids(2, 1), true},
		{"both empty", nil, ids(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WindowsChanged(tt.prev, tt.next); got != tt.want {
				t.Fatalf("WindowsChanged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandleChange_NotifiesOnlyOnSetChange(t *testing.T) {
	mem := store.NewMemory()
	actx := mem.Context()
	bctx := mem.Context()
	a, _ := newTestRegistry(t, actx, Rect{W: 10, H: 10})
	b, bHost := newTestRegistry(t, bctx, Rect{X: 50, W: 10, H: 10})

	calls := 0
	a.OnWindowsChange(func() { calls++ })

	_ = a.Initialize(nil)
	_ = b.Initialize(nil)

	drain := func() {
		for {
			select {
			case c := <-actx.Changes():
				if err := a.HandleChange(c); err != nil {
					t.Fatalf("handle change: %v", err)
				}
			default:
				return
			}
		}
	}

	drain()
	if calls != 1 {
		t.Fatalf("expected 1 callback after b joined, got %d", calls)
	}
	if len(a.Windows()) != 2 {
		t.Fatalf("expected a to see 2 windows, got %d", len(a.Windows()))
	}

	// b moving replaces a's copy but is not a set change.
	bHost.shape.X = 75
	_ = b.Refresh()
	drain()
	if calls != 1 {
		t.Fatalf("expected geometry-only change to skip callback, got %d", calls)
	}
	if got := a.Windows()[1].Shape.X; got != 75 {
		t.Fatalf("expected a's copy updated to x=75, got %d", got)
	}

	_ = b.Shutdown()
	drain()
	if calls != 2 {
		t.Fatalf("expected callback after b left, got %d", calls)
	}
	if got := a.Windows(); len(got) != 1 || got[0].ID != a.ID() {
		t.Fatalf("unexpected windows after b left: %+v", got)
	}
}

func TestHandleChange_IgnoresOtherKeysAndRejectsMalformed(t *testing.T) {
	r, _ := newTestRegistry(t, store.NewMemory().Context(), Rect{})
	_ = r.Initialize(nil)
	calls := 0
	r.OnWindowsChange(func() { calls++ })

	if err := r.HandleChange(store.Change{Key: store.KeyCount, NewValue: "oops"}); err != nil {
		t.Fatalf("expected count change ignored, got %v", err)
	}
	if err := r.HandleChange(store.Change{Key: store.KeyWindows, NewValue: "oops"}); err == nil {
		t.Fatalf("expected parse error")
	}
	if calls != 0 || len(r.Windows()) != 1 {
		t.Fatalf("malformed change must leave state untouched")
	}
}

func TestShutdown_RemovesOnlyOwnRecord(t *testing.T) {
	mem := store.NewMemory()
	regs := make([]*Registry, 4)
	for i := range regs {
		regs[i], _ = newTestRegistry(t, mem.Context(), Rect{X: i * 100, W: 100, H: 100})
		if err := regs[i].Initialize(nil); err != nil {
			t.Fatalf("initialize: %v", err)
		}
	}

	// The last window has the complete set locally.
	last := regs[3]
	if err := last.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	wins, _ := DecodeWindows(mem.Snapshot()[store.KeyWindows])
	want := []int{1, 2, 3}
	if len(wins) != len(want) {
		t.Fatalf("expected %d windows, got %+v", len(want), wins)
	}
	for i, id := range want {
		if wins[i].ID != id {
			t.Fatalf("position %d: id %d, want %d", i, wins[i].ID, id)
		}
	}

	// Shutdown is once-only; a second call does not write.
	if err := last.Shutdown(); err != nil {
		t.Fatalf("second shutdown: %v", err)
	}
	if err := last.Refresh(); err != nil {
		t.Fatalf("refresh after shutdown: %v", err)
	}
}

func TestShutdown_MiddleWindowKeepsOrder(t *testing.T) {
	mem := store.NewMemory()
	ctx := mem.Context()
	seed, _ := DecodeWindows(`[{"id":1},{"id":2},{"id":4}]`)
	_ = SaveWindows(ctx, seed)
	_ = ctx.Set(store.KeyCount, "4")

	r, _ := newTestRegistry(t, ctx, Rect{})
	_ = r.Initialize(nil) // id 5, appended
	if r.ID() != 5 {
		t.Fatalf("expected id 5, got %d", r.ID())
	}

	// Pretend another window moved us into the middle of the list.
	_ = r.HandleChange(store.Change{Key: store.KeyWindows, NewValue: `[{"id":1},{"id":5},{"id":2},{"id":4}]`})
	_ = r.Shutdown()

	wins, _ := DecodeWindows(mem.Snapshot()[store.KeyWindows])
	got := make([]int, len(wins))
	for i, w := range wins {
		got[i] = w.ID
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 4 {
		t.Fatalf("unexpected order after shutdown: %v", got)
	}
}

func TestWindowRecord_PID(t *testing.T) {
	wins, err := DecodeWindows(`[{"id":1,"shape":{"x":0,"y":0,"w":0,"h":0},"metaData":{"pid":4242}},{"id":2}]`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pid, ok := wins[0].PID(); !ok || pid != 4242 {
		t.Fatalf("PID = %d, %v", pid, ok)
	}
	if _, ok := wins[1].PID(); ok {
		t.Fatalf("expected no pid for record without metadata")
	}
}
