package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/1broseidon/winscene/internal/store"
)

// NotFound is returned by IndexOfID when no record has the id.
const NotFound = -1

var (
	ErrNotInitialized     = errors.New("window registry is not initialized")
	ErrAlreadyInitialized = errors.New("window registry is already initialized")
)

// Host reports this window's live geometry.
type Host interface {
	// ScreenPosition returns the window origin in screen coordinates.
	ScreenPosition() (x, y int)
	// ViewportSize returns the drawable size of the window.
	ViewportSize() (w, h int)
}

type state int

const (
	stateUninitialized state = iota
	stateRegistered
	stateRemoved
)

// Config holds the collaborators of a Registry.
type Config struct {
	Store  store.Store
	Host   Host
	Logger *slog.Logger
}

// Registry keeps this window's view of the shared window set and announces
// changes to it. It is not safe for concurrent use; the owning loop feeds it
// store changes via HandleChange.
type Registry struct {
	store  store.Store
	host   Host
	logger *slog.Logger

	state   state
	id      int
	self    WindowRecord
	windows []WindowRecord

	onShapeChange   func()
	onWindowsChange func()
}

// New creates an uninitialized registry.
func New(cfg Config) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		store:  cfg.Store,
		host:   cfg.Host,
		logger: logger,
	}
}

// OnShapeChange sets the callback run after this window's shape changes.
func (r *Registry) OnShapeChange(fn func()) {
	r.onShapeChange = fn
}

// OnWindowsChange sets the callback run when another window changes the set.
func (r *Registry) OnWindowsChange(fn func()) {
	r.onWindowsChange = fn
}

// Initialize registers this window: it takes the next id from the shared
// counter and appends a record to the shared window set.
func (r *Registry) Initialize(metadata any) error {
	if r.state != stateUninitialized {
		return ErrAlreadyInitialized
	}

	wins, err := LoadWindows(r.store)
	if err != nil {
		return fmt.Errorf("failed to read window set: %w", err)
	}
	count, err := LoadCount(r.store)
	if err != nil {
		return fmt.Errorf("failed to read window counter: %w", err)
	}
	count++

	r.id = count
	r.self = WindowRecord{ID: r.id, Shape: r.CurrentShape(), Metadata: metadata}
	r.windows = append(wins, r.self)

	if err := r.store.Set(store.KeyCount, strconv.Itoa(count)); err != nil {
		return fmt.Errorf("failed to persist window counter: %w", err)
	}
	if err := SaveWindows(r.store, r.windows); err != nil {
		return err
	}
	r.state = stateRegistered

	r.logger.Info("window registered", "id", r.id, "shape", r.self.Shape, "windows", len(r.windows))
	return nil
}

// CurrentShape reads this window's live geometry.
func (r *Registry) CurrentShape() Rect {
	x, y := r.host.ScreenPosition()
	w, h := r.host.ViewportSize()
	return Rect{X: x, Y: y, W: w, H: h}
}

// IndexOfID returns the position of id in the local window set, or NotFound.
func (r *Registry) IndexOfID(id int) int {
	for i := range r.windows {
		if r.windows[i].ID == id {
			return i
		}
	}
	return NotFound
}

// Refresh polls this window's geometry and, when it moved or resized,
// persists the window set and runs the shape-change callback.
func (r *Registry) Refresh() error {
	switch r.state {
	case stateUninitialized:
		return ErrNotInitialized
	case stateRemoved:
		return nil
	}

	shape := r.CurrentShape()
	if shape == r.self.Shape {
		return nil
	}

	r.self.Shape = shape
	// Another window's write may have dropped our record; then only the
	// local record moves until the next change notification.
	if i := r.IndexOfID(r.id); i != NotFound {
		r.windows[i].Shape = shape
	}
	if err := SaveWindows(r.store, r.windows); err != nil {
		return err
	}
	if r.onShapeChange != nil {
		r.onShapeChange()
	}
	return nil
}

// HandleChange applies a change made by another window. Only the window set
// key is of interest; a malformed payload is returned as an error and leaves
// the local copy untouched.
func (r *Registry) HandleChange(c store.Change) error {
	if c.Key != store.KeyWindows {
		return nil
	}
	if r.state == stateRemoved {
		return nil
	}

	next, err := DecodeWindows(c.NewValue)
	if err != nil {
		return err
	}
	changed := WindowsChanged(r.windows, next)
	r.windows = next

	if changed {
		r.logger.Debug("window set changed", "windows", len(next))
		if r.onWindowsChange != nil {
			r.onWindowsChange()
		}
	}
	return nil
}

// Shutdown removes this window's record from the shared set. Any update
// written by another window since our last notification is overwritten.
func (r *Registry) Shutdown() error {
	if r.state != stateRegistered {
		return nil
	}
	r.state = stateRemoved

	i := r.IndexOfID(r.id)
	if i == NotFound {
		r.logger.Debug("window already absent from set", "id", r.id)
		return nil
	}
	r.windows = append(r.windows[:i:i], r.windows[i+1:]...)
	if err := SaveWindows(r.store, r.windows); err != nil {
		return err
	}
	r.logger.Info("window removed", "id", r.id, "windows", len(r.windows))
	return nil
}

// ID returns this window's id, 0 before Initialize.
func (r *Registry) ID() int {
	return r.id
}

// Self returns this window's own record.
func (r *Registry) Self() WindowRecord {
	return r.self
}

// Windows returns a copy of the local window set.
func (r *Registry) Windows() []WindowRecord {
	out := make([]WindowRecord, len(r.windows))
	copy(out, r.windows)
	return out
}
