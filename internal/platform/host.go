package platform

import (
	"log/slog"
	"sync"
)

// Static is a Host with a fixed placement, used for headless runs.
type Static struct {
	mu     sync.Mutex
	bounds Rect
}

var _ Host = (*Static)(nil)

func NewStatic(bounds Rect) *Static {
	return &Static{bounds: bounds}
}

func (s *Static) ScreenPosition() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds.X, s.bounds.Y
}

func (s *Static) ViewportSize() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds.Width, s.bounds.Height
}

func (s *Static) Visible() bool { return true }

// Move changes the reported placement.
func (s *Static) Move(bounds Rect) {
	s.mu.Lock()
	s.bounds = bounds
	s.mu.Unlock()
}

// BackendHost reads the screen position of the window owned by PID from a
// window-system Backend. The viewport size and visibility come from Fallback,
// which also answers the position while the window cannot be found.
type BackendHost struct {
	Backend  Backend
	PID      int
	Fallback Host
	Logger   *slog.Logger

	win    WindowID
	found  bool
	warned bool
}

var _ Host = (*BackendHost)(nil)

func (h *BackendHost) ScreenPosition() (int, int) {
	if r, ok := h.bounds(); ok {
		return r.X, r.Y
	}
	return h.Fallback.ScreenPosition()
}

func (h *BackendHost) ViewportSize() (int, int) {
	return h.Fallback.ViewportSize()
}

func (h *BackendHost) Visible() bool {
	if !h.Fallback.Visible() {
		return false
	}
	if _, ok := h.window(); ok {
		return !h.Backend.Hidden(h.win)
	}
	return true
}

func (h *BackendHost) window() (WindowID, bool) {
	if h.found {
		return h.win, true
	}
	win, err := h.Backend.WindowOf(h.PID)
	if err != nil {
		h.warn("window lookup failed, using fallback geometry", err)
		return 0, false
	}
	h.win, h.found = win, true
	return win, true
}

func (h *BackendHost) bounds() (Rect, bool) {
	win, ok := h.window()
	if !ok {
		return Rect{}, false
	}
	r, err := h.Backend.ClientBounds(win)
	if err != nil {
		// The window may have been replaced; look it up again next time.
		h.found = false
		h.warn("window geometry failed, using fallback geometry", err)
		return Rect{}, false
	}
	return r, true
}

func (h *BackendHost) warn(msg string, err error) {
	if h.warned || h.Logger == nil {
		return
	}
	h.warned = true
	h.Logger.Warn(msg, "pid", h.PID, "error", err)
}
