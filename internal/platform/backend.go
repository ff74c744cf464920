package platform

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
}

// Host is where a window reads its own placement from. It satisfies the
// registry's host interface and adds a visibility gate.
type Host interface {
	ScreenPosition() (x, y int)
	ViewportSize() (w, h int)
	// Visible reports whether the window is mapped and not minimized.
	Visible() bool
}

// Backend abstracts window-system queries across platforms.
type Backend interface {
	Displays() ([]Display, error)
	// WindowOf returns the top-level window owned by pid.
	WindowOf(pid int) (WindowID, error)
	// ClientBounds returns the drawable area of a window in screen
	// coordinates, excluding decorations.
	ClientBounds(windowID WindowID) (Rect, error)
	Hidden(windowID WindowID) bool
}

// DisplayAt returns the name of the display holding the point, or "".
func DisplayAt(displays []Display, x, y int) string {
	for _, d := range displays {
		b := d.Bounds
		if x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height {
			return d.Name
		}
	}
	return ""
}
