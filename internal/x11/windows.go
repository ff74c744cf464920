package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Geometry is a window rectangle in root (screen) coordinates.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// FindWindowByPID returns the first managed client window owned by pid,
// using _NET_CLIENT_LIST and _NET_WM_PID.
func (c *Connection) FindWindowByPID(pid int) (xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to list client windows: %w", err)
	}
	for _, win := range clients {
		wpid, err := ewmh.WmPidGet(c.XUtil, win)
		if err != nil {
			continue
		}
		if int(wpid) == pid && c.IsNormalWindow(win) {
			return win, nil
		}
	}
	return 0, fmt.Errorf("no window owned by pid %d", pid)
}

// ClientGeometry returns the client area of a window in screen coordinates.
// The window manager's decorations are measured and stripped from the frame
// rectangle so the result matches what the application itself draws into.
func (c *Connection) ClientGeometry(windowID xproto.Window) (Geometry, error) {
	frame, err := xwindow.New(c.XUtil, windowID).DecorGeometry()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to get frame geometry: %w", err)
	}
	left, right, top, bottom, err := c.GetFrameExtents(windowID)
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{
		X:      frame.X() + left,
		Y:      frame.Y() + top,
		Width:  frame.Width() - left - right,
		Height: frame.Height() - top - bottom,
	}, nil
}

// GetFrameExtents returns the window decoration sizes (if available)
func (c *Connection) GetFrameExtents(windowID xproto.Window) (left, right, top, bottom int, err error) {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		// No frame extents available, return zeros
		return 0, 0, 0, 0, nil
	}

	return int(extents.Left), int(extents.Right), int(extents.Top), int(extents.Bottom), nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return true
		}
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	return len(types) == 0
}

// IsHidden reports whether the window manager has minimized the window.
func (c *Connection) IsHidden(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return true
		}
	}
	return false
}
