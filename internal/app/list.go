package app

import (
	"fmt"
	"io"

	"github.com/1broseidon/winscene/internal/platform"
	"github.com/1broseidon/winscene/internal/registry"
)

// ListEntry is one window in a store listing.
type ListEntry struct {
	ID       int    `json:"id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	PID      int    `json:"pid,omitempty"`
	Alive    bool   `json:"alive"`
	Display  string `json:"display,omitempty"`
	Metadata any    `json:"metadata,omitempty"`
}

// List is a snapshot of the shared window set.
type List struct {
	Count   int         `json:"count"`
	Windows []ListEntry `json:"windows"`
}

// BuildList annotates the window set with liveness and the display holding
// each window's center. Windows without a pid count as alive.
func BuildList(wins []registry.WindowRecord, count int, alive func(pid int) bool, displays []platform.Display) List {
	out := List{Count: count, Windows: make([]ListEntry, 0, len(wins))}
	for _, w := range wins {
		cx, cy := w.Shape.Center()
		entry := ListEntry{
			ID:       w.ID,
			X:        w.Shape.X,
			Y:        w.Shape.Y,
			Width:    w.Shape.W,
			Height:   w.Shape.H,
			Alive:    true,
			Display:  platform.DisplayAt(displays, int(cx), int(cy)),
			Metadata: w.Metadata,
		}
		if pid, ok := w.PID(); ok {
			entry.PID = pid
			entry.Alive = alive(pid)
		}
		out.Windows = append(out.Windows, entry)
	}
	return out
}

// WriteList prints the listing as an aligned table.
func WriteList(w io.Writer, l List) {
	if len(l.Windows) == 0 {
		fmt.Fprintf(w, "no windows registered (next id %d)\n", l.Count+1)
		return
	}
	fmt.Fprintf(w, "%-4s %-6s %-6s %-6s %-6s %-8s %-6s %s\n", "ID", "X", "Y", "W", "H", "PID", "ALIVE", "DISPLAY")
	for _, e := range l.Windows {
		pid := "-"
		if e.PID > 0 {
			pid = fmt.Sprint(e.PID)
		}
		display := e.Display
		if display == "" {
			display = "-"
		}
		fmt.Fprintf(w, "%-4d %-6d %-6d %-6d %-6d %-8s %-6t %s\n", e.ID, e.X, e.Y, e.Width, e.Height, pid, e.Alive, display)
	}
	fmt.Fprintf(w, "next id %d\n", l.Count+1)
}
