package tui

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/1broseidon/winscene/internal/registry"
	"github.com/1broseidon/winscene/internal/store"
)

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func requireTTY() error {
	if !IsInteractive() {
		return fmt.Errorf("watch view requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	return nil
}

// RunPlain prints one line per window set change until ctx is done or the
// watcher closes.
func RunPlain(ctx context.Context, w io.Writer, st store.Watcher) error {
	wins, err := registry.LoadWindows(st)
	if err != nil {
		return err
	}
	printSet(w, wins)

	changes := st.Changes()
	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			if c.Key != store.KeyWindows {
				continue
			}
			wins, err := registry.DecodeWindows(c.NewValue)
			if err != nil {
				fmt.Fprintf(w, "malformed window set: %v\n", err)
				continue
			}
			printSet(w, wins)
		}
	}
}

func printSet(w io.Writer, wins []registry.WindowRecord) {
	fmt.Fprintf(w, "%d window(s):", len(wins))
	for _, win := range wins {
		s := win.Shape
		fmt.Fprintf(w, " #%d[%d,%d %dx%d]", win.ID, s.X, s.Y, s.W, s.H)
	}
	fmt.Fprintln(w)
}
