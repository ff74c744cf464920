package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"

	"github.com/1broseidon/winscene/internal/app"
	"github.com/1broseidon/winscene/internal/config"
	"github.com/1broseidon/winscene/internal/daemon"
	"github.com/1broseidon/winscene/internal/platform"
	"github.com/1broseidon/winscene/internal/registry"
	"github.com/1broseidon/winscene/internal/tui"
)

func clearStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := app.OpenStore(ctx, cfg, false, logger)
	if err != nil {
		return err
	}
	defer st.Close()
	return app.Clear(st)
}

func runClear(args []string) int {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/winscene/config.yaml)")
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winscene clear [--path PATH] [--yes]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Wipe every window record and the id counter. Open windows keep")
		fmt.Fprintln(os.Stderr, "drawing their last known set until they next write.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, logger, ok := setup(*path)
	if !ok {
		return 1
	}

	if !*yes && tui.IsInteractive() {
		confirmed := false
		err := huh.NewConfirm().
			Title("Clear the shared window store?").
			Affirmative("Clear").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !confirmed {
			fmt.Println("cancelled")
			return 0
		}
	}

	if err := clearStore(context.Background(), cfg, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("store cleared")
	return 0
}

// listDisplays returns the X11 displays, or nil without an X server.
func listDisplays(logger *slog.Logger) []platform.Display {
	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		logger.Debug("display lookup skipped", "error", err)
		return nil
	}
	defer backend.Disconnect()
	displays, err := backend.Displays()
	if err != nil {
		logger.Debug("display lookup failed", "error", err)
		return nil
	}
	return displays
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/winscene/config.yaml)")
	jsonOut := fs.Bool("json", false, "Print JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, logger, ok := setup(*path)
	if !ok {
		return 1
	}
	st, err := app.OpenStore(context.Background(), cfg, false, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	wins, err := registry.LoadWindows(st)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	count, err := registry.LoadCount(st)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	l := app.BuildList(wins, count, daemon.ProcessAlive, listDisplays(logger))
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(l); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	app.WriteList(os.Stdout, l)
	return 0
}

func runPrune(args []string) int {
	fs := flag.NewFlagSet("prune", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/winscene/config.yaml)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, logger, ok := setup(*path)
	if !ok {
		return 1
	}
	st, err := app.OpenStore(context.Background(), cfg, false, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	r := daemon.NewReconciler(daemon.ReconcilerConfig{Logger: logger}, st, nil)
	removed, err := r.ReconcileNow()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("removed %d stale window(s)\n", removed)
	return 0
}

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/winscene/config.yaml)")
	plain := fs.Bool("plain", false, "Print one line per change instead of the interactive table")
	prune := fs.Bool("prune", false, "Periodically remove stale windows (interval: prune_interval, default 10s)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winscene watch [--path PATH] [--plain] [--prune]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓  Navigate windows")
		fmt.Fprintln(os.Stderr, "  p         Prune stale windows now")
		fmt.Fprintln(os.Stderr, "  c         Clear the store (asks first)")
		fmt.Fprintln(os.Stderr, "  q, Esc    Quit")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, logger, ok := setup(*path)
	if !ok {
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := app.OpenStore(ctx, cfg, true, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer st.Close()

	if *prune || cfg.PruneInterval > 0 {
		r := daemon.NewReconciler(daemon.ReconcilerConfig{
			Interval: cfg.PruneInterval,
			Logger:   logger.With("component", "reconciler"),
		}, st, nil)
		go r.Run(ctx)
	}

	if *plain || !tui.IsInteractive() {
		err = tui.RunPlain(ctx, os.Stdout, st)
	} else {
		err = tui.Run(ctx, tui.WatchConfig{Store: st, Interval: cfg.PollInterval})
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
