package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/winscene/internal/app"
	"github.com/1broseidon/winscene/internal/config"
	"github.com/1broseidon/winscene/internal/desktop"
	"github.com/1broseidon/winscene/internal/platform"
	"github.com/1broseidon/winscene/internal/render"
	"github.com/1broseidon/winscene/internal/store"
)

func runWindow(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winscene run [--path PATH] [--clear] [--headless]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a window that registers in the shared window set and draws one")
		fmt.Fprintln(os.Stderr, "cube per registered window, aligned to screen coordinates.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	path := fs.String("path", "", "Config file path (default: ~/.config/winscene/config.yaml)")
	clearOnly := fs.Bool("clear", false, "Wipe the shared store and exit without opening a window")
	headless := fs.Bool("headless", false, "Run without a window at the configured headless geometry")
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

	if *clearOnly {
		if err := clearStore(ctx, cfg, logger); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("store cleared")
		return 0
	}

	st, err := app.OpenStore(ctx, cfg, true, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *headless {
		err = runHeadless(ctx, cfg, st, logger)
	} else {
		err = runDesktop(ctx, cfg, st, logger)
	}
	if err != nil {
		logger.Error("winscene stopped", "error", err)
		return 1
	}
	return 0
}

func runHeadless(ctx context.Context, cfg *config.Config, st *store.SQLite, logger *slog.Logger) error {
	h := cfg.Headless
	host := platform.NewStatic(platform.Rect{X: h.X, Y: h.Y, Width: h.Width, Height: h.Height})
	session := app.NewSession(app.SessionConfig{
		Store:        st,
		Host:         host,
		Renderer:     render.NewHeadless(logger.With("component", "render")),
		StartupDelay: cfg.StartupDelay,
		Falloff:      cfg.Falloff,
		Metadata:     cfg.WindowMetadata(os.Getpid()),
		Logger:       logger,
	})
	logger.Info("running headless", "store", st.Path(), "x", h.X, "y", h.Y, "width", h.Width, "height", h.Height)
	return app.RunHeadless(ctx, session, h.Hz)
}

func runDesktop(ctx context.Context, cfg *config.Config, st *store.SQLite, logger *slog.Logger) error {
	host, disconnect, err := desktopHost(cfg, logger)
	if err != nil {
		return errors.Join(err, st.Close())
	}
	defer disconnect()

	r := desktop.NewEbiten()
	session := app.NewSession(app.SessionConfig{
		Store:        st,
		Host:         host,
		Renderer:     r,
		StartupDelay: cfg.StartupDelay,
		Falloff:      cfg.Falloff,
		Metadata:     cfg.WindowMetadata(os.Getpid()),
		Logger:       logger,
	})
	logger.Info("opening window", "store", st.Path(), "geometry", cfg.Geometry)
	return desktop.RunWindow(ctx, desktop.WindowConfig{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
	}, session, r, logger)
}

// desktopHost picks where the window reads its screen position from.
func desktopHost(cfg *config.Config, logger *slog.Logger) (platform.Host, func(), error) {
	if cfg.Geometry == config.GeometryEbiten {
		return desktop.Host{}, func() {}, nil
	}

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		if cfg.Geometry == config.GeometryX11 {
			return nil, nil, err
		}
		logger.Warn("X11 geometry unavailable, using window library position", "error", err)
		return desktop.Host{}, func() {}, nil
	}
	host := &platform.BackendHost{
		Backend:  backend,
		PID:      os.Getpid(),
		Fallback: desktop.Host{},
		Logger:   logger.With("component", "geometry"),
	}
	return host, backend.Disconnect, nil
}
