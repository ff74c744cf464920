package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/winscene/internal/platform"
	"github.com/1broseidon/winscene/internal/registry"
	"github.com/1broseidon/winscene/internal/scene"
	"github.com/1broseidon/winscene/internal/store"
)

// SessionConfig holds everything one window needs to join the shared scene.
type SessionConfig struct {
	Store    store.Watcher
	Host     platform.Host
	Renderer scene.Renderer
	// Clock drives cube rotation. Nil means the system clock.
	Clock scene.Clock
	// StartupDelay is how long the window must stay visible before it
	// registers, so the window system can report a settled position.
	StartupDelay time.Duration
	Falloff      float64
	Metadata     any
	Logger       *slog.Logger
}

// Session is one window's lifecycle: wait until visible, register, then run
// the scene one tick at a time. All methods must be called from the owning
// loop.
type Session struct {
	store        store.Watcher
	host         platform.Host
	registry     *registry.Registry
	driver       *scene.Driver
	queue        scene.FrameQueue
	startupDelay time.Duration
	logger       *slog.Logger

	visibleSince time.Time
	started      bool
	closed       bool
}

func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := registry.New(registry.Config{
		Store:  cfg.Store,
		Host:   cfg.Host,
		Logger: logger.With("component", "registry"),
	})
	driver := scene.NewDriver(scene.Config{
		Falloff:  cfg.Falloff,
		Metadata: cfg.Metadata,
		Logger:   logger.With("component", "scene"),
	}, reg, cfg.Renderer, cfg.Clock)

	return &Session{
		store:        cfg.Store,
		host:         cfg.Host,
		registry:     reg,
		driver:       driver,
		startupDelay: cfg.StartupDelay,
		logger:       logger,
	}
}

// Tick advances the session by one host frame: pending store changes are
// applied, the viewport is checked, queued frames run, and a window that has
// been visible long enough is started.
func (s *Session) Tick(now time.Time) error {
	if s.closed {
		return nil
	}
	s.drainChanges()

	if s.started {
		if w, h := s.host.ViewportSize(); w > 0 && h > 0 {
			if vw, vh := s.driver.Viewport(); vw != w || vh != h {
				s.driver.Resize(w, h)
			}
		}
		s.queue.Flush()
		return nil
	}

	if !s.host.Visible() {
		s.visibleSince = time.Time{}
		return nil
	}
	if s.visibleSince.IsZero() {
		s.visibleSince = now
	}
	if now.Sub(s.visibleSince) < s.startupDelay {
		return nil
	}
	return s.start()
}

func (s *Session) start() error {
	w, h := s.host.ViewportSize()
	if err := s.driver.Start(w, h); err != nil {
		return fmt.Errorf("failed to start scene: %w", err)
	}
	s.driver.Run(&s.queue)
	s.started = true
	s.logger.Info("window joined scene",
		"id", s.registry.ID(),
		"windows", len(s.registry.Windows()))
	return nil
}

func (s *Session) drainChanges() {
	changes := s.store.Changes()
	for {
		select {
		case c, ok := <-changes:
			if !ok {
				return
			}
			if err := s.registry.HandleChange(c); err != nil {
				s.logger.Warn("ignoring store change", "key", c.Key, "error", err)
			}
		default:
			return
		}
	}
}

// Started reports whether the window has registered.
func (s *Session) Started() bool {
	return s.started
}

// Registry exposes the window registry, mainly for inspection.
func (s *Session) Registry() *registry.Registry {
	return s.registry
}

// Driver exposes the scene driver.
func (s *Session) Driver() *scene.Driver {
	return s.driver
}

// Close removes this window from the shared set and closes the store. It is
// safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return errors.Join(s.registry.Shutdown(), s.store.Close())
}
