package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/winscene/internal/registry"
	"github.com/1broseidon/winscene/internal/store"
)

// AliveFunc reports whether the process with the given pid still runs.
type AliveFunc func(pid int) bool

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically drops window records whose owning process has
// exited without removing its record. Records without a pid are kept.
type Reconciler struct {
	interval time.Duration
	store    store.Store
	alive    AliveFunc
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
// A nil alive function means ProcessAlive.
func NewReconciler(cfg ReconcilerConfig, st store.Store, alive AliveFunc) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if alive == nil {
		alive = ProcessAlive
	}

	return &Reconciler{
		interval: interval,
		store:    st,
		alive:    alive,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the watcher
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	if _, err := r.ReconcileNow(); err != nil {
		r.logger.Error("reconciler: pass failed", "error", err)
	}
}

// ReconcileNow removes stale records once and returns how many it removed.
// The window set is only written when something was removed.
func (r *Reconciler) ReconcileNow() (int, error) {
	wins, err := registry.LoadWindows(r.store)
	if err != nil {
		return 0, fmt.Errorf("failed to read window set: %w", err)
	}

	kept := make([]registry.WindowRecord, 0, len(wins))
	for _, w := range wins {
		if pid, ok := w.PID(); ok && !r.alive(pid) {
			r.logger.Info("reconciler: stale window detected", "id", w.ID, "pid", pid)
			continue
		}
		kept = append(kept, w)
	}

	removed := len(wins) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := registry.SaveWindows(r.store, kept); err != nil {
		return 0, err
	}
	return removed, nil
}
