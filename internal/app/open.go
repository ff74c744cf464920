package app

import (
	"context"
	"log/slog"

	"github.com/1broseidon/winscene/internal/config"
	"github.com/1broseidon/winscene/internal/store"
)

// OpenStore opens the session's shared store as configured. Watch enables
// change notifications, which only windows and watchers need.
func OpenStore(ctx context.Context, cfg *config.Config, watch bool, logger *slog.Logger) (*store.SQLite, error) {
	path, err := cfg.ResolvedStorePath()
	if err != nil {
		return nil, err
	}
	return store.OpenSQLite(ctx, store.SQLiteConfig{
		Path:         path,
		PollInterval: cfg.PollInterval,
		Watch:        watch,
		Logger:       logger.With("component", "store"),
	})
}
