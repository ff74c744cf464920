package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	_ "github.com/ncruces/go-sqlite3/driver" // SQLite driver (pure Go)
	_ "github.com/ncruces/go-sqlite3/embed"  // Embed SQLite WASM binary
)

const (
	defaultPollInterval = 250 * time.Millisecond
	sqliteChangeBuffer  = 64
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS kv (
		key     TEXT PRIMARY KEY,
		value   TEXT NOT NULL,
		writer  TEXT NOT NULL,
		version INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS kv_version ON kv(version)`,
	`CREATE TABLE IF NOT EXISTS seq (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		n  INTEGER NOT NULL
	)`,
	`INSERT OR IGNORE INTO seq(id, n) VALUES (1, 0)`,
}

// SQLiteConfig configures a SQLite-backed store.
type SQLiteConfig struct {
	Path string
	// PollInterval is the fallback scan interval used in addition to file
	// notifications. Zero means 250ms.
	PollInterval time.Duration
	// Watch enables change notifications. One-shot commands leave it off.
	Watch  bool
	Logger *slog.Logger
}

// SQLite is a Store kept in a SQLite database file shared by every process of
// the session. Each open handle is its own context: it gets a writer id, and
// its watcher reports rows written by any other writer.
type SQLite struct {
	db     *sql.DB
	path   string
	writer string
	logger *slog.Logger

	mu          sync.Mutex
	lastVersion int64
	seen        map[string]string

	changes chan Change
	done    chan struct{}
	wg      sync.WaitGroup
	fsw     *fsnotify.Watcher
	once    sync.Once
}

var _ Watcher = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the store at cfg.Path.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig) (*SQLite, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}
	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create store schema: %w", err)
		}
	}

	s := &SQLite{
		db:      db,
		path:    cfg.Path,
		writer:  fmt.Sprintf("%d-%d", os.Getpid(), time.Now().UnixNano()),
		logger:  logger,
		seen:    make(map[string]string),
		changes: make(chan Change, sqliteChangeBuffer),
		done:    make(chan struct{}),
	}
	if err := s.prime(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if cfg.Watch {
		interval := cfg.PollInterval
		if interval <= 0 {
			interval = defaultPollInterval
		}
		if err := s.startWatch(interval); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	logger.Debug("store opened", "path", cfg.Path, "writer", s.writer, "watch", cfg.Watch)
	return s, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}
	return nil
}

// prime records the current contents so that history written before this
// handle was opened is not reported as changes.
func (s *SQLite) prime(ctx context.Context) error {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT n FROM seq WHERE id = 1`).Scan(&n); err != nil {
		return fmt.Errorf("failed to read store sequence: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM kv`)
	if err != nil {
		return fmt.Errorf("failed to read store: %w", err)
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastVersion = n
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("failed to read store row: %w", err)
		}
		s.seen[key] = value
	}
	return rows.Err()
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

func (s *SQLite) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(key, value string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin write of %q: %w", key, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE seq SET n = n + 1 WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to bump store sequence: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO kv(key, value, writer, version)
		VALUES (?, ?, ?, (SELECT n FROM seq WHERE id = 1))
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			writer = excluded.writer,
			version = excluded.version`,
		key, value, s.writer); err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %q: %w", key, err)
	}

	s.mu.Lock()
	s.seen[key] = value
	s.mu.Unlock()
	return nil
}

// Clear deletes every key. The sequence keeps counting so that watchers in
// other processes still see later writes.
func (s *SQLite) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM kv`); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	s.mu.Lock()
	s.seen = make(map[string]string)
	s.mu.Unlock()
	return nil
}

func (s *SQLite) Changes() <-chan Change {
	return s.changes
}

func (s *SQLite) startWatch(interval time.Duration) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create store watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(s.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("failed to watch store directory: %w", err)
	}
	s.fsw = fsw

	s.wg.Add(1)
	go s.watchLoop(interval)
	return nil
}

func (s *SQLite) watchLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	base := filepath.Base(s.path)
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.fsw.Events:
			if !ok {
				return
			}
			// Writes land in the -wal file, checkpoints in the main file.
			if strings.HasPrefix(filepath.Base(ev.Name), base) {
				s.poll()
			}
		case err, ok := <-s.fsw.Errors:
			if !ok {
				return
			}
			s.logger.Warn("store watcher error", "error", err)
		case <-ticker.C:
			s.poll()
		}
	}
}

type kvRow struct {
	key     string
	value   string
	writer  string
	version int64
}

func (s *SQLite) poll() {
	changes, err := s.collect()
	if err != nil {
		s.logger.Warn("store poll failed", "error", err)
		return
	}
	for _, c := range changes {
		select {
		case s.changes <- c:
		case <-s.done:
			return
		}
	}
}

// collect returns the foreign writes since the last scan, oldest first.
func (s *SQLite) collect() ([]Change, error) {
	s.mu.Lock()
	since := s.lastVersion
	s.mu.Unlock()

	rows, err := s.db.Query(`SELECT key, value, writer, version FROM kv WHERE version > ? ORDER BY version`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to scan store: %w", err)
	}
	var fresh []kvRow
	for rows.Next() {
		var r kvRow
		if err := rows.Scan(&r.key, &r.value, &r.writer, &r.version); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to read store row: %w", err)
		}
		fresh = append(fresh, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Change
	for _, r := range fresh {
		if r.version > s.lastVersion {
			s.lastVersion = r.version
		}
		old := s.seen[r.key]
		s.seen[r.key] = r.value
		if r.writer == s.writer {
			continue
		}
		out = append(out, Change{Key: r.key, OldValue: old, NewValue: r.value})
	}
	return out, nil
}

// Close stops the watcher and closes the database.
func (s *SQLite) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		if s.fsw != nil {
			_ = s.fsw.Close()
		}
		s.wg.Wait()
		close(s.changes)
		err = s.db.Close()
	})
	return err
}
