package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/winscene/internal/runtimepath"
)

// GeometrySource selects how a window reads its own screen position.
type GeometrySource string

const (
	GeometryAuto   GeometrySource = "auto"   // X11 frame geometry when available, else ebiten.
	GeometryEbiten GeometrySource = "ebiten" // Position reported by the windowing library.
	GeometryX11    GeometrySource = "x11"    // Decorated frame geometry from the X server.
)

const (
	DefaultStartupDelay = 500 * time.Millisecond
	DefaultPollInterval = 250 * time.Millisecond
	DefaultFalloff      = 0.05
	DefaultWindowTitle  = "winscene"
	DefaultWindowWidth  = 640
	DefaultWindowHeight = 480
	DefaultHeadlessHz   = 60
)

// WindowConfig sets up the desktop window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// HeadlessConfig describes the fixed geometry used when running without a
// window.
type HeadlessConfig struct {
	X      int `yaml:"x"`
	Y      int `yaml:"y"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	// Hz is the frame rate of the headless loop.
	Hz int `yaml:"hz"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is one of: debug, info, warning, error
	Level string `yaml:"level"`
}

// Config is the effective winscene configuration.
type Config struct {
	// StorePath is the shared store file. Empty means the session runtime
	// directory.
	StorePath string `yaml:"store_path,omitempty"`
	// StartupDelay gives the window system time to report a correct window
	// position before registration.
	StartupDelay time.Duration `yaml:"startup_delay"`
	// PollInterval is the fallback scan interval of the store watcher.
	PollInterval time.Duration  `yaml:"poll_interval"`
	Falloff      float64        `yaml:"falloff"`
	Geometry     GeometrySource `yaml:"geometry"`
	Window       WindowConfig   `yaml:"window"`
	Headless     HeadlessConfig `yaml:"headless"`
	// Metadata is stored with this window's record, next to pid and title.
	Metadata map[string]any `yaml:"metadata,omitempty"`
	Logging  LoggingConfig  `yaml:"logging"`
	// PruneInterval enables the stale-record reconciler in watch mode. Zero
	// disables it.
	PruneInterval time.Duration `yaml:"prune_interval"`
}

func DefaultConfig() *Config {
	return &Config{
		StartupDelay: DefaultStartupDelay,
		PollInterval: DefaultPollInterval,
		Falloff:      DefaultFalloff,
		Geometry:     GeometryAuto,
		Window: WindowConfig{
			Title:  DefaultWindowTitle,
			Width:  DefaultWindowWidth,
			Height: DefaultWindowHeight,
		},
		Headless: HeadlessConfig{
			Width:  DefaultWindowWidth,
			Height: DefaultWindowHeight,
			Hz:     DefaultHeadlessHz,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// ValidationError ties a validation failure to a config path.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.StartupDelay < 0 {
		return &ValidationError{Path: "startup_delay", Err: fmt.Errorf("startup_delay must be >= 0")}
	}
	if c.PollInterval <= 0 {
		return &ValidationError{Path: "poll_interval", Err: fmt.Errorf("poll_interval must be > 0")}
	}
	if c.Falloff <= 0 || c.Falloff > 1 {
		return &ValidationError{Path: "falloff", Err: fmt.Errorf("falloff must be in (0, 1]")}
	}
	switch c.Geometry {
	case GeometryAuto, GeometryEbiten, GeometryX11:
	default:
		return &ValidationError{Path: "geometry", Err: fmt.Errorf("geometry must be one of: auto, ebiten, x11")}
	}
	if strings.TrimSpace(c.Window.Title) == "" {
		return &ValidationError{Path: "window.title", Err: fmt.Errorf("title is required")}
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return &ValidationError{Path: "window", Err: fmt.Errorf("width and height must be > 0")}
	}
	if c.Headless.Width <= 0 || c.Headless.Height <= 0 {
		return &ValidationError{Path: "headless", Err: fmt.Errorf("width and height must be > 0")}
	}
	if c.Headless.Hz <= 0 {
		return &ValidationError{Path: "headless.hz", Err: fmt.Errorf("hz must be > 0")}
	}
	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		return &ValidationError{Path: "logging.level", Err: err}
	}
	if c.PruneInterval < 0 {
		return &ValidationError{Path: "prune_interval", Err: fmt.Errorf("prune_interval must be >= 0")}
	}
	for key := range c.Metadata {
		if key == "pid" || key == "title" {
			return &ValidationError{Path: "metadata." + key, Err: fmt.Errorf("%q is set by winscene", key)}
		}
	}
	return nil
}

// ParseLogLevel maps a config level name to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log level must be one of: debug, info, warning, error")
}

// WindowMetadata builds the metadata stored with this window's record.
func (c *Config) WindowMetadata(pid int) map[string]any {
	out := make(map[string]any, len(c.Metadata)+2)
	for k, v := range c.Metadata {
		out[k] = v
	}
	out["pid"] = pid
	out["title"] = c.Window.Title
	return out
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// ResolvedStorePath returns StorePath, or the session default when unset.
func (c *Config) ResolvedStorePath() (string, error) {
	if strings.TrimSpace(c.StorePath) != "" {
		return c.StorePath, nil
	}
	return runtimepath.StorePath()
}

// NewLogger builds a text logger at the given level name.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
