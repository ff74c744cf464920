package scene

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/winscene/internal/registry"
)

const (
	rotXRate = 0.5
	rotYRate = 0.3
)

// Registry is the part of the window registry the driver uses.
type Registry interface {
	Initialize(metadata any) error
	Refresh() error
	CurrentShape() registry.Rect
	Windows() []registry.WindowRecord
	OnShapeChange(fn func())
	OnWindowsChange(fn func())
}

// Frame is the scene state handed to the renderer each frame.
type Frame struct {
	Offset Vec2
	Cubes  []Cube
	Width  int
	Height int
}

// Renderer draws frames under an orthographic projection sized to the
// viewport.
type Renderer interface {
	Resize(width, height int)
	Render(f Frame)
}

// Scheduler arranges for fn to run on the next frame.
type Scheduler interface {
	RequestFrame(fn func())
}

// Config configures a Driver.
type Config struct {
	// Falloff is the easing fraction per frame. Zero means DefaultFalloff.
	Falloff  float64
	Metadata any
	Logger   *slog.Logger
}

// Driver owns the scene: one cube per known window, eased toward the
// window centers, with the whole scene translated by an eased offset that
// keeps this window aligned to screen coordinates.
type Driver struct {
	reg      Registry
	renderer Renderer
	clock    Clock
	falloff  float64
	metadata any
	logger   *slog.Logger

	cubes        []Cube
	offset       Vec2
	offsetTarget Vec2
	width        int
	height       int
	started      bool
}

// NewDriver creates a driver. Nothing happens until Start.
func NewDriver(cfg Config, reg Registry, r Renderer, clock Clock) *Driver {
	falloff := cfg.Falloff
	if falloff <= 0 || falloff > 1 {
		falloff = DefaultFalloff
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Driver{
		reg:      reg,
		renderer: r,
		clock:    clock,
		falloff:  falloff,
		metadata: cfg.Metadata,
		logger:   logger,
	}
}

// Start registers this window, sizes the projection, aligns the scene to the
// window's screen position without easing and renders the first frame.
func (d *Driver) Start(width, height int) error {
	if d.started {
		return fmt.Errorf("scene driver already started")
	}
	d.reg.OnShapeChange(d.shapeChanged)
	d.reg.OnWindowsChange(d.rebuild)

	if err := d.reg.Initialize(d.metadata); err != nil {
		return fmt.Errorf("failed to register window: %w", err)
	}
	d.rebuild()
	d.Resize(width, height)

	d.shapeChanged()
	d.offset = d.offsetTarget

	d.started = true
	d.Frame()
	return nil
}

// Run schedules a frame on s after every frame, for as long as s keeps
// running callbacks.
func (d *Driver) Run(s Scheduler) {
	var tick func()
	tick = func() {
		d.Frame()
		s.RequestFrame(tick)
	}
	s.RequestFrame(tick)
}

// Frame advances the scene by one step and renders it.
func (d *Driver) Frame() {
	if err := d.reg.Refresh(); err != nil {
		d.logger.Warn("failed to refresh window shape", "error", err)
	}

	d.offset = d.offset.EaseToward(d.offsetTarget, d.falloff)

	wins := d.reg.Windows()
	t := SecondsSinceMidnight(d.clock.Now())
	n := min(len(d.cubes), len(wins))
	for i := 0; i < n; i++ {
		cx, cy := wins[i].Shape.Center()
		c := &d.cubes[i]
		c.Pos = c.Pos.EaseToward(Vec2{X: cx, Y: cy}, d.falloff)
		c.RotX = t * rotXRate
		c.RotY = t * rotYRate
	}

	d.renderer.Render(Frame{
		Offset: d.offset,
		Cubes:  d.cubes,
		Width:  d.width,
		Height: d.height,
	})
}

// Resize rebuilds the projection for a new viewport, immediately.
func (d *Driver) Resize(width, height int) {
	d.width = width
	d.height = height
	d.renderer.Resize(width, height)
}

// Offset returns the current scene translation.
func (d *Driver) Offset() Vec2 {
	return d.offset
}

// OffsetTarget returns the translation the scene is easing toward.
func (d *Driver) OffsetTarget() Vec2 {
	return d.offsetTarget
}

// Cubes returns a copy of the current cubes.
func (d *Driver) Cubes() []Cube {
	out := make([]Cube, len(d.cubes))
	copy(out, d.cubes)
	return out
}

// Viewport returns the size the projection was last built for.
func (d *Driver) Viewport() (int, int) {
	return d.width, d.height
}

func (d *Driver) rebuild() {
	d.cubes = BuildCubes(d.reg.Windows())
	d.logger.Debug("rebuilt cubes", "count", len(d.cubes))
}

func (d *Driver) shapeChanged() {
	s := d.reg.CurrentShape()
	d.offsetTarget = Vec2{X: float64(-s.X), Y: float64(-s.Y)}
}
