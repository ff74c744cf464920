package render

import (
	"log/slog"

	"github.com/1broseidon/winscene/internal/scene"
)

const headlessLogEvery = 60

// Headless counts frames and logs a summary now and then instead of drawing.
type Headless struct {
	logger *slog.Logger
	frames uint64
	last   scene.Frame
}

var _ scene.Renderer = (*Headless)(nil)

func NewHeadless(logger *slog.Logger) *Headless {
	if logger == nil {
		logger = slog.Default()
	}
	return &Headless{logger: logger}
}

func (h *Headless) Resize(width, height int) {
	h.logger.Debug("viewport resized", "width", width, "height", height)
}

func (h *Headless) Render(f scene.Frame) {
	h.frames++
	h.last = f
	if h.frames%headlessLogEvery == 1 {
		h.logger.Info("frame",
			"n", h.frames,
			"cubes", len(f.Cubes),
			"offset_x", f.Offset.X,
			"offset_y", f.Offset.Y)
	}
}

// Frames returns the number of frames rendered.
func (h *Headless) Frames() uint64 {
	return h.frames
}

// Last returns the most recent frame.
func (h *Headless) Last() scene.Frame {
	return h.last
}
