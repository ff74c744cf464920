package desktop

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/1broseidon/winscene/internal/render"
	"github.com/1broseidon/winscene/internal/scene"
)

const strokeWidth = 1

var background = color.Black

// Ebiten keeps the latest frame and draws it as wireframes onto the game
// screen. Render is called from Update, Draw from the same game loop.
type Ebiten struct {
	frame  scene.Frame
	width  int
	height int
}

var _ scene.Renderer = (*Ebiten)(nil)

// NewEbiten returns a renderer with an empty scene.
func NewEbiten() *Ebiten {
	return &Ebiten{}
}

func (e *Ebiten) Resize(width, height int) {
	e.width = width
	e.height = height
}

func (e *Ebiten) Render(f scene.Frame) {
	e.frame = f
}

// Draw paints the last rendered frame.
func (e *Ebiten) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	if e.width == 0 || e.height == 0 {
		return
	}
	for _, c := range e.frame.Cubes {
		for _, s := range render.ProjectCube(c, e.frame.Offset) {
			vector.StrokeLine(screen, s.X0, s.Y0, s.X1, s.Y1, strokeWidth, c.Color, true)
		}
	}
}
