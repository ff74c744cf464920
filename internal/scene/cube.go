package scene

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/1broseidon/winscene/internal/registry"
)

const (
	baseCubeSize   = 100
	cubeSizeStep   = 50
	cubeHueStep    = 0.1
	cubeSaturation = 1.0
	cubeLightness  = 0.5
)

// Cube is the visual object standing for one window.
type Cube struct {
	WindowID int
	Size     float64
	// Hue is in [0, 1).
	Hue   float64
	Color color.RGBA
	Pos   Vec2
	RotX  float64
	RotY  float64
}

// CubeHue returns the hue of the cube at index i.
func CubeHue(i int) float64 {
	return math.Mod(float64(i)*cubeHueStep, 1)
}

// CubeSize returns the edge length of the cube at index i. Windows keep their
// join order, so later windows draw larger cubes.
func CubeSize(i int) float64 {
	return float64(baseCubeSize + i*cubeSizeStep)
}

// BuildCubes creates one cube per window, in window order, each placed at its
// window's center.
func BuildCubes(wins []registry.WindowRecord) []Cube {
	cubes := make([]Cube, len(wins))
	for i, w := range wins {
		hue := CubeHue(i)
		r, g, b := colorful.Hsl(hue*360, cubeSaturation, cubeLightness).Clamped().RGB255()
		cx, cy := w.Shape.Center()
		cubes[i] = Cube{
			WindowID: w.ID,
			Size:     CubeSize(i),
			Hue:      hue,
			Color:    color.RGBA{R: r, G: g, B: b, A: 0xff},
			Pos:      Vec2{X: cx, Y: cy},
		}
	}
	return cubes
}
