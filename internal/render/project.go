package render

import (
	"github.com/chewxy/math32"

	"github.com/1broseidon/winscene/internal/scene"
)

// Segment is a line in screen pixels.
type Segment struct {
	X0, Y0 float32
	X1, Y1 float32
}

type vec3 struct {
	x, y, z float32
}

// Unit cube corners, scaled by half the edge length.
var corners = [8]vec3{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

var edges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// rotate applies the Y rotation, then the X rotation.
func rotate(v vec3, rotX, rotY float32) vec3 {
	sy, cy := math32.Sincos(rotY)
	x := v.x*cy + v.z*sy
	z := -v.x*sy + v.z*cy

	sx, cx := math32.Sincos(rotX)
	y := v.y*cx - z*sx
	z = v.y*sx + z*cx
	return vec3{x: x, y: y, z: z}
}

// ProjectCube returns the wireframe edges of c under an orthographic
// projection whose origin is the viewport's top-left corner, with the scene
// translated by offset. Depth is discarded.
func ProjectCube(c scene.Cube, offset scene.Vec2) [12]Segment {
	half := float32(c.Size) / 2
	cx := float32(c.Pos.X + offset.X)
	cy := float32(c.Pos.Y + offset.Y)
	rx := float32(c.RotX)
	ry := float32(c.RotY)

	var pts [8][2]float32
	for i, v := range corners {
		r := rotate(vec3{x: v.x * half, y: v.y * half, z: v.z * half}, rx, ry)
		pts[i] = [2]float32{cx + r.x, cy + r.y}
	}

	var out [12]Segment
	for i, e := range edges {
		a, b := pts[e[0]], pts[e[1]]
		out[i] = Segment{X0: a[0], Y0: a[1], X1: b[0], Y1: b[1]}
	}
	return out
}
