package scene

// DefaultFalloff is the fraction of the remaining distance covered per frame.
const DefaultFalloff = 0.05

// Vec2 is a point or offset in screen space.
type Vec2 struct {
	X float64
	Y float64
}

// Ease moves current toward target by falloff of the remaining distance.
// With 0 < falloff < 1 it approaches the target asymptotically and never
// overshoots.
func Ease(current, target, falloff float64) float64 {
	return current + (target-current)*falloff
}

// EaseToward eases both axes independently.
func (v Vec2) EaseToward(target Vec2, falloff float64) Vec2 {
	return Vec2{
		X: Ease(v.X, target.X, falloff),
		Y: Ease(v.Y, target.Y, falloff),
	}
}
