package actor

import (
	gomath "math"

	"github.com/Faultbox/skyhull/pkg/math"
)

// WorldUp is the +Y axis.
var WorldUp = math.Vec3{Y: 1}

// Transform is an actor's placement in the world. Yaw 0 faces +Z and positive
// yaw turns toward +X. Positive pitch raises the nose. Roll is visual only and
// does not affect the direction vectors.
type Transform struct {
	Position math.Vec3
	Yaw      float32
	Pitch    float32
	Roll     float32
}

// Front returns the unit facing direction.
func (t Transform) Front() math.Vec3 {
	sy, cy := gomath.Sincos(float64(t.Yaw))
	sp, cp := gomath.Sincos(float64(t.Pitch))
	return math.Vec3{
		X: float32(sy * cp),
		Y: float32(sp),
		Z: float32(cy * cp),
	}
}

// Left returns the horizontal unit vector to the actor's left (WorldUp x Front).
func (t Transform) Left() math.Vec3 {
	sy, cy := gomath.Sincos(float64(t.Yaw))
	return math.Vec3{X: float32(cy), Z: float32(-sy)}
}

// Up returns Front x Left.
func (t Transform) Up() math.Vec3 {
	return t.Front().Cross(t.Left())
}

// YawTowards returns the yaw that faces dir on the ground plane.
func YawTowards(dir math.Vec3) float32 {
	return float32(gomath.Atan2(float64(dir.X), float64(dir.Z)))
}
