package actor

import (
	"github.com/Faultbox/skyhull/internal/flight"
	"github.com/Faultbox/skyhull/pkg/math"
)

// CheckTargetDistanceMax is how far a shot looks for terrain.
const CheckTargetDistanceMax = 1000.0

// Fire pitch limits, in radians.
const (
	FirePitchMin = -0.75
	FirePitchMax = 0.75
)

// Terrain is the ground an actor flies over.
type Terrain interface {
	flight.HeightSampler
	RayCollision(start, dir math.Vec3, maxDistance float32, lodHint int) (math.Vec3, bool)
}

// FireEvent describes one shot. Target is where the shot meets the terrain,
// or the far end of its range when Hit is false.
type FireEvent struct {
	Actor  ID
	Start  math.Vec3
	Dir    math.Vec3
	Target math.Vec3
	Hit    bool
}

// FireFunc receives fire events. Bullets are not simulated here.
type FireFunc func(FireEvent)

// AimPoint resolves where a shot from start along dir lands.
func AimPoint(terrain Terrain, start, dir math.Vec3) (math.Vec3, bool) {
	dir = dir.Normalize()
	if hit, ok := terrain.RayCollision(start, dir, CheckTargetDistanceMax, 0); ok {
		return hit, true
	}
	return start.Add(dir.Scale(CheckTargetDistanceMax)), false
}
