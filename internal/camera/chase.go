// Package camera provides the chase camera that follows the player ship.
package camera

import (
	"github.com/Faultbox/skyhull/internal/actor"
	"github.com/Faultbox/skyhull/pkg/math"
)

// Chase camera limits.
const (
	DistanceMin           = 2.0
	DistanceMax           = 15.0
	DistanceSpeed         = 3.0 // easing rate toward the goal distance, per second
	ScrollToDistanceSpeed = 2.0
	OffsetY               = 3.0
	MinClearance          = 1.0 // eye height kept above the ground
)

// ChaseCamera sits behind and above its target. When terrain blocks the
// boom the eye is pulled in to the blocking point.
type ChaseCamera struct {
	Distance     float32 // current boom length, eased toward GoalDistance
	GoalDistance float32
	OffsetY      float32

	// Results of the last Update.
	Eye      math.Vec3
	Focus    math.Vec3
	Occluded bool
}

// NewChaseCamera creates a camera halfway between the distance limits.
func NewChaseCamera() *ChaseCamera {
	d := float32(DistanceMin+DistanceMax) * 0.5
	return &ChaseCamera{
		Distance:     d,
		GoalDistance: d,
		OffsetY:      OffsetY,
	}
}

// Zoom moves the goal distance by a scroll wheel delta. Scrolling up
// (positive delta) brings the camera closer.
func (c *ChaseCamera) Zoom(scrollDelta float32) {
	c.GoalDistance = math.Clamp(c.GoalDistance-scrollDelta*ScrollToDistanceSpeed, DistanceMin, DistanceMax)
}

// DistanceRatio returns the current distance mapped to [0,1] across the limits.
func (c *ChaseCamera) DistanceRatio() float32 {
	return (c.Distance - DistanceMin) / (DistanceMax - DistanceMin)
}

// Update places the eye behind the target transform.
func (c *ChaseCamera) Update(dt float32, target actor.Transform, terrain actor.Terrain) {
	if c.Distance != c.GoalDistance {
		c.Distance = math.Lerp(c.Distance, c.GoalDistance, min(1, dt*DistanceSpeed))
	}

	c.Focus = target.Position
	boom := target.Front().Scale(-c.Distance).Add(actor.WorldUp.Scale(c.OffsetY))
	eye := c.Focus.Add(boom)

	c.Occluded = false
	if length := boom.Length(); length > 0 {
		if hit, ok := terrain.RayCollision(c.Focus, boom, length, 0); ok {
			eye = hit
			c.Occluded = true
		}
	}

	if floor := terrain.SampleBilinear(eye, 0) + MinClearance; eye.Y < floor {
		eye.Y = floor
	}
	c.Eye = eye
}

// ViewDir returns the unit direction from the eye to the focus.
func (c *ChaseCamera) ViewDir() math.Vec3 {
	return c.Focus.Sub(c.Eye).Normalize()
}
