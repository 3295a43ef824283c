package flight

import (
	"github.com/Faultbox/skyhull/pkg/math"
)

// Orientation supplies the actor's facing directions for the frame.
type Orientation interface {
	Front() math.Vec3
	Left() math.Vec3
}

// HeightSampler answers ground height queries. *heightfield.HeightField implements it.
type HeightSampler interface {
	SampleBilinear(p math.Vec3, lod int) float32
}

// Controller is the kinematic state of one actor. It is owned and updated by
// that actor only.
//
// Translation keeps momentum between frames (damped, never reset) while the
// rotation velocity is rebuilt from the frame's command every Update, so turns
// stop as soon as input stops.
type Controller struct {
	cfg *Config

	groundVelocity   math.Vec2 // world X/Z
	floatingVelocity float32   // world Y
	floatingHeight   float32

	acceleration         math.Vec3 // x = side, y = vertical, z = forward
	rotationAcceleration math.Vec2 // x = pitch, y = yaw
	rotationVelocity     math.Vec2

	position math.Vec3
	roll     float32
	boost    bool
	onGround bool
}

// NewController creates a controller for an archetype. floatingHeight is the
// clearance kept above the terrain, see FloatingHeightFor.
func NewController(cfg *Config, floatingHeight float32) *Controller {
	return &Controller{
		cfg:            cfg,
		floatingHeight: floatingHeight,
	}
}

// FloatingHeightFor derives the terrain clearance from an actor's bounding box.
func FloatingHeightFor(box math.Box) float32 {
	return box.Size().Y*0.5 + FloatingMargin
}

// Config returns the shared archetype config.
func (c *Controller) Config() *Config { return c.cfg }

// Commands. Each sets its axis for the current frame; repeated calls overwrite.

func (c *Controller) AccelerateForward() { c.acceleration.Z = 1.0 }
func (c *Controller) AccelerateBackward() { c.acceleration.Z = -1.0 }
func (c *Controller) AccelerateLeft() { c.acceleration.X = 1.0 }
func (c *Controller) AccelerateRight() { c.acceleration.X = -1.0 }
func (c *Controller) AccelerateUp() { c.acceleration.Y = 1.0 }
func (c *Controller) AccelerateDown() { c.acceleration.Y = -1.0 }
func (c *Controller) AcceleratePitch(amount float32) { c.rotationAcceleration.X = amount }
func (c *Controller) AccelerateYaw(amount float32) { c.rotationAcceleration.Y = amount }
func (c *Controller) RequestBoost() { c.boost = true }

// Position returns the position committed by the last Update.
func (c *Controller) Position() math.Vec3 { return c.position }

// SetPosition places the actor, e.g. at spawn or when an AI move snaps to its target.
func (c *Controller) SetPosition(p math.Vec3) { c.position = p }

// GroundVelocity returns the horizontal velocity (X = world X, Y = world Z).
func (c *Controller) GroundVelocity() math.Vec2 { return c.groundVelocity }

// FloatingVelocity returns the vertical velocity.
func (c *Controller) FloatingVelocity() float32 { return c.floatingVelocity }

// Velocity returns the combined world-space velocity.
func (c *Controller) Velocity() math.Vec3 {
	return math.Vec3{X: c.groundVelocity.X, Y: c.floatingVelocity, Z: c.groundVelocity.Y}
}

// FloatingHeight returns the terrain clearance.
func (c *Controller) FloatingHeight() float32 { return c.floatingHeight }

// RotationVelocity returns (pitch, yaw) angular velocity in radians per second.
func (c *Controller) RotationVelocity() math.Vec2 { return c.rotationVelocity }

// PitchVelocity returns the pitch angular velocity.
func (c *Controller) PitchVelocity() float32 { return c.rotationVelocity.X }

// YawVelocity returns the yaw angular velocity.
func (c *Controller) YawVelocity() float32 { return c.rotationVelocity.Y }

// SetYawVelocity overrides the yaw velocity until the next Update.
func (c *Controller) SetYawVelocity(v float32) { c.rotationVelocity.Y = v }

// Roll returns the current bank angle.
func (c *Controller) Roll() float32 { return c.roll }

// OnGround reports whether the last Update clamped the actor to the terrain.
func (c *Controller) OnGround() bool { return c.onGround }

// Stop zeroes translational velocity.
func (c *Controller) Stop() {
	c.groundVelocity = math.Vec2{}
	c.floatingVelocity = 0
}

// Update integrates one frame. Call it once per frame after the commands
// for that frame have been issued.
func (c *Controller) Update(dt float32, o Orientation, ground HeightSampler) {
	cfg := c.cfg

	boost := float32(1.0)
	if c.boost {
		boost = cfg.BoostMultiplier
	}

	var goalRoll float32
	if c.acceleration.X != 0 {
		side := o.Left().XZ().Normalize()
		c.groundVelocity = c.groundVelocity.Add(side.Scale(c.acceleration.X * cfg.SideAccel * boost * dt))
		goalRoll = -cfg.SideRollMax * c.acceleration.X
	}

	if c.acceleration.Y != 0 {
		c.floatingVelocity += c.acceleration.Y * cfg.FloatingAccel * boost * dt
	}

	if c.acceleration.Z != 0 {
		forward := o.Front().XZ().Normalize()
		c.groundVelocity = c.groundVelocity.Add(forward.Scale(c.acceleration.Z * cfg.ForwardAccel * boost * dt))
	}

	// Damping always applies, then the speed cap.
	if !c.groundVelocity.IsZero() {
		speed := c.groundVelocity.Length()
		dir := c.groundVelocity.Scale(1 / speed)
		speed = max(0, speed-cfg.Damping*dt)
		speed = min(cfg.MaxGroundSpeed, speed)
		c.groundVelocity = dir.Scale(speed)
	}

	if c.acceleration.Y == 0 && !c.onGround {
		c.floatingVelocity -= Gravity * dt
	}

	candidate := c.position.Add(c.Velocity().Scale(dt))
	if candidate != c.position || !c.onGround {
		c.onGround = false
		floor := ground.SampleBilinear(candidate, 0) + c.floatingHeight
		if candidate.Y < floor {
			candidate.Y = floor
			c.floatingVelocity = 0
			c.onGround = true
		}
		c.position = candidate
	}

	if !c.rotationAcceleration.IsZero() {
		c.rotationVelocity = c.rotationAcceleration.Scale(cfg.RotationAccel).ClampLength(cfg.MaxRotationSpeed)
	} else {
		c.rotationVelocity = math.Vec2{}
	}

	c.roll = easeRoll(c.roll, goalRoll, cfg.SideRollSpeed*dt, cfg.SideRollMax)

	c.acceleration = math.Vec3{}
	c.rotationAcceleration = math.Vec2{}
	c.boost = false
}

// easeRoll moves roll toward goal. The step shrinks with the remaining
// distance relative to rollMax and never passes the goal.
func easeRoll(roll, goal, rate, rollMax float32) float32 {
	if roll == goal {
		return roll
	}
	diff := goal - roll
	dist := math.Abs(diff)

	step := rate
	if rollMax > 0 {
		step = rate * dist / rollMax
	}
	if dist <= rate || step >= dist {
		return goal
	}
	if diff < 0 {
		step = -step
	}
	return roll + step
}
