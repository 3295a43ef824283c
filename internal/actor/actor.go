// Package actor drives ships through their flight controllers: it owns each
// ship's transform, runs move/attack/patrol commands and steps every actor
// once per frame.
package actor

import (
	gomath "math"

	"github.com/Faultbox/skyhull/internal/flight"
	"github.com/Faultbox/skyhull/pkg/math"
)

// ID identifies an actor. IDs increase monotonically and are never reused.
type ID uint64

// CommandState is the actor's current order.
type CommandState uint8

const (
	CommandNone CommandState = iota
	CommandMove
	CommandAttack
	CommandPatrol
)

func (s CommandState) String() string {
	switch s {
	case CommandMove:
		return "move"
	case CommandAttack:
		return "attack"
	case CommandPatrol:
		return "patrol"
	default:
		return "none"
	}
}

// Actor is one ship in the scene.
type Actor struct {
	Transform Transform

	id         ID
	player     bool
	archetype  string
	controller *flight.Controller

	state     CommandState
	target    math.Vec3
	rotating  bool
	moving    bool
	attacking bool

	patrol      []math.Vec3
	patrolIndex int
}

// ID returns the actor's identifier.
func (a *Actor) ID() ID { return a.id }

// IsPlayer reports whether the actor is driven by local input.
func (a *Actor) IsPlayer() bool { return a.player }

// Archetype returns the flight archetype name.
func (a *Actor) Archetype() string { return a.archetype }

// Controller returns the actor's flight controller.
func (a *Actor) Controller() *flight.Controller { return a.controller }

// State returns the current command.
func (a *Actor) State() CommandState { return a.state }

// Target returns the target of the current command.
func (a *Actor) Target() math.Vec3 { return a.target }

// CanManualControl reports whether input may steer the actor, i.e. no
// command is turning or moving it.
func (a *Actor) CanManualControl() bool {
	return !a.moving && !a.rotating
}

// CommandMove turns the actor toward target and flies there.
func (a *Actor) CommandMove(target math.Vec3) {
	a.CancelCommand()
	a.target = target
	a.moving = true
	a.rotating = true
	a.state = CommandMove
}

// CommandAttack turns the actor toward target and fires once.
func (a *Actor) CommandAttack(target math.Vec3) {
	a.CancelCommand()
	a.target = target
	a.attacking = true
	a.rotating = true
	a.state = CommandAttack
}

// CommandPatrol flies between waypoints in order, looping forever.
func (a *Actor) CommandPatrol(waypoints []math.Vec3) {
	a.CancelCommand()
	if len(waypoints) == 0 {
		return
	}
	a.patrol = append([]math.Vec3(nil), waypoints...)
	a.patrolIndex = 0
	a.target = a.patrol[0]
	a.moving = true
	a.rotating = true
	a.state = CommandPatrol
}

// CancelCommand drops the current command.
func (a *Actor) CancelCommand() {
	a.moving = false
	a.rotating = false
	a.attacking = false
	a.patrol = nil
	a.patrolIndex = 0
	a.state = CommandNone
}

// Fire shoots along dir from the actor's position.
func (a *Actor) Fire(terrain Terrain, dir math.Vec3, fire FireFunc) {
	dir = dir.Normalize()
	if dir == (math.Vec3{}) || fire == nil {
		return
	}
	start := a.Transform.Position
	target, hit := AimPoint(terrain, start, dir)
	fire(FireEvent{Actor: a.id, Start: start, Dir: dir, Target: target, Hit: hit})
}

// ApplyController copies the controller's result into the transform and
// integrates yaw and pitch. Pitch stays within the fire limits.
func (a *Actor) ApplyController(dt float32) {
	c := a.controller
	a.Transform.Yaw = wrapAngle(a.Transform.Yaw + c.YawVelocity()*dt)
	a.Transform.Pitch = math.Clamp(a.Transform.Pitch+c.PitchVelocity()*dt, FirePitchMin, FirePitchMax)
	a.Transform.Roll = c.Roll()
	a.Transform.Position = c.Position()
}

// updateCommand issues this frame's controller commands for the active order.
func (a *Actor) updateCommand(dt float32, terrain Terrain, fire FireFunc) {
	switch a.state {
	case CommandMove, CommandPatrol:
		a.updateMove(dt)
	case CommandAttack:
		a.updateAttack(dt, terrain, fire)
	}
}

func (a *Actor) updateMove(dt float32) {
	toTarget, distance := a.groundVectorTo(a.target)
	if distance == 0 {
		a.arrive()
		return
	}
	front, left := a.groundAxes()

	if a.rotating && rotateToTarget(a.controller, &a.Transform, toTarget, left, front, dt) {
		a.rotating = false
	}
	if a.moving && !a.rotating {
		switch moveToTarget(a.controller, a.target, toTarget, distance, front, dt) {
		case moveArrived:
			a.arrive()
		case moveBehind:
			a.rotating = true
		}
	}
}

// arrive finishes a move, or heads for the next patrol waypoint.
func (a *Actor) arrive() {
	if a.state != CommandPatrol {
		a.CancelCommand()
		return
	}
	a.patrolIndex = (a.patrolIndex + 1) % len(a.patrol)
	a.target = a.patrol[a.patrolIndex]
	a.moving = true
	a.rotating = true
}

func (a *Actor) updateAttack(dt float32, terrain Terrain, fire FireFunc) {
	if a.rotating {
		toTarget, distance := a.groundVectorTo(a.target)
		if distance > 0 {
			front, left := a.groundAxes()
			if rotateToTarget(a.controller, &a.Transform, toTarget, left, front, dt) {
				a.rotating = false
			}
		} else {
			a.rotating = false
		}
	}
	if a.attacking && !a.rotating {
		a.Fire(terrain, a.target.Sub(a.controller.Position()), fire)
		a.CancelCommand()
	}
}

// groundVectorTo returns the unit X/Z direction and distance to p.
func (a *Actor) groundVectorTo(p math.Vec3) (math.Vec3, float32) {
	to := p.Sub(a.controller.Position())
	to.Y = 0
	distance := to.Length()
	if distance == 0 {
		return math.Vec3{}, 0
	}
	return to.Scale(1 / distance), distance
}

func (a *Actor) groundAxes() (front, left math.Vec3) {
	front = a.Transform.Front()
	front.Y = 0
	left = a.Transform.Left()
	left.Y = 0
	return front.Normalize(), left.Normalize()
}

// rotateToTarget yaws toward toTarget, stopping early enough for the
// rotation to coast in. It snaps the yaw and reports true once the remaining
// turn fits in one frame.
func rotateToTarget(c *flight.Controller, t *Transform, toTarget, left, front math.Vec3, dt float32) bool {
	yawSpeed := math.Abs(c.YawVelocity())
	yawDiff := (0.5 - front.Dot(toTarget)*0.5) * gomath.Pi
	if yawSpeed*dt >= yawDiff {
		t.Yaw = YawTowards(toTarget)
		c.SetYawVelocity(0)
		return true
	}

	var brakingDistance float32
	if damping := c.Config().RotationDamping; damping > 0 {
		brakingTime := yawSpeed / damping
		brakingDistance = yawSpeed * 0.5 * brakingTime
	}
	if brakingDistance < yawDiff {
		if left.Dot(toTarget) >= 0 {
			c.AccelerateYaw(1)
		} else {
			c.AccelerateYaw(-1)
		}
	}
	return false
}

type moveResult uint8

const (
	moveUnderway moveResult = iota
	moveArrived
	moveBehind
)

// moveToTarget thrusts forward until the braking distance covers the rest of
// the way, then snaps onto the target once it is within one frame of travel.
func moveToTarget(c *flight.Controller, target, toTarget math.Vec3, distance float32, front math.Vec3, dt float32) moveResult {
	speed := c.GroundVelocity().Length()
	if speed*dt >= distance {
		c.Stop()
		p := c.Position()
		p.X = target.X
		p.Z = target.Z
		c.SetPosition(p)
		return moveArrived
	}

	if front.Dot(toTarget) <= 0 {
		if speed == 0 {
			return moveBehind
		}
		return moveUnderway
	}

	var brakingDistance float32
	if damping := c.Config().Damping; damping > 0 {
		brakingTime := speed / damping
		brakingDistance = speed * 0.5 * brakingTime
	}
	if brakingDistance < distance {
		c.AccelerateForward()
	}
	return moveUnderway
}

// wrapAngle keeps a yaw within (-pi, pi].
func wrapAngle(a float32) float32 {
	const twoPi = 2 * gomath.Pi
	for a > gomath.Pi {
		a -= twoPi
	}
	for a <= -gomath.Pi {
		a += twoPi
	}
	return a
}
