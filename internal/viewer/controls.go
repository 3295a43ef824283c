package viewer

import (
	"github.com/Faultbox/skyhull/internal/actor"
)

// Turn rates applied to the controller's rotation commands.
const (
	KeyTurnRate      = 8.0
	MouseSensitivity = 0.5
)

// Controls is the player's input for one frame.
type Controls struct {
	Forward, Backward bool
	Left, Right       bool
	Up, Down          bool
	Boost             bool

	// Rotation requests, positive yaw turns left and positive pitch raises the nose.
	Yaw   float32
	Pitch float32
}

// Any reports whether the frame carries manual flight input.
func (c Controls) Any() bool {
	return c.Forward || c.Backward || c.Left || c.Right || c.Up || c.Down || c.Yaw != 0 || c.Pitch != 0
}

// Apply issues the frame's commands on the player's controller. Manual input
// cancels a running move or attack order.
func (c Controls) Apply(a *actor.Actor) {
	if a == nil {
		return
	}
	if c.Any() && !a.CanManualControl() {
		a.CancelCommand()
	}

	ctrl := a.Controller()
	if c.Boost {
		ctrl.RequestBoost()
	}

	if c.Forward {
		ctrl.AccelerateForward()
	} else if c.Backward {
		ctrl.AccelerateBackward()
	}

	if c.Left {
		ctrl.AccelerateLeft()
	} else if c.Right {
		ctrl.AccelerateRight()
	}

	if c.Up {
		ctrl.AccelerateUp()
	} else if c.Down {
		ctrl.AccelerateDown()
	}

	if c.Yaw != 0 {
		ctrl.AccelerateYaw(c.Yaw)
	}
	if c.Pitch != 0 {
		ctrl.AcceleratePitch(c.Pitch)
	}
}
