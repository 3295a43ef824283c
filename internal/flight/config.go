// Package flight implements the per-actor kinematic controller that turns
// frame commands into ground velocity, floating velocity, rotation velocity
// and roll, resolved against the terrain height field.
package flight

import (
	"errors"
	"fmt"
)

// Gravity is the downward acceleration applied to airborne actors that have
// no vertical command this frame.
const Gravity = 9.8

// FloatingMargin is the clearance added on top of half an actor's height.
const FloatingMargin = 2.0

// ErrInvalidConfig is returned when an archetype has unusable tuning values.
var ErrInvalidConfig = errors.New("invalid flight config")

// Config holds the tuning values of one actor archetype. Instances are shared
// by every controller of that archetype and must not be modified after load.
type Config struct {
	Name             string  `yaml:"name"`
	MaxGroundSpeed   float32 `yaml:"max_ground_speed"`
	ForwardAccel     float32 `yaml:"forward_acceleration"`
	SideAccel        float32 `yaml:"side_acceleration"`
	FloatingAccel    float32 `yaml:"floating_acceleration"`
	Damping          float32 `yaml:"damping"`
	SideRollMax      float32 `yaml:"side_step_roll"`
	SideRollSpeed    float32 `yaml:"side_step_roll_speed"`
	BoostMultiplier  float32 `yaml:"boost_acceleration"`
	MaxRotationSpeed float32 `yaml:"max_rotation_speed"`
	RotationAccel    float32 `yaml:"rotation_acceleration"`
	RotationDamping  float32 `yaml:"rotation_damping"`
}

// DefaultConfig returns the light ship tuning.
func DefaultConfig() Config {
	return Config{
		Name:             "LightShipController",
		MaxGroundSpeed:   50.0,
		ForwardAccel:     50.0,
		SideAccel:        50.0,
		FloatingAccel:    30.0,
		Damping:          30.0,
		SideRollMax:      0.3,
		SideRollSpeed:    2.0,
		BoostMultiplier:  1.5,
		MaxRotationSpeed: 10.0,
		RotationAccel:    0.5,
		RotationDamping:  0.1,
	}
}

// Validate rejects negative tunables and a non-positive boost multiplier or
// roll speed.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidConfig)
	}
	fields := []struct {
		name  string
		value float32
	}{
		{"max_ground_speed", c.MaxGroundSpeed},
		{"forward_acceleration", c.ForwardAccel},
		{"side_acceleration", c.SideAccel},
		{"floating_acceleration", c.FloatingAccel},
		{"damping", c.Damping},
		{"side_step_roll", c.SideRollMax},
		{"side_step_roll_speed", c.SideRollSpeed},
		{"max_rotation_speed", c.MaxRotationSpeed},
		{"rotation_acceleration", c.RotationAccel},
		{"rotation_damping", c.RotationDamping},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("%w: %s: %s is negative (%v)", ErrInvalidConfig, c.Name, f.name, f.value)
		}
	}
	if c.BoostMultiplier <= 0 {
		return fmt.Errorf("%w: %s: boost_acceleration must be positive (%v)", ErrInvalidConfig, c.Name, c.BoostMultiplier)
	}
	if c.SideRollSpeed <= 0 {
		return fmt.Errorf("%w: %s: side_step_roll_speed must be positive (%v)", ErrInvalidConfig, c.Name, c.SideRollSpeed)
	}
	return nil
}
