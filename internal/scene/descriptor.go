package scene

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/skyhull/pkg/math"
)

// ErrInvalidDescriptor is returned for scene files that cannot be built.
var ErrInvalidDescriptor = errors.New("invalid scene descriptor")

// Descriptor is the YAML form of a scene. Paths are relative to the
// descriptor file.
type Descriptor struct {
	Name       string      `yaml:"name"`
	Heightmap  string      `yaml:"heightmap"`
	Bounds     BoundsSpec  `yaml:"bounds"`
	SeaLevel   float32     `yaml:"sea_level"`
	Archetypes string      `yaml:"archetypes"`
	Actors     []ActorSpec `yaml:"actors"`
}

// BoundsSpec is the world footprint of the heightmap.
type BoundsSpec struct {
	Min math.Vec3 `yaml:"min"`
	Max math.Vec3 `yaml:"max"`
}

// Box returns the footprint as an ordered box.
func (b BoundsSpec) Box() math.Box {
	return math.NewBox(b.Min, b.Max)
}

// ActorSpec places one actor.
type ActorSpec struct {
	Archetype  string      `yaml:"archetype"`
	Player     bool        `yaml:"player"`
	Position   math.Vec3   `yaml:"position"`
	Yaw        float32     `yaml:"yaw"`
	HalfHeight float32     `yaml:"half_height"`
	Patrol     []math.Vec3 `yaml:"patrol"`
}

// DefaultHalfHeight is used when an actor spec leaves half_height unset.
const DefaultHalfHeight = 1.0

// ParseDescriptor decodes and checks a scene descriptor.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadDescriptor reads a descriptor file.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := ParseDescriptor(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Validate checks the fields Load depends on.
func (d *Descriptor) Validate() error {
	if d.Heightmap == "" {
		return fmt.Errorf("%w: missing heightmap", ErrInvalidDescriptor)
	}
	size := d.Bounds.Box().Size()
	if size.X <= 0 || size.Z <= 0 {
		return fmt.Errorf("%w: bounds have no X/Z extent", ErrInvalidDescriptor)
	}
	players := 0
	for i, a := range d.Actors {
		if a.HalfHeight < 0 {
			return fmt.Errorf("%w: actor %d: negative half_height", ErrInvalidDescriptor, i)
		}
		if a.Player {
			players++
		}
	}
	if players > 1 {
		return fmt.Errorf("%w: %d player actors", ErrInvalidDescriptor, players)
	}
	return nil
}
