// Package scene loads a terrain and its actors from a descriptor and steps
// the simulation.
package scene

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/skyhull/internal/actor"
	"github.com/Faultbox/skyhull/internal/assets"
	"github.com/Faultbox/skyhull/internal/flight"
	"github.com/Faultbox/skyhull/internal/heightfield"
	"github.com/Faultbox/skyhull/internal/logger"
	"github.com/Faultbox/skyhull/pkg/math"
)

// MaxStepsPerAdvance caps the fixed steps one Advance call may run.
const MaxStepsPerAdvance = 8

// Scene is a height field plus the actors flying over it.
type Scene struct {
	Name        string
	HeightField *heightfield.HeightField
	Actors      *actor.Manager
	Registry    *flight.Registry

	fixedStep   time.Duration
	accumulator time.Duration
	frames      uint64
	elapsed     time.Duration
	shots       int
	onFire      actor.FireFunc
	assets      *assets.Manager
}

// Option configures a Scene.
type Option func(*Scene)

// WithFixedStep sets the step used by Advance.
func WithFixedStep(step time.Duration) Option {
	return func(s *Scene) {
		if step > 0 {
			s.fixedStep = step
		}
	}
}

// WithAssets loads the heightmap through m so scenes share built terrain.
func WithAssets(m *assets.Manager) Option {
	return func(s *Scene) { s.assets = m }
}

// WithFireFunc receives every shot fired in the scene.
func WithFireFunc(fire actor.FireFunc) Option {
	return func(s *Scene) { s.onFire = fire }
}

// Load reads a descriptor, its heightmap and archetypes, and spawns the
// actors. A non-nil reg is used instead of the descriptor's archetype dir.
func Load(path string, reg *flight.Registry, opts ...Option) (*Scene, error) {
	d, err := LoadDescriptor(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)

	if reg == nil {
		if d.Archetypes != "" {
			reg, err = flight.LoadRegistry(resolve(dir, d.Archetypes))
			if err != nil {
				return nil, err
			}
		} else {
			reg = flight.NewRegistry()
		}
	}

	var settings Scene
	for _, opt := range opts {
		opt(&settings)
	}
	var hf *heightfield.HeightField
	if settings.assets != nil {
		hf, err = settings.assets.HeightField(resolve(dir, d.Heightmap), d.Bounds.Box(), d.SeaLevel)
	} else {
		hf, err = heightfield.Load(resolve(dir, d.Heightmap), d.Bounds.Box(), d.SeaLevel)
	}
	if err != nil {
		return nil, fmt.Errorf("loading heightmap: %w", err)
	}

	name := d.Name
	if name == "" {
		name = filepath.Base(path)
	}
	return New(name, hf, reg, d.Actors, opts...)
}

// New builds a scene from an existing height field. Actors that name no
// archetype fly with DefaultConfig, registered on first use.
func New(name string, hf *heightfield.HeightField, reg *flight.Registry, specs []ActorSpec, opts ...Option) (*Scene, error) {
	if reg == nil {
		reg = flight.NewRegistry()
	}
	s := &Scene{
		Name:        name,
		HeightField: hf,
		Registry:    reg,
		fixedStep:   time.Second / 60,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Actors = actor.NewManager(s.fire)

	for i, spec := range specs {
		cfg, err := s.archetype(spec.Archetype)
		if err != nil {
			return nil, fmt.Errorf("actor %d: %w", i, err)
		}
		half := spec.HalfHeight
		if half == 0 {
			half = DefaultHalfHeight
		}
		_, err = s.Actors.Spawn(actor.SpawnSpec{
			Archetype: cfg.Name,
			Config:    cfg,
			Player:    spec.Player,
			Position:  spec.Position,
			Yaw:       spec.Yaw,
			Bounds:    math.NewBox(math.Vec3{Y: -half}, math.Vec3{Y: half}),
			Patrol:    spec.Patrol,
		})
		if err != nil {
			return nil, fmt.Errorf("actor %d: %w", i, err)
		}
	}

	logger.Named("scene").Info("scene loaded",
		zap.String("name", name),
		zap.Int("actors", s.Actors.Count()),
		zap.Int("archetypes", reg.Len()),
		zap.Int("levels", hf.LevelCount()),
	)
	return s, nil
}

func (s *Scene) archetype(name string) (*flight.Config, error) {
	if name != "" {
		return s.Registry.Get(name)
	}
	def := flight.DefaultConfig()
	if cfg, err := s.Registry.Get(def.Name); err == nil {
		return cfg, nil
	}
	return s.Registry.Register(def)
}

func (s *Scene) fire(ev actor.FireEvent) {
	s.shots++
	logger.Named("scene").Debug("shot fired",
		zap.Uint64("actor", uint64(ev.Actor)),
		zap.Bool("hit", ev.Hit),
		zap.Float32("x", ev.Target.X),
		zap.Float32("y", ev.Target.Y),
		zap.Float32("z", ev.Target.Z),
	)
	if s.onFire != nil {
		s.onFire(ev)
	}
}

// SetFireFunc replaces the callback that receives shots.
func (s *Scene) SetFireFunc(fire actor.FireFunc) {
	s.onFire = fire
}

// Step advances every actor by dt seconds.
func (s *Scene) Step(dt float32) {
	s.Actors.Update(dt, s.HeightField)
	s.frames++
	s.elapsed += time.Duration(float64(dt) * float64(time.Second))
}

// Advance runs as many fixed steps as fit in the accumulated wall time and
// returns how many ran. Time beyond MaxStepsPerAdvance steps is dropped.
//
// before, when non-nil, runs ahead of every step. Controllers drop their
// commands after each update, so held input must be issued there.
func (s *Scene) Advance(elapsed time.Duration, before func()) int {
	s.accumulator += elapsed
	dt := float32(s.fixedStep.Seconds())
	steps := 0
	for s.accumulator >= s.fixedStep && steps < MaxStepsPerAdvance {
		if before != nil {
			before()
		}
		s.Step(dt)
		s.accumulator -= s.fixedStep
		steps++
	}
	if steps == MaxStepsPerAdvance && s.accumulator >= s.fixedStep {
		logger.Named("scene").Debug("simulation falling behind", zap.Duration("dropped", s.accumulator))
		s.accumulator = 0
	}
	return steps
}

// FixedStep returns the step used by Advance.
func (s *Scene) FixedStep() time.Duration { return s.fixedStep }

// Frames returns the number of steps taken.
func (s *Scene) Frames() uint64 { return s.frames }

// Elapsed returns the simulated time.
func (s *Scene) Elapsed() time.Duration { return s.elapsed }

// Shots returns the number of shots fired.
func (s *Scene) Shots() int { return s.shots }

// FirePlayer shoots from the player along dir.
func (s *Scene) FirePlayer(dir math.Vec3) {
	s.Actors.FirePlayer(s.HeightField, dir)
}

// Close releases the scene.
func (s *Scene) Close() {
	logger.Named("scene").Info("scene unloaded",
		zap.String("name", s.Name),
		zap.Uint64("frames", s.frames),
		zap.Duration("simulated", s.elapsed),
	)
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// Flat builds a level height field covering bounds at the given height.
func Flat(bounds math.Box, height, seaLevel float32) (*heightfield.HeightField, error) {
	const size = 2
	rgba := make([]byte, size*size*heightfield.BytesPerPixel)
	b := math.NewBox(
		math.Vec3{X: bounds.Min.X, Y: height, Z: bounds.Min.Z},
		math.Vec3{X: bounds.Max.X, Y: height + 1, Z: bounds.Max.Z},
	)
	return heightfield.Build(b, size, size, rgba, seaLevel)
}
