package actor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/skyhull/internal/flight"
	"github.com/Faultbox/skyhull/internal/logger"
	"github.com/Faultbox/skyhull/pkg/math"
)

// Spawn errors.
var (
	ErrNoConfig     = errors.New("actor spawn without flight config")
	ErrPlayerExists = errors.New("player actor already spawned")
)

// SpawnSpec describes an actor to add to the scene.
type SpawnSpec struct {
	Archetype string
	Config    *flight.Config
	Player    bool
	Position  math.Vec3
	Yaw       float32
	Bounds    math.Box // local bounding box, sets the terrain clearance
	Patrol    []math.Vec3
}

// Manager owns every actor and steps them once per frame.
type Manager struct {
	nextID ID
	actors map[ID]*Actor
	order  []ID // ascending, IDs are monotonic
	player *Actor
	fire   FireFunc
}

// NewManager creates an empty manager. fire receives every shot; it may be nil.
func NewManager(fire FireFunc) *Manager {
	return &Manager{
		nextID: 1,
		actors: make(map[ID]*Actor),
		fire:   fire,
	}
}

// SetFireFunc replaces the fire callback.
func (m *Manager) SetFireFunc(fire FireFunc) {
	m.fire = fire
}

// Spawn adds an actor.
func (m *Manager) Spawn(spec SpawnSpec) (*Actor, error) {
	if spec.Config == nil {
		return nil, fmt.Errorf("%w: archetype %q", ErrNoConfig, spec.Archetype)
	}
	if spec.Player && m.player != nil {
		return nil, fmt.Errorf("%w: id %d", ErrPlayerExists, m.player.id)
	}

	archetype := spec.Archetype
	if archetype == "" {
		archetype = spec.Config.Name
	}

	ctrl := flight.NewController(spec.Config, flight.FloatingHeightFor(spec.Bounds))
	ctrl.SetPosition(spec.Position)

	a := &Actor{
		Transform: Transform{
			Position: spec.Position,
			Yaw:      spec.Yaw,
		},
		id:         m.nextID,
		player:     spec.Player,
		archetype:  archetype,
		controller: ctrl,
	}
	m.nextID++

	m.actors[a.id] = a
	m.order = append(m.order, a.id)
	if a.player {
		m.player = a
	}
	if len(spec.Patrol) > 0 {
		a.CommandPatrol(spec.Patrol)
	}

	logger.Debug("actor spawned",
		zap.Uint64("id", uint64(a.id)),
		zap.String("archetype", archetype),
		zap.Bool("player", a.player),
	)
	return a, nil
}

// Despawn removes an actor. Unknown IDs are ignored.
func (m *Manager) Despawn(id ID) {
	if _, ok := m.actors[id]; !ok {
		return
	}
	delete(m.actors, id)
	for i, other := range m.order {
		if other == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.player != nil && m.player.id == id {
		m.player = nil
	}
	logger.Debug("actor despawned", zap.Uint64("id", uint64(id)))
}

// Get returns an actor by ID, or nil.
func (m *Manager) Get(id ID) *Actor {
	return m.actors[id]
}

// Player returns the player actor, or nil.
func (m *Manager) Player() *Actor {
	return m.player
}

// Actors returns all actors in ID order.
func (m *Manager) Actors() []*Actor {
	result := make([]*Actor, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.actors[id])
	}
	return result
}

// Count returns the number of actors.
func (m *Manager) Count() int {
	return len(m.actors)
}

// FirePlayer shoots from the player actor along dir.
func (m *Manager) FirePlayer(terrain Terrain, dir math.Vec3) {
	if m.player == nil {
		return
	}
	m.player.Fire(terrain, dir, m.fire)
}

// Update steps every actor: command steering, controller update, then
// transform application. Player input must already be applied to the
// player's controller.
func (m *Manager) Update(dt float32, terrain Terrain) {
	for _, id := range m.order {
		a := m.actors[id]
		a.updateCommand(dt, terrain, m.fire)

		wasOnGround := a.controller.OnGround()
		a.controller.Update(dt, a.Transform, terrain)
		a.ApplyController(dt)

		if onGround := a.controller.OnGround(); onGround != wasOnGround {
			logger.Debug("ground contact changed",
				zap.Uint64("id", uint64(id)),
				zap.Bool("onGround", onGround),
				zap.Float32("y", a.Transform.Position.Y),
			)
		}
	}
}
