package viewer

import (
	"github.com/Faultbox/skyhull/internal/actor"
	"github.com/Faultbox/skyhull/pkg/math"
)

// ShotMarkerLifetime is how long a shot stays on screen, in seconds.
const ShotMarkerLifetime = 1.5

// shotMarker is one fading shot line.
type shotMarker struct {
	start, target math.Vec3
	hit           bool
	age           float32
}

// Markers collects fire events for drawing.
type Markers struct {
	shots []shotMarker
}

// Record adds a shot. It matches actor.FireFunc.
func (m *Markers) Record(ev actor.FireEvent) {
	m.shots = append(m.shots, shotMarker{start: ev.Start, target: ev.Target, hit: ev.Hit})
}

// Age advances every marker and drops expired ones.
func (m *Markers) Age(dt float32) {
	kept := m.shots[:0]
	for _, s := range m.shots {
		s.age += dt
		if s.age < ShotMarkerLifetime {
			kept = append(kept, s)
		}
	}
	m.shots = kept
}

// Len returns the number of live markers.
func (m *Markers) Len() int {
	return len(m.shots)
}

// alpha fades a marker out over its lifetime.
func (s shotMarker) alpha() uint8 {
	return uint8(255 * (1 - s.age/ShotMarkerLifetime))
}
