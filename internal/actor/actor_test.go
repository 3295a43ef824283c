package actor

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/skyhull/internal/flight"
	"github.com/Faultbox/skyhull/internal/heightfield"
	"github.com/Faultbox/skyhull/pkg/math"
)

const dt = float32(1.0 / 60.0)

func near(a, b, eps float32) bool {
	return gomath.Abs(float64(a-b)) <= float64(eps)
}

func nearVec(a, b math.Vec3, eps float32) bool {
	return near(a.X, b.X, eps) && near(a.Y, b.Y, eps) && near(a.Z, b.Z, eps)
}

// flatTerrain builds a 1000x1000 field with the given constant height.
func flatTerrain(t *testing.T, height byte) *heightfield.HeightField {
	t.Helper()
	const size = 64
	rgba := make([]byte, size*size*heightfield.BytesPerPixel)
	for i := 0; i < len(rgba); i += heightfield.BytesPerPixel {
		rgba[i] = height
		rgba[i+3] = 255
	}
	bounds := math.NewBox(math.Vec3{}, math.Vec3{X: 1000, Y: 255, Z: 1000})
	hf, err := heightfield.Build(bounds, size, size, rgba, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return hf
}

var unitBox = math.NewBox(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1})

func spawn(t *testing.T, m *Manager, pos math.Vec3, player bool) *Actor {
	t.Helper()
	cfg := flight.DefaultConfig()
	a, err := m.Spawn(SpawnSpec{Config: &cfg, Player: player, Position: pos, Bounds: unitBox})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	return a
}

func TestTransformAxes(t *testing.T) {
	tests := []struct {
		name        string
		yaw         float32
		front, left math.Vec3
	}{
		{"north", 0, math.Vec3{Z: 1}, math.Vec3{X: 1}},
		{"east", gomath.Pi / 2, math.Vec3{X: 1}, math.Vec3{Z: -1}},
		{"south", gomath.Pi, math.Vec3{Z: -1}, math.Vec3{X: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Transform{Yaw: tt.yaw}
			if got := tr.Front(); !nearVec(got, tt.front, 1e-6) {
				t.Errorf("Front() = %+v, want %+v", got, tt.front)
			}
			if got := tr.Left(); !nearVec(got, tt.left, 1e-6) {
				t.Errorf("Left() = %+v, want %+v", got, tt.left)
			}
			if got := tr.Up(); !nearVec(got, WorldUp, 1e-6) {
				t.Errorf("Up() = %+v, want %+v", got, WorldUp)
			}
		})
	}
}

func TestTransformPitch(t *testing.T) {
	tr := Transform{Pitch: 0.5}
	f := tr.Front()
	if f.Y <= 0 {
		t.Errorf("positive pitch should raise the nose, front = %+v", f)
	}
	if !near(f.Length(), 1, 1e-6) {
		t.Errorf("|front| = %v, want 1", f.Length())
	}
}

func TestYawTowards(t *testing.T) {
	if got := YawTowards(math.Vec3{X: 1}); !near(got, gomath.Pi/2, 1e-6) {
		t.Errorf("YawTowards(+X) = %v", got)
	}
	if got := YawTowards(math.Vec3{Z: 1}); got != 0 {
		t.Errorf("YawTowards(+Z) = %v", got)
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct{ in, want float32 }{
		{0, 0},
		{gomath.Pi, gomath.Pi},
		{-gomath.Pi, gomath.Pi},
		{3 * gomath.Pi / 2, -gomath.Pi / 2},
		{-5 * gomath.Pi / 2, -gomath.Pi / 2},
	}
	for _, tt := range tests {
		if got := wrapAngle(tt.in); !near(got, tt.want, 1e-5) {
			t.Errorf("wrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCommandMoveArrives(t *testing.T) {
	tests := []struct {
		name    string
		target  math.Vec3
		wantYaw float32
	}{
		{"ahead", math.Vec3{X: 500, Z: 700}, 0},
		{"left side", math.Vec3{X: 700, Z: 500}, gomath.Pi / 2},
		{"behind", math.Vec3{X: 500, Z: 350}, gomath.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hf := flatTerrain(t, 10)
			m := NewManager(nil)
			a := spawn(t, m, math.Vec3{X: 500, Y: 13, Z: 500}, false)

			a.CommandMove(tt.target)
			if a.CanManualControl() {
				t.Fatal("manual control should be blocked during a move")
			}
			for i := 0; i < 60*120 && a.State() != CommandNone; i++ {
				m.Update(dt, hf)
			}
			if a.State() != CommandNone {
				t.Fatalf("move did not finish, position %+v", a.Transform.Position)
			}

			pos := a.Transform.Position
			if pos.X != tt.target.X || pos.Z != tt.target.Z {
				t.Errorf("position = %+v, want X/Z of %+v", pos, tt.target)
			}
			if !a.Controller().GroundVelocity().IsZero() {
				t.Errorf("ground velocity = %+v, want zero", a.Controller().GroundVelocity())
			}
			if !near(wrapAngle(a.Transform.Yaw-tt.wantYaw), 0, 0.2) {
				t.Errorf("yaw = %v, want about %v", a.Transform.Yaw, tt.wantYaw)
			}
			if !a.CanManualControl() {
				t.Error("manual control should return after arrival")
			}
		})
	}
}

func TestCommandAttackFires(t *testing.T) {
	hf := flatTerrain(t, 10)
	var events []FireEvent
	m := NewManager(func(ev FireEvent) { events = append(events, ev) })
	a := spawn(t, m, math.Vec3{X: 500, Y: 13, Z: 500}, false)
	m.Update(dt, hf)

	target := math.Vec3{X: 600, Y: 10, Z: 500}
	a.CommandAttack(target)
	for i := 0; i < 60*60 && a.State() != CommandNone; i++ {
		m.Update(dt, hf)
	}

	if len(events) != 1 {
		t.Fatalf("got %d fire events, want 1", len(events))
	}
	ev := events[0]
	if ev.Actor != a.ID() {
		t.Errorf("event actor = %d, want %d", ev.Actor, a.ID())
	}
	if !ev.Hit {
		t.Fatal("expected the shot to hit terrain")
	}
	if !nearVec(ev.Target, target, 0.5) {
		t.Errorf("target = %+v, want near %+v", ev.Target, target)
	}
	if !near(wrapAngle(a.Transform.Yaw-gomath.Pi/2), 0, 0.2) {
		t.Errorf("yaw = %v, want about pi/2", a.Transform.Yaw)
	}
}

func TestCommandPatrolLoops(t *testing.T) {
	hf := flatTerrain(t, 10)
	m := NewManager(nil)
	cfg := flight.DefaultConfig()
	waypoints := []math.Vec3{{X: 500, Z: 600}, {X: 500, Z: 450}}
	a, err := m.Spawn(SpawnSpec{
		Config:   &cfg,
		Position: math.Vec3{X: 500, Y: 13, Z: 500},
		Bounds:   unitBox,
		Patrol:   waypoints,
	})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if a.State() != CommandPatrol {
		t.Fatalf("state = %v, want patrol", a.State())
	}

	changes := 0
	last := a.Target()
	for i := 0; i < 60*180 && changes < 3; i++ {
		m.Update(dt, hf)
		if a.Target() != last {
			changes++
			last = a.Target()
		}
	}
	if changes < 3 {
		t.Fatalf("patrol switched target %d times, want 3", changes)
	}
	if a.State() != CommandPatrol {
		t.Errorf("state = %v, want patrol", a.State())
	}
	if last != waypoints[1] {
		t.Errorf("target = %+v, want %+v", last, waypoints[1])
	}
}

func TestCommandPatrolEmpty(t *testing.T) {
	m := NewManager(nil)
	a := spawn(t, m, math.Vec3{Y: 13}, false)
	a.CommandPatrol(nil)
	if a.State() != CommandNone {
		t.Errorf("state = %v, want none", a.State())
	}
}

func TestCancelCommand(t *testing.T) {
	hf := flatTerrain(t, 10)
	m := NewManager(nil)
	a := spawn(t, m, math.Vec3{X: 500, Y: 13, Z: 500}, false)
	a.CommandMove(math.Vec3{X: 500, Z: 900})
	for range 30 {
		m.Update(dt, hf)
	}
	a.CancelCommand()
	if a.State() != CommandNone || !a.CanManualControl() {
		t.Fatalf("state = %v after cancel", a.State())
	}
	// Momentum decays once the command stops thrusting.
	for range 600 {
		m.Update(dt, hf)
	}
	if !a.Controller().GroundVelocity().IsZero() {
		t.Errorf("ground velocity = %+v, want zero", a.Controller().GroundVelocity())
	}
}

func TestApplyControllerClampsPitch(t *testing.T) {
	hf := flatTerrain(t, 10)
	m := NewManager(nil)
	a := spawn(t, m, math.Vec3{X: 500, Y: 100, Z: 500}, true)
	for range 600 {
		a.Controller().AcceleratePitch(20)
		m.Update(dt, hf)
	}
	if a.Transform.Pitch != FirePitchMax {
		t.Errorf("pitch = %v, want %v", a.Transform.Pitch, FirePitchMax)
	}
	for range 600 {
		a.Controller().AcceleratePitch(-20)
		m.Update(dt, hf)
	}
	if a.Transform.Pitch != FirePitchMin {
		t.Errorf("pitch = %v, want %v", a.Transform.Pitch, FirePitchMin)
	}
}

func TestAimPoint(t *testing.T) {
	hf := flatTerrain(t, 10)
	start := math.Vec3{X: 500, Y: 50, Z: 500}

	hit, ok := AimPoint(hf, start, math.Vec3{Y: -1})
	if !ok {
		t.Fatal("expected a hit straight down")
	}
	if !nearVec(hit, math.Vec3{X: 500, Y: 10, Z: 500}, 1e-3) {
		t.Errorf("hit = %+v", hit)
	}

	far, ok := AimPoint(hf, start, math.Vec3{Y: 2})
	if ok {
		t.Fatal("expected no hit straight up")
	}
	if want := (math.Vec3{X: 500, Y: 50 + CheckTargetDistanceMax, Z: 500}); far != want {
		t.Errorf("far point = %+v, want %+v", far, want)
	}
}
