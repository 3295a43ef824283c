package scene

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/skyhull/internal/actor"
	"github.com/Faultbox/skyhull/internal/assets"
	"github.com/Faultbox/skyhull/internal/flight"
	"github.com/Faultbox/skyhull/pkg/math"
)

const sceneYAML = `
name: canyon
heightmap: terrain.png
bounds:
  min: {x: 0, y: 0, z: 0}
  max: {x: 320, y: 255, z: 320}
sea_level: 5
archetypes: ships
actors:
  - archetype: Scout
    player: true
    position: {x: 100, y: 80, z: 100}
    half_height: 2
  - archetype: Scout
    position: {x: 200, y: 80, z: 200}
    yaw: 1.5
    patrol:
      - {x: 200, y: 0, z: 260}
      - {x: 260, y: 0, z: 200}
`

func writeScene(t *testing.T, descriptor string) string {
	t.Helper()
	dir := t.TempDir()

	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = 20
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	mustWrite(t, filepath.Join(dir, "terrain.png"), buf.Bytes())

	if err := os.Mkdir(filepath.Join(dir, "ships"), 0755); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(dir, "ships", "scout.yaml"), []byte("name: Scout\nmax_ground_speed: 80\n"))

	path := filepath.Join(dir, "scene.yaml")
	mustWrite(t, path, []byte(descriptor))
	return path
}

func mustWrite(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad(t *testing.T) {
	s, err := Load(writeScene(t, sceneYAML), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer s.Close()

	if s.Name != "canyon" {
		t.Errorf("Name = %q", s.Name)
	}
	if s.HeightField.SeaLevel() != 5 {
		t.Errorf("sea level = %v", s.HeightField.SeaLevel())
	}
	if s.Actors.Count() != 2 {
		t.Fatalf("actors = %d, want 2", s.Actors.Count())
	}

	player := s.Actors.Player()
	if player == nil {
		t.Fatal("no player actor")
	}
	if player.Controller().Config().MaxGroundSpeed != 80 {
		t.Errorf("player archetype not applied: %+v", player.Controller().Config())
	}
	if got := player.Controller().FloatingHeight(); got != 4 {
		t.Errorf("floating height = %v, want 4", got)
	}

	enemy := s.Actors.Actors()[1]
	if enemy.State() != actor.CommandPatrol {
		t.Errorf("enemy state = %v, want patrol", enemy.State())
	}
	if enemy.Transform.Yaw != 1.5 {
		t.Errorf("enemy yaw = %v", enemy.Transform.Yaw)
	}
	// Both actors share the interned archetype.
	if enemy.Controller().Config() != player.Controller().Config() {
		t.Error("archetype config not shared")
	}
}

func TestLoadSharesTerrain(t *testing.T) {
	path := writeScene(t, sceneYAML)
	m := assets.NewManager()
	defer m.Close()

	a, err := Load(path, nil, WithAssets(m))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b, err := Load(path, nil, WithAssets(m))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a.HeightField != b.HeightField {
		t.Error("scenes over the same heightmap should share one HeightField")
	}
	if a.Actors == b.Actors {
		t.Error("actors must not be shared")
	}
}

func TestStepSettlesOnGround(t *testing.T) {
	s, err := Load(writeScene(t, sceneYAML), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for range 60 * 10 {
		s.Step(1.0 / 60.0)
	}
	player := s.Actors.Player()
	if !player.Controller().OnGround() {
		t.Fatalf("player still airborne at %+v", player.Transform.Position)
	}
	want := float32(20) + 4
	if got := player.Transform.Position.Y; got < want-1e-3 || got > want+1e-3 {
		t.Errorf("player Y = %v, want %v", got, want)
	}
	if s.Frames() != 600 {
		t.Errorf("Frames() = %d", s.Frames())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name       string
		descriptor string
		want       error
	}{
		{"no heightmap", "bounds: {min: {x: 0}, max: {x: 10, z: 10}}\n", ErrInvalidDescriptor},
		{"flat bounds", "heightmap: terrain.png\nbounds: {min: {x: 0}, max: {x: 10}}\n", ErrInvalidDescriptor},
		{"two players", sceneYAML + "  - {archetype: Scout, player: true}\n", ErrInvalidDescriptor},
		{"unknown archetype", "heightmap: terrain.png\narchetypes: ships\nbounds: {min: {x: 0}, max: {x: 10, z: 10}}\nactors: [{archetype: Bomber}]\n", flight.ErrUnknownArchetype},
		{"malformed", "actors: [\n", ErrInvalidDescriptor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeScene(t, tt.descriptor), nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadMissingHeightmap(t *testing.T) {
	path := writeScene(t, "heightmap: missing.png\nbounds: {min: {x: 0}, max: {x: 10, z: 10}}\n")
	if _, err := Load(path, nil); err == nil {
		t.Error("expected error for missing heightmap file")
	}
}

func TestNewDefaultArchetype(t *testing.T) {
	hf, err := Flat(math.NewBox(math.Vec3{}, math.Vec3{X: 100, Z: 100}), 10, 0)
	if err != nil {
		t.Fatalf("Flat: %v", err)
	}
	s, err := New("flat", hf, nil, []ActorSpec{
		{Player: true, Position: math.Vec3{X: 50, Y: 30, Z: 50}},
		{Position: math.Vec3{X: 20, Y: 30, Z: 20}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Registry.Len() != 1 {
		t.Errorf("registry has %d archetypes, want 1", s.Registry.Len())
	}
	actors := s.Actors.Actors()
	if actors[0].Archetype() != "LightShipController" {
		t.Errorf("archetype = %q", actors[0].Archetype())
	}
	if got := actors[0].Controller().FloatingHeight(); got != DefaultHalfHeight+flight.FloatingMargin {
		t.Errorf("floating height = %v", got)
	}
}

func TestFlat(t *testing.T) {
	hf, err := Flat(math.NewBox(math.Vec3{X: -50, Z: -50}, math.Vec3{X: 50, Z: 50}), 12, 3)
	if err != nil {
		t.Fatalf("Flat: %v", err)
	}
	for _, p := range []math.Vec3{{}, {X: -50, Z: 50}, {X: 49, Z: -7}} {
		if got := hf.SampleBilinear(p, 0); got != 12 {
			t.Errorf("SampleBilinear(%+v) = %v, want 12", p, got)
		}
	}
	if _, ok := hf.RayCollision(math.Vec3{Y: 40}, math.Vec3{Y: -1}, 100, 0); !ok {
		t.Error("expected a vertical ray to hit the flat field")
	}
}

func TestAdvance(t *testing.T) {
	hf, err := Flat(math.NewBox(math.Vec3{}, math.Vec3{X: 100, Z: 100}), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	s, err := New("advance", hf, nil, nil, WithFixedStep(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	if n := s.Advance(25*time.Millisecond, nil); n != 2 {
		t.Errorf("Advance(25ms) = %d steps, want 2", n)
	}
	if n := s.Advance(5*time.Millisecond, nil); n != 1 {
		t.Errorf("Advance(5ms) = %d steps, want 1 from the carried remainder", n)
	}
	if n := s.Advance(time.Second, nil); n != MaxStepsPerAdvance {
		t.Errorf("Advance(1s) = %d steps, want %d", n, MaxStepsPerAdvance)
	}
	if n := s.Advance(0, nil); n != 0 {
		t.Errorf("Advance(0) = %d steps after a capped advance, want 0", n)
	}
	if s.Frames() != uint64(3+MaxStepsPerAdvance) {
		t.Errorf("Frames() = %d", s.Frames())
	}
}

func TestAdvanceHeldInputIndependentOfFrameRate(t *testing.T) {
	hf, err := Flat(math.NewBox(math.Vec3{}, math.Vec3{X: 1000, Z: 1000}), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	const step = 10 * time.Millisecond

	fly := func(frame time.Duration) *actor.Actor {
		t.Helper()
		s, err := New("held", hf, nil, []ActorSpec{
			{Player: true, Position: math.Vec3{X: 500, Y: 3, Z: 500}},
		}, WithFixedStep(step))
		if err != nil {
			t.Fatal(err)
		}
		hold := func() {
			ctrl := s.Actors.Player().Controller()
			ctrl.AccelerateForward()
			ctrl.AccelerateLeft()
			ctrl.AccelerateYaw(1)
		}
		for elapsed := time.Duration(0); elapsed < time.Second; elapsed += frame {
			s.Advance(frame, hold)
		}
		if s.Frames() != 100 {
			t.Fatalf("frame %v: %d steps, want 100", frame, s.Frames())
		}
		return s.Actors.Player()
	}

	fast := fly(step)
	slow := fly(2 * step)

	if fast.Controller().GroundVelocity().Length() == 0 {
		t.Fatal("held thrust produced no speed")
	}
	if fast.Controller().Roll() == 0 {
		t.Fatal("held side input produced no roll")
	}

	tests := []struct {
		name       string
		fast, slow float32
	}{
		{"speed", fast.Controller().GroundVelocity().Length(), slow.Controller().GroundVelocity().Length()},
		{"yaw", fast.Transform.Yaw, slow.Transform.Yaw},
		{"roll", fast.Controller().Roll(), slow.Controller().Roll()},
		{"x", fast.Transform.Position.X, slow.Transform.Position.X},
		{"z", fast.Transform.Position.Z, slow.Transform.Position.Z},
	}
	for _, tt := range tests {
		if tt.fast != tt.slow {
			t.Errorf("%s: one step per frame = %v, two steps per frame = %v", tt.name, tt.fast, tt.slow)
		}
	}
}

func TestFireCallback(t *testing.T) {
	hf, err := Flat(math.NewBox(math.Vec3{}, math.Vec3{X: 100, Z: 100}), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	var events []actor.FireEvent
	s, err := New("fire", hf, nil, []ActorSpec{{Player: true, Position: math.Vec3{X: 50, Y: 20, Z: 50}}},
		WithFireFunc(func(ev actor.FireEvent) { events = append(events, ev) }))
	if err != nil {
		t.Fatal(err)
	}
	s.FirePlayer(math.Vec3{Y: -1})
	if s.Shots() != 1 || len(events) != 1 || !events[0].Hit {
		t.Errorf("shots = %d, events = %+v", s.Shots(), events)
	}
}
