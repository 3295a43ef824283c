package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/skyhull/internal/actor"
	"github.com/Faultbox/skyhull/internal/camera"
	"github.com/Faultbox/skyhull/internal/config"
	"github.com/Faultbox/skyhull/internal/logger"
	"github.com/Faultbox/skyhull/internal/scene"
)

// actorMarkerSize is the side of an actor square, in pixels.
const actorMarkerSize = 6

// Viewer runs the interactive loop over a scene.
type Viewer struct {
	cfg     *config.Config
	scene   *scene.Scene
	window  *Window
	input   *Input
	camera  *camera.ChaseCamera
	markers Markers

	terrain    *sdl.Texture
	projection Projection
	paused     bool
}

// New opens the window and prepares the terrain texture. The scene's fire
// events are routed to the on-screen markers.
func New(cfg *config.Config, s *scene.Scene) (*Viewer, error) {
	w, err := NewWindow(WindowConfig{
		Title:      "skyhull - " + s.Name,
		Width:      cfg.Display.Width,
		Height:     cfg.Display.Height,
		Fullscreen: cfg.Display.Fullscreen,
		VSync:      cfg.Display.VSync,
	})
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		cfg:    cfg,
		scene:  s,
		window: w,
		input:  NewInput(),
		camera: camera.NewChaseCamera(),
	}
	s.SetFireFunc(v.onFire)

	v.terrain, err = w.Upload(ShadeHeightField(s.HeightField, 0))
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("uploading terrain: %w", err)
	}
	v.resize()
	return v, nil
}

// Close releases GPU resources and the window.
func (v *Viewer) Close() {
	if v.terrain != nil {
		v.terrain.Destroy()
	}
	v.window.Close()
}

func (v *Viewer) onFire(ev actor.FireEvent) {
	v.markers.Record(ev)
	logger.Debug("player view shot",
		zap.Uint64("actor", uint64(ev.Actor)),
		zap.Bool("hit", ev.Hit),
	)
}

func (v *Viewer) resize() {
	w, h := v.window.Size()
	v.projection = NewProjection(v.scene.HeightField.Bounds(), w, h)
}

// Run loops until the window closes.
func (v *Viewer) Run() {
	var frameDelay time.Duration
	if v.cfg.Display.FPSLimit > 0 {
		frameDelay = time.Second / time.Duration(v.cfg.Display.FPSLimit)
	}
	timeScale := float64(v.cfg.Simulation.TimeScale)

	last := time.Now()
	statsAt := last
	frames := 0

	for {
		frameStart := time.Now()
		elapsed := frameStart.Sub(last)
		last = frameStart

		if v.input.Update() {
			return
		}
		v.handleEvents()

		if !v.paused {
			controls := v.input.Controls()
			v.scene.Advance(time.Duration(float64(elapsed)*timeScale), func() {
				controls.Apply(v.scene.Actors.Player())
			})
		}

		dt := float32(elapsed.Seconds())
		if player := v.scene.Actors.Player(); player != nil {
			v.camera.Update(dt, player.Transform, v.scene.HeightField)
		}
		v.markers.Age(dt)

		v.draw()
		v.window.Present()

		frames++
		if v.cfg.Display.ShowStats && frameStart.Sub(statsAt) >= time.Second {
			v.window.SetTitle(v.stats(frames, frameStart.Sub(statsAt)))
			statsAt = frameStart
			frames = 0
		}

		if frameDelay > 0 {
			if spent := time.Since(frameStart); spent < frameDelay {
				sdl.Delay(uint32((frameDelay - spent).Milliseconds()))
			}
		}
	}
}

func (v *Viewer) handleEvents() {
	player := v.scene.Actors.Player()
	for _, e := range v.input.Events() {
		switch e.Type {
		case EventWindowResize:
			v.resize()

		case EventMouseWheel:
			v.camera.Zoom(e.Wheel)

		case EventKeyDown:
			switch e.Key {
			case sdl.SCANCODE_P:
				v.paused = !v.paused
				logger.Info("simulation paused", zap.Bool("paused", v.paused))
			case sdl.SCANCODE_M:
				v.input.ToggleMouseCapture()
			case sdl.SCANCODE_SPACE:
				v.scene.FirePlayer(v.camera.ViewDir())
			case sdl.SCANCODE_X:
				if player != nil {
					player.CancelCommand()
				}
			}

		case EventMouseDown:
			if player == nil {
				continue
			}
			target, ok := v.projection.ToWorld(e.MouseX, e.MouseY)
			if !ok {
				continue
			}
			target.Y = v.scene.HeightField.SampleBilinear(target, 0)
			switch e.Button {
			case sdl.BUTTON_RIGHT:
				player.CommandMove(target)
			case sdl.BUTTON_MIDDLE:
				player.CommandAttack(target)
			}
		}
	}
}

func (v *Viewer) draw() {
	r := v.window.Renderer()
	r.SetDrawColor(12, 12, 16, 255)
	r.Clear()

	view := v.projection.View()
	r.Copy(v.terrain, nil, &view)

	for _, s := range v.markers.shots {
		x0, y0 := v.projection.ToScreen(s.start)
		x1, y1 := v.projection.ToScreen(s.target)
		if s.hit {
			r.SetDrawColor(255, 120, 40, s.alpha())
		} else {
			r.SetDrawColor(200, 200, 200, s.alpha())
		}
		r.DrawLine(x0, y0, x1, y1)
	}

	for _, a := range v.scene.Actors.Actors() {
		v.drawActor(r, a)
	}

	if v.scene.Actors.Player() != nil {
		ex, ey := v.projection.ToScreen(v.camera.Eye)
		r.SetDrawColor(80, 200, 255, 255)
		r.DrawRect(&sdl.Rect{X: ex - 2, Y: ey - 2, W: 4, H: 4})
	}
}

func (v *Viewer) drawActor(r *sdl.Renderer, a *actor.Actor) {
	x, y := v.projection.ToScreen(a.Transform.Position)

	switch {
	case a.IsPlayer():
		r.SetDrawColor(80, 200, 255, 255)
	case a.State() == actor.CommandNone:
		r.SetDrawColor(230, 60, 60, 255)
	default:
		r.SetDrawColor(240, 180, 60, 255)
	}
	half := int32(actorMarkerSize / 2)
	r.FillRect(&sdl.Rect{X: x - half, Y: y - half, W: actorMarkerSize, H: actorMarkerSize})

	tip := a.Transform.Position.Add(a.Transform.Front().Scale(12 / v.projection.Scale()))
	tx, ty := v.projection.ToScreen(tip)
	r.DrawLine(x, y, tx, ty)

	if a.State() != actor.CommandNone {
		gx, gy := v.projection.ToScreen(a.Target())
		r.SetDrawColor(240, 180, 60, 96)
		r.DrawLine(x, y, gx, gy)
	}
}

func (v *Viewer) stats(frames int, span time.Duration) string {
	fps := float64(frames) / span.Seconds()
	title := fmt.Sprintf("skyhull - %s | %.0f fps | %d actors | t=%s",
		v.scene.Name, fps, v.scene.Actors.Count(), v.scene.Elapsed().Truncate(time.Second))
	if p := v.scene.Actors.Player(); p != nil {
		pos := p.Transform.Position
		title += fmt.Sprintf(" | player %.0f,%.0f,%.0f %.1fm/s", pos.X, pos.Y, pos.Z, p.Controller().GroundVelocity().Length())
	}
	return title
}
