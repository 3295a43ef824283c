package viewer

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies the events the viewer reacts to.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventMouseDown
	EventMouseWheel
)

// Event is a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int32
	Height int32
	MouseX int32
	MouseY int32
	Button uint8
	Wheel  float32
}

// Input polls SDL events and samples held keys.
type Input struct {
	events        []Event
	mouseDX       float32
	mouseDY       float32
	mouseCaptured bool
}

// NewInput creates an input handler.
func NewInput() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events. Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	i.mouseDX, i.mouseDY = 0, 0

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  e.Data1,
					Height: e.Data2,
				})
			}

		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				if e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
					return true
				}
				i.events = append(i.events, Event{Type: EventKeyDown, Key: e.Keysym.Scancode})
			}

		case *sdl.MouseMotionEvent:
			i.mouseDX += float32(e.XRel)
			i.mouseDY += float32(e.YRel)

		case *sdl.MouseButtonEvent:
			if e.Type == sdl.MOUSEBUTTONDOWN {
				i.events = append(i.events, Event{
					Type:   EventMouseDown,
					MouseX: e.X,
					MouseY: e.Y,
					Button: e.Button,
				})
			}

		case *sdl.MouseWheelEvent:
			i.events = append(i.events, Event{Type: EventMouseWheel, Wheel: float32(e.Y)})
		}
	}
	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a key went down this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}

// ToggleMouseCapture switches relative mouse mode; while captured, mouse
// motion steers the player.
func (i *Input) ToggleMouseCapture() {
	i.mouseCaptured = !i.mouseCaptured
	sdl.SetRelativeMouseMode(i.mouseCaptured)
}

// Controls samples the held keys and mouse motion for this frame.
func (i *Input) Controls() Controls {
	keys := sdl.GetKeyboardState()
	held := func(sc sdl.Scancode) bool { return keys[sc] != 0 }

	c := Controls{
		Forward:  held(sdl.SCANCODE_W),
		Backward: held(sdl.SCANCODE_S),
		Left:     held(sdl.SCANCODE_A),
		Right:    held(sdl.SCANCODE_D),
		Up:       held(sdl.SCANCODE_E),
		Down:     held(sdl.SCANCODE_Q),
		Boost:    held(sdl.SCANCODE_LSHIFT) || held(sdl.SCANCODE_RSHIFT),
	}

	if held(sdl.SCANCODE_LEFT) {
		c.Yaw += KeyTurnRate
	}
	if held(sdl.SCANCODE_RIGHT) {
		c.Yaw -= KeyTurnRate
	}
	if held(sdl.SCANCODE_UP) {
		c.Pitch += KeyTurnRate
	}
	if held(sdl.SCANCODE_DOWN) {
		c.Pitch -= KeyTurnRate
	}
	if i.mouseCaptured {
		c.Yaw -= i.mouseDX * MouseSensitivity
		c.Pitch -= i.mouseDY * MouseSensitivity
	}
	return c
}
