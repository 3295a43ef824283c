// Package viewer is the SDL2 top-down debug view: it draws the height field
// and the actors, and turns keyboard and mouse input into flight commands for
// the player ship.
package viewer

import (
	"fmt"
	"image"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/skyhull/internal/logger"
)

func init() {
	// SDL calls must be made from the main thread
	runtime.LockOSThread()
}

// WindowConfig holds window configuration.
type WindowConfig struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// Window wraps the SDL2 window and its 2D renderer.
type Window struct {
	config   WindowConfig
	window   *sdl.Window
	renderer *sdl.Renderer
}

// NewWindow creates a window with an accelerated renderer.
func NewWindow(cfg WindowConfig) (*Window, error) {
	w := &Window{config: cfg}

	logger.Info("initializing SDL2")
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}

	flags := uint32(sdl.WINDOW_RESIZABLE)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	var err error
	w.window, err = sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}

	rendererFlags := uint32(sdl.RENDERER_ACCELERATED)
	if cfg.VSync {
		rendererFlags |= sdl.RENDERER_PRESENTVSYNC
	}
	w.renderer, err = sdl.CreateRenderer(w.window, -1, rendererFlags)
	if err != nil {
		w.window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateRenderer failed: %w", err)
	}
	if err := w.renderer.SetDrawBlendMode(sdl.BLENDMODE_BLEND); err != nil {
		logger.Warn("failed to enable blending", zap.Error(err))
	}

	logger.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Bool("fullscreen", cfg.Fullscreen),
		zap.Bool("vsync", cfg.VSync),
	)
	return w, nil
}

// Close destroys the renderer and window and shuts SDL2 down.
func (w *Window) Close() {
	logger.Info("closing window")

	if w.renderer != nil {
		w.renderer.Destroy()
	}
	if w.window != nil {
		w.window.Destroy()
	}
	sdl.Quit()
}

// Renderer returns the 2D renderer.
func (w *Window) Renderer() *sdl.Renderer {
	return w.renderer
}

// Present shows the frame.
func (w *Window) Present() {
	w.renderer.Present()
}

// Size returns the current output size in pixels.
func (w *Window) Size() (int32, int32) {
	width, height, err := w.renderer.GetOutputSize()
	if err != nil {
		return w.window.GetSize()
	}
	return width, height
}

// SetTitle sets the window title.
func (w *Window) SetTitle(title string) {
	w.window.SetTitle(title)
}

// Upload turns an RGBA image into a static texture.
func (w *Window) Upload(img *image.RGBA) (*sdl.Texture, error) {
	b := img.Bounds()
	surface, err := sdl.CreateRGBSurfaceWithFormat(0, int32(b.Dx()), int32(b.Dy()), 32, uint32(sdl.PIXELFORMAT_ABGR8888))
	if err != nil {
		return nil, fmt.Errorf("creating surface: %w", err)
	}
	defer surface.Free()

	pixels := surface.Pixels()
	rowBytes := b.Dx() * 4
	for y := range b.Dy() {
		src := img.Pix[y*img.Stride : y*img.Stride+rowBytes]
		copy(pixels[y*int(surface.Pitch):], src)
	}

	tex, err := w.renderer.CreateTextureFromSurface(surface)
	if err != nil {
		return nil, fmt.Errorf("creating texture: %w", err)
	}
	return tex, nil
}
