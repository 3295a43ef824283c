package viewer

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/skyhull/pkg/math"
)

// Projection maps the footprint's X/Z plane onto a screen rectangle, +X to
// the right and +Z up, keeping the aspect ratio.
type Projection struct {
	bounds math.Box
	view   sdl.Rect
	scale  float32 // pixels per world unit
}

// NewProjection fits bounds into a width x height screen, centred.
func NewProjection(bounds math.Box, width, height int32) Projection {
	size := bounds.Size()
	scale := min(float32(width)/size.X, float32(height)/size.Z)
	w := int32(size.X * scale)
	h := int32(size.Z * scale)
	return Projection{
		bounds: bounds,
		view:   sdl.Rect{X: (width - w) / 2, Y: (height - h) / 2, W: w, H: h},
		scale:  scale,
	}
}

// View returns the screen rectangle covered by the footprint.
func (p Projection) View() sdl.Rect { return p.view }

// Scale returns pixels per world unit.
func (p Projection) Scale() float32 { return p.scale }

// ToScreen returns the pixel for a world position.
func (p Projection) ToScreen(v math.Vec3) (int32, int32) {
	x := float32(p.view.X) + (v.X-p.bounds.Min.X)*p.scale
	y := float32(p.view.Y+p.view.H) - (v.Z-p.bounds.Min.Z)*p.scale
	return int32(x), int32(y)
}

// ToWorld returns the X/Z world position under a pixel. ok is false outside
// the footprint.
func (p Projection) ToWorld(x, y int32) (v math.Vec3, ok bool) {
	v.X = p.bounds.Min.X + float32(x-p.view.X)/p.scale
	v.Z = p.bounds.Min.Z + float32(p.view.Y+p.view.H-y)/p.scale
	return v, p.bounds.ContainsXZ(v)
}
