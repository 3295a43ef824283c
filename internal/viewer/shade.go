package viewer

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/Faultbox/skyhull/internal/heightfield"
)

var (
	seaColor  = color.RGBA{R: 28, G: 64, B: 112, A: 255}
	lowColor  = color.RGBA{R: 58, G: 92, B: 48, A: 255}
	highColor = color.RGBA{R: 222, G: 214, B: 196, A: 255}
)

// ShadeHeightField renders a top-down colour map of one pyramid level. Row 0
// of the image is the footprint's maximum Z so the map reads north-up.
func ShadeHeightField(hf *heightfield.HeightField, level int) *image.RGBA {
	l := hf.Level(level)
	img := image.NewRGBA(image.Rect(0, 0, l.Width, l.Height))

	bounds := hf.Bounds()
	span := bounds.Size().Y
	sea := hf.SeaLevel()

	for z := range l.Height {
		row := l.Height - 1 - z
		for x := range l.Width {
			h := bounds.Min.Y + l.At(x, z)
			if h <= sea {
				img.SetRGBA(x, row, seaColor)
				continue
			}
			t := float32(0)
			if span > 0 {
				t = (h - bounds.Min.Y) / span
			}
			img.SetRGBA(x, row, mix(lowColor, highColor, t))
		}
	}
	return img
}

// ScaleTo resamples img to w x h.
func ScaleTo(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func mix(a, b color.RGBA, t float32) color.RGBA {
	t = max(0, min(1, t))
	lerp := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*t)
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}
