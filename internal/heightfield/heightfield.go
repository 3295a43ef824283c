// Package heightfield provides the terrain height pyramid used for ground
// clamping, camera placement and weapon-hit queries.
//
// Level 0 holds the source heightmap at full resolution. Every coarser level
// halves the width and height and stores the minimum of the 2x2 block below it,
// so a coarse cell never reports more ground than the finer cells it covers.
package heightfield

import (
	"errors"
	"fmt"
	"math/bits"

	"go.uber.org/zap"

	"github.com/Faultbox/skyhull/internal/logger"
	"github.com/Faultbox/skyhull/pkg/math"
)

// BytesPerPixel is the stride of a source pixel; only the red channel is read.
const BytesPerPixel = 4

// MinLevels is the smallest pyramid the ray march can refine through.
const MinLevels = 2

// Build errors.
var (
	ErrInvalidDimensions = errors.New("invalid heightmap dimensions")
	ErrShortBuffer       = errors.New("heightmap pixel buffer too short")
	ErrTooFewLevels      = errors.New("heightmap too small for a mip pyramid")
	ErrEmptyFootprint    = errors.New("heightfield footprint has zero area")
)

// Level is one resolution of the height pyramid. Samples are row-major and
// relative to the footprint's minimum Y.
type Level struct {
	Width   int
	Height  int
	Samples []float32
}

// At returns the sample at column x, row y.
func (l Level) At(x, y int) float32 {
	return l.Samples[y*l.Width+x]
}

// HeightField is immutable after Build and safe to share between actors.
type HeightField struct {
	bounds   math.Box
	size     math.Vec3
	seaLevel float32
	levels   []Level
}

// Build creates the pyramid from an 8-bit RGBA buffer (4 bytes per pixel,
// row-major). The red channel maps [0,255] onto [0, bounds.Size().Y].
func Build(bounds math.Box, width, height int, rgba []byte, seaLevel float32) (*HeightField, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	// Divide rather than multiply: width*height*BytesPerPixel can overflow.
	if len(rgba)/BytesPerPixel/width < height {
		return nil, fmt.Errorf("%w: have %d bytes for %dx%d pixels", ErrShortBuffer, len(rgba), width, height)
	}

	levelCount := min(bits.Len(uint(width)), bits.Len(uint(height)))
	if levelCount < MinLevels {
		return nil, fmt.Errorf("%w: %dx%d yields %d level(s), need %d",
			ErrTooFewLevels, width, height, levelCount, MinLevels)
	}

	size := bounds.Size()
	if size.X <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("%w: size %.2fx%.2f", ErrEmptyFootprint, size.X, size.Z)
	}

	base := Level{Width: width, Height: height, Samples: make([]float32, width*height)}
	for i := range base.Samples {
		base.Samples[i] = float32(rgba[i*BytesPerPixel]) / 255.0 * size.Y
	}

	levels := make([]Level, 0, levelCount)
	levels = append(levels, base)
	for len(levels) < levelCount {
		levels = append(levels, downsampleMin(levels[len(levels)-1]))
	}

	logger.Debug("heightfield built",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("levels", levelCount),
		zap.Float32("seaLevel", seaLevel),
	)

	return &HeightField{
		bounds:   bounds,
		size:     size,
		seaLevel: seaLevel,
		levels:   levels,
	}, nil
}

// downsampleMin halves a level, keeping the minimum of each 2x2 block.
// An odd trailing row or column is dropped.
func downsampleMin(src Level) Level {
	dst := Level{Width: src.Width / 2, Height: src.Height / 2}
	dst.Samples = make([]float32, dst.Width*dst.Height)
	for y := range dst.Height {
		row0 := (y * 2) * src.Width
		row1 := row0 + src.Width
		for x := range dst.Width {
			c := x * 2
			dst.Samples[y*dst.Width+x] = min(
				src.Samples[row0+c], src.Samples[row0+c+1],
				src.Samples[row1+c], src.Samples[row1+c+1],
			)
		}
	}
	return dst
}

// Bounds returns the world footprint.
func (h *HeightField) Bounds() math.Box {
	return h.bounds
}

// SeaLevel returns the floor applied to every query.
func (h *HeightField) SeaLevel() float32 {
	return h.seaLevel
}

// LevelCount returns the number of pyramid levels.
func (h *HeightField) LevelCount() int {
	return len(h.levels)
}

// Level returns pyramid level i (0 = finest). The returned samples must not be modified.
func (h *HeightField) Level(i int) Level {
	return h.levels[i]
}

// CellSize returns the world extent of one cell at the given level along X and Z.
func (h *HeightField) CellSize(level int) (float32, float32) {
	l := h.levels[level]
	return h.size.X / float32(l.Width), h.size.Z / float32(l.Height)
}

// SampleBilinear returns the interpolated ground height at p (X/Z only) on the
// given level. Points outside the footprint read the nearest edge. The result
// is never below the sea level.
func (h *HeightField) SampleBilinear(p math.Vec3, lod int) float32 {
	l := h.levels[math.ClampInt(lod, 0, len(h.levels)-1)]

	maxX := float32(l.Width - 1)
	maxY := float32(l.Height - 1)
	px := math.Clamp((p.X-h.bounds.Min.X)/h.size.X, 0, 1) * maxX
	py := math.Clamp((p.Z-h.bounds.Min.Z)/h.size.Z, 0, 1) * maxY

	x0 := int(px)
	y0 := int(py)
	x1 := min(x0+1, l.Width-1)
	y1 := min(y0+1, l.Height-1)
	fx := px - float32(x0)
	fy := py - float32(y0)

	top := math.Lerp(l.At(x0, y0), l.At(x1, y0), fx)
	bottom := math.Lerp(l.At(x0, y1), l.At(x1, y1), fx)
	height := math.Lerp(top, bottom, fy) + h.bounds.Min.Y

	return max(h.seaLevel, height)
}

// cellFloor is the world height a ray must reach to collide with a cell.
func (h *HeightField) cellFloor(level, cx, cz int) float32 {
	return max(h.seaLevel, h.bounds.Min.Y+h.levels[level].At(cx, cz))
}
