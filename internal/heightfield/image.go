package heightfield

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png" // PNG decoder registration
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // BMP decoder registration
	"golang.org/x/image/draw"

	"github.com/Faultbox/skyhull/pkg/math"
)

// LoadHeightmap reads and decodes a heightmap image. TGA is decoded by
// DecodeTGA; every other extension goes through the registered image decoders
// (PNG, BMP).
func LoadHeightmap(path string) (*image.RGBA, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading heightmap: %w", err)
	}
	return DecodeHeightmap(data, filepath.Ext(path))
}

// DecodeHeightmap decodes heightmap bytes. ext selects the TGA decoder when it
// is ".tga" (case-insensitive); otherwise the format is sniffed.
func DecodeHeightmap(data []byte, ext string) (*image.RGBA, error) {
	if strings.EqualFold(ext, ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding heightmap: %w", err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts any image to a tightly packed *image.RGBA anchored at the origin,
// which is the layout Build expects.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == b.Dx()*BytesPerPixel {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// FromImage builds a height field from a decoded image.
func FromImage(bounds math.Box, img image.Image, seaLevel float32) (*HeightField, error) {
	rgba := ToRGBA(img)
	return Build(bounds, rgba.Rect.Dx(), rgba.Rect.Dy(), rgba.Pix, seaLevel)
}

// Load reads a heightmap file and builds a height field over bounds.
func Load(path string, bounds math.Box, seaLevel float32) (*HeightField, error) {
	img, err := LoadHeightmap(path)
	if err != nil {
		return nil, err
	}
	hf, err := FromImage(bounds, img, seaLevel)
	if err != nil {
		return nil, fmt.Errorf("building heightfield from %s: %w", path, err)
	}
	return hf, nil
}
