package heightfield

import (
	"errors"
	"fmt"
	"image"
)

// TGA image types.
const (
	TGATypeTrueColor    = 2  // Uncompressed true-color
	TGATypeGray         = 3  // Uncompressed grayscale
	TGATypeTrueColorRLE = 10 // RLE true-color
	TGATypeGrayRLE      = 11 // RLE grayscale
)

// TGA decode errors.
var (
	ErrTGATruncated   = errors.New("TGA data truncated")
	ErrTGAUnsupported = errors.New("unsupported TGA image")
)

const tgaHeaderSize = 18

// DecodeTGA decodes an uncompressed or RLE TGA in true-color (24/32-bit) or
// grayscale (8-bit). Grayscale is expanded so the red channel carries the height.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, ErrTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped", ErrTGAUnsupported)
	}
	gray := imageType == TGATypeGray || imageType == TGATypeGrayRLE
	rle := imageType == TGATypeTrueColorRLE || imageType == TGATypeGrayRLE
	switch {
	case imageType != TGATypeTrueColor && imageType != TGATypeTrueColorRLE && !gray:
		return nil, fmt.Errorf("%w: type %d", ErrTGAUnsupported, imageType)
	case gray && bpp != 8:
		return nil, fmt.Errorf("%w: %d-bit grayscale", ErrTGAUnsupported, bpp)
	case !gray && bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("%w: %d-bit true-color", ErrTGAUnsupported, bpp)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, ErrTGATruncated
	}

	d := tgaDecoder{
		src:         data[offset:],
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		width:       width,
		height:      height,
		pixelSize:   bpp / 8,
		gray:        gray,
		topToBottom: topToBottom,
	}

	var err error
	if rle {
		err = d.decodeRLE()
	} else {
		err = d.decodeRaw()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	src         []byte
	pos         int
	img         *image.RGBA
	width       int
	height      int
	pixelSize   int
	gray        bool
	topToBottom bool
}

// readPixel consumes one source pixel and returns it as RGBA.
func (d *tgaDecoder) readPixel() ([4]byte, error) {
	if d.pos+d.pixelSize > len(d.src) {
		return [4]byte{}, ErrTGATruncated
	}
	p := d.src[d.pos : d.pos+d.pixelSize]
	d.pos += d.pixelSize

	if d.gray {
		return [4]byte{p[0], p[0], p[0], 255}, nil
	}
	px := [4]byte{p[2], p[1], p[0], 255} // stored as BGR(A)
	if d.pixelSize == 4 {
		px[3] = p[3]
	}
	return px, nil
}

// put writes the n-th pixel in file order, flipping bottom-up images.
func (d *tgaDecoder) put(n int, px [4]byte) {
	x := n % d.width
	y := n / d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	i := d.img.PixOffset(x, y)
	copy(d.img.Pix[i:i+4], px[:])
}

func (d *tgaDecoder) decodeRaw() error {
	for n := 0; n < d.width*d.height; n++ {
		px, err := d.readPixel()
		if err != nil {
			return err
		}
		d.put(n, px)
	}
	return nil
}

func (d *tgaDecoder) decodeRLE() error {
	total := d.width * d.height
	for n := 0; n < total; {
		if d.pos >= len(d.src) {
			return ErrTGATruncated
		}
		header := d.src[d.pos]
		d.pos++
		count := int(header&0x7F) + 1

		if header&0x80 != 0 {
			px, err := d.readPixel()
			if err != nil {
				return err
			}
			for i := 0; i < count && n < total; i++ {
				d.put(n, px)
				n++
			}
			continue
		}

		for i := 0; i < count && n < total; i++ {
			px, err := d.readPixel()
			if err != nil {
				return err
			}
			d.put(n, px)
			n++
		}
	}
	return nil
}
