package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	TGATypeUncompressed = 2  // uncompressed true-color
	TGATypeGrayscale    = 3  // uncompressed black and white
	TGATypeRLE          = 10 // RLE compressed true-color
	TGATypeRLEGrayscale = 11 // RLE compressed black and white
)

const (
	tgaHeaderSize  = 18
	tgaTopToBottom = 0x20
)

var (
	ErrTGATooShort    = errors.New("TGA data too short")
	ErrTGATruncated   = errors.New("TGA data truncated")
	ErrTGAUnsupported = errors.New("unsupported TGA variant")
)

// DecodeTGA decodes a TGA image.
// Supports uncompressed and RLE true-color (24/32 bit) and grayscale (8 bit) images.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, ErrTGATooShort
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := int(data[2])
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped", ErrTGAUnsupported)
	}
	gray := imageType == TGATypeGrayscale || imageType == TGATypeRLEGrayscale
	switch {
	case imageType == TGATypeUncompressed || imageType == TGATypeRLE:
		if bpp != 24 && bpp != 32 {
			return nil, fmt.Errorf("%w: %d-bit true-color", ErrTGAUnsupported, bpp)
		}
	case gray:
		if bpp != 8 {
			return nil, fmt.Errorf("%w: %d-bit grayscale", ErrTGAUnsupported, bpp)
		}
	default:
		return nil, fmt.Errorf("%w: type %d", ErrTGAUnsupported, imageType)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, ErrTGATruncated
	}

	d := &tgaDecoder{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		src:         data[offset:],
		width:       width,
		height:      height,
		bytesPP:     bpp / 8,
		gray:        gray,
		topToBottom: descriptor&tgaTopToBottom != 0,
	}

	var err error
	if imageType == TGATypeRLE || imageType == TGATypeRLEGrayscale {
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
	img         *image.RGBA
	src         []byte
	pos         int
	width       int
	height      int
	bytesPP     int
	gray        bool
	topToBottom bool
}

func (d *tgaDecoder) readPixel() (color.RGBA, bool) {
	if d.pos+d.bytesPP > len(d.src) {
		return color.RGBA{}, false
	}
	p := d.src[d.pos : d.pos+d.bytesPP]
	d.pos += d.bytesPP

	if d.gray {
		return color.RGBA{R: p[0], G: p[0], B: p[0], A: 255}, true
	}
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if d.bytesPP == 4 {
		c.A = p[3]
	}
	return c, true
}

func (d *tgaDecoder) set(index int, c color.RGBA) {
	x := index % d.width
	y := index / d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	d.img.SetRGBA(x, y, c)
}

func (d *tgaDecoder) decodeRaw() error {
	if len(d.src) < d.width*d.height*d.bytesPP {
		return ErrTGATruncated
	}
	for i := 0; i < d.width*d.height; i++ {
		c, _ := d.readPixel()
		d.set(i, c)
	}
	return nil
}

func (d *tgaDecoder) decodeRLE() error {
	total := d.width * d.height
	for i := 0; i < total; {
		if d.pos >= len(d.src) {
			return ErrTGATruncated
		}
		packet := d.src[d.pos]
		d.pos++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			c, ok := d.readPixel()
			if !ok {
				return ErrTGATruncated
			}
			for n := 0; n < count && i < total; n++ {
				d.set(i, c)
				i++
			}
			continue
		}

		for n := 0; n < count && i < total; n++ {
			c, ok := d.readPixel()
			if !ok {
				return ErrTGATruncated
			}
			d.set(i, c)
			i++
		}
	}
	return nil
}
