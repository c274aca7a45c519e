// Package texture provides image decoding and texture containers.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for images no registered decoder understands.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Encoding is the color space of texel data.
type Encoding int

const (
	LinearEncoding Encoding = iota
	SRGBEncoding
)

// Mapping is how a texture is projected.
type Mapping int

const (
	UVMapping Mapping = iota
	EquirectangularReflectionMapping
	CubeReflectionMapping
)

// Texture is an 8-bit RGBA image ready for upload.
type Texture struct {
	Name     string
	Image    *image.RGBA
	Encoding Encoding
	Mapping  Mapping
	FlipY    bool
}

// NewTexture wraps img. Color textures default to sRGB.
func NewTexture(name string, img image.Image) *Texture {
	return &Texture{
		Name:     name,
		Image:    ToRGBA(img),
		Encoding: SRGBEncoding,
		FlipY:    true,
	}
}

// Width returns the image width in texels.
func (t *Texture) Width() int { return t.Image.Bounds().Dx() }

// Height returns the image height in texels.
func (t *Texture) Height() int { return t.Image.Bounds().Dy() }

// DataTexture holds floating point RGBA texels, as decoded from HDR sources.
type DataTexture struct {
	Width    int
	Height   int
	Data     []float32
	Encoding Encoding
	Mapping  Mapping
}

// At returns the RGBA texel at (x, y).
func (t *DataTexture) At(x, y int) [4]float32 {
	i := (y*t.Width + x) * 4
	return [4]float32{t.Data[i], t.Data[i+1], t.Data[i+2], t.Data[i+3]}
}

// Cube faces in +X, -X, +Y, -Y, +Z, -Z order.
const (
	FacePosX = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// CubeTexture is six square faces of equal size.
type CubeTexture struct {
	Faces    [6]*image.RGBA
	Encoding Encoding
	Mapping  Mapping
}

// Size returns the edge length of each face.
func (c *CubeTexture) Size() int {
	if c.Faces[0] == nil {
		return 0
	}
	return c.Faces[0].Bounds().Dx()
}

// Decode decodes an image. The file extension selects TGA, which has no
// magic number; everything else is sniffed by the registered decoders.
func Decode(data []byte, name string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		return DecodeTGA(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
		}
		return nil, err
	}
	return img, nil
}

// ToRGBA converts any image to *image.RGBA with its origin at (0, 0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
