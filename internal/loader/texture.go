package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/sketchbox/internal/engine/texture"
	"github.com/Faultbox/sketchbox/pkg/formats"
)

// TextureLoader loads PNG, JPEG, GIF, BMP, WebP and TGA images.
type TextureLoader struct {
	base
}

// NewTextureLoader creates a loader reporting to manager, which may be nil.
func NewTextureLoader(manager *LoadingManager) *TextureLoader {
	return &TextureLoader{base: base{manager: manager}}
}

// Load reads and decodes the image at path asynchronously.
func (l *TextureLoader) Load(path string) *Future[*texture.Texture] {
	return start(&l.base, FormatTexture, path, decodeImageFile)
}

func decodeImageFile(path string) (*texture.Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := texture.Decode(data, path)
	if err != nil {
		return nil, err
	}
	return texture.NewTexture(filepath.Base(path), img), nil
}

// RGBELoader loads Radiance .hdr environment maps as linear float textures.
type RGBELoader struct {
	base
}

// NewRGBELoader creates a loader reporting to manager, which may be nil.
func NewRGBELoader(manager *LoadingManager) *RGBELoader {
	return &RGBELoader{base: base{manager: manager}}
}

// Load reads and decodes the .hdr file at path asynchronously.
func (l *RGBELoader) Load(path string) *Future[*texture.DataTexture] {
	return start(&l.base, FormatRGBE, path, func(path string) (*texture.DataTexture, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		hdr, err := formats.ParseHDR(data)
		if err != nil {
			return nil, err
		}
		return &texture.DataTexture{
			Width:    hdr.Width,
			Height:   hdr.Height,
			Data:     hdr.RGBA(),
			Encoding: texture.LinearEncoding,
		}, nil
	})
}

// CubeTextureLoader loads six images as the faces of a cube map.
type CubeTextureLoader struct {
	base
}

// NewCubeTextureLoader creates a loader reporting to manager, which may be nil.
func NewCubeTextureLoader(manager *LoadingManager) *CubeTextureLoader {
	return &CubeTextureLoader{base: base{manager: manager}}
}

// Load decodes the faces concurrently, in +X, -X, +Y, -Y, +Z, -Z order.
// Faces must be square and of equal size.
func (l *CubeTextureLoader) Load(paths [6]string) *Future[*texture.CubeTexture] {
	for _, p := range paths {
		if p == "" {
			return Rejected[*texture.CubeTexture](&LoadError{Format: FormatCube, Path: p, Err: ErrEmptyPath})
		}
	}

	return start(&l.base, FormatCube, paths[0], func(string) (*texture.CubeTexture, error) {
		cube := &texture.CubeTexture{Encoding: texture.SRGBEncoding, Mapping: texture.CubeReflectionMapping}

		var g errgroup.Group
		for i, p := range paths {
			i, p := i, l.resolve(p)
			g.Go(func() error {
				tex, err := decodeImageFile(p)
				if err != nil {
					return fmt.Errorf("face %d: %w", i, err)
				}
				cube.Faces[i] = tex.Image
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		size := cube.Faces[0].Bounds().Dx()
		for i, f := range cube.Faces {
			b := f.Bounds()
			if b.Dx() != b.Dy() || b.Dx() != size {
				return nil, fmt.Errorf("%w: face %d is %dx%d, want %dx%d", ErrCubeFaceSize, i, b.Dx(), b.Dy(), size, size)
			}
		}
		return cube, nil
	})
}
