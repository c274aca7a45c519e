// Package loader loads models, textures and environment maps asynchronously.
package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPath is returned when a load is requested without a path.
	ErrEmptyPath = errors.New("empty path")
	// ErrCubeFaceSize is returned when cube faces are not square or differ in size.
	ErrCubeFaceSize = errors.New("cube faces must be square and equal in size")
)

// Format names used in LoadError.
const (
	FormatGLTF    = "gltf"
	FormatFBX     = "fbx"
	FormatTexture = "texture"
	FormatRGBE    = "rgbe"
	FormatCube    = "cube"
)

// LoadError reports a failed load. Err is the underlying error unchanged.
type LoadError struct {
	Format string
	Path   string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s %q: %v", e.Format, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
