package loader

import (
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/sketchbox/internal/engine/scene"
	"github.com/Faultbox/sketchbox/internal/logger"
)

// base holds what every loader shares.
type base struct {
	manager *LoadingManager
	path    string
}

// SetPath sets a directory prefixed to relative paths.
func (b *base) SetPath(dir string) {
	b.path = dir
}

func (b *base) resolve(p string) string {
	if b.path == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(b.path, p)
}

// start runs fn for path on its own goroutine, reporting to the manager.
// Errors come back wrapped in a *LoadError.
func start[T any](b *base, format, path string, fn func(path string) (T, error)) *Future[T] {
	log := logger.Named("loader")
	if path == "" {
		return Rejected[T](&LoadError{Format: format, Path: path, Err: ErrEmptyPath})
	}

	resolved := b.resolve(path)
	b.manager.ItemStart(resolved)

	return Go(func() (T, error) {
		begin := time.Now()
		v, err := fn(resolved)
		if err != nil {
			b.manager.ItemError(resolved)
			b.manager.ItemEnd(resolved)
			log.Debug("load failed",
				zap.String("format", format),
				zap.String("path", resolved),
				zap.Error(err),
			)
			var zero T
			return zero, &LoadError{Format: format, Path: resolved, Err: err}
		}
		b.manager.ItemEnd(resolved)
		log.Debug("load finished",
			zap.String("format", format),
			zap.String("path", resolved),
			zap.Duration("took", time.Since(begin)),
		)
		return v, nil
	})
}

// LoadGLTF loads a .gltf or .glb file without a manager.
func LoadGLTF(path string) *Future[*GLTF] {
	return NewGLTFLoader(nil).Load(path)
}

// LoadFBX loads a binary .fbx file without a manager.
func LoadFBX(path string) *Future[*scene.Node] {
	return NewFBXLoader(nil).Load(path)
}
