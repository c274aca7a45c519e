package sketch

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/sketchbox/internal/config"
	"github.com/Faultbox/sketchbox/internal/engine/scene"
	"github.com/Faultbox/sketchbox/internal/loader"
)

const (
	groundSize     = 50
	groundSegments = 50
	groundY        = -5
	modelScale     = 4

	sunDistance  = 10
	shadowMapRes = 2048
	shadowExtent = 10
	shadowNear   = 1
	shadowFar    = 50
)

var (
	// ErrNoScene is returned for a glTF file without any scene.
	ErrNoScene = errors.New("model has no scene")
	// ErrUnknownFormat is returned for a model format other than gltf or fbx.
	ErrUnknownFormat = errors.New("unknown model format")
)

// AddStuff adds the ground synchronously and starts loading the configured
// model. The returned Future settles when the load does; the model joins the
// scene on the next tick after that.
func (s *Sketch) AddStuff() *loader.Future[*scene.Node] {
	mat := scene.NewStandardMaterial()
	mat.Side = scene.DoubleSide

	ground := scene.NewMesh(scene.NewPlaneGeometry(groundSize, groundSize, groundSegments, groundSegments), mat)
	ground.Name = "ground"
	ground.SetRotationFromEuler(-math.Pi/2, 0, 0)
	ground.Position = mgl32.Vec3{0, groundY, 0}
	ground.ReceiveShadow = true
	s.Scene.Add(ground)
	s.Ground = ground

	return s.LoadModel(s.cfg.Scene.ModelPath, s.cfg.Scene.ModelFormat)
}

// AddLights adds a white ambient light and a shadow-casting sun.
func (s *Sketch) AddLights() {
	s.Ambient = scene.NewAmbientLight(scene.White, 1)

	sun := scene.NewDirectionalLight(scene.White, 1)
	sun.Name = "sun"
	sun.Position = mgl32.Vec3{sunDistance, sunDistance, sunDistance}
	sun.CastShadow = true
	light := sun.Light.(*scene.DirectionalLight)
	light.Target = mgl32.Vec3{}
	light.Shadow.MapWidth = shadowMapRes
	light.Shadow.MapHeight = shadowMapRes
	light.Shadow.Camera = scene.OrthographicCamera{
		Left:   shadowExtent,
		Right:  -shadowExtent,
		Top:    shadowExtent,
		Bottom: -shadowExtent,
		Near:   shadowNear,
		Far:    shadowFar,
	}
	s.Sun = sun

	s.Scene.Add(s.Ambient, s.Sun)
}

// LoadModel loads path in the given format and, once it resolves, replaces
// the current model. A rejection is logged and kept as ContentErr.
func (s *Sketch) LoadModel(path, format string) *loader.Future[*scene.Node] {
	var f *loader.Future[*scene.Node]
	switch format {
	case config.FormatGLTF:
		f = loader.Map(s.gltf.Load(path), defaultScene)
	case config.FormatFBX:
		f = s.fbx.Load(path)
	default:
		f = loader.Rejected[*scene.Node](fmt.Errorf("%w: %q", ErrUnknownFormat, format))
	}

	s.log.Info("loading model", zap.String("path", path), zap.String("format", format))
	f.Then(s.post, func(root *scene.Node, err error) {
		s.attachModel(path, root, err)
	})
	return f
}

func defaultScene(g *loader.GLTF) (*scene.Node, error) {
	if g.Scene == nil {
		return nil, ErrNoScene
	}
	return g.Scene, nil
}

func (s *Sketch) attachModel(path string, root *scene.Node, err error) {
	if err != nil {
		s.contentErr = err
		s.log.Error("model load failed", zap.String("path", path), zap.Error(err))
		return
	}

	prepareModel(root)
	if s.model != nil {
		s.Scene.Remove(s.model)
	}
	s.Scene.Add(root)
	s.model = root
	s.contentErr = nil
	s.GUI.Set("model", path)

	meshes := 0
	root.Traverse(func(n *scene.Node) {
		if n.IsMesh() {
			meshes++
		}
	})
	s.log.Info("model added", zap.String("path", path), zap.Int("meshes", meshes))
}

// prepareModel scales the model and gives every mesh a fresh default
// material that casts shadows.
func prepareModel(root *scene.Node) {
	root.SetScalar(modelScale)
	root.Traverse(func(n *scene.Node) {
		if !n.IsMesh() {
			return
		}
		n.CastShadow = true
		n.Mesh.Material = scene.NewStandardMaterial()
	})
}

// Model returns the loaded model root, or nil while none is attached.
func (s *Sketch) Model() *scene.Node {
	return s.model
}

// Content returns the model load started during bootstrap.
func (s *Sketch) Content() *loader.Future[*scene.Node] {
	return s.content
}

// ContentErr returns the error of the last failed model load, if the model
// has not loaded since.
func (s *Sketch) ContentErr() error {
	return s.contentErr
}

// formatForPath picks a loader from the file extension.
func formatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".fbx") {
		return config.FormatFBX
	}
	return config.FormatGLTF
}
