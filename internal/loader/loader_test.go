package loader

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/sketchbox/internal/engine/scene"
	"github.com/Faultbox/sketchbox/pkg/formats"
)

func await[T any](t *testing.T, f *Future[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return f.Await(ctx)
}

// writeTriangleGLTF writes a one-triangle glTF with an embedded buffer.
func writeTriangleGLTF(t *testing.T, dir string) string {
	t.Helper()

	buf := make([]byte, 44)
	positions := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	for i, f := range positions {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	for i, idx := range []uint16{0, 1, 2} {
		binary.LittleEndian.PutUint16(buf[36+i*2:], idx)
	}

	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"name": "Main", "nodes": [0]}],
  "nodes": [
    {"name": "Root", "children": [1], "scale": [2, 2, 2]},
    {"name": "Tri", "mesh": 0, "translation": [1, 2, 3]}
  ],
  "meshes": [{"name": "Tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
  "materials": [{"name": "Red", "doubleSided": true,
    "pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 1], "metallicFactor": 0.5, "roughnessFactor": 0.25}}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36, "target": 34962},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6, "target": 34963}
  ],
  "buffers": [{"byteLength": 44, "uri": "data:application/octet-stream;base64,%s"}]
}`, base64.StdEncoding.EncodeToString(buf))

	path := filepath.Join(dir, "triangle.gltf")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// quadFBX is a two-model FBX: a parent group and a child quad mesh.
const quadFBX = "testdata/quad.fbx"

func TestLoadGLTFResolves(t *testing.T) {
	path := writeTriangleGLTF(t, t.TempDir())

	model, err := await(t, LoadGLTF(path))
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}
	if model == nil || model.Scene == nil {
		t.Fatal("expected a scene")
	}
	if model.Scene.Name != "Main" || len(model.Scenes) != 1 {
		t.Errorf("scene = %q, %d scenes", model.Scene.Name, len(model.Scenes))
	}

	tri := model.Scene.FindByName("Tri")
	if tri == nil || !tri.IsMesh() {
		t.Fatalf("triangle node missing or not a mesh: %+v", tri)
	}
	g := tri.Mesh.Geometry
	if g.VertexCount() != 3 || g.TriangleCount() != 1 {
		t.Errorf("geometry = %d vertices, %d triangles", g.VertexCount(), g.TriangleCount())
	}
	if len(g.Normals) != 9 || g.Normals[2] != 1 {
		t.Errorf("expected computed +Z normals, got %v", g.Normals)
	}

	mat := tri.Mesh.Material
	if mat.Color != (scene.Color{R: 1}) || mat.Metalness != 0.5 || mat.Roughness != 0.25 || mat.Side != scene.DoubleSide {
		t.Errorf("material = %+v", mat)
	}

	model.Scene.UpdateMatrixWorld()
	if got := tri.WorldPosition(); !got.ApproxEqualThreshold(mgl32.Vec3{2, 4, 6}, 1e-5) {
		t.Errorf("world position = %v, want (2,4,6)", got)
	}
}

func TestLoadMissingFileRejects(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	_, err := await(t, LoadGLTF(missing+".gltf"))
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoadError, got %T %v", err, err)
	}
	if le.Format != FormatGLTF || le.Path != missing+".gltf" {
		t.Errorf("LoadError = %+v", le)
	}

	model, err := await(t, LoadFBX(missing+".fbx"))
	if model != nil {
		t.Error("rejected load must not resolve a model")
	}
	if !errors.As(err, &le) || le.Format != FormatFBX {
		t.Fatalf("expected fbx LoadError, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected the OS error to be reachable, got %v", err)
	}
}

func TestLoadEmptyPathRejectsImmediately(t *testing.T) {
	f := LoadGLTF("")
	r, ok := f.Poll()
	if !ok {
		t.Fatal("expected empty path to settle immediately")
	}
	if !errors.Is(r.Err, ErrEmptyPath) {
		t.Errorf("err = %v", r.Err)
	}
}

func TestLoadInvalidFBXRejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ascii.fbx")
	os.WriteFile(path, []byte("; FBX 7.4.0 project file\n"), 0644)

	_, err := await(t, LoadFBX(path))
	if !errors.Is(err, formats.ErrFBXNotBinary) {
		t.Errorf("expected ErrFBXNotBinary, got %v", err)
	}
}

func TestLoadFBXResolves(t *testing.T) {
	path := quadFBX
	if _, err := os.Stat(path); err != nil {
		t.Skip("testdata/quad.fbx not found, run: go run testdata/generate_fbx.go")
	}

	root, err := await(t, LoadFBX(path))
	if err != nil {
		t.Fatalf("LoadFBX: %v", err)
	}

	group := root.FindByName("Group")
	panel := root.FindByName("Panel")
	if group == nil || panel == nil || panel.Parent() != group || group.Parent() != root {
		t.Fatalf("unexpected hierarchy under %q", root.Name)
	}
	if !panel.IsMesh() || panel.Mesh.Geometry.TriangleCount() != 2 {
		t.Fatalf("panel mesh = %+v", panel.Mesh)
	}
	if panel.Mesh.Material.Color != (scene.Color{B: 1}) {
		t.Errorf("material color = %v", panel.Mesh.Material.Color)
	}

	root.UpdateMatrixWorld()
	if got := panel.WorldPosition(); !got.ApproxEqualThreshold(mgl32.Vec3{1, -5, 0}, 1e-5) {
		t.Errorf("world position = %v", got)
	}
	// 90 degrees about Z turns +X into +Y
	x := panel.WorldMatrix().Mul4x1(mgl32.Vec4{1, 0, 0, 0}).Vec3()
	if !x.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5) {
		t.Errorf("rotated X axis = %v", x)
	}
}

func TestConcurrentLoadsAreIndependent(t *testing.T) {
	path := writeTriangleGLTF(t, t.TempDir())
	m := NewLoadingManager()
	l := NewGLTFLoader(m)

	futures := make([]*Future[*GLTF], 8)
	for i := range futures {
		futures[i] = l.Load(path)
	}
	failing := l.Load(path + ".missing")

	seen := make(map[*scene.Node]bool)
	for _, f := range futures {
		model, err := await(t, f)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if seen[model.Scene] {
			t.Fatal("loads shared a result")
		}
		seen[model.Scene] = true
	}
	if _, err := await(t, failing); err == nil {
		t.Error("expected the missing file to fail on its own")
	}

	if loaded, total := m.Progress(); loaded != 9 || total != 9 {
		t.Errorf("manager progress = %d/%d", loaded, total)
	}
	if m.Failed() != 1 {
		t.Errorf("manager failed = %d", m.Failed())
	}
}

func TestSetPathResolvesRelative(t *testing.T) {
	dir := t.TempDir()
	writeTriangleGLTF(t, dir)

	l := NewGLTFLoader(nil)
	l.SetPath(dir)
	if _, err := await(t, l.Load("triangle.gltf")); err != nil {
		t.Errorf("relative load: %v", err)
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestTextureLoader(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "floor.png"), 4, 2)

	tex, err := await(t, NewTextureLoader(nil).Load(filepath.Join(dir, "floor.png")))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tex.Name != "floor.png" || tex.Width() != 4 || tex.Height() != 2 {
		t.Errorf("texture = %s %dx%d", tex.Name, tex.Width(), tex.Height())
	}
}

func TestRGBELoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sky.hdr")
	data := append([]byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 1 +X 1\n"), 255, 255, 255, 128)
	os.WriteFile(path, data, 0644)

	tex, err := await(t, NewRGBELoader(nil).Load(path))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tex.Width != 1 || tex.Height != 1 || tex.At(0, 0) != [4]float32{1, 1, 1, 1} {
		t.Errorf("texture = %+v", tex)
	}
}

func TestCubeTextureLoader(t *testing.T) {
	dir := t.TempDir()
	var paths [6]string
	for i := range paths {
		paths[i] = fmt.Sprintf("face%d.png", i)
		writePNG(t, filepath.Join(dir, paths[i]), 8, 8)
	}

	l := NewCubeTextureLoader(nil)
	l.SetPath(dir)
	cube, err := await(t, l.Load(paths))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cube.Size() != 8 {
		t.Errorf("size = %d", cube.Size())
	}

	writePNG(t, filepath.Join(dir, paths[3]), 8, 4)
	if _, err := await(t, l.Load(paths)); !errors.Is(err, ErrCubeFaceSize) {
		t.Errorf("expected ErrCubeFaceSize, got %v", err)
	}

	paths[5] = ""
	if _, err := await(t, l.Load(paths)); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("expected ErrEmptyPath, got %v", err)
	}
}
