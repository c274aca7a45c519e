package renderer

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/sketchbox/internal/engine/scene"
	"github.com/Faultbox/sketchbox/internal/engine/texture"
)

func TestDefines(t *testing.T) {
	opts := Options{
		Antialias:               true,
		PhysicallyCorrectLights: true,
		ToneMapping:             ACESFilmicToneMapping,
		ToneMappingExposure:     1,
		OutputEncoding:          texture.SRGBEncoding,
		ShadowMap:               ShadowMapOptions{Enabled: true, Type: PCFSoftShadowMap},
	}
	d := opts.defines()

	for _, key := range []string{"PHYSICALLY_CORRECT_LIGHTS", "TONE_MAPPING_ACES", "OUTPUT_SRGB", "USE_SHADOWMAP"} {
		if _, ok := d[key]; !ok {
			t.Errorf("missing define %s", key)
		}
	}
	if d["SHADOWMAP_TYPE"] != "2" {
		t.Errorf("SHADOWMAP_TYPE = %q, want 2", d["SHADOWMAP_TYPE"])
	}
	if d["MAX_DIR_LIGHTS"] != "4" {
		t.Errorf("MAX_DIR_LIGHTS = %q", d["MAX_DIR_LIGHTS"])
	}

	plain := Options{}.defines()
	for _, key := range []string{"PHYSICALLY_CORRECT_LIGHTS", "TONE_MAPPING_ACES", "TONE_MAPPING_LINEAR", "OUTPUT_SRGB", "USE_SHADOWMAP"} {
		if _, ok := plain[key]; ok {
			t.Errorf("zero options set %s", key)
		}
	}
}

func TestToneMappingString(t *testing.T) {
	tests := []struct {
		in   ToneMapping
		want string
	}{
		{NoToneMapping, "none"},
		{LinearToneMapping, "linear"},
		{ACESFilmicToneMapping, "aces"},
		{ToneMapping(9), "ToneMapping(9)"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.in), got, tt.want)
		}
	}
}

func TestCollect(t *testing.T) {
	s := scene.New()
	root := s.Root()

	ground := scene.NewMesh(scene.NewPlaneGeometry(1, 1, 1, 1), scene.NewStandardMaterial())
	ground.ReceiveShadow = true
	model := scene.NewMesh(scene.NewPlaneGeometry(1, 1, 1, 1), scene.NewStandardMaterial())
	model.CastShadow = true
	hidden := scene.NewMesh(scene.NewPlaneGeometry(1, 1, 1, 1), scene.NewStandardMaterial())
	hidden.Visible = false
	empty := scene.NewMesh(&scene.Geometry{}, scene.NewStandardMaterial())

	ambient := scene.NewAmbientLight(scene.White, 0.5)
	sun := scene.NewDirectionalLight(scene.Color{R: 1, G: 0.5}, 2)
	sun.Position = mgl32.Vec3{0, 10, 0}
	sun.CastShadow = true
	fill := scene.NewDirectionalLight(scene.White, 1)
	fill.Position = mgl32.Vec3{10, 0, 0}

	root.Add(ground, model, hidden, empty, ambient, fill, sun)
	root.UpdateMatrixWorld()

	f := collect(root)
	if len(f.items) != 2 {
		t.Fatalf("items = %d, want 2", len(f.items))
	}
	if f.casters != 1 {
		t.Errorf("casters = %d", f.casters)
	}
	if f.ambient != (mgl32.Vec3{0.5, 0.5, 0.5}) {
		t.Errorf("ambient = %v", f.ambient)
	}
	if len(f.lights) != 2 || f.shadowLight != 1 {
		t.Fatalf("lights = %d, shadow light = %d", len(f.lights), f.shadowLight)
	}

	sunLight := f.lights[1]
	if !sunLight.direction.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-6) {
		t.Errorf("direction = %v, want toward the light", sunLight.direction)
	}
	if sunLight.color != (mgl32.Vec3{2, 1, 0}) {
		t.Errorf("color = %v, want intensity applied", sunLight.color)
	}
}

func TestCollectCapsLights(t *testing.T) {
	root := scene.NewNode("root")
	for i := 0; i < maxDirLights+2; i++ {
		root.Add(scene.NewDirectionalLight(scene.White, 1))
	}
	root.UpdateMatrixWorld()

	f := collect(root)
	if len(f.lights) != maxDirLights {
		t.Errorf("lights = %d, want %d", len(f.lights), maxDirLights)
	}
	if f.shadowLight != -1 {
		t.Errorf("shadow light = %d without casters", f.shadowLight)
	}
}

func TestInterleave(t *testing.T) {
	g := &scene.Geometry{
		Positions: []float32{1, 2, 3, 4, 5, 6},
		Normals:   []float32{0, 0, 1, 0, 0, 1},
		UVs:       []float32{0.5, 0.25, 1, 1},
	}
	got := interleave(g)
	want := []float32{1, 2, 3, 0, 0, 1, 0.5, 0.25, 4, 5, 6, 0, 0, 1, 1, 1}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	bare := interleave(&scene.Geometry{Positions: []float32{1, 2, 3}})
	if bare[4] != 1 || bare[6] != 0 || bare[7] != 0 {
		t.Errorf("defaults = %v", bare)
	}
}

func TestNormalMatrix(t *testing.T) {
	world := mgl32.Scale3D(2, 1, 1)
	n := normalMatrix(world)
	got := n.Mul3x1(mgl32.Vec3{1, 1, 0})
	if !got.ApproxEqualThreshold(mgl32.Vec3{0.5, 1, 0}, 1e-6) {
		t.Errorf("normal = %v", got)
	}

	if normalMatrix(mgl32.Scale3D(0, 1, 1)) != mgl32.Ident3() {
		t.Error("singular matrix should fall back to identity")
	}
}

func TestDrawingBufferSize(t *testing.T) {
	tests := []struct {
		w, h  int
		ratio float32
		wantW int32
		wantH int32
	}{
		{800, 600, 1, 800, 600},
		{800, 600, 2, 1600, 1200},
		{800, 600, 1.5, 1200, 900},
		{800, 600, 0, 800, 600},
		{0, 0, 2, 1, 1},
	}
	for _, tt := range tests {
		w, h := drawingBufferSize(tt.w, tt.h, tt.ratio)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("drawingBufferSize(%d, %d, %v) = %dx%d, want %dx%d", tt.w, tt.h, tt.ratio, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestFlipRows(t *testing.T) {
	// two rows, one pixel each: bottom red, top blue
	pixels := []byte{255, 0, 0, 255, 0, 0, 255, 255}
	img := flipRows(pixels, 1, 2)
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("top = %v", got)
	}
	if got := img.RGBAAt(0, 1); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("bottom = %v", got)
	}
}

func TestClampRatio(t *testing.T) {
	tests := []struct {
		ratio, limit, want float32
	}{
		{2, 0, 2},
		{3, 2, 2},
		{1.5, 2, 1.5},
		{0, 0, 1},
		{-1, 2, 1},
	}
	for _, tt := range tests {
		if got := clampRatio(tt.ratio, tt.limit); got != tt.want {
			t.Errorf("clampRatio(%v, %v) = %v, want %v", tt.ratio, tt.limit, got, tt.want)
		}
	}
}
