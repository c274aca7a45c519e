package shadow

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/sketchbox/internal/engine/scene"
)

func project(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.TransformCoordinate(p, m)
}

func TestLightMatrixMapsTargetToCenter(t *testing.T) {
	n := scene.NewDirectionalLight(scene.White, 1)
	n.Position = mgl32.Vec3{10, 10, 10}
	n.UpdateMatrixWorld()
	light := n.Light.(*scene.DirectionalLight)
	light.Shadow.Camera = scene.OrthographicCamera{
		Left: 10, Right: -10, Top: 10, Bottom: -10, Near: 1, Far: 50,
	}

	m := LightMatrix(light, n)

	got := project(m, mgl32.Vec3{0, 0, 0})
	if !mgl32.FloatEqualThreshold(got.X(), 0, 1e-5) || !mgl32.FloatEqualThreshold(got.Y(), 0, 1e-5) {
		t.Errorf("target projects to %v, want the map center", got)
	}
	if got.Z() <= -1 || got.Z() >= 1 {
		t.Errorf("target depth %v outside the clip range", got.Z())
	}

	// points nearer the light have smaller depth
	near := project(m, mgl32.Vec3{1, 1, 1})
	if near.Z() >= got.Z() {
		t.Errorf("depth of nearer point %v not below %v", near.Z(), got.Z())
	}
}

func TestLightMatrixVerticalLight(t *testing.T) {
	n := scene.NewDirectionalLight(scene.White, 1)
	n.Position = mgl32.Vec3{0, 20, 0}
	n.UpdateMatrixWorld()
	light := n.Light.(*scene.DirectionalLight)

	m := LightMatrix(light, n)
	for i := 0; i < 16; i++ {
		if math.IsNaN(float64(m[i])) {
			t.Fatalf("matrix has NaN at %d: %v", i, m)
		}
	}
	got := project(m, mgl32.Vec3{0, 0, 0})
	if !mgl32.FloatEqualThreshold(got.X(), 0, 1e-5) || !mgl32.FloatEqualThreshold(got.Y(), 0, 1e-5) {
		t.Errorf("target projects to %v", got)
	}
}

func TestSceneBoundsAndFit(t *testing.T) {
	root := scene.NewNode("root")
	plane := scene.NewMesh(scene.NewPlaneGeometry(2, 2, 1, 1), scene.NewStandardMaterial())
	plane.Position = mgl32.Vec3{0, -5, 0}
	plane.SetRotationFromEuler(-mgl32.DegToRad(90), 0, 0)
	hidden := scene.NewMesh(scene.NewPlaneGeometry(100, 100, 1, 1), scene.NewStandardMaterial())
	hidden.Visible = false
	root.Add(plane, hidden)
	root.UpdateMatrixWorld()

	box, ok := SceneBounds(root)
	if !ok {
		t.Fatal("expected bounds")
	}
	want := AABB{Min: mgl32.Vec3{-1, -5, -1}, Max: mgl32.Vec3{1, -5, 1}}
	if !box.Min.ApproxEqualThreshold(want.Min, 1e-5) || !box.Max.ApproxEqualThreshold(want.Max, 1e-5) {
		t.Errorf("bounds = %+v, want %+v", box, want)
	}

	cam := FitCamera(mgl32.Vec3{0, 5, 0}, box)
	if cam.Far <= 10 || cam.Near <= 0 || cam.Near >= 10 {
		t.Errorf("near/far = %v/%v do not bracket a box 10 units away", cam.Near, cam.Far)
	}
	if cam.Right <= box.Radius() {
		t.Errorf("half width %v does not cover radius %v", cam.Right, box.Radius())
	}

	if _, ok := SceneBounds(scene.NewNode("empty")); ok {
		t.Error("expected no bounds for an empty graph")
	}
}
