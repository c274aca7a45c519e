package shadow

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/sketchbox/internal/engine/scene"
)

// LightMatrix returns the light-space view-projection for a directional
// light carried by n. The light looks from its world position toward its
// target through its shadow camera. n's world matrix must be current.
func LightMatrix(light *scene.DirectionalLight, n *scene.Node) mgl32.Mat4 {
	eye := n.WorldPosition()
	target := light.Target
	if eye.Sub(target).Len() == 0 {
		eye = target.Add(mgl32.Vec3{0, 1, 0})
	}

	view := mgl32.LookAtV(eye, target, upFor(target.Sub(eye).Normalize()))
	return light.Shadow.Camera.ProjectionMatrix().Mul4(view)
}

// upFor picks an up vector that is not parallel to dir.
func upFor(dir mgl32.Vec3) mgl32.Vec3 {
	if abs32(dir.Y()) > 0.99 {
		return mgl32.Vec3{0, 0, 1}
	}
	return mgl32.Vec3{0, 1, 0}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the center point of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Radius returns the half-diagonal.
func (b AABB) Radius() float32 {
	return b.Max.Sub(b.Min).Len() / 2
}

// FitCamera sizes an orthographic shadow camera so that a light at lightPos
// looking at bounds' center encloses the whole box.
func FitCamera(lightPos mgl32.Vec3, bounds AABB) scene.OrthographicCamera {
	radius := bounds.Radius()
	padding := radius * 0.1
	half := radius + padding
	dist := lightPos.Sub(bounds.Center()).Len()

	near := float32(math.Max(0.1, float64(dist-half)))
	return scene.OrthographicCamera{
		Left: -half, Right: half, Top: half, Bottom: -half,
		Near: near, Far: dist + half,
	}
}

// SceneBounds returns the world-space box of every visible mesh under root.
// World matrices must be current.
func SceneBounds(root *scene.Node) (AABB, bool) {
	var box AABB
	found := false
	root.TraverseVisible(func(n *scene.Node) {
		if !n.IsMesh() || n.Mesh.Geometry == nil {
			return
		}
		lo, hi, ok := n.Mesh.Geometry.BoundingBox()
		if !ok {
			return
		}
		world := n.WorldMatrix()
		for i := 0; i < 8; i++ {
			corner := mgl32.Vec3{lo.X(), lo.Y(), lo.Z()}
			if i&1 != 0 {
				corner[0] = hi.X()
			}
			if i&2 != 0 {
				corner[1] = hi.Y()
			}
			if i&4 != 0 {
				corner[2] = hi.Z()
			}
			p := mgl32.TransformCoordinate(corner, world)
			if !found {
				box = AABB{Min: p, Max: p}
				found = true
				continue
			}
			for k := 0; k < 3; k++ {
				box.Min[k] = min(box.Min[k], p[k])
				box.Max[k] = max(box.Max[k], p[k])
			}
		}
	})
	return box, found
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
