// Package camera provides the perspective camera and orbit controls.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// PerspectiveCamera is a pinhole camera with a vertical field of view in degrees.
type PerspectiveCamera struct {
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32

	Position mgl32.Vec3
	Up       mgl32.Vec3

	target     mgl32.Vec3
	projection mgl32.Mat4
	view       mgl32.Mat4
}

// NewPerspective creates a camera at the origin looking down -Z.
func NewPerspective(fov, aspect, near, far float32) *PerspectiveCamera {
	c := &PerspectiveCamera{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Up:     mgl32.Vec3{0, 1, 0},
		target: mgl32.Vec3{0, 0, -1},
	}
	c.UpdateProjectionMatrix()
	c.updateView()
	return c
}

// UpdateProjectionMatrix must be called after changing FOV, Aspect, Near or Far.
func (c *PerspectiveCamera) UpdateProjectionMatrix() {
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// LookAt orients the camera toward a world-space point.
func (c *PerspectiveCamera) LookAt(target mgl32.Vec3) {
	c.target = target
	c.updateView()
}

// SetPosition moves the camera, keeping its look-at target.
func (c *PerspectiveCamera) SetPosition(p mgl32.Vec3) {
	c.Position = p
	c.updateView()
}

func (c *PerspectiveCamera) updateView() {
	if c.target.Sub(c.Position).Len() == 0 {
		return
	}
	c.view = mgl32.LookAtV(c.Position, c.target, c.Up)
}

// ProjectionMatrix returns the matrix from the last UpdateProjectionMatrix.
func (c *PerspectiveCamera) ProjectionMatrix() mgl32.Mat4 {
	return c.projection
}

// ViewMatrix returns the world-to-camera matrix.
func (c *PerspectiveCamera) ViewMatrix() mgl32.Mat4 {
	return c.view
}

// ViewProjection returns projection * view.
func (c *PerspectiveCamera) ViewProjection() mgl32.Mat4 {
	return c.projection.Mul4(c.view)
}

// Right returns the camera's world-space X axis.
func (c *PerspectiveCamera) Right() mgl32.Vec3 {
	return c.view.Inv().Col(0).Vec3()
}

// CameraUp returns the camera's world-space Y axis.
func (c *PerspectiveCamera) CameraUp() mgl32.Vec3 {
	return c.view.Inv().Col(1).Vec3()
}
