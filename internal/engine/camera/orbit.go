package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// MouseButton identifies the pointer button driving an orbit gesture.
type MouseButton int

const (
	ButtonLeft MouseButton = iota + 1
	ButtonMiddle
	ButtonRight
)

type orbitState int

const (
	stateNone orbitState = iota
	stateRotate
	stateDolly
	statePan
)

// polarEpsilon keeps the polar angle off the poles so LookAt stays defined.
const polarEpsilon = 1e-6

// moveEpsilon is the squared distance below which Update reports no motion.
const moveEpsilon = 1e-6

// spherical is a point in (radius, polar from +Y, azimuth around +Y from +Z) form.
type spherical struct {
	radius, phi, theta float64
}

func sphericalFromVec(v mgl32.Vec3) spherical {
	s := spherical{radius: float64(v.Len())}
	if s.radius == 0 {
		return s
	}
	s.theta = gomath.Atan2(float64(v.X()), float64(v.Z()))
	s.phi = gomath.Acos(clamp(float64(v.Y())/s.radius, -1, 1))
	return s
}

func (s spherical) vec() mgl32.Vec3 {
	r := gomath.Sin(s.phi) * s.radius
	return mgl32.Vec3{
		float32(r * gomath.Sin(s.theta)),
		float32(gomath.Cos(s.phi) * s.radius),
		float32(r * gomath.Cos(s.theta)),
	}
}

// OrbitControls rotates, pans and dollies a camera around a target point.
// Gestures accumulate into deltas that Update applies, with exponential
// damping when EnableDamping is set.
type OrbitControls struct {
	Target mgl32.Vec3

	EnableDamping bool
	DampingFactor float32

	EnableRotate bool
	EnablePan    bool
	EnableZoom   bool

	RotateSpeed float32
	PanSpeed    float32
	ZoomSpeed   float32
	KeyPanSpeed float32

	MinDistance     float64
	MaxDistance     float64
	MinPolarAngle   float64
	MaxPolarAngle   float64
	MinAzimuthAngle float64
	MaxAzimuthAngle float64

	camera *PerspectiveCamera

	viewportW, viewportH float32

	state        orbitState
	lastX, lastY float32

	delta     spherical // radius unused
	scale     float64
	panOffset mgl32.Vec3

	lastPosition mgl32.Vec3
}

// NewOrbitControls binds controls to a camera with all gestures enabled,
// damping off, and the target at the origin.
func NewOrbitControls(cam *PerspectiveCamera) *OrbitControls {
	oc := &OrbitControls{
		DampingFactor:   0.05,
		EnableRotate:    true,
		EnablePan:       true,
		EnableZoom:      true,
		RotateSpeed:     1,
		PanSpeed:        1,
		ZoomSpeed:       1,
		KeyPanSpeed:     7,
		MinDistance:     0,
		MaxDistance:     gomath.Inf(1),
		MinPolarAngle:   0,
		MaxPolarAngle:   gomath.Pi,
		MinAzimuthAngle: gomath.Inf(-1),
		MaxAzimuthAngle: gomath.Inf(1),
		camera:          cam,
		viewportW:       1,
		viewportH:       1,
		scale:           1,
	}
	oc.Update()
	return oc
}

// SetViewport sets the element size gestures are normalized against.
func (oc *OrbitControls) SetViewport(width, height int) {
	if width > 0 {
		oc.viewportW = float32(width)
	}
	if height > 0 {
		oc.viewportH = float32(height)
	}
}

// Update applies accumulated gestures to the camera. It returns true if the
// camera moved. Call once per frame; with damping this keeps easing after input stops.
func (oc *OrbitControls) Update() bool {
	offset := oc.camera.Position.Sub(oc.Target)
	s := sphericalFromVec(offset)

	factor := 1.0
	if oc.EnableDamping {
		factor = float64(oc.DampingFactor)
	}
	s.theta += oc.delta.theta * factor
	s.phi += oc.delta.phi * factor

	if !gomath.IsInf(oc.MinAzimuthAngle, 0) || !gomath.IsInf(oc.MaxAzimuthAngle, 0) {
		s.theta = clamp(s.theta, oc.MinAzimuthAngle, oc.MaxAzimuthAngle)
	}
	s.phi = clamp(s.phi, oc.MinPolarAngle, oc.MaxPolarAngle)
	s.phi = clamp(s.phi, polarEpsilon, gomath.Pi-polarEpsilon)

	s.radius = clamp(s.radius*oc.scale, oc.MinDistance, oc.MaxDistance)

	oc.Target = oc.Target.Add(oc.panOffset.Mul(float32(factor)))

	pos := oc.Target.Add(s.vec())
	oc.camera.Position = pos
	oc.camera.LookAt(oc.Target)

	if oc.EnableDamping {
		keep := 1 - float64(oc.DampingFactor)
		oc.delta.theta *= keep
		oc.delta.phi *= keep
		oc.panOffset = oc.panOffset.Mul(float32(keep))
	} else {
		oc.delta = spherical{}
		oc.panOffset = mgl32.Vec3{}
	}
	oc.scale = 1

	moved := pos.Sub(oc.lastPosition).LenSqr() > moveEpsilon
	oc.lastPosition = pos
	return moved
}

// PointerDown starts a gesture: left rotates, middle dollies, right pans.
func (oc *OrbitControls) PointerDown(button MouseButton, x, y float32) {
	oc.lastX, oc.lastY = x, y
	switch {
	case button == ButtonLeft && oc.EnableRotate:
		oc.state = stateRotate
	case button == ButtonMiddle && oc.EnableZoom:
		oc.state = stateDolly
	case button == ButtonRight && oc.EnablePan:
		oc.state = statePan
	default:
		oc.state = stateNone
	}
}

// PointerMove continues the active gesture.
func (oc *OrbitControls) PointerMove(x, y float32) {
	dx, dy := x-oc.lastX, y-oc.lastY
	oc.lastX, oc.lastY = x, y

	switch oc.state {
	case stateRotate:
		oc.rotateLeft(2 * gomath.Pi * float64(dx*oc.RotateSpeed/oc.viewportH))
		oc.rotateUp(2 * gomath.Pi * float64(dy*oc.RotateSpeed/oc.viewportH))
	case stateDolly:
		if dy > 0 {
			oc.dollyOut()
		} else if dy < 0 {
			oc.dollyIn()
		}
	case statePan:
		oc.pan(dx*oc.PanSpeed, dy*oc.PanSpeed)
	}
}

// PointerUp ends the active gesture.
func (oc *OrbitControls) PointerUp() {
	oc.state = stateNone
}

// Wheel dollies the camera. Positive amounts (scroll away from the user) move closer.
func (oc *OrbitControls) Wheel(amount float32) {
	if !oc.EnableZoom || oc.state != stateNone {
		return
	}
	if amount > 0 {
		oc.dollyIn()
	} else if amount < 0 {
		oc.dollyOut()
	}
}

// KeyPan pans by a number of key steps in screen directions (+x right, +y up).
func (oc *OrbitControls) KeyPan(stepsX, stepsY float32) {
	if !oc.EnablePan {
		return
	}
	oc.pan(-stepsX*oc.KeyPanSpeed, stepsY*oc.KeyPanSpeed)
}

// Dragging reports whether a gesture is in progress.
func (oc *OrbitControls) Dragging() bool {
	return oc.state != stateNone
}

func (oc *OrbitControls) rotateLeft(angle float64) {
	oc.delta.theta -= angle
}

func (oc *OrbitControls) rotateUp(angle float64) {
	oc.delta.phi -= angle
}

func (oc *OrbitControls) zoomScale() float64 {
	return gomath.Pow(0.95, float64(oc.ZoomSpeed))
}

func (oc *OrbitControls) dollyIn() {
	oc.scale *= oc.zoomScale()
}

func (oc *OrbitControls) dollyOut() {
	oc.scale /= oc.zoomScale()
}

// pan moves the target by a screen-space pixel delta, scaled so the point
// under the cursor tracks it at the target's depth.
func (oc *OrbitControls) pan(dx, dy float32) {
	offset := oc.camera.Position.Sub(oc.Target)
	dist := offset.Len() * float32(gomath.Tan(float64(mgl32.DegToRad(oc.camera.FOV))/2))

	left := oc.camera.Right().Mul(-2 * dx * dist / oc.viewportH)
	up := oc.camera.CameraUp().Mul(2 * dy * dist / oc.viewportH)
	oc.panOffset = oc.panOffset.Add(left).Add(up)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
