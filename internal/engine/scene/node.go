// Package scene provides the scene graph: transform nodes, meshes, materials and lights.
// It holds no GPU state; the renderer uploads geometry lazily.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Node is a transform in the scene graph. A node with a Mesh is drawn,
// a node with a Light illuminates, and a node with neither is a group.
type Node struct {
	Name string

	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	Visible       bool
	CastShadow    bool
	ReceiveShadow bool

	Mesh  *Mesh
	Light Light

	parent   *Node
	children []*Node
	world    mgl32.Mat4
}

// NewNode creates an empty group node with identity transform.
func NewNode(name string) *Node {
	n := &Node{Name: name}
	n.init()
	return n
}

// NewMesh creates a node drawing geometry with material.
func NewMesh(geometry *Geometry, material *StandardMaterial) *Node {
	n := NewNode("")
	n.Mesh = &Mesh{Geometry: geometry, Material: material}
	return n
}

func (n *Node) init() {
	n.Rotation = mgl32.QuatIdent()
	n.Scale = mgl32.Vec3{1, 1, 1}
	n.Visible = true
	n.world = mgl32.Ident4()
}

// IsMesh reports whether the node draws geometry.
func (n *Node) IsMesh() bool {
	return n.Mesh != nil
}

// Add attaches children, detaching each from its previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches a direct child. It returns false if child was not attached here.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Parent returns the parent node or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the direct children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Traverse calls fn for n and every descendant, depth first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// TraverseVisible is like Traverse but skips invisible subtrees.
func (n *Node) TraverseVisible(fn func(*Node)) {
	if !n.Visible {
		return
	}
	fn(n)
	for _, c := range n.children {
		c.TraverseVisible(fn)
	}
}

// FindByName returns the first node in the subtree with the given name.
func (n *Node) FindByName(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.FindByName(name); found != nil {
			return found
		}
	}
	return nil
}

// SetScalar sets a uniform scale.
func (n *Node) SetScalar(s float32) {
	n.Scale = mgl32.Vec3{s, s, s}
}

// SetRotationFromEuler sets rotation from XYZ-order Euler angles in radians.
func (n *Node) SetRotationFromEuler(x, y, z float32) {
	n.Rotation = mgl32.AnglesToQuat(x, y, z, mgl32.XYZ)
}

// LocalMatrix returns translation * rotation * scale.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	s := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(n.Rotation.Normalize().Mat4()).Mul4(s)
}

// SetFromMatrix decomposes an affine matrix into position, rotation and scale.
// Shear is discarded.
func (n *Node) SetFromMatrix(m mgl32.Mat4) {
	n.Position = m.Col(3).Vec3()

	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	if m.Mat3().Det() < 0 {
		sx = -sx
	}
	n.Scale = mgl32.Vec3{sx, sy, sz}

	var r mgl32.Mat4
	if sx != 0 && sy != 0 && sz != 0 {
		r = mgl32.Mat4FromCols(
			m.Col(0).Mul(1/sx),
			m.Col(1).Mul(1/sy),
			m.Col(2).Mul(1/sz),
			mgl32.Vec4{0, 0, 0, 1},
		)
	} else {
		r = mgl32.Ident4()
	}
	n.Rotation = mgl32.Mat4ToQuat(r)
}

// UpdateMatrixWorld recomputes world matrices for n and its subtree.
func (n *Node) UpdateMatrixWorld() {
	if n.parent == nil {
		n.world = n.LocalMatrix()
	} else {
		n.world = n.parent.world.Mul4(n.LocalMatrix())
	}
	for _, c := range n.children {
		c.UpdateMatrixWorld()
	}
}

// WorldMatrix returns the matrix computed by the last UpdateMatrixWorld.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	return n.world
}

// WorldPosition returns the translation of the world matrix.
func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.world.Col(3).Vec3()
}

// Mesh pairs geometry with a material.
type Mesh struct {
	Geometry *Geometry
	Material *StandardMaterial
}

// Scene is the root of a renderable graph.
type Scene struct {
	Node
	Background Color
}

// New creates an empty scene with a black background.
func New() *Scene {
	s := &Scene{}
	s.Name = "scene"
	s.init()
	return s
}

// Root returns the scene's root node.
func (s *Scene) Root() *Node {
	return &s.Node
}
