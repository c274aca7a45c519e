package scene

import "github.com/go-gl/mathgl/mgl32"

// Light is implemented by the light payloads a Node can carry.
type Light interface {
	light()
}

// AmbientLight illuminates every surface uniformly.
type AmbientLight struct {
	Color     Color
	Intensity float32
}

func (*AmbientLight) light() {}

// NewAmbientLight creates a node carrying an ambient light.
func NewAmbientLight(color Color, intensity float32) *Node {
	n := NewNode("ambient")
	n.Light = &AmbientLight{Color: color, Intensity: intensity}
	return n
}

// OrthographicCamera describes an orthographic frustum in view space.
type OrthographicCamera struct {
	Left, Right, Top, Bottom float32
	Near, Far                float32
}

// ProjectionMatrix returns the orthographic projection.
func (c OrthographicCamera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Ortho(c.Left, c.Right, c.Bottom, c.Top, c.Near, c.Far)
}

// LightShadow configures shadow-map rendering for a light.
type LightShadow struct {
	MapWidth  int32
	MapHeight int32
	Camera    OrthographicCamera
	Bias      float32
}

// DirectionalLight shines parallel rays from the node position toward Target.
type DirectionalLight struct {
	Color     Color
	Intensity float32
	Target    mgl32.Vec3
	Shadow    LightShadow
}

func (*DirectionalLight) light() {}

// NewDirectionalLight creates a node carrying a directional light aimed at the origin
// with a 512x512 shadow map and a +-5 shadow frustum.
func NewDirectionalLight(color Color, intensity float32) *Node {
	n := NewNode("directional")
	n.Position = mgl32.Vec3{0, 1, 0}
	n.Light = &DirectionalLight{
		Color:     color,
		Intensity: intensity,
		Shadow: LightShadow{
			MapWidth:  512,
			MapHeight: 512,
			Camera: OrthographicCamera{
				Left: -5, Right: 5, Top: 5, Bottom: -5,
				Near: 0.5, Far: 500,
			},
		},
	}
	return n
}

// Direction returns the normalized direction from the light toward its target.
// The node's world matrix must be current.
func (d *DirectionalLight) Direction(n *Node) mgl32.Vec3 {
	dir := d.Target.Sub(n.WorldPosition())
	if dir.Len() == 0 {
		return mgl32.Vec3{0, -1, 0}
	}
	return dir.Normalize()
}
