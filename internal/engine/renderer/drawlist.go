package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/sketchbox/internal/engine/scene"
)

// drawItem is one visible mesh with its world transform.
type drawItem struct {
	node  *scene.Node
	mesh  *scene.Mesh
	world mgl32.Mat4
}

// dirLight is a directional light resolved into world space.
type dirLight struct {
	node      *scene.Node
	light     *scene.DirectionalLight
	direction mgl32.Vec3 // from the surface toward the light
	color     mgl32.Vec3
}

// frame is everything a render pass needs, collected once per Render.
type frame struct {
	items   []drawItem
	casters int
	ambient mgl32.Vec3
	lights  []dirLight
	// shadowLight indexes lights, or -1 when nothing casts shadows.
	shadowLight int
}

// collect walks the visible graph. World matrices must be current.
// Lights beyond maxDirLights are dropped; the first shadow-casting
// directional light owns the shadow map.
func collect(root *scene.Node) frame {
	f := frame{shadowLight: -1}
	root.TraverseVisible(func(n *scene.Node) {
		if n.IsMesh() && n.Mesh.Geometry != nil && n.Mesh.Geometry.VertexCount() > 0 {
			f.items = append(f.items, drawItem{node: n, mesh: n.Mesh, world: n.WorldMatrix()})
			if n.CastShadow {
				f.casters++
			}
		}

		switch l := n.Light.(type) {
		case *scene.AmbientLight:
			f.ambient = f.ambient.Add(colorVec(l.Color).Mul(l.Intensity))
		case *scene.DirectionalLight:
			if len(f.lights) >= maxDirLights {
				return
			}
			if n.CastShadow && f.shadowLight < 0 {
				f.shadowLight = len(f.lights)
			}
			f.lights = append(f.lights, dirLight{
				node:      n,
				light:     l,
				direction: l.Direction(n).Mul(-1),
				color:     colorVec(l.Color).Mul(l.Intensity),
			})
		}
	})
	return f
}

func colorVec(c scene.Color) mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// vertexStride is position(3) + normal(3) + uv(2) floats.
const vertexStride = 8

// interleave packs geometry attributes into one vertex stream.
// Missing normals default to +Y and missing UVs to zero.
func interleave(g *scene.Geometry) []float32 {
	n := g.VertexCount()
	out := make([]float32, n*vertexStride)
	hasNormals := len(g.Normals) >= n*3
	hasUVs := len(g.UVs) >= n*2
	for i := 0; i < n; i++ {
		v := out[i*vertexStride : (i+1)*vertexStride]
		copy(v[0:3], g.Positions[i*3:i*3+3])
		if hasNormals {
			copy(v[3:6], g.Normals[i*3:i*3+3])
		} else {
			v[4] = 1
		}
		if hasUVs {
			copy(v[6:8], g.UVs[i*2:i*2+2])
		}
	}
	return out
}

// normalMatrix returns the inverse transpose of the upper 3x3 of world.
func normalMatrix(world mgl32.Mat4) mgl32.Mat3 {
	m := world.Mat3()
	if m.Det() == 0 {
		return mgl32.Ident3()
	}
	return m.Inv().Transpose()
}

// drawingBufferSize returns the framebuffer size for a logical size and ratio.
func drawingBufferSize(width, height int, ratio float32) (int32, int32) {
	if ratio <= 0 {
		ratio = 1
	}
	w := int32(float32(width)*ratio + 0.5)
	h := int32(float32(height)*ratio + 0.5)
	return max(w, 1), max(h, 1)
}
