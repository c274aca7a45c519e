package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Geometry holds vertex attributes as flat float slices.
// Positions and Normals are xyz triples, UVs are uv pairs.
// Indices may be empty, in which case vertices are drawn in order.
type Geometry struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// TriangleCount returns the number of triangles drawn.
func (g *Geometry) TriangleCount() int {
	if len(g.Indices) > 0 {
		return len(g.Indices) / 3
	}
	return g.VertexCount() / 3
}

// Indexed reports whether the geometry uses an index buffer.
func (g *Geometry) Indexed() bool {
	return len(g.Indices) > 0
}

func (g *Geometry) position(i uint32) mgl32.Vec3 {
	return mgl32.Vec3{g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]}
}

// ComputeVertexNormals replaces Normals with area-weighted face normals
// accumulated per vertex.
func (g *Geometry) ComputeVertexNormals() {
	n := g.VertexCount()
	acc := make([]mgl32.Vec3, n)

	addFace := func(a, b, c uint32) {
		if int(a) >= n || int(b) >= n || int(c) >= n {
			return
		}
		pa, pb, pc := g.position(a), g.position(b), g.position(c)
		face := pc.Sub(pb).Cross(pa.Sub(pb))
		acc[a] = acc[a].Add(face)
		acc[b] = acc[b].Add(face)
		acc[c] = acc[c].Add(face)
	}

	if g.Indexed() {
		for i := 0; i+2 < len(g.Indices); i += 3 {
			addFace(g.Indices[i], g.Indices[i+1], g.Indices[i+2])
		}
	} else {
		for i := uint32(0); int(i)+2 < n; i += 3 {
			addFace(i, i+1, i+2)
		}
	}

	g.Normals = make([]float32, n*3)
	for i, v := range acc {
		if v.Len() > 0 {
			v = v.Normalize()
		}
		g.Normals[i*3] = v.X()
		g.Normals[i*3+1] = v.Y()
		g.Normals[i*3+2] = v.Z()
	}
}

// BoundingBox returns the axis-aligned bounds of the positions.
// ok is false for empty geometry.
func (g *Geometry) BoundingBox() (min, max mgl32.Vec3, ok bool) {
	if g.VertexCount() == 0 {
		return min, max, false
	}
	min = g.position(0)
	max = min
	for i := uint32(1); int(i) < g.VertexCount(); i++ {
		p := g.position(i)
		for k := 0; k < 3; k++ {
			if p[k] < min[k] {
				min[k] = p[k]
			}
			if p[k] > max[k] {
				max[k] = p[k]
			}
		}
	}
	return min, max, true
}

// NewPlaneGeometry builds a width x height plane in the XY plane facing +Z,
// subdivided into widthSegments x heightSegments quads.
func NewPlaneGeometry(width, height float32, widthSegments, heightSegments int) *Geometry {
	if widthSegments < 1 {
		widthSegments = 1
	}
	if heightSegments < 1 {
		heightSegments = 1
	}

	gridX1 := widthSegments + 1
	gridY1 := heightSegments + 1
	segW := width / float32(widthSegments)
	segH := height / float32(heightSegments)

	g := &Geometry{
		Positions: make([]float32, 0, gridX1*gridY1*3),
		Normals:   make([]float32, 0, gridX1*gridY1*3),
		UVs:       make([]float32, 0, gridX1*gridY1*2),
		Indices:   make([]uint32, 0, widthSegments*heightSegments*6),
	}

	for iy := 0; iy < gridY1; iy++ {
		y := float32(iy)*segH - height/2
		for ix := 0; ix < gridX1; ix++ {
			x := float32(ix)*segW - width/2
			g.Positions = append(g.Positions, x, -y, 0)
			g.Normals = append(g.Normals, 0, 0, 1)
			g.UVs = append(g.UVs, float32(ix)/float32(widthSegments), 1-float32(iy)/float32(heightSegments))
		}
	}

	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(ix + gridX1*iy)
			b := uint32(ix + gridX1*(iy+1))
			c := uint32(ix + 1 + gridX1*(iy+1))
			d := uint32(ix + 1 + gridX1*iy)
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}

	return g
}
