package loader

import (
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/sketchbox/internal/engine/scene"
	"github.com/Faultbox/sketchbox/pkg/formats"
)

// FBXLoader loads binary .fbx files.
type FBXLoader struct {
	base
}

// NewFBXLoader creates a loader reporting to manager, which may be nil.
func NewFBXLoader(manager *LoadingManager) *FBXLoader {
	return &FBXLoader{base: base{manager: manager}}
}

// Load reads and converts the file at path asynchronously.
// The result is a group node holding the file's model hierarchy.
func (l *FBXLoader) Load(path string) *Future[*scene.Node] {
	return start(&l.base, FormatFBX, path, func(path string) (*scene.Node, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ParseFBX(data)
	})
}

// ParseFBX converts binary FBX data into a scene subtree.
func ParseFBX(data []byte) (*scene.Node, error) {
	doc, err := formats.ParseFBX(data)
	if err != nil {
		return nil, err
	}
	fs, err := doc.Scene()
	if err != nil {
		return nil, err
	}

	nodes := make(map[int64]*scene.Node, len(fs.Models))
	for _, id := range fs.ModelOrder {
		m := fs.Models[id]
		n := scene.NewNode(m.Name)
		n.Position = vec3f(m.Translation)
		n.Rotation = fbxRotation(m.PreRotation).Mul(fbxRotation(m.Rotation))
		n.Scale = vec3f(m.Scaling)
		nodes[id] = n
	}

	// object-to-object links: geometry and material under model, model under model
	parentOf := make(map[int64]int64)
	geometries := make(map[int64][]*formats.FBXGeometry)
	materials := make(map[int64]*formats.FBXMaterial)
	for _, c := range fs.Connections {
		if c.Kind != "OO" {
			continue
		}
		if _, ok := nodes[c.Child]; ok {
			parentOf[c.Child] = c.Parent
			continue
		}
		if _, ok := nodes[c.Parent]; !ok {
			continue
		}
		if g, ok := fs.Geometries[c.Child]; ok {
			geometries[c.Parent] = append(geometries[c.Parent], g)
		} else if mat, ok := fs.Materials[c.Child]; ok {
			if _, seen := materials[c.Parent]; !seen {
				materials[c.Parent] = mat
			}
		}
	}

	for _, id := range fs.ModelOrder {
		geoms := geometries[id]
		if len(geoms) == 0 {
			continue
		}
		mat := fbxMaterial(materials[id])
		n := nodes[id]
		for i, g := range geoms {
			geom, err := fbxGeometry(g)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				n.Mesh = &scene.Mesh{Geometry: geom, Material: mat}
				continue
			}
			child := scene.NewMesh(geom, mat)
			child.Name = g.Name
			n.Add(child)
		}
	}

	root := scene.NewNode("fbx")
	for _, id := range fs.ModelOrder {
		parent, ok := nodes[parentOf[id]]
		if !ok || parent == nodes[id] {
			root.Add(nodes[id])
			continue
		}
		parent.Add(nodes[id])
	}
	return root, nil
}

func fbxGeometry(g *formats.FBXGeometry) (*scene.Geometry, error) {
	mesh, err := g.Triangulate()
	if err != nil {
		return nil, err
	}
	geom := &scene.Geometry{
		Positions: mesh.Positions,
		Normals:   mesh.Normals,
		UVs:       mesh.UVs,
	}
	if len(geom.Normals) != len(geom.Positions) {
		geom.ComputeVertexNormals()
	}
	return geom, nil
}

func fbxMaterial(m *formats.FBXMaterial) *scene.StandardMaterial {
	mat := scene.NewStandardMaterial()
	if m == nil {
		return mat
	}
	mat.Name = m.Name
	if m.HasDiffuse {
		mat.Color = scene.Color{R: float32(m.DiffuseColor[0]), G: float32(m.DiffuseColor[1]), B: float32(m.DiffuseColor[2])}
	}
	return mat
}

// fbxRotation converts XYZ-order Euler degrees: X applies first, then Y, then Z.
func fbxRotation(deg [3]float64) mgl32.Quat {
	x := mgl32.DegToRad(float32(deg[0]))
	y := mgl32.DegToRad(float32(deg[1]))
	z := mgl32.DegToRad(float32(deg[2]))
	qx := mgl32.QuatRotate(x, mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(y, mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(z, mgl32.Vec3{0, 0, 1})
	return qz.Mul(qy).Mul(qx)
}

func vec3f(v [3]float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
