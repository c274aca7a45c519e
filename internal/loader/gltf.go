package loader

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/sketchbox/internal/engine/scene"
	"github.com/Faultbox/sketchbox/internal/logger"
)

// ErrInvalidGLTF is returned for documents with dangling references.
var ErrInvalidGLTF = errors.New("invalid glTF document")

// maxNodeDepth bounds hierarchy recursion so cyclic documents fail.
const maxNodeDepth = 256

// GLTF is a loaded glTF asset.
type GLTF struct {
	// Scene is the default scene, or the first one.
	Scene    *scene.Node
	Scenes   []*scene.Node
	Document *gltf.Document
}

// GLTFLoader loads .gltf and .glb files.
type GLTFLoader struct {
	base
}

// NewGLTFLoader creates a loader reporting to manager, which may be nil.
func NewGLTFLoader(manager *LoadingManager) *GLTFLoader {
	return &GLTFLoader{base: base{manager: manager}}
}

// Load reads and converts the file at path asynchronously.
func (l *GLTFLoader) Load(path string) *Future[*GLTF] {
	return start(&l.base, FormatGLTF, path, func(path string) (*GLTF, error) {
		doc, err := gltf.Open(path)
		if err != nil {
			return nil, err
		}
		return ParseGLTF(doc)
	})
}

// ParseGLTF converts a decoded document into scene nodes.
func ParseGLTF(doc *gltf.Document) (*GLTF, error) {
	c := &gltfConverter{
		doc:       doc,
		materials: make(map[int]*scene.StandardMaterial),
		meshes:    make(map[int][]*scene.Mesh),
		log:       logger.Named("loader"),
	}

	out := &GLTF{Document: doc}
	for i, s := range doc.Scenes {
		root := scene.NewNode(s.Name)
		if root.Name == "" {
			root.Name = fmt.Sprintf("scene_%d", i)
		}
		for _, ni := range s.Nodes {
			n, err := c.node(ni, 0)
			if err != nil {
				return nil, err
			}
			root.Add(n)
		}
		out.Scenes = append(out.Scenes, root)
	}

	// documents without scenes still carry renderable root nodes
	if len(out.Scenes) == 0 && len(doc.Nodes) > 0 {
		root := scene.NewNode("scene_0")
		for _, ni := range c.rootNodes() {
			n, err := c.node(ni, 0)
			if err != nil {
				return nil, err
			}
			root.Add(n)
		}
		out.Scenes = append(out.Scenes, root)
	}

	if len(out.Scenes) == 0 {
		out.Scene = scene.NewNode("scene_0")
		out.Scenes = []*scene.Node{out.Scene}
		return out, nil
	}

	out.Scene = out.Scenes[0]
	if doc.Scene != nil {
		if *doc.Scene < 0 || *doc.Scene >= len(out.Scenes) {
			return nil, fmt.Errorf("%w: default scene %d out of range", ErrInvalidGLTF, *doc.Scene)
		}
		out.Scene = out.Scenes[*doc.Scene]
	}
	return out, nil
}

type gltfConverter struct {
	doc       *gltf.Document
	materials map[int]*scene.StandardMaterial
	meshes    map[int][]*scene.Mesh
	log       *zap.Logger
}

func (c *gltfConverter) rootNodes() []int {
	isChild := make([]bool, len(c.doc.Nodes))
	for _, n := range c.doc.Nodes {
		for _, ci := range n.Children {
			if ci >= 0 && ci < len(isChild) {
				isChild[ci] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// node builds a fresh subtree for node index i. Nodes shared between
// scenes get one instance per scene; geometry is shared.
func (c *gltfConverter) node(i, depth int) (*scene.Node, error) {
	if i < 0 || i >= len(c.doc.Nodes) {
		return nil, fmt.Errorf("%w: node %d out of range", ErrInvalidGLTF, i)
	}
	if depth > maxNodeDepth {
		return nil, fmt.Errorf("%w: node hierarchy deeper than %d", ErrInvalidGLTF, maxNodeDepth)
	}

	gn := c.doc.Nodes[i]
	n := scene.NewNode(gn.Name)
	if n.Name == "" {
		n.Name = fmt.Sprintf("node_%d", i)
	}
	applyTransform(n, gn)

	if gn.Mesh != nil {
		meshes, err := c.mesh(*gn.Mesh)
		if err != nil {
			return nil, err
		}
		if len(meshes) == 1 {
			n.Mesh = &scene.Mesh{Geometry: meshes[0].Geometry, Material: meshes[0].Material}
		} else {
			for pi, m := range meshes {
				child := scene.NewMesh(m.Geometry, m.Material)
				child.Name = fmt.Sprintf("%s_primitive_%d", n.Name, pi)
				n.Add(child)
			}
		}
	}

	for _, ci := range gn.Children {
		child, err := c.node(ci, depth+1)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

func applyTransform(n *scene.Node, gn *gltf.Node) {
	if m := gn.MatrixOrDefault(); m != gltf.DefaultMatrix {
		var mat mgl32.Mat4
		for k := range m {
			mat[k] = float32(m[k])
		}
		n.SetFromMatrix(mat)
		return
	}

	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault()
	s := gn.ScaleOrDefault()
	n.Position = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
	n.Rotation = mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	n.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
}

func (c *gltfConverter) accessor(i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(c.doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d out of range", ErrInvalidGLTF, i)
	}
	return c.doc.Accessors[i], nil
}

func (c *gltfConverter) mesh(i int) ([]*scene.Mesh, error) {
	if cached, ok := c.meshes[i]; ok {
		return cached, nil
	}
	if i < 0 || i >= len(c.doc.Meshes) {
		return nil, fmt.Errorf("%w: mesh %d out of range", ErrInvalidGLTF, i)
	}

	gm := c.doc.Meshes[i]
	var out []*scene.Mesh
	for pi, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			c.log.Debug("skipping non-triangle primitive",
				zap.String("mesh", gm.Name),
				zap.Int("primitive", pi),
				zap.Int("mode", int(prim.Mode)),
			)
			continue
		}
		geom, err := c.geometry(prim)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", gm.Name, pi, err)
		}
		if geom == nil {
			continue
		}
		mat, err := c.material(prim.Material)
		if err != nil {
			return nil, err
		}
		out = append(out, &scene.Mesh{Geometry: geom, Material: mat})
	}

	c.meshes[i] = out
	return out, nil
}

func (c *gltfConverter) geometry(prim *gltf.Primitive) (*scene.Geometry, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	acc, err := c.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(c.doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	g := &scene.Geometry{Positions: flatten3(positions)}

	if ni, ok := prim.Attributes[gltf.NORMAL]; ok {
		acc, err := c.accessor(ni)
		if err != nil {
			return nil, err
		}
		normals, err := modeler.ReadNormal(c.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		g.Normals = flatten3(normals)
	}

	if ti, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acc, err := c.accessor(ti)
		if err != nil {
			return nil, err
		}
		uvs, err := modeler.ReadTextureCoord(c.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("uvs: %w", err)
		}
		g.UVs = make([]float32, 0, len(uvs)*2)
		for _, uv := range uvs {
			g.UVs = append(g.UVs, uv[0], uv[1])
		}
	}

	if prim.Indices != nil {
		acc, err := c.accessor(*prim.Indices)
		if err != nil {
			return nil, err
		}
		indices, err := modeler.ReadIndices(c.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		vertexCount := uint32(len(positions))
		for _, idx := range indices {
			if idx >= vertexCount {
				return nil, fmt.Errorf("%w: index %d out of %d vertices", ErrInvalidGLTF, idx, vertexCount)
			}
		}
		g.Indices = indices
	}

	if len(g.Normals) != len(g.Positions) {
		g.ComputeVertexNormals()
	}
	return g, nil
}

func (c *gltfConverter) material(idx *int) (*scene.StandardMaterial, error) {
	if idx == nil {
		return scene.NewStandardMaterial(), nil
	}
	if m, ok := c.materials[*idx]; ok {
		return m, nil
	}
	if *idx < 0 || *idx >= len(c.doc.Materials) {
		return nil, fmt.Errorf("%w: material %d out of range", ErrInvalidGLTF, *idx)
	}

	gm := c.doc.Materials[*idx]
	m := scene.NewStandardMaterial()
	m.Name = gm.Name
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		bc := pbr.BaseColorFactorOrDefault()
		m.Color = scene.Color{R: float32(bc[0]), G: float32(bc[1]), B: float32(bc[2])}
		m.Metalness = float32(pbr.MetallicFactorOrDefault())
		m.Roughness = float32(pbr.RoughnessFactorOrDefault())
	}
	m.Emissive = scene.Color{
		R: float32(gm.EmissiveFactor[0]),
		G: float32(gm.EmissiveFactor[1]),
		B: float32(gm.EmissiveFactor[2]),
	}
	if gm.DoubleSided {
		m.Side = scene.DoubleSide
	}

	c.materials[*idx] = m
	return m, nil
}

func flatten3(v [][3]float32) []float32 {
	out := make([]float32, 0, len(v)*3)
	for _, p := range v {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}
