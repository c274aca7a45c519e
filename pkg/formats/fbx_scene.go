package formats

import (
	"errors"
	"fmt"
)

// ErrInvalidFBXGeometry is returned for geometry records with inconsistent indices.
var ErrInvalidFBXGeometry = errors.New("invalid FBX geometry")

// FBX layer element mapping and reference modes.
const (
	FBXByPolygonVertex = "ByPolygonVertex"
	FBXByVertex        = "ByVertice"
	FBXByPolygon       = "ByPolygon"
	FBXAllSame         = "AllSame"
	FBXDirect          = "Direct"
	FBXIndexToDirect   = "IndexToDirect"
)

// FBXLayer is a per-vertex attribute layer such as normals or UVs.
type FBXLayer struct {
	Mapping   string
	Reference string
	Data      []float64
	Index     []int32
}

// FBXGeometry is a polygon mesh from Objects/Geometry.
type FBXGeometry struct {
	ID                 int64
	Name               string
	Vertices           []float64
	PolygonVertexIndex []int32
	Normals            *FBXLayer
	UVs                *FBXLayer
}

// FBXModel is a transform node from Objects/Model.
type FBXModel struct {
	ID          int64
	Name        string
	Type        string
	Translation [3]float64
	Rotation    [3]float64 // degrees, XYZ order
	PreRotation [3]float64 // degrees
	Scaling     [3]float64
}

// FBXMaterial is a surface material from Objects/Material.
type FBXMaterial struct {
	ID           int64
	Name         string
	DiffuseColor [3]float64
	HasDiffuse   bool
}

// FBXConnection links a child object to a parent object. Parent 0 is the root.
type FBXConnection struct {
	Kind     string
	Child    int64
	Parent   int64
	Property string
}

// FBXScene is the object graph extracted from an FBX document.
type FBXScene struct {
	Geometries  map[int64]*FBXGeometry
	Models      map[int64]*FBXModel
	Materials   map[int64]*FBXMaterial
	ModelOrder  []int64
	Connections []FBXConnection
}

// Scene extracts geometries, models, materials and connections.
func (f *FBX) Scene() (*FBXScene, error) {
	s := &FBXScene{
		Geometries: make(map[int64]*FBXGeometry),
		Models:     make(map[int64]*FBXModel),
		Materials:  make(map[int64]*FBXMaterial),
	}

	if objects := f.Find("Objects"); objects != nil {
		for _, obj := range objects.Children {
			id, _ := obj.Prop(0).Int()
			raw, _ := obj.Prop(1).Str()
			name, _ := SplitFBXName(raw)

			switch obj.Name {
			case "Geometry":
				class, _ := obj.Prop(2).Str()
				if class != "Mesh" {
					continue
				}
				g, err := parseFBXGeometry(obj)
				if err != nil {
					return nil, fmt.Errorf("geometry %q: %w", name, err)
				}
				g.ID, g.Name = id, name
				s.Geometries[id] = g
			case "Model":
				m := parseFBXModel(obj)
				m.ID, m.Name = id, name
				s.Models[id] = m
				s.ModelOrder = append(s.ModelOrder, id)
			case "Material":
				m := parseFBXMaterial(obj)
				m.ID, m.Name = id, name
				s.Materials[id] = m
			}
		}
	}

	if conns := f.Find("Connections"); conns != nil {
		for _, c := range conns.ChildrenNamed("C") {
			kind, _ := c.Prop(0).Str()
			child, _ := c.Prop(1).Int()
			parent, _ := c.Prop(2).Int()
			prop, _ := c.Prop(3).Str()
			s.Connections = append(s.Connections, FBXConnection{
				Kind: kind, Child: child, Parent: parent, Property: prop,
			})
		}
	}

	return s, nil
}

// ChildrenOf returns ids of objects connected object-to-object under parent.
func (s *FBXScene) ChildrenOf(parent int64) []int64 {
	var out []int64
	for _, c := range s.Connections {
		if c.Kind == "OO" && c.Parent == parent {
			out = append(out, c.Child)
		}
	}
	return out
}

func parseFBXGeometry(obj *FBXNode) (*FBXGeometry, error) {
	g := &FBXGeometry{}
	if v := obj.Child("Vertices"); v != nil {
		g.Vertices = v.Prop(0).Float64s()
	}
	if pvi := obj.Child("PolygonVertexIndex"); pvi != nil {
		g.PolygonVertexIndex = pvi.Prop(0).Int32s()
	}
	if len(g.Vertices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d vertex components", ErrInvalidFBXGeometry, len(g.Vertices))
	}
	g.Normals = parseFBXLayer(obj.Child("LayerElementNormal"), "Normals", "NormalsIndex")
	g.UVs = parseFBXLayer(obj.Child("LayerElementUV"), "UV", "UVIndex")
	return g, nil
}

func parseFBXLayer(layer *FBXNode, dataName, indexName string) *FBXLayer {
	if layer == nil {
		return nil
	}
	l := &FBXLayer{Mapping: FBXByPolygonVertex, Reference: FBXDirect}
	if n := layer.Child("MappingInformationType"); n != nil {
		l.Mapping, _ = n.Prop(0).Str()
	}
	if n := layer.Child("ReferenceInformationType"); n != nil {
		l.Reference, _ = n.Prop(0).Str()
	}
	if n := layer.Child(dataName); n != nil {
		l.Data = n.Prop(0).Float64s()
	}
	if n := layer.Child(indexName); n != nil {
		l.Index = n.Prop(0).Int32s()
	}
	if len(l.Data) == 0 {
		return nil
	}
	return l
}

// properties70 iterates "P" entries: name, type, label, flags, values...
func properties70(obj *FBXNode, fn func(name string, values []FBXProperty)) {
	props := obj.Child("Properties70")
	if props == nil {
		return
	}
	for _, p := range props.ChildrenNamed("P") {
		if len(p.Properties) < 4 {
			continue
		}
		name, _ := p.Prop(0).Str()
		fn(name, p.Properties[4:])
	}
}

func vec3(values []FBXProperty) ([3]float64, bool) {
	var v [3]float64
	if len(values) < 3 {
		return v, false
	}
	for i := range v {
		f, ok := values[i].Float()
		if !ok {
			return v, false
		}
		v[i] = f
	}
	return v, true
}

func parseFBXModel(obj *FBXNode) *FBXModel {
	m := &FBXModel{Scaling: [3]float64{1, 1, 1}}
	m.Type, _ = obj.Prop(2).Str()
	properties70(obj, func(name string, values []FBXProperty) {
		v, ok := vec3(values)
		if !ok {
			return
		}
		switch name {
		case "Lcl Translation":
			m.Translation = v
		case "Lcl Rotation":
			m.Rotation = v
		case "PreRotation":
			m.PreRotation = v
		case "Lcl Scaling":
			m.Scaling = v
		}
	})
	return m
}

func parseFBXMaterial(obj *FBXNode) *FBXMaterial {
	m := &FBXMaterial{}
	properties70(obj, func(name string, values []FBXProperty) {
		if name != "DiffuseColor" {
			return
		}
		if v, ok := vec3(values); ok {
			m.DiffuseColor = v
			m.HasDiffuse = true
		}
	})
	return m
}

// FBXMeshData is a triangulated, non-indexed vertex stream.
type FBXMeshData struct {
	Positions []float32
	Normals   []float32 // nil when the geometry has no normal layer
	UVs       []float32 // nil when the geometry has no UV layer
}

// Triangulate fans each polygon into triangles and resolves layer data
// per polygon vertex. A negative index marks the last vertex of a polygon
// and is stored as the bitwise complement.
func (g *FBXGeometry) Triangulate() (*FBXMeshData, error) {
	vertexCount := int32(len(g.Vertices) / 3)
	out := &FBXMeshData{}
	if g.Normals != nil {
		out.Normals = []float32{}
	}
	if g.UVs != nil {
		out.UVs = []float32{}
	}

	// polygon-vertex indices of the current polygon
	var poly []int
	polygonIndex := 0

	for pv, raw := range g.PolygonVertexIndex {
		last := raw < 0
		vi := raw
		if last {
			vi = ^raw
		}
		if vi >= vertexCount {
			return nil, fmt.Errorf("%w: vertex index %d out of %d", ErrInvalidFBXGeometry, vi, vertexCount)
		}
		poly = append(poly, pv)
		if !last {
			continue
		}

		for i := 1; i+1 < len(poly); i++ {
			for _, corner := range [3]int{poly[0], poly[i], poly[i+1]} {
				if err := g.emit(out, corner, polygonIndex); err != nil {
					return nil, err
				}
			}
		}
		poly = poly[:0]
		polygonIndex++
	}

	return out, nil
}

func (g *FBXGeometry) emit(out *FBXMeshData, pv, polygon int) error {
	raw := g.PolygonVertexIndex[pv]
	vi := int(raw)
	if raw < 0 {
		vi = int(^raw)
	}
	out.Positions = append(out.Positions,
		float32(g.Vertices[vi*3]), float32(g.Vertices[vi*3+1]), float32(g.Vertices[vi*3+2]))

	if g.Normals != nil {
		n, err := g.Normals.lookup(pv, vi, polygon, 3)
		if err != nil {
			return fmt.Errorf("normals: %w", err)
		}
		out.Normals = append(out.Normals, n...)
	}
	if g.UVs != nil {
		uv, err := g.UVs.lookup(pv, vi, polygon, 2)
		if err != nil {
			return fmt.Errorf("uvs: %w", err)
		}
		out.UVs = append(out.UVs, uv...)
	}
	return nil
}

func (l *FBXLayer) lookup(polygonVertex, vertex, polygon, stride int) ([]float32, error) {
	var i int
	switch l.Mapping {
	case FBXByPolygonVertex:
		i = polygonVertex
	case FBXByVertex, "ByVertex":
		i = vertex
	case FBXByPolygon:
		i = polygon
	case FBXAllSame:
		i = 0
	default:
		return nil, fmt.Errorf("%w: mapping %q", ErrInvalidFBXGeometry, l.Mapping)
	}

	if l.Reference == FBXIndexToDirect {
		if i >= len(l.Index) {
			return nil, fmt.Errorf("%w: layer index %d out of %d", ErrInvalidFBXGeometry, i, len(l.Index))
		}
		i = int(l.Index[i])
	}

	if i < 0 || (i+1)*stride > len(l.Data) {
		return nil, fmt.Errorf("%w: layer element %d out of range", ErrInvalidFBXGeometry, i)
	}
	out := make([]float32, stride)
	for k := range out {
		out[k] = float32(l.Data[i*stride+k])
	}
	return out, nil
}
