//go:build ignore

// This program generates the FBX fixture for loader tests: a parent group
// with a child quad mesh.
// Run with: go run generate_fbx.go
package main

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
)

const version = 7400

var le = binary.LittleEndian

type node struct {
	name     string
	props    []any
	children []*node
}

func n(name string, props []any, children ...*node) *node {
	return &node{name: name, props: props, children: children}
}

// p is one Properties70 entry.
func p(name string, values ...float64) *node {
	props := []any{name, "", "", "A"}
	for _, v := range values {
		props = append(props, v)
	}
	return n("P", props)
}

func main() {
	doc := []*node{
		n("Objects", nil,
			n("Geometry", []any{int64(10), "Quad\x00\x01Geometry", "Mesh"},
				n("Vertices", []any{[]float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}}),
				n("PolygonVertexIndex", []any{[]int32{0, 1, 2, ^3}}),
			),
			n("Model", []any{int64(20), "Group\x00\x01Model", "Null"},
				n("Properties70", nil, p("Lcl Translation", 0, -5, 0)),
			),
			n("Model", []any{int64(30), "Panel\x00\x01Model", "Mesh"},
				n("Properties70", nil,
					p("Lcl Translation", 1, 0, 0),
					p("Lcl Rotation", 0, 0, 90),
				),
			),
			n("Material", []any{int64(40), "Blue\x00\x01Material", ""},
				n("Properties70", nil, p("DiffuseColor", 0, 0, 1)),
			),
		),
		n("Connections", nil,
			n("C", []any{"OO", int64(20), int64(0)}),
			n("C", []any{"OO", int64(30), int64(20)}),
			n("C", []any{"OO", int64(10), int64(30)}),
			n("C", []any{"OO", int64(40), int64(30)}),
		),
	}

	var buf bytes.Buffer
	buf.WriteString("Kaydara FBX Binary  \x00")
	buf.Write([]byte{0x1A, 0x00})
	binary.Write(&buf, le, uint32(version))
	for _, c := range doc {
		writeNode(&buf, c)
	}
	buf.Write(make([]byte, 13)) // null record

	if err := os.WriteFile("quad.fbx", buf.Bytes(), 0644); err != nil {
		panic(err)
	}
}

func writeNode(buf *bytes.Buffer, nd *node) {
	var props bytes.Buffer
	for _, v := range nd.props {
		writeProp(&props, v)
	}

	start := buf.Len()
	binary.Write(buf, le, uint32(0)) // end offset, patched below
	binary.Write(buf, le, uint32(len(nd.props)))
	binary.Write(buf, le, uint32(props.Len()))
	buf.WriteByte(byte(len(nd.name)))
	buf.WriteString(nd.name)
	buf.Write(props.Bytes())

	if len(nd.children) > 0 {
		for _, c := range nd.children {
			writeNode(buf, c)
		}
		buf.Write(make([]byte, 13))
	}
	le.PutUint32(buf.Bytes()[start:], uint32(buf.Len()))
}

func writeProp(buf *bytes.Buffer, v any) {
	switch v := v.(type) {
	case int64:
		buf.WriteByte('L')
		binary.Write(buf, le, v)
	case float64:
		buf.WriteByte('D')
		binary.Write(buf, le, math.Float64bits(v))
	case string:
		buf.WriteByte('S')
		binary.Write(buf, le, uint32(len(v)))
		buf.WriteString(v)
	case []float64:
		buf.WriteByte('d')
		writeArray(buf, len(v), v)
	case []int32:
		buf.WriteByte('i')
		writeArray(buf, len(v), v)
	}
}

// writeArray stores an uncompressed array property.
func writeArray(buf *bytes.Buffer, count int, data any) {
	var raw bytes.Buffer
	binary.Write(&raw, le, data)
	binary.Write(buf, le, uint32(count))
	binary.Write(buf, le, uint32(0))
	binary.Write(buf, le, uint32(raw.Len()))
	buf.Write(raw.Bytes())
}
