// FBX binary (Kaydara) format parser.
package formats

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// FBX format errors.
var (
	ErrFBXNotBinary          = errors.New("not a binary FBX file")
	ErrUnsupportedFBXVersion = errors.New("unsupported FBX version")
	ErrTruncatedFBXData      = errors.New("truncated FBX data")
	ErrInvalidFBXProperty    = errors.New("invalid FBX property")
)

const (
	fbxMagic = "Kaydara FBX Binary  \x00"
	// fbxHeaderSize is magic + 0x1A 0x00 + u32 version.
	fbxHeaderSize = len(fbxMagic) + 2 + 4
	// fbxWideVersion is the first version with 64-bit record offsets.
	fbxWideVersion = 7500
	fbxMinVersion  = 7000
	// fbxNameSeparator splits "Name\x00\x01Class" object names.
	fbxNameSeparator = "\x00\x01"
)

// FBXProperty is one typed value attached to a node record.
// Value holds int16, bool, int32, float32, float64, int64, string, []byte
// or a slice of float32, float64, int32, int64 or bool.
type FBXProperty struct {
	Type  byte
	Value any
}

// Int returns integral scalar values as int64.
func (p FBXProperty) Int() (int64, bool) {
	switch v := p.Value.(type) {
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Float returns numeric scalar values as float64.
func (p FBXProperty) Float() (float64, bool) {
	switch v := p.Value.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	if i, ok := p.Int(); ok {
		return float64(i), true
	}
	return 0, false
}

// Str returns string values.
func (p FBXProperty) Str() (string, bool) {
	s, ok := p.Value.(string)
	return s, ok
}

// Float64s returns numeric arrays as []float64.
func (p FBXProperty) Float64s() []float64 {
	switch v := p.Value.(type) {
	case []float64:
		return v
	case []float32:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = float64(f)
		}
		return out
	}
	return nil
}

// Int32s returns integral arrays as []int32.
func (p FBXProperty) Int32s() []int32 {
	switch v := p.Value.(type) {
	case []int32:
		return v
	case []int64:
		out := make([]int32, len(v))
		for i, n := range v {
			out[i] = int32(n)
		}
		return out
	}
	return nil
}

// FBXNode is a node record.
type FBXNode struct {
	Name       string
	Properties []FBXProperty
	Children   []*FBXNode
}

// Child returns the first child with the given name.
func (n *FBXNode) Child(name string) *FBXNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all children with the given name.
func (n *FBXNode) ChildrenNamed(name string) []*FBXNode {
	var out []*FBXNode
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Prop returns property i, or a zero property when absent.
func (n *FBXNode) Prop(i int) FBXProperty {
	if n == nil || i < 0 || i >= len(n.Properties) {
		return FBXProperty{}
	}
	return n.Properties[i]
}

// FBX is a parsed binary FBX document.
type FBX struct {
	Version uint32
	Nodes   []*FBXNode
}

// Find walks top-level nodes then children by name.
func (f *FBX) Find(path ...string) *FBXNode {
	if len(path) == 0 {
		return nil
	}
	var cur *FBXNode
	for _, n := range f.Nodes {
		if n.Name == path[0] {
			cur = n
			break
		}
	}
	for _, name := range path[1:] {
		if cur == nil {
			return nil
		}
		cur = cur.Child(name)
	}
	return cur
}

// IsBinaryFBX reports whether data starts with the binary FBX magic.
func IsBinaryFBX(data []byte) bool {
	return len(data) >= len(fbxMagic) && string(data[:len(fbxMagic)]) == fbxMagic
}

// ParseFBX parses a binary FBX document.
func ParseFBX(data []byte) (*FBX, error) {
	if !IsBinaryFBX(data) {
		if len(data) < len(fbxMagic) && bytes.HasPrefix([]byte(fbxMagic), data) {
			return nil, ErrTruncatedFBXData
		}
		return nil, ErrFBXNotBinary
	}
	if len(data) < fbxHeaderSize {
		return nil, ErrTruncatedFBXData
	}

	version := binary.LittleEndian.Uint32(data[len(fbxMagic)+2:])
	if version < fbxMinVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFBXVersion, version)
	}

	p := &fbxParser{data: data, pos: fbxHeaderSize, wide: version >= fbxWideVersion}
	doc := &FBX{Version: version}

	for {
		node, err := p.readNode()
		if err != nil {
			return nil, err
		}
		if node == nil {
			break
		}
		doc.Nodes = append(doc.Nodes, node)
		// some exporters omit the top-level null record
		if p.pos >= len(p.data) {
			break
		}
	}

	return doc, nil
}

// ParseFBXFile reads and parses a binary FBX file.
func ParseFBXFile(path string) (*FBX, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading FBX file: %w", err)
	}
	return ParseFBX(data)
}

type fbxParser struct {
	data []byte
	pos  int
	wide bool
}

func (p *fbxParser) need(n int) error {
	if n < 0 || p.pos+n > len(p.data) {
		return ErrTruncatedFBXData
	}
	return nil
}

func (p *fbxParser) u8() (uint8, error) {
	if err := p.need(1); err != nil {
		return 0, err
	}
	v := p.data[p.pos]
	p.pos++
	return v, nil
}

func (p *fbxParser) u32() (uint32, error) {
	if err := p.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(p.data[p.pos:])
	p.pos += 4
	return v, nil
}

func (p *fbxParser) u64() (uint64, error) {
	if err := p.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(p.data[p.pos:])
	p.pos += 8
	return v, nil
}

// offset reads a record-header field, 64-bit from version 7500.
func (p *fbxParser) offset() (uint64, error) {
	if p.wide {
		return p.u64()
	}
	v, err := p.u32()
	return uint64(v), err
}

func (p *fbxParser) bytes(n int) ([]byte, error) {
	if err := p.need(n); err != nil {
		return nil, err
	}
	b := p.data[p.pos : p.pos+n]
	p.pos += n
	return b, nil
}

// readNode reads one node record. It returns nil at a null record.
func (p *fbxParser) readNode() (*FBXNode, error) {
	endOffset, err := p.offset()
	if err != nil {
		return nil, err
	}
	numProps, err := p.offset()
	if err != nil {
		return nil, err
	}
	if _, err := p.offset(); err != nil { // property list length
		return nil, err
	}
	nameLen, err := p.u8()
	if err != nil {
		return nil, err
	}

	if endOffset == 0 {
		return nil, nil
	}
	if endOffset > uint64(len(p.data)) || endOffset < uint64(p.pos) {
		return nil, ErrTruncatedFBXData
	}

	name, err := p.bytes(int(nameLen))
	if err != nil {
		return nil, err
	}
	node := &FBXNode{Name: string(name)}

	if numProps > uint64(len(p.data)) {
		return nil, ErrTruncatedFBXData
	}
	node.Properties = make([]FBXProperty, 0, numProps)
	for i := uint64(0); i < numProps; i++ {
		prop, err := p.readProperty()
		if err != nil {
			return nil, fmt.Errorf("node %q property %d: %w", node.Name, i, err)
		}
		node.Properties = append(node.Properties, prop)
	}

	end := int(endOffset)
	for p.pos < end {
		child, err := p.readNode()
		if err != nil {
			return nil, err
		}
		if child == nil {
			break
		}
		node.Children = append(node.Children, child)
	}
	p.pos = end

	return node, nil
}

func (p *fbxParser) readProperty() (FBXProperty, error) {
	t, err := p.u8()
	if err != nil {
		return FBXProperty{}, err
	}
	prop := FBXProperty{Type: t}

	switch t {
	case 'Y':
		b, err := p.bytes(2)
		if err != nil {
			return prop, err
		}
		prop.Value = int16(binary.LittleEndian.Uint16(b))
	case 'C':
		b, err := p.u8()
		if err != nil {
			return prop, err
		}
		prop.Value = b != 0
	case 'I':
		v, err := p.u32()
		if err != nil {
			return prop, err
		}
		prop.Value = int32(v)
	case 'F':
		v, err := p.u32()
		if err != nil {
			return prop, err
		}
		prop.Value = math.Float32frombits(v)
	case 'D':
		v, err := p.u64()
		if err != nil {
			return prop, err
		}
		prop.Value = math.Float64frombits(v)
	case 'L':
		v, err := p.u64()
		if err != nil {
			return prop, err
		}
		prop.Value = int64(v)
	case 'S', 'R':
		n, err := p.u32()
		if err != nil {
			return prop, err
		}
		b, err := p.bytes(int(n))
		if err != nil {
			return prop, err
		}
		if t == 'S' {
			prop.Value = string(b)
		} else {
			prop.Value = append([]byte(nil), b...)
		}
	case 'f', 'd', 'l', 'i', 'b':
		v, err := p.readArray(t)
		if err != nil {
			return prop, err
		}
		prop.Value = v
	default:
		return prop, fmt.Errorf("%w: type %q", ErrInvalidFBXProperty, t)
	}
	return prop, nil
}

func fbxElementSize(t byte) int {
	switch t {
	case 'f', 'i':
		return 4
	case 'd', 'l':
		return 8
	}
	return 1
}

func (p *fbxParser) readArray(t byte) (any, error) {
	count, err := p.u32()
	if err != nil {
		return nil, err
	}
	encoding, err := p.u32()
	if err != nil {
		return nil, err
	}
	compressedLen, err := p.u32()
	if err != nil {
		return nil, err
	}
	payload, err := p.bytes(int(compressedLen))
	if err != nil {
		return nil, err
	}

	size := int(count) * fbxElementSize(t)
	var raw []byte
	switch encoding {
	case 0:
		raw = payload
	case 1:
		zr, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFBXProperty, err)
		}
		raw = make([]byte, size)
		if _, err := io.ReadFull(zr, raw); err != nil {
			return nil, fmt.Errorf("%w: inflating array: %v", ErrTruncatedFBXData, err)
		}
	default:
		return nil, fmt.Errorf("%w: array encoding %d", ErrInvalidFBXProperty, encoding)
	}
	if len(raw) < size {
		return nil, ErrTruncatedFBXData
	}

	switch t {
	case 'f':
		out := make([]float32, count)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return out, nil
	case 'd':
		out := make([]float64, count)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return out, nil
	case 'i':
		out := make([]int32, count)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		return out, nil
	case 'l':
		out := make([]int64, count)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		return out, nil
	default: // 'b'
		out := make([]bool, count)
		for i := range out {
			out[i] = raw[i] != 0
		}
		return out, nil
	}
}

// SplitFBXName splits an object name of the form "Name\x00\x01Class".
func SplitFBXName(s string) (name, class string) {
	if i := strings.Index(s, fbxNameSeparator); i >= 0 {
		return s[:i], s[i+len(fbxNameSeparator):]
	}
	return s, ""
}
