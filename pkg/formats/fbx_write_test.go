package formats

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	// fbxCompressThreshold is the array payload size above which arrays are deflated.
	fbxCompressThreshold = 128
	// fbxDefaultVersion is written when a document has no version set.
	fbxDefaultVersion = 7400
)

// encodeFBX writes doc as binary FBX so tests can build fixtures in memory.
func encodeFBX(f *FBX) ([]byte, error) {
	version := f.Version
	if version == 0 {
		version = fbxDefaultVersion
	}
	w := &fbxEncoder{wide: version >= fbxWideVersion}
	w.buf.WriteString(fbxMagic)
	w.buf.Write([]byte{0x1A, 0x00})
	binary.Write(&w.buf, binary.LittleEndian, version)

	for _, n := range f.Nodes {
		if err := w.node(n); err != nil {
			return nil, err
		}
	}
	w.null()
	return w.buf.Bytes(), nil
}

type fbxEncoder struct {
	buf  bytes.Buffer
	wide bool
}

func (w *fbxEncoder) offset(v uint64) {
	if w.wide {
		binary.Write(&w.buf, binary.LittleEndian, v)
	} else {
		binary.Write(&w.buf, binary.LittleEndian, uint32(v))
	}
}

func (w *fbxEncoder) null() {
	w.offset(0)
	w.offset(0)
	w.offset(0)
	w.buf.WriteByte(0)
}

func (w *fbxEncoder) node(n *FBXNode) error {
	if len(n.Name) > 255 {
		return fmt.Errorf("%w: node name longer than 255 bytes", ErrInvalidFBXProperty)
	}

	var props bytes.Buffer
	for i, p := range n.Properties {
		if err := encodeFBXProperty(&props, p); err != nil {
			return fmt.Errorf("node %q property %d: %w", n.Name, i, err)
		}
	}

	start := w.buf.Len()
	w.offset(0) // patched once the children are written
	w.offset(uint64(len(n.Properties)))
	w.offset(uint64(props.Len()))
	w.buf.WriteByte(byte(len(n.Name)))
	w.buf.WriteString(n.Name)
	w.buf.Write(props.Bytes())

	if len(n.Children) > 0 {
		for _, c := range n.Children {
			if err := w.node(c); err != nil {
				return err
			}
		}
		w.null()
	}

	end := w.buf.Bytes()[start:]
	if w.wide {
		binary.LittleEndian.PutUint64(end, uint64(w.buf.Len()))
	} else {
		binary.LittleEndian.PutUint32(end, uint32(w.buf.Len()))
	}
	return nil
}

func encodeFBXProperty(b *bytes.Buffer, p FBXProperty) error {
	le := binary.LittleEndian
	switch v := p.Value.(type) {
	case int16:
		b.WriteByte('Y')
		binary.Write(b, le, v)
	case bool:
		b.WriteByte('C')
		if v {
			b.WriteByte(1)
		} else {
			b.WriteByte(0)
		}
	case int32:
		b.WriteByte('I')
		binary.Write(b, le, v)
	case float32:
		b.WriteByte('F')
		binary.Write(b, le, math.Float32bits(v))
	case float64:
		b.WriteByte('D')
		binary.Write(b, le, math.Float64bits(v))
	case int64:
		b.WriteByte('L')
		binary.Write(b, le, v)
	case string:
		b.WriteByte('S')
		binary.Write(b, le, uint32(len(v)))
		b.WriteString(v)
	case []byte:
		b.WriteByte('R')
		binary.Write(b, le, uint32(len(v)))
		b.Write(v)
	case []float32:
		return encodeFBXArray(b, 'f', len(v), v)
	case []float64:
		return encodeFBXArray(b, 'd', len(v), v)
	case []int32:
		return encodeFBXArray(b, 'i', len(v), v)
	case []int64:
		return encodeFBXArray(b, 'l', len(v), v)
	case []bool:
		raw := make([]byte, len(v))
		for i, x := range v {
			if x {
				raw[i] = 1
			}
		}
		return encodeFBXArray(b, 'b', len(v), raw)
	default:
		return fmt.Errorf("%w: cannot encode %T", ErrInvalidFBXProperty, p.Value)
	}
	return nil
}

func encodeFBXArray(b *bytes.Buffer, t byte, count int, data any) error {
	var raw bytes.Buffer
	if err := binary.Write(&raw, binary.LittleEndian, data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFBXProperty, err)
	}

	encoding := uint32(0)
	payload := raw.Bytes()
	if raw.Len() > fbxCompressThreshold {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		if _, err := zw.Write(payload); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
		encoding = 1
		payload = z.Bytes()
	}

	b.WriteByte(t)
	binary.Write(b, binary.LittleEndian, uint32(count))
	binary.Write(b, binary.LittleEndian, encoding)
	binary.Write(b, binary.LittleEndian, uint32(len(payload)))
	b.Write(payload)
	return nil
}
