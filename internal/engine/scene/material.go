package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// Side selects which triangle faces are drawn.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// String returns the side name.
func (s Side) String() string {
	switch s {
	case FrontSide:
		return "front"
	case BackSide:
		return "back"
	case DoubleSide:
		return "double"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Color is a linear RGB color.
type Color struct {
	R, G, B float32
}

// White is full-intensity white.
var White = Color{1, 1, 1}

// NewColorHex builds a color from a 0xRRGGBB value.
func NewColorHex(hex uint32) Color {
	return Color{
		R: float32(hex>>16&0xff) / 255,
		G: float32(hex>>8&0xff) / 255,
		B: float32(hex&0xff) / 255,
	}
}

// ParseColor parses "#rrggbb" or "rrggbb".
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("color %q: expected 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return NewColorHex(uint32(v)), nil
}

// Scaled returns the color multiplied by k.
func (c Color) Scaled(k float32) Color {
	return Color{c.R * k, c.G * k, c.B * k}
}

// Vec returns the color as an array for uniform upload.
func (c Color) Vec() [3]float32 {
	return [3]float32{c.R, c.G, c.B}
}

// StandardMaterial is a metallic-roughness physically based material.
type StandardMaterial struct {
	Name      string
	Color     Color
	Emissive  Color
	Roughness float32
	Metalness float32
	Side      Side
}

// NewStandardMaterial returns a white, fully rough, non-metallic, front-sided material.
func NewStandardMaterial() *StandardMaterial {
	return &StandardMaterial{
		Color:     White,
		Roughness: 1,
		Metalness: 0,
		Side:      FrontSide,
	}
}
