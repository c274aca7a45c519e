package ui2d

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	firstGlyph   = ' '
	lastGlyph    = '~'
	atlasColumns = 16
	// fallbackGlyph is drawn for runes outside the atlas.
	fallbackGlyph = '?'
)

// Font is a fixed-width bitmap font baked into a single-channel atlas.
type Font struct {
	// Atlas holds glyph coverage, one cell per printable ASCII rune.
	Atlas *image.Alpha

	glyphW, glyphH int
}

// NewFont bakes the 7x13 fixed font from x/image into an atlas.
func NewFont() *Font {
	face := basicfont.Face7x13
	gw, gh := face.Advance, face.Height
	count := int(lastGlyph - firstGlyph + 1)
	rows := (count + atlasColumns - 1) / atlasColumns

	atlas := image.NewAlpha(image.Rect(0, 0, atlasColumns*gw, rows*gh))
	d := font.Drawer{Dst: atlas, Src: image.Opaque, Face: face}
	for r := firstGlyph; r <= lastGlyph; r++ {
		i := int(r - firstGlyph)
		col, row := i%atlasColumns, i/atlasColumns
		d.Dot = fixed.P(col*gw, row*gh+face.Ascent)
		d.DrawString(string(r))
	}

	return &Font{Atlas: atlas, glyphW: gw, glyphH: gh}
}

// GlyphSize returns the cell size of one glyph in pixels.
func (f *Font) GlyphSize() (int, int) {
	return f.glyphW, f.glyphH
}

// GlyphUV returns the atlas texture coordinates of r.
func (f *Font) GlyphUV(r rune) (u0, v0, u1, v1 float32) {
	if r < firstGlyph || r > lastGlyph {
		r = fallbackGlyph
	}
	i := int(r - firstGlyph)
	col, row := i%atlasColumns, i/atlasColumns

	size := f.Atlas.Bounds().Size()
	aw, ah := float32(size.X), float32(size.Y)
	u0 = float32(col*f.glyphW) / aw
	v0 = float32(row*f.glyphH) / ah
	u1 = float32((col+1)*f.glyphW) / aw
	v1 = float32((row+1)*f.glyphH) / ah
	return u0, v0, u1, v1
}

// MeasureText returns the width of the longest line and the total height.
func (f *Font) MeasureText(text string, scale float32) (float32, float32) {
	lines, longest, cur := 1, 0, 0
	for _, r := range text {
		if r == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		if cur > longest {
			longest = cur
		}
	}
	return float32(longest*f.glyphW) * scale, float32(lines*f.glyphH) * scale
}
