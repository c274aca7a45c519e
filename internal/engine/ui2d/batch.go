package ui2d

// VertexStride is the float count of one vertex: position(2), uv(2), color(4).
const VertexStride = 8

// Batch collects one frame of overlay quads in screen coordinates, origin at
// the top left. Solid quads and glyph quads are kept apart so they can be
// drawn with and without the font atlas.
type Batch struct {
	width, height int
	font          *Font

	solid []float32
	text  []float32
}

// NewBatch creates a batch for a screen of the given size.
func NewBatch(f *Font, width, height int) *Batch {
	return &Batch{
		width:  width,
		height: height,
		font:   f,
		solid:  make([]float32, 0, 1024),
		text:   make([]float32, 0, 4096),
	}
}

// Resize updates the screen dimensions.
func (b *Batch) Resize(width, height int) {
	b.width = width
	b.height = height
}

// ScreenSize returns the current screen dimensions.
func (b *Batch) ScreenSize() (int, int) {
	return b.width, b.height
}

// Font returns the font glyphs are laid out with.
func (b *Batch) Font() *Font {
	return b.font
}

// Reset clears the queued quads.
func (b *Batch) Reset() {
	b.solid = b.solid[:0]
	b.text = b.text[:0]
}

// Solid returns the queued flat-color vertices.
func (b *Batch) Solid() []float32 { return b.solid }

// Text returns the queued glyph vertices.
func (b *Batch) Text() []float32 { return b.text }

// Empty reports whether nothing is queued.
func (b *Batch) Empty() bool {
	return len(b.solid) == 0 && len(b.text) == 0
}

// DrawRect draws a filled rectangle.
func (b *Batch) DrawRect(x, y, width, height float32, color Color) {
	b.solid = appendQuad(b.solid, x, y, width, height, 0, 0, 0, 0, color)
}

// DrawRectOutline draws a rectangle outline.
func (b *Batch) DrawRectOutline(x, y, width, height, thickness float32, color Color) {
	b.DrawRect(x, y, width, thickness, color)
	b.DrawRect(x, y+height-thickness, width, thickness, color)
	b.DrawRect(x, y+thickness, thickness, height-thickness*2, color)
	b.DrawRect(x+width-thickness, y+thickness, thickness, height-thickness*2, color)
}

// DrawPanel draws a panel with border.
func (b *Batch) DrawPanel(x, y, width, height float32, bg, border Color) {
	b.DrawRect(x, y, width, height, bg)
	b.DrawRectOutline(x, y, width, height, 1, border)
}

// DrawText draws text with its top-left corner at x, y. Spaces advance the
// pen without emitting a quad.
func (b *Batch) DrawText(x, y float32, text string, scale float32, color Color) {
	if b.font == nil {
		return
	}

	gw, gh := b.font.GlyphSize()
	charW := float32(gw) * scale
	charH := float32(gh) * scale

	curX := x
	for _, r := range text {
		if r == '\n' {
			curX = x
			y += charH
			continue
		}
		if r != ' ' {
			u0, v0, u1, v1 := b.font.GlyphUV(r)
			b.text = appendQuad(b.text, curX, y, charW, charH, u0, v0, u1, v1, color)
		}
		curX += charW
	}
}

// MeasureText returns the width and height of rendered text.
func (b *Batch) MeasureText(text string, scale float32) (float32, float32) {
	if b.font == nil {
		return 0, 0
	}
	return b.font.MeasureText(text, scale)
}

// appendQuad adds two triangles covering the rectangle.
func appendQuad(dst []float32, x, y, w, h, u0, v0, u1, v1 float32, c Color) []float32 {
	return append(dst,
		x, y, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y, u1, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, u1, v1, c.R, c.G, c.B, c.A,

		x, y, u0, v0, c.R, c.G, c.B, c.A,
		x+w, y+h, u1, v1, c.R, c.G, c.B, c.A,
		x, y+h, u0, v1, c.R, c.G, c.B, c.A,
	)
}
