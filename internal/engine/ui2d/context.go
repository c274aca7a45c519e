package ui2d

// Layout metrics in screen pixels at scale 1.
const (
	windowPadding = 8
	titlePadding  = 4
	rowGap        = 4
	columnGap     = 12
)

// Context lays out windows and text rows on a Batch. It only draws; input
// stays with the camera controls.
type Context struct {
	batch *Batch
	scale float32

	// Current window being drawn
	window *Rect

	// Layout state
	cursorX float32
	cursorY float32
}

// NewContext creates a layout context drawing into b.
func NewContext(b *Batch) *Context {
	return &Context{batch: b, scale: 1}
}

// Batch returns the underlying draw list.
func (c *Context) Batch() *Batch {
	return c.batch
}

// Resize updates the screen size.
func (c *Context) Resize(width, height int) {
	c.batch.Resize(width, height)
}

// ScreenSize returns the current screen dimensions.
func (c *Context) ScreenSize() (float32, float32) {
	w, h := c.batch.ScreenSize()
	return float32(w), float32(h)
}

// Begin starts a new UI frame.
func (c *Context) Begin() {
	c.batch.Reset()
	c.window = nil
}

func (c *Context) lineHeight() float32 {
	_, gh := c.batch.Font().GlyphSize()
	return float32(gh) * c.scale
}

func (c *Context) charWidth() float32 {
	gw, _ := c.batch.Font().GlyphSize()
	return float32(gw) * c.scale
}

func (c *Context) titleBarHeight() float32 {
	return c.lineHeight() + titlePadding*2
}

// WindowHeight returns the height of a titled window holding rows lines.
func (c *Context) WindowHeight(rows int) float32 {
	h := c.titleBarHeight() + windowPadding*2
	if rows > 0 {
		h += float32(rows)*(c.lineHeight()+rowGap) - rowGap
	}
	return h
}

// BeginWindow draws a titled panel and moves the cursor inside it.
func (c *Context) BeginWindow(x, y, w, h float32, title string) {
	c.window = &Rect{X: x, Y: y, W: w, H: h}

	c.batch.DrawPanel(x, y, w, h, ColorPanelBg, ColorPanelBorder)

	titleH := c.titleBarHeight()
	c.batch.DrawRect(x+1, y+1, w-2, titleH-1, ColorTitleBg)
	c.batch.DrawText(x+windowPadding, y+titlePadding, c.fit(title, w-windowPadding*2), c.scale, ColorText)

	c.cursorX = x + windowPadding
	c.cursorY = y + titleH + windowPadding
}

// EndWindow ends the current window.
func (c *Context) EndWindow() {
	c.window = nil
}

// Label draws a text line.
func (c *Context) Label(text string) {
	c.LabelColored(text, ColorText)
}

// LabelColored draws a text line with a specific color.
func (c *Context) LabelColored(text string, color Color) {
	if c.window == nil {
		return
	}
	c.batch.DrawText(c.cursorX, c.cursorY, c.fit(text, c.contentWidth()), c.scale, color)
	c.nextRow()
}

// Property draws a name on the left and its value right-aligned. The value
// is shortened when both do not fit.
func (c *Context) Property(name, value string) {
	if c.window == nil {
		return
	}
	avail := c.contentWidth()
	nameW, _ := c.batch.MeasureText(name, c.scale)
	if nameW > avail/2 {
		name = c.fit(name, avail/2)
		nameW, _ = c.batch.MeasureText(name, c.scale)
	}
	value = c.fit(value, avail-nameW-columnGap)
	valueW, _ := c.batch.MeasureText(value, c.scale)

	c.batch.DrawText(c.cursorX, c.cursorY, name, c.scale, ColorTextDim)
	c.batch.DrawText(c.cursorX+avail-valueW, c.cursorY, value, c.scale, ColorText)
	c.nextRow()
}

// Separator draws a horizontal separator line.
func (c *Context) Separator() {
	if c.window == nil {
		return
	}
	c.batch.DrawRect(c.cursorX, c.cursorY, c.contentWidth(), 1, ColorPanelBorder)
	c.cursorY += rowGap + 1
}

func (c *Context) nextRow() {
	c.cursorY += c.lineHeight() + rowGap
}

func (c *Context) contentWidth() float32 {
	return c.window.W - windowPadding*2
}

// fit shortens text to at most width pixels, marking the cut with "..".
func (c *Context) fit(text string, width float32) string {
	limit := int(width / c.charWidth())
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	if limit <= 2 {
		if limit <= 0 {
			return ""
		}
		return string(runes[:limit])
	}
	return string(runes[:limit-2]) + ".."
}

// Rect is a simple rectangle struct.
type Rect struct {
	X, Y, W, H float32
}
