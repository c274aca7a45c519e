package ui2d

// Overlay placement in screen pixels.
const (
	statsPadding = 4
	panelMargin  = 15
)

// Row is one name/value line of the panel.
type Row struct {
	Name, Value string
}

// Frame is what the overlay shows for one tick.
type Frame struct {
	// Stats is the frame-rate readout. Empty hides it.
	Stats string

	PanelTitle string
	// PanelWidth of zero hides the panel.
	PanelWidth float32
	Rows       []Row
}

// Layout queues f on c: the stats readout in the top-left corner and the
// panel along the top-right edge.
func Layout(c *Context, f Frame) {
	c.Begin()

	if f.Stats != "" {
		b := c.Batch()
		w, h := b.MeasureText(f.Stats, 1)
		b.DrawRect(0, 0, w+statsPadding*2, h+statsPadding*2, ColorStatsBg)
		b.DrawText(statsPadding, statsPadding, f.Stats, 1, ColorStatsText)
	}

	if f.PanelWidth > 0 {
		screenW, _ := c.ScreenSize()
		x := screenW - f.PanelWidth - panelMargin
		if x < 0 {
			x = 0
		}
		c.BeginWindow(x, 0, f.PanelWidth, c.WindowHeight(len(f.Rows)), f.PanelTitle)
		for _, r := range f.Rows {
			c.Property(r.Name, r.Value)
		}
		c.EndWindow()
	}
}
