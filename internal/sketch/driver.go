package sketch

import (
	"fmt"
	"strconv"

	"github.com/Faultbox/sketchbox/internal/engine/loop"
	"github.com/Faultbox/sketchbox/internal/engine/ui2d"
)

// AnimateFunc is the per-frame hook. elapsed is seconds since start and
// delta seconds since the previous frame.
type AnimateFunc func(elapsed, delta float64)

// SetAnimate replaces the per-frame hook. nil restores the no-op.
func (s *Sketch) SetAnimate(fn AnimateFunc) {
	s.animate = fn
}

// Update advances one frame: hook, stats, controls, render, then the 2D
// overlay on top.
func (s *Sketch) Update() {
	now := s.clock.Now()
	elapsed := s.clock.Elapsed()
	delta := loop.Delta(s.then, now)
	s.then = now

	if s.animate != nil {
		s.animate(elapsed, delta)
	}
	s.Stats.Update()
	s.Controls.Update()
	s.Renderer.Render(s.Scene, s.Camera)
	if s.Overlay != nil {
		s.Overlay.Draw(s.overlayFrame())
	}
}

// overlayFrame snapshots the stats readout and the panel entries.
func (s *Sketch) overlayFrame() ui2d.Frame {
	f := ui2d.Frame{
		PanelTitle: panelTitle,
		PanelWidth: float32(s.GUI.Width),
	}
	if s.Stats.Enabled {
		f.Stats = s.Stats.Readout()
	}
	for _, name := range s.GUI.Keys() {
		v, _ := s.GUI.Get(name)
		f.Rows = append(f.Rows, ui2d.Row{Name: name, Value: formatValue(v)})
	}
	return f
}

func formatValue(v any) string {
	switch v := v.(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', 4, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', 4, 32)
	default:
		return fmt.Sprint(v)
	}
}
