package stats

import (
	"strings"
	"testing"
	"time"
)

type titleSink struct {
	titles []string
}

func (s *titleSink) SetTitle(title string) { s.titles = append(s.titles, title) }

type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	t := c.t
	c.t = c.t.Add(c.step)
	return t
}

func TestFPSOverWindow(t *testing.T) {
	sink := &titleSink{}
	clk := &stepClock{t: time.Unix(0, 0), step: 125 * time.Millisecond}
	s := New(sink, "", clk.now)

	for i := 0; i < 5; i++ {
		s.Update()
	}

	if got := s.FPS(); got != 8 {
		t.Errorf("FPS = %v, want 8", got)
	}
	if got := s.FrameTime(); got != 125 {
		t.Errorf("FrameTime = %v, want 125", got)
	}
	if s.Frames() != 5 {
		t.Errorf("Frames = %d, want 5", s.Frames())
	}
	if len(sink.titles) != 1 {
		t.Fatalf("expected one readout after 0.5s, got %d", len(sink.titles))
	}
	if sink.titles[0] != "8 FPS | 125.0 ms" {
		t.Errorf("readout = %q", sink.titles[0])
	}
}

func TestLabelPrefixesReadout(t *testing.T) {
	sink := &titleSink{}
	clk := &stepClock{t: time.Unix(0, 0), step: 500 * time.Millisecond}
	s := New(sink, "Sketch", clk.now)

	s.Update()
	s.Update()

	if len(sink.titles) != 1 || !strings.HasPrefix(sink.titles[0], "Sketch | 2 FPS") {
		t.Errorf("titles = %v", sink.titles)
	}
	if r := s.Readout(); !strings.HasPrefix(r, "2 FPS") {
		t.Errorf("Readout = %q, want it without the label", r)
	}
}

func TestDisabledOverlayKeepsCounting(t *testing.T) {
	sink := &titleSink{}
	clk := &stepClock{t: time.Unix(0, 0), step: time.Second}
	s := New(sink, "", clk.now)
	s.Enabled = false

	for i := 0; i < 5; i++ {
		s.Update()
	}
	if len(sink.titles) != 0 {
		t.Errorf("disabled overlay wrote %d titles", len(sink.titles))
	}
	if s.FPS() != 1 {
		t.Errorf("FPS = %v, want 1", s.FPS())
	}
}

func TestBackwardsClockIsClamped(t *testing.T) {
	clk := &stepClock{t: time.Unix(100, 0), step: -time.Second}
	s := New(nil, "", clk.now)

	s.Update()
	s.Update()
	if s.FrameTime() != 0 {
		t.Errorf("FrameTime = %v, want 0", s.FrameTime())
	}
}
