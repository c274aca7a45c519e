// Package stats provides the frame-rate overlay.
package stats

import (
	"fmt"
	"runtime"
	"time"
)

const (
	// fpsWindow is how often the frame rate is recomputed, in seconds.
	fpsWindow = 0.5
	// memWindow is how often memory stats are sampled, in seconds.
	memWindow = 2.0
)

// Sink displays the overlay text. The SDL window satisfies it via its title.
type Sink interface {
	SetTitle(title string)
}

// Stats tracks frame timing and shows it on a Sink.
type Stats struct {
	sink  Sink
	label string
	now   func() time.Time
	last  time.Time

	frameCount    int
	fps           float64
	frameTime     float64 // ms
	fpsUpdateTime float64 // seconds since last FPS update
	frameAccum    int

	memStats      runtime.MemStats
	memUpdateTime float64

	Enabled bool
}

// New attaches an overlay to sink. label prefixes the readout.
// A nil now uses time.Now.
func New(sink Sink, label string, now func() time.Time) *Stats {
	if now == nil {
		now = time.Now
	}
	return &Stats{
		sink:    sink,
		label:   label,
		now:     now,
		Enabled: true,
	}
}

// Update records one frame. It is called once per tick.
func (s *Stats) Update() {
	t := s.now()
	if s.last.IsZero() {
		s.last = t
		s.frameCount++
		return
	}
	deltaMs := float64(t.Sub(s.last)) / float64(time.Millisecond)
	if deltaMs < 0 {
		deltaMs = 0
	}
	s.last = t

	s.frameCount++
	s.frameTime = deltaMs
	s.frameAccum++
	s.fpsUpdateTime += deltaMs / 1000.0

	if s.fpsUpdateTime >= fpsWindow {
		s.fps = float64(s.frameAccum) / s.fpsUpdateTime
		s.frameAccum = 0
		s.fpsUpdateTime = 0
		s.show()
	}

	s.memUpdateTime += deltaMs / 1000.0
	if s.memUpdateTime >= memWindow {
		runtime.ReadMemStats(&s.memStats)
		s.memUpdateTime = 0
	}
}

func (s *Stats) show() {
	if !s.Enabled || s.sink == nil {
		return
	}
	s.sink.SetTitle(s.String())
}

// FPS returns the frame rate over the last window.
func (s *Stats) FPS() float64 { return s.fps }

// FrameTime returns the last frame duration in milliseconds.
func (s *Stats) FrameTime() float64 { return s.frameTime }

// Frames returns the number of frames recorded.
func (s *Stats) Frames() int { return s.frameCount }

// MemoryMB returns heap in use at the last sample.
func (s *Stats) MemoryMB() float64 {
	return float64(s.memStats.HeapAlloc) / (1024 * 1024)
}

// Readout formats the numbers without the label.
func (s *Stats) Readout() string {
	out := fmt.Sprintf("%.0f FPS | %.1f ms", s.fps, s.frameTime)
	if s.memStats.HeapAlloc > 0 {
		out += fmt.Sprintf(" | %.1f MB", s.MemoryMB())
	}
	return out
}

// String formats the readout behind the label.
func (s *Stats) String() string {
	if s.label == "" {
		return s.Readout()
	}
	return s.label + " | " + s.Readout()
}
