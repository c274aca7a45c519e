package sketch

import (
	"errors"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/sketchbox/internal/engine/camera"
	"github.com/Faultbox/sketchbox/internal/engine/debug"
	"github.com/Faultbox/sketchbox/internal/engine/input"
)

// Resize syncs the camera, surface and controls with the host size.
func (s *Sketch) Resize() {
	w, h := s.deps.Host.Size()
	s.View.Width, s.View.Height = w, h

	if w > 0 && h > 0 {
		s.Camera.Aspect = float32(w) / float32(h)
		s.Camera.UpdateProjectionMatrix()
	}
	s.Renderer.SetSize(w, h)
	s.Renderer.SetPixelRatio(s.deps.Host.PixelRatio())
	s.Controls.SetViewport(w, h)
	if s.Overlay != nil {
		s.Overlay.Resize(w, h)
	}

	s.log.Debug("resized", zap.Int("width", w), zap.Int("height", h))
}

// ToggleFullscreen leaves fullscreen if the host is in it, else enters it.
func (s *Sketch) ToggleFullscreen() error {
	on := !s.deps.Host.IsFullscreen()
	if err := s.deps.Host.SetFullscreen(on); err != nil {
		s.log.Warn("fullscreen toggle failed", zap.Error(err))
		return err
	}
	return nil
}

// MouseMove records the pointer in normalized view coordinates.
func (s *Sketch) MouseMove(x, y int) {
	if s.View.Width <= 0 || s.View.Height <= 0 {
		return
	}
	s.View.Mouse[0] = float32(x)/float32(s.View.Width) - 0.5
	s.View.Mouse[1] = 0.5 - float32(y)/float32(s.View.Height)
}

func (s *Sketch) onKeyDown(ev input.Event) {
	switch {
	case ev.Key == input.KeySpace && ev.Ctrl():
		// a held chord would otherwise flip the window every repeat
		if !ev.Repeat {
			_ = s.ToggleFullscreen()
		}
	case ev.Key == input.KeyEscape:
		s.Stop()
	case ev.Key == input.KeyD && ev.Ctrl():
		s.dumpGUI()
	case ev.Key == input.KeyO && ev.Ctrl():
		if !ev.Repeat {
			s.openModel()
		}
	case ev.Key == input.KeyF12:
		if !ev.Repeat {
			_, _ = s.Screenshot()
		}
	case ev.Key == input.KeyLeft:
		s.Controls.KeyPan(-1, 0)
	case ev.Key == input.KeyRight:
		s.Controls.KeyPan(1, 0)
	case ev.Key == input.KeyUp:
		s.Controls.KeyPan(0, 1)
	case ev.Key == input.KeyDown:
		s.Controls.KeyPan(0, -1)
	}
}

func (s *Sketch) onPointerDown(ev input.Event) {
	var b camera.MouseButton
	switch ev.Button {
	case input.ButtonLeft:
		b = camera.ButtonLeft
	case input.ButtonMiddle:
		b = camera.ButtonMiddle
	case input.ButtonRight:
		b = camera.ButtonRight
	default:
		return
	}
	s.Controls.PointerDown(b, float32(ev.MouseX), float32(ev.MouseY))
}

func (s *Sketch) onPointerMove(ev input.Event) {
	s.Controls.PointerMove(float32(ev.MouseX), float32(ev.MouseY))
}

func (s *Sketch) onPointerUp(input.Event) {
	s.Controls.PointerUp()
}

func (s *Sketch) onWheel(ev input.Event) {
	s.Controls.Wheel(ev.WheelY)
}

func (s *Sketch) dumpGUI() {
	data, err := s.GUI.DumpYAML()
	if err != nil {
		s.log.Warn("gui dump failed", zap.Error(err))
		return
	}
	s.log.Info("gui state", zap.Int("width", s.GUI.Width), zap.ByteString("yaml", data))
}

// openModel asks for a file off the main thread and loads the choice.
func (s *Sketch) openModel() {
	go func() {
		path, err := s.deps.OpenFile()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				s.log.Warn("open dialog failed", zap.Error(err))
			}
			return
		}
		if path == "" {
			return
		}
		s.post(func() {
			s.LoadModel(path, formatForPath(path))
		})
	}()
}

func openModelDialog() (string, error) {
	return dialog.File().
		Filter("3D Models", "gltf", "glb", "fbx").
		Filter("All Files", "*").
		Title("Open Model").
		Load()
}

// ErrNoPixelReader is returned by Screenshot when the surface cannot read
// back frames.
var ErrNoPixelReader = errors.New("surface cannot read pixels")

// Screenshot saves the last rendered frame when the surface can read it back.
// Failures are logged as well as returned.
func (s *Sketch) Screenshot() (string, error) {
	path, err := s.screenshot()
	if err != nil {
		s.log.Warn("screenshot failed", zap.Error(err))
		return "", err
	}
	s.log.Info("screenshot saved", zap.String("path", path))
	return path, nil
}

func (s *Sketch) screenshot() (string, error) {
	pr, ok := s.Renderer.(PixelReader)
	if !ok {
		return "", ErrNoPixelReader
	}
	img := pr.ReadPixels()
	if img == nil {
		return "", debug.ErrNoImage
	}
	return s.screenshots.Save(img)
}
