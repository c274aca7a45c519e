// Package sketch wires the scene, camera, renderer, controls and loop into a
// running interactive sketch.
package sketch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/sketchbox/internal/config"
	"github.com/Faultbox/sketchbox/internal/engine/camera"
	"github.com/Faultbox/sketchbox/internal/engine/debug"
	"github.com/Faultbox/sketchbox/internal/engine/input"
	"github.com/Faultbox/sketchbox/internal/engine/loop"
	"github.com/Faultbox/sketchbox/internal/engine/renderer"
	"github.com/Faultbox/sketchbox/internal/engine/scene"
	"github.com/Faultbox/sketchbox/internal/engine/stats"
	"github.com/Faultbox/sketchbox/internal/engine/texture"
	"github.com/Faultbox/sketchbox/internal/engine/ui2d"
	"github.com/Faultbox/sketchbox/internal/gui"
	"github.com/Faultbox/sketchbox/internal/loader"
	"github.com/Faultbox/sketchbox/internal/logger"
)

// Fixed scene setup.
const (
	cameraFOV      = 50
	cameraNear     = 0.1
	cameraFar      = 100
	cameraDistance = 30
	background     = 0x111111
	postQueueSize  = 64
	screenshotDir  = "screenshots"
	panelTitle     = "Controls"
)

// Host is the window the sketch draws into.
type Host interface {
	Size() (int, int)
	PixelRatio() float32
	IsFullscreen() bool
	SetFullscreen(on bool) error
	SetTitle(title string)
	SwapBuffers()
}

// Surface renders a scene through a camera.
type Surface interface {
	SetSize(width, height int)
	SetPixelRatio(ratio float32)
	Render(s *scene.Scene, cam *camera.PerspectiveCamera)
	Close()
}

// Overlay draws 2D readouts over the rendered frame.
type Overlay interface {
	Resize(width, height int)
	Draw(f ui2d.Frame)
	Close()
}

// PixelReader is implemented by surfaces that can read back the last frame.
type PixelReader interface {
	ReadPixels() *image.RGBA
}

// Deps are the platform pieces a Sketch is built on.
type Deps struct {
	Host        Host
	Events      input.Source
	NewRenderer func(renderer.Options) (Surface, error)
	// NewOverlay creates the in-window stats readout and panel. Nil leaves
	// the readout in the host title only.
	NewOverlay func(width, height int) (Overlay, error)
	// Now defaults to time.Now.
	Now loop.NowFunc
	// OpenFile asks the user for a model path. Defaults to a native dialog.
	OpenFile func() (string, error)
}

// ViewState is the last observed window size and normalized pointer position.
type ViewState struct {
	Width, Height int
	// Mouse is in [-0.5, 0.5] on both axes, +y up.
	Mouse mgl32.Vec2
}

// Sketch is the top-level controller. All methods except Stop must be called
// on the thread owning the GL context.
type Sketch struct {
	cfg  *config.Config
	deps Deps
	log  *zap.Logger

	View  ViewState
	clock *loop.Clock
	then  time.Time

	Scene    *scene.Scene
	Camera   *camera.PerspectiveCamera
	Renderer Surface
	Overlay  Overlay
	Controls *camera.OrbitControls
	Stats    *stats.Stats
	GUI      *gui.Panel

	Manager  *loader.LoadingManager
	RGBE     *loader.RGBELoader
	Textures *loader.TextureLoader
	Cubes    *loader.CubeTextureLoader
	gltf     *loader.GLTFLoader
	fbx      *loader.FBXLoader

	Ground  *scene.Node
	Ambient *scene.Node
	Sun     *scene.Node
	model   *scene.Node

	content    *loader.Future[*scene.Node]
	contentErr error

	animate     AnimateFunc
	loop        *loop.Loop
	listeners   *input.Listeners
	removers    []func()
	posts       chan func()
	closed      chan struct{}
	closeOnce   sync.Once
	screenshots *debug.Screenshots
}

// New builds the sketch: view state, clock, scene, camera, rendering surface,
// controls, overlay, loaders, panel, then scene content and lights. Model
// loading continues in the background.
func New(cfg *config.Config, deps Deps) (*Sketch, error) {
	if deps.Host == nil || deps.NewRenderer == nil {
		return nil, errors.New("sketch: host and renderer factory are required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.OpenFile == nil {
		deps.OpenFile = openModelDialog
	}

	s := &Sketch{
		cfg:         cfg,
		deps:        deps,
		log:         logger.Named("sketch"),
		listeners:   input.NewListeners(),
		posts:       make(chan func(), postQueueSize),
		closed:      make(chan struct{}),
		screenshots: debug.NewScreenshots(screenshotDir, "sketch"),
	}

	w, h := deps.Host.Size()
	s.View = ViewState{Width: w, Height: h}

	s.clock = loop.NewClock(deps.Now)
	s.then = s.clock.Now()

	s.Scene = scene.New()
	s.Scene.Background = scene.NewColorHex(background)

	s.Camera = camera.NewPerspective(cameraFOV, aspect(w, h), cameraNear, cameraFar)
	s.Camera.SetPosition(mgl32.Vec3{0, 0, cameraDistance})

	surface, err := deps.NewRenderer(renderer.Options{
		Antialias:               cfg.Window.MSAA > 0,
		PhysicallyCorrectLights: true,
		ToneMapping:             renderer.ACESFilmicToneMapping,
		ToneMappingExposure:     cfg.Renderer.Exposure,
		OutputEncoding:          texture.SRGBEncoding,
		ShadowMap: renderer.ShadowMapOptions{
			Enabled: cfg.Renderer.Shadows,
			Type:    renderer.PCFSoftShadowMap,
		},
		MaxPixelRatio: cfg.Renderer.MaxPixelRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	s.Renderer = surface
	if deps.NewOverlay != nil {
		overlay, err := deps.NewOverlay(w, h)
		if err != nil {
			surface.Close()
			return nil, fmt.Errorf("failed to create overlay: %w", err)
		}
		s.Overlay = overlay
	}
	s.loop = loop.New(s.tick, loop.NewLimiter(cfg.Window.FPSLimit))

	s.Controls = camera.NewOrbitControls(s.Camera)
	s.Controls.EnableDamping = true
	s.Controls.DampingFactor = cfg.Controls.DampingFactor
	s.on(input.EventMouseDown, s.onPointerDown)
	s.on(input.EventMouseMove, s.onPointerMove)
	s.on(input.EventMouseUp, s.onPointerUp)
	s.on(input.EventMouseWheel, s.onWheel)

	s.Stats = stats.New(deps.Host, cfg.Window.Title, deps.Now)

	s.Manager = loader.NewLoadingManager()
	s.Manager.OnProgress = func(url string, loaded, total int) {
		s.log.Debug("loading", zap.String("url", url), zap.Int("loaded", loaded), zap.Int("total", total))
	}
	s.RGBE = loader.NewRGBELoader(s.Manager)
	s.Textures = loader.NewTextureLoader(s.Manager)
	s.Cubes = loader.NewCubeTextureLoader(s.Manager)
	s.gltf = loader.NewGLTFLoader(s.Manager)
	s.fbx = loader.NewFBXLoader(s.Manager)

	s.GUI = gui.NewPanel(gui.DefaultWidth)

	s.content = s.AddStuff()
	s.AddLights()

	s.Resize()
	s.on(input.EventWindowResize, func(input.Event) { s.Resize() })
	s.on(input.EventKeyDown, s.onKeyDown)
	s.on(input.EventMouseMove, func(ev input.Event) { s.MouseMove(ev.MouseX, ev.MouseY) })
	s.on(input.EventQuit, func(input.Event) { s.Stop() })

	s.log.Info("sketch initialized",
		zap.Int("width", w),
		zap.Int("height", h),
		zap.String("model", cfg.Scene.ModelPath),
		zap.String("format", cfg.Scene.ModelFormat),
	)
	return s, nil
}

func (s *Sketch) on(t input.EventType, h input.Handler) {
	s.removers = append(s.removers, s.listeners.On(t, h))
}

// Run drives the animation loop until Stop, a quit event, or ctx is done.
func (s *Sketch) Run(ctx context.Context) error {
	s.log.Info("starting animation loop")
	err := s.loop.Run(ctx)
	s.log.Info("animation loop stopped", zap.Uint64("ticks", s.loop.Ticks()))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop ends the animation loop after the current tick. Safe from any goroutine.
func (s *Sketch) Stop() {
	s.loop.Stop()
}

// Running reports whether the animation loop is active.
func (s *Sketch) Running() bool {
	return s.loop.Running()
}

// tick is one loop iteration: events, posted work, frame, present.
func (s *Sketch) tick() bool {
	if s.deps.Events != nil {
		s.listeners.Dispatch(s.deps.Events.Poll()...)
	}
	s.drain()
	s.Update()
	s.deps.Host.SwapBuffers()
	return true
}

// post queues fn to run on the main thread at the start of the next tick.
// After Close, posted work is dropped.
func (s *Sketch) post(fn func()) {
	select {
	case s.posts <- fn:
	case <-s.closed:
	}
}

func (s *Sketch) drain() {
	for {
		select {
		case fn := <-s.posts:
			fn()
		default:
			return
		}
	}
}

// Close removes every registered listener and releases the rendering surface.
func (s *Sketch) Close() {
	s.closeOnce.Do(func() {
		s.log.Info("closing sketch")
		s.loop.Stop()
		for _, remove := range s.removers {
			remove()
		}
		s.removers = nil
		close(s.closed)
		if s.Overlay != nil {
			s.Overlay.Close()
		}
		s.Renderer.Close()
	})
}

func aspect(w, h int) float32 {
	if h <= 0 {
		return 1
	}
	return float32(w) / float32(h)
}
