// Package renderer provides the OpenGL forward renderer.
// It must be created and used on the thread that owns the GL context.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/sketchbox/internal/engine/camera"
	"github.com/Faultbox/sketchbox/internal/engine/scene"
	"github.com/Faultbox/sketchbox/internal/engine/shader"
	"github.com/Faultbox/sketchbox/internal/engine/shadow"
	"github.com/Faultbox/sketchbox/internal/logger"
)

// Info reports what the last Render drew.
type Info struct {
	Calls      int
	Triangles  int
	Geometries int
}

type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
	indexed       bool
}

// Renderer draws a scene graph through a perspective camera.
type Renderer struct {
	opts Options
	log  *zap.Logger

	standard *shader.Program
	depth    *shader.Program

	shadowMap     *shadow.Map
	lightViewProj mgl32.Mat4

	meshes map[*scene.Geometry]*gpuMesh

	width, height int
	pixelRatio    float32
	info          Info
}

// New creates a renderer. The GL context must be current.
func New(opts Options) (*Renderer, error) {
	r := &Renderer{
		opts:       opts,
		log:        logger.Named("renderer"),
		meshes:     make(map[*scene.Geometry]*gpuMesh),
		pixelRatio: 1,
	}
	if r.opts.ToneMappingExposure == 0 {
		r.opts.ToneMappingExposure = 1
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.Stringer("tone_mapping", opts.ToneMapping),
		zap.Bool("shadows", opts.ShadowMap.Enabled),
	)

	var err error
	r.standard, err = shader.NewProgram(shader.StandardVertexShader, shader.StandardFragmentShader, r.opts.defines())
	if err != nil {
		return nil, fmt.Errorf("standard shader: %w", err)
	}
	if opts.ShadowMap.Enabled {
		r.depth, err = shader.NewProgram(shader.DepthVertexShader, shader.DepthFragmentShader, nil)
		if err != nil {
			r.standard.Delete()
			return nil, fmt.Errorf("depth shader: %w", err)
		}
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	if opts.Antialias {
		gl.Enable(gl.MULTISAMPLE)
	}
	return r, nil
}

// SetSize sets the logical output size and the viewport.
func (r *Renderer) SetSize(width, height int) {
	r.width, r.height = width, height
	w, h := r.DrawingBufferSize()
	gl.Viewport(0, 0, w, h)
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int32("buffer_width", w),
		zap.Int32("buffer_height", h),
	)
}

// SetPixelRatio sets the device pixel ratio, capped by Options.MaxPixelRatio.
func (r *Renderer) SetPixelRatio(ratio float32) {
	r.pixelRatio = clampRatio(ratio, r.opts.MaxPixelRatio)
	w, h := r.DrawingBufferSize()
	gl.Viewport(0, 0, w, h)
}

// PixelRatio returns the effective pixel ratio.
func (r *Renderer) PixelRatio() float32 {
	return r.pixelRatio
}

// DrawingBufferSize returns the framebuffer size in pixels.
func (r *Renderer) DrawingBufferSize() (int32, int32) {
	return drawingBufferSize(r.width, r.height, r.pixelRatio)
}

// Info returns statistics for the last frame.
func (r *Renderer) Info() Info {
	return r.info
}

// Render draws s as seen by cam into the default framebuffer.
func (r *Renderer) Render(s *scene.Scene, cam *camera.PerspectiveCamera) {
	root := s.Root()
	root.UpdateMatrixWorld()
	f := collect(root)
	r.info = Info{}

	shadowed := r.opts.ShadowMap.Enabled && r.depth != nil && f.shadowLight >= 0 && f.casters > 0
	if shadowed {
		shadowed = r.renderShadowPass(root, f)
	}

	w, h := r.DrawingBufferSize()
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, w, h)
	gl.ClearColor(s.Background.R, s.Background.G, s.Background.B, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.Enable(gl.DEPTH_TEST)

	p := r.standard
	p.Use()
	viewProj := cam.ViewProjection()
	gl.UniformMatrix4fv(p.Uniform("uViewProj"), 1, false, &viewProj[0])
	gl.Uniform3fv(p.Uniform("uCameraPos"), 1, &cam.Position[0])
	gl.Uniform3fv(p.Uniform("uAmbient"), 1, &f.ambient[0])
	gl.Uniform1f(p.Uniform("uExposure"), r.opts.ToneMappingExposure)
	r.setLightUniforms(f, shadowed)

	for _, item := range f.items {
		m := r.upload(item.mesh.Geometry)
		mat := item.mesh.Material
		if mat == nil {
			mat = scene.NewStandardMaterial()
		}

		switch mat.Side {
		case scene.DoubleSide:
			gl.Disable(gl.CULL_FACE)
		case scene.BackSide:
			gl.Enable(gl.CULL_FACE)
			gl.CullFace(gl.FRONT)
		default:
			gl.Enable(gl.CULL_FACE)
			gl.CullFace(gl.BACK)
		}

		world := item.world
		normal := normalMatrix(world)
		gl.UniformMatrix4fv(p.Uniform("uModel"), 1, false, &world[0])
		gl.UniformMatrix3fv(p.Uniform("uNormalMatrix"), 1, false, &normal[0])
		color, emissive := mat.Color.Vec(), mat.Emissive.Vec()
		gl.Uniform3fv(p.Uniform("uColor"), 1, &color[0])
		gl.Uniform3fv(p.Uniform("uEmissive"), 1, &emissive[0])
		gl.Uniform1f(p.Uniform("uRoughness"), mat.Roughness)
		gl.Uniform1f(p.Uniform("uMetalness"), mat.Metalness)
		gl.Uniform1i(p.Uniform("uDoubleSided"), boolInt(mat.Side == scene.DoubleSide))
		gl.Uniform1i(p.Uniform("uReceiveShadow"), boolInt(item.node.ReceiveShadow))

		r.draw(m)
		r.info.Triangles += item.mesh.Geometry.TriangleCount()
	}

	gl.BindVertexArray(0)
	gl.CullFace(gl.BACK)
	r.info.Geometries = len(r.meshes)
}

func (r *Renderer) setLightUniforms(f frame, shadowed bool) {
	p := r.standard
	gl.Uniform1i(p.Uniform("uDirLightCount"), int32(len(f.lights)))
	if len(f.lights) > 0 {
		dirs := make([]float32, 0, len(f.lights)*3)
		colors := make([]float32, 0, len(f.lights)*3)
		for _, l := range f.lights {
			dirs = append(dirs, l.direction[:]...)
			colors = append(colors, l.color[:]...)
		}
		gl.Uniform3fv(p.Uniform("uDirLightDir"), int32(len(f.lights)), &dirs[0])
		gl.Uniform3fv(p.Uniform("uDirLightColor"), int32(len(f.lights)), &colors[0])
	}

	gl.Uniform1i(p.Uniform("uShadowMap"), 1)
	if !shadowed {
		gl.Uniform1i(p.Uniform("uShadowLight"), -1)
		return
	}
	shadowLight := f.lights[f.shadowLight].light
	gl.Uniform1i(p.Uniform("uShadowLight"), int32(f.shadowLight))
	gl.UniformMatrix4fv(p.Uniform("uLightViewProj"), 1, false, &r.lightViewProj[0])
	gl.Uniform2f(p.Uniform("uShadowMapSize"), float32(r.shadowMap.Width), float32(r.shadowMap.Height))
	gl.Uniform1f(p.Uniform("uShadowBias"), shadowLight.Shadow.Bias)
	r.shadowMap.BindTexture(gl.TEXTURE1)
	gl.ActiveTexture(gl.TEXTURE0)
}

// renderShadowPass draws every caster into the light's depth map.
// It returns false if the map could not be allocated.
func (r *Renderer) renderShadowPass(root *scene.Node, f frame) bool {
	l := f.lights[f.shadowLight]
	width, height := l.light.Shadow.MapWidth, l.light.Shadow.MapHeight
	if width <= 0 {
		width = shadow.DefaultResolution
	}
	if height <= 0 {
		height = shadow.DefaultResolution
	}

	if !r.shadowMap.Matches(width, height) {
		if r.shadowMap != nil {
			r.shadowMap.Destroy()
			r.shadowMap = nil
		}
		sm, err := shadow.NewMap(width, height)
		if err != nil {
			r.log.Warn("shadow map unavailable", zap.Error(err))
			return false
		}
		r.shadowMap = sm
	}

	light := *l.light
	if light.Shadow.Camera.Near == light.Shadow.Camera.Far {
		if box, ok := shadow.SceneBounds(root); ok {
			light.Shadow.Camera = shadow.FitCamera(l.node.WorldPosition(), box)
		}
	}
	r.lightViewProj = shadow.LightMatrix(&light, l.node)

	r.shadowMap.Bind()
	r.depth.Use()
	gl.UniformMatrix4fv(r.depth.Uniform("uLightViewProj"), 1, false, &r.lightViewProj[0])
	for _, item := range f.items {
		if !item.node.CastShadow {
			continue
		}
		world := item.world
		gl.UniformMatrix4fv(r.depth.Uniform("uModel"), 1, false, &world[0])
		r.draw(r.upload(item.mesh.Geometry))
	}
	gl.BindVertexArray(0)
	r.shadowMap.Unbind()
	return true
}

func (r *Renderer) draw(m *gpuMesh) {
	gl.BindVertexArray(m.vao)
	if m.indexed {
		gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, m.count)
	}
	r.info.Calls++
}

// upload returns the GPU copy of g, creating it on first use.
// Geometry is treated as immutable once drawn.
func (r *Renderer) upload(g *scene.Geometry) *gpuMesh {
	if m, ok := r.meshes[g]; ok {
		return m
	}

	vertices := interleave(g)
	m := &gpuMesh{count: int32(g.VertexCount())}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	stride := int32(vertexStride * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(2)

	if g.Indexed() {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, unsafe.Pointer(&g.Indices[0]), gl.STATIC_DRAW)
		m.count = int32(len(g.Indices))
		m.indexed = true
	}

	gl.BindVertexArray(0)
	r.meshes[g] = m
	return m
}

// ReadPixels returns the default framebuffer as a top-down image.
func (r *Renderer) ReadPixels() *image.RGBA {
	w, h := r.DrawingBufferSize()
	pixels := make([]byte, int(w)*int(h)*4)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.ReadBuffer(gl.BACK)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, w, h, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return flipRows(pixels, int(w), int(h))
}

// flipRows converts bottom-up GL rows into a top-down image.
func flipRows(pixels []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}
	return img
}

// Close releases every GPU resource the renderer created.
func (r *Renderer) Close() {
	r.log.Info("closing renderer", zap.Int("geometries", len(r.meshes)))
	for g, m := range r.meshes {
		if m.vao != 0 {
			gl.DeleteVertexArrays(1, &m.vao)
		}
		if m.vbo != 0 {
			gl.DeleteBuffers(1, &m.vbo)
		}
		if m.ebo != 0 {
			gl.DeleteBuffers(1, &m.ebo)
		}
		delete(r.meshes, g)
	}
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
		r.shadowMap = nil
	}
	if r.depth != nil {
		r.depth.Delete()
	}
	if r.standard != nil {
		r.standard.Delete()
	}
}

func clampRatio(ratio, limit float32) float32 {
	if ratio <= 0 {
		ratio = 1
	}
	if limit > 0 && ratio > limit {
		ratio = limit
	}
	return ratio
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
