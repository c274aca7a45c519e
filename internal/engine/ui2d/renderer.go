// Package ui2d draws the 2D overlay on top of the rendered scene using
// OpenGL: the frame-rate readout and the settings panel.
package ui2d

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/sketchbox/internal/engine/shader"
)

// Renderer uploads a Batch each frame and draws it over the default
// framebuffer. It requires a current GL context.
type Renderer struct {
	program *shader.Program
	vao     uint32
	vbo     uint32
	atlas   uint32
}

// NewRenderer compiles the overlay program and uploads the font atlas.
func NewRenderer(f *Font) (*Renderer, error) {
	prog, err := shader.NewProgram(shader.UIVertexShader, shader.UIFragmentShader, nil)
	if err != nil {
		return nil, fmt.Errorf("create ui shader: %w", err)
	}
	r := &Renderer{program: prog}
	r.createBuffers()
	r.uploadAtlas(f)
	return r, nil
}

func (r *Renderer) createBuffers() {
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)

	stride := int32(VertexStride * 4)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 2*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, stride, 4*4)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (r *Renderer) uploadAtlas(f *Font) {
	size := f.Atlas.Bounds().Size()

	gl.GenTextures(1, &r.atlas)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(size.X), int32(size.Y), 0,
		gl.RED, gl.UNSIGNED_BYTE, unsafe.Pointer(&f.Atlas.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Draw renders every quad in b, flat quads first and glyphs on top.
func (r *Renderer) Draw(b *Batch) {
	if b.Empty() {
		return
	}

	// Save OpenGL state
	var prevBlend, prevDepth, prevCull int32
	gl.GetIntegerv(gl.BLEND, &prevBlend)
	gl.GetIntegerv(gl.DEPTH_TEST, &prevDepth)
	gl.GetIntegerv(gl.CULL_FACE, &prevCull)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	w, h := b.ScreenSize()
	proj := mgl32.Ortho(0, float32(w), float32(h), 0, -1, 1)

	r.program.Use()
	gl.UniformMatrix4fv(r.program.Uniform("uProjection"), 1, false, &proj[0])
	gl.Uniform1i(r.program.Uniform("uGlyphs"), 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)

	r.drawVertices(b.Solid(), false)
	r.drawVertices(b.Text(), true)

	// Restore state
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.UseProgram(0)

	if prevBlend == gl.FALSE {
		gl.Disable(gl.BLEND)
	}
	if prevDepth == gl.TRUE {
		gl.Enable(gl.DEPTH_TEST)
	}
	if prevCull == gl.TRUE {
		gl.Enable(gl.CULL_FACE)
	}
}

func (r *Renderer) drawVertices(vertices []float32, textured bool) {
	if len(vertices) == 0 {
		return
	}
	flag := int32(0)
	if textured {
		flag = 1
	}
	gl.Uniform1i(r.program.Uniform("uTextured"), flag)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(vertices)/VertexStride))
}

// Close releases renderer resources.
func (r *Renderer) Close() {
	if r.atlas != 0 {
		gl.DeleteTextures(1, &r.atlas)
		r.atlas = 0
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
		r.vao = 0
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
		r.vbo = 0
	}
	r.program.Delete()
}

// HUD is the overlay as the sketch uses it: layout plus GPU drawing.
type HUD struct {
	ctx *Context
	gpu *Renderer
}

// NewHUD creates an overlay for a screen of the given size. It requires a
// current GL context.
func NewHUD(width, height int) (*HUD, error) {
	f := NewFont()
	gpu, err := NewRenderer(f)
	if err != nil {
		return nil, err
	}
	return &HUD{ctx: NewContext(NewBatch(f, width, height)), gpu: gpu}, nil
}

// Resize updates the screen size in window coordinates.
func (h *HUD) Resize(width, height int) {
	h.ctx.Resize(width, height)
}

// Draw lays out f and draws it over the current frame.
func (h *HUD) Draw(f Frame) {
	Layout(h.ctx, f)
	h.gpu.Draw(h.ctx.Batch())
}

// Close releases GPU resources.
func (h *HUD) Close() {
	h.gpu.Close()
}
