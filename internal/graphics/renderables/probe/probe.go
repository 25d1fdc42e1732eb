package probe

import (
	"polyterrain/internal/graphics"
	renderer "polyterrain/internal/graphics/renderer"
	"polyterrain/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Probe outlines the last ground point picked with the mouse.
type Probe struct {
	shader *graphics.Shader
	vao    uint32
	vbo    uint32

	has    bool
	point  mgl32.Vec3
	normal mgl32.Vec3
}

// NewProbe creates a new probe renderable
func NewProbe() *Probe {
	return &Probe{}
}

// Init initializes the probe rendering system
func (p *Probe) Init() error {
	var err error
	p.shader, err = graphics.LoadShader("probe")
	if err != nil {
		return err
	}
	p.setupVAO()
	return nil
}

// Set moves the outline to point. normal is drawn as a short line.
func (p *Probe) Set(point, normal mgl32.Vec3) {
	p.has = true
	p.point = point
	p.normal = normal
	p.uploadNormal()
}

// Clear hides the outline.
func (p *Probe) Clear() { p.has = false }

// Point returns the probed point, if any.
func (p *Probe) Point() (mgl32.Vec3, bool) { return p.point, p.has }

// Render renders the outline at the probed point
func (p *Probe) Render(ctx renderer.RenderContext) {
	if !p.has {
		return
	}
	defer profiling.Track("renderer.renderProbe")()

	p.shader.Use()
	p.shader.SetMatrix4("proj", &ctx.Proj[0])
	p.shader.SetMatrix4("view", &ctx.View[0])

	model := mgl32.Translate3D(p.point.X(), p.point.Y(), p.point.Z()).Mul4(mgl32.Scale3D(2, 2, 2))
	p.shader.SetMatrix4("model", &model[0])
	p.shader.SetVector3("color", 0.0, 0.0, 0.0)

	gl.BindVertexArray(p.vao)
	gl.LineWidth(1.0)
	gl.DrawArrays(gl.LINES, 0, 24)

	identity := mgl32.Ident4()
	p.shader.SetMatrix4("model", &identity[0])
	p.shader.SetVector3("color", 1.0, 0.2, 0.2)
	gl.DrawArrays(gl.LINES, 24, 2)
	gl.BindVertexArray(0)
}

// Dispose cleans up OpenGL resources
func (p *Probe) Dispose() {
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
	}
	if p.vbo != 0 {
		gl.DeleteBuffers(1, &p.vbo)
	}
	p.shader.Delete()
}

// cube edges followed by two slots for the normal line
var outline = []float32{
	-0.5, -0.5, 0.5, 0.5, -0.5, 0.5,
	0.5, -0.5, 0.5, 0.5, 0.5, 0.5,
	0.5, 0.5, 0.5, -0.5, 0.5, 0.5,
	-0.5, 0.5, 0.5, -0.5, -0.5, 0.5,

	-0.5, -0.5, -0.5, 0.5, -0.5, -0.5,
	0.5, -0.5, -0.5, 0.5, 0.5, -0.5,
	0.5, 0.5, -0.5, -0.5, 0.5, -0.5,
	-0.5, 0.5, -0.5, -0.5, -0.5, -0.5,

	-0.5, -0.5, 0.5, -0.5, -0.5, -0.5,
	0.5, -0.5, 0.5, 0.5, -0.5, -0.5,
	0.5, 0.5, 0.5, 0.5, 0.5, -0.5,
	-0.5, 0.5, 0.5, -0.5, 0.5, -0.5,

	0, 0, 0, 0, 0, 0,
}

func (p *Probe) setupVAO() {
	gl.GenVertexArrays(1, &p.vao)
	gl.BindVertexArray(p.vao)

	gl.GenBuffers(1, &p.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(outline)*4, gl.Ptr(outline), gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.BindVertexArray(0)
}

func (p *Probe) uploadNormal() {
	if p.vbo == 0 {
		return
	}
	tip := p.point.Add(p.normal.Mul(6))
	line := []float32{p.point.X(), p.point.Y(), p.point.Z(), tip.X(), tip.Y(), tip.Z()}
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 24*3*4, len(line)*4, gl.Ptr(line))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}
