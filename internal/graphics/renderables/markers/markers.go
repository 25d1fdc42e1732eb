package markers

import (
	"polyterrain/internal/config"
	"polyterrain/internal/graphics"
	renderer "polyterrain/internal/graphics/renderer"
	"polyterrain/internal/placement"
	"polyterrain/internal/profiling"
	"polyterrain/internal/terrain"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// growSeconds is how long an animated marker takes to reach full size.
const growSeconds = 0.4

// floats per instance: offset xyz, size, rgba
const instanceStride = 8

// cubeVertices is a unit cube standing on the origin, position + normal.
var cubeVertices = []float32{
	// +z
	-0.5, 0, 0.5, 0, 0, 1, 0.5, 0, 0.5, 0, 0, 1, 0.5, 1, 0.5, 0, 0, 1,
	0.5, 1, 0.5, 0, 0, 1, -0.5, 1, 0.5, 0, 0, 1, -0.5, 0, 0.5, 0, 0, 1,
	// -z
	0.5, 0, -0.5, 0, 0, -1, -0.5, 0, -0.5, 0, 0, -1, -0.5, 1, -0.5, 0, 0, -1,
	-0.5, 1, -0.5, 0, 0, -1, 0.5, 1, -0.5, 0, 0, -1, 0.5, 0, -0.5, 0, 0, -1,
	// +x
	0.5, 0, 0.5, 1, 0, 0, 0.5, 0, -0.5, 1, 0, 0, 0.5, 1, -0.5, 1, 0, 0,
	0.5, 1, -0.5, 1, 0, 0, 0.5, 1, 0.5, 1, 0, 0, 0.5, 0, 0.5, 1, 0, 0,
	// -x
	-0.5, 0, -0.5, -1, 0, 0, -0.5, 0, 0.5, -1, 0, 0, -0.5, 1, 0.5, -1, 0, 0,
	-0.5, 1, 0.5, -1, 0, 0, -0.5, 1, -0.5, -1, 0, 0, -0.5, 0, -0.5, -1, 0, 0,
	// +y
	-0.5, 1, 0.5, 0, 1, 0, 0.5, 1, 0.5, 0, 1, 0, 0.5, 1, -0.5, 0, 1, 0,
	0.5, 1, -0.5, 0, 1, 0, -0.5, 1, -0.5, 0, 1, 0, -0.5, 1, 0.5, 0, 1, 0,
	// -y
	-0.5, 0, -0.5, 0, -1, 0, 0.5, 0, -0.5, 0, -1, 0, 0.5, 0, 0.5, 0, -1, 0,
	0.5, 0, 0.5, 0, -1, 0, -0.5, 0, 0.5, 0, -1, 0, -0.5, 0, -0.5, 0, -1, 0,
}

var kindSize = map[placement.Kind]float32{
	placement.KindTree:   3,
	placement.KindRock:   1.5,
	placement.KindGrass:  0.6,
	placement.KindFlower: 0.5,
	placement.KindLamp:   1,
	placement.KindHouse:  8,
}

var kindColor = map[placement.Kind]mgl32.Vec4{
	placement.KindTree:   {0.12, 0.45, 0.16, 1},
	placement.KindRock:   {0.5, 0.5, 0.5, 1},
	placement.KindGrass:  {0.45, 0.75, 0.3, 1},
	placement.KindFlower: {0.9, 0.5, 0.7, 1},
	placement.KindLamp:   {0.98, 0.86, 0.25, 1},
	placement.KindHouse:  {0.7, 0.18, 0.16, 1},
}

// marker is a spawned instance. It doubles as its own terrain.Handle.
type marker struct {
	owner  *Markers
	offset mgl32.Vec3
	size   float32
	color  mgl32.Vec4
	age    float32
	grow   bool
	dead   bool
}

func (m *marker) Dispose() {
	if m.dead {
		return
	}
	m.dead = true
	m.owner.dirty = true
}

// Markers draws one small cube per placed instance. It implements
// terrain.InstanceConsumer.
type Markers struct {
	shader *graphics.Shader
	vao    uint32
	vbo    uint32
	ivbo   uint32

	live    []*marker
	scratch []float32
	dirty   bool
}

var _ terrain.InstanceConsumer = (*Markers)(nil)

// NewMarkers creates the instance marker renderable
func NewMarkers() *Markers {
	return &Markers{}
}

// Init compiles the shader and uploads the cube
func (mk *Markers) Init() error {
	var err error
	mk.shader, err = graphics.LoadShader("marker")
	if err != nil {
		return err
	}

	gl.GenVertexArrays(1, &mk.vao)
	gl.BindVertexArray(mk.vao)

	gl.GenBuffers(1, &mk.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mk.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(cubeVertices)*4, gl.Ptr(cubeVertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 6*4, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 6*4, 3*4)

	gl.GenBuffers(1, &mk.ivbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, mk.ivbo)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 3, gl.FLOAT, false, instanceStride*4, 0)
	gl.VertexAttribDivisor(2, 1)
	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointerWithOffset(3, 1, gl.FLOAT, false, instanceStride*4, 3*4)
	gl.VertexAttribDivisor(3, 1)
	gl.EnableVertexAttribArray(4)
	gl.VertexAttribPointerWithOffset(4, 4, gl.FLOAT, false, instanceStride*4, 4*4)
	gl.VertexAttribDivisor(4, 1)

	gl.BindVertexArray(0)
	return nil
}

// Spawn adds a marker for inst.
func (mk *Markers) Spawn(inst placement.PlacedInstance) (terrain.Handle, error) {
	size, ok := kindSize[inst.Kind]
	if !ok {
		size = 1
	}
	// scale y carries the per-instance size variation
	size *= float32(inst.Scale.Y())
	if size <= 0 {
		size = 0.1
	}
	color := kindColor[inst.Kind]
	if inst.HasColor {
		color = inst.Color
	}
	m := &marker{
		owner:  mk,
		offset: mgl32.Vec3{float32(inst.Position.X()), float32(inst.Position.Y()), float32(inst.Position.Z())},
		size:   size,
		color:  color,
		grow:   inst.Animate,
	}
	mk.live = append(mk.live, m)
	mk.dirty = true
	return m, nil
}

// Len reports how many markers are alive.
func (mk *Markers) Len() int {
	n := 0
	for _, m := range mk.live {
		if !m.dead {
			n++
		}
	}
	return n
}

// Render draws all markers with one instanced call
func (mk *Markers) Render(ctx renderer.RenderContext) {
	if !config.GetShowInstances() {
		return
	}
	defer profiling.Track("renderer.renderMarkers")()

	growing := mk.advance(float32(ctx.DT))
	if mk.dirty || growing {
		mk.upload()
	}
	count := len(mk.scratch) / instanceStride
	if count == 0 {
		return
	}

	mk.shader.Use()
	mk.shader.SetMatrix4("proj", &ctx.Proj[0])
	mk.shader.SetMatrix4("view", &ctx.View[0])
	mk.shader.SetVector3("lightDir", ctx.LightDir.X(), ctx.LightDir.Y(), ctx.LightDir.Z())

	gl.BindVertexArray(mk.vao)
	gl.DrawArraysInstanced(gl.TRIANGLES, 0, int32(len(cubeVertices)/6), int32(count))
	gl.BindVertexArray(0)
}

// advance ages animated markers and drops disposed ones. It reports
// whether any marker is still growing.
func (mk *Markers) advance(dt float32) bool {
	growing := false
	kept := mk.live[:0]
	for _, m := range mk.live {
		if m.dead {
			continue
		}
		if m.grow && m.age < growSeconds {
			m.age += dt
			growing = true
		}
		kept = append(kept, m)
	}
	clear(mk.live[len(kept):])
	mk.live = kept
	return growing
}

func (mk *Markers) upload() {
	mk.scratch = mk.scratch[:0]
	for _, m := range mk.live {
		s := m.size
		if m.grow {
			s *= mgl32.Clamp(m.age/growSeconds, 0, 1)
		}
		mk.scratch = append(mk.scratch,
			m.offset.X(), m.offset.Y(), m.offset.Z(), s,
			m.color.X(), m.color.Y(), m.color.Z(), m.color.W())
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, mk.ivbo)
	if len(mk.scratch) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(mk.scratch)*4, gl.Ptr(mk.scratch), gl.DYNAMIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	mk.dirty = false
}

// Dispose cleans up OpenGL resources
func (mk *Markers) Dispose() {
	if mk.vao != 0 {
		gl.DeleteVertexArrays(1, &mk.vao)
	}
	if mk.vbo != 0 {
		gl.DeleteBuffers(1, &mk.vbo)
	}
	if mk.ivbo != 0 {
		gl.DeleteBuffers(1, &mk.ivbo)
	}
	mk.shader.Delete()
}
