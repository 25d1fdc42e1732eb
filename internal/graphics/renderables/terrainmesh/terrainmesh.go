package terrainmesh

import (
	"sort"
	"strings"

	"polyterrain/internal/graphics"
	renderer "polyterrain/internal/graphics/renderer"
	"polyterrain/internal/meshing"
	"polyterrain/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// gpuMesh is one uploaded MeshData.
type gpuMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
	color         mgl32.Vec3
	heightTint    bool
}

func (m *gpuMesh) delete() {
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
}

// TerrainMesh draws the meshes a terrain.Host forwards to it. It must be
// fed from the GL thread.
type TerrainMesh struct {
	shader *graphics.Shader
	meshes map[string]*gpuMesh
	order  []string
}

// NewTerrainMesh creates the terrain renderable
func NewTerrainMesh() *TerrainMesh {
	return &TerrainMesh{meshes: make(map[string]*gpuMesh)}
}

// Init compiles the terrain shader
func (t *TerrainMesh) Init() error {
	var err error
	t.shader, err = graphics.LoadShader("terrain")
	return err
}

// colorFor picks a flat colour from the mesh name.
func colorFor(name string) (mgl32.Vec3, bool) {
	switch {
	case strings.HasPrefix(name, "surface"):
		return mgl32.Vec3{0.32, 0.55, 0.25}, true
	case name == "base":
		return mgl32.Vec3{0.45, 0.33, 0.22}, false
	case name == "road":
		return mgl32.Vec3{0.55, 0.45, 0.32}, false
	case name == "river":
		return mgl32.Vec3{0.2, 0.45, 0.8}, false
	default:
		return mgl32.Vec3{0.6, 0.6, 0.6}, false
	}
}

// ConsumeMesh uploads md under name, replacing any mesh with that name.
func (t *TerrainMesh) ConsumeMesh(name string, md *meshing.MeshData) error {
	defer profiling.Track("terrainmesh.ConsumeMesh")()

	if old, ok := t.meshes[name]; ok {
		old.delete()
	} else {
		t.order = append(t.order, name)
		sort.Strings(t.order)
	}

	m := &gpuMesh{indexCount: int32(len(md.Indices))}
	m.color, m.heightTint = colorFor(name)

	verts := md.Interleaved()
	stride := int32(meshing.VertexStride * 4)

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	if len(verts) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)
	}

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	if len(md.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(md.Indices)*4, gl.Ptr(md.Indices), gl.STATIC_DRAW)
	}

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)

	gl.BindVertexArray(0)

	t.meshes[name] = m
	return nil
}

// Reset drops every uploaded mesh.
func (t *TerrainMesh) Reset() {
	for _, m := range t.meshes {
		m.delete()
	}
	clear(t.meshes)
	t.order = t.order[:0]
}

// Len reports how many meshes are uploaded.
func (t *TerrainMesh) Len() int { return len(t.meshes) }

// Render draws every uploaded mesh
func (t *TerrainMesh) Render(ctx renderer.RenderContext) {
	if len(t.meshes) == 0 {
		return
	}
	defer profiling.Track("renderer.renderTerrain")()

	t.shader.Use()
	t.shader.SetMatrix4("proj", &ctx.Proj[0])
	t.shader.SetMatrix4("view", &ctx.View[0])
	t.shader.SetVector3("lightDir", ctx.LightDir.X(), ctx.LightDir.Y(), ctx.LightDir.Z())

	for _, name := range t.order {
		m := t.meshes[name]
		if m.indexCount == 0 {
			continue
		}
		t.shader.SetVector3("color", m.color.X(), m.color.Y(), m.color.Z())
		t.shader.SetBool("heightTint", m.heightTint)
		gl.BindVertexArray(m.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, 0)
	}
	gl.BindVertexArray(0)
}

// Dispose cleans up OpenGL resources
func (t *TerrainMesh) Dispose() {
	t.Reset()
	t.shader.Delete()
}
