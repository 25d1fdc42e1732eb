// Package meshing turns the terrain mesh and path centrelines into
// renderable, flat-shaded buffers.
package meshing

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// VertexStride is number of float32 per interleaved vertex
// (pos.xyz + normal.xyz + uv)
const VertexStride = 8

// Submesh is a named index range. Start and Count are in indices.
type Submesh struct {
	Name  string
	Start int
	Count int
}

// MeshData is an indexed triangle mesh.
type MeshData struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
	Submeshes []Submesh
}

// VertexCount returns the number of vertices.
func (md *MeshData) VertexCount() int { return len(md.Positions) }

// TriangleCount returns the number of triangles.
func (md *MeshData) TriangleCount() int { return len(md.Indices) / 3 }

// addVertex appends one vertex and returns its index.
func (md *MeshData) addVertex(p, n mgl32.Vec3) uint32 {
	md.Positions = append(md.Positions, p)
	md.Normals = append(md.Normals, n)
	md.UVs = append(md.UVs, mgl32.Vec2{})
	return uint32(len(md.Positions) - 1)
}

// addFlatTriangle appends three unshared vertices with the face normal.
func (md *MeshData) addFlatTriangle(v0, v1, v2 mgl32.Vec3) {
	n := faceNormal(v0, v1, v2)
	a := md.addVertex(v0, n)
	b := md.addVertex(v1, n)
	c := md.addVertex(v2, n)
	md.Indices = append(md.Indices, a, b, c)
}

// beginSubmesh starts a submesh at the current end of the index buffer.
func (md *MeshData) beginSubmesh(name string) {
	md.Submeshes = append(md.Submeshes, Submesh{Name: name, Start: len(md.Indices)})
}

// endSubmesh closes the last submesh.
func (md *MeshData) endSubmesh() {
	s := &md.Submeshes[len(md.Submeshes)-1]
	s.Count = len(md.Indices) - s.Start
}

// Submesh returns the named submesh.
func (md *MeshData) Submesh(name string) (Submesh, bool) {
	for _, s := range md.Submeshes {
		if s.Name == name {
			return s, true
		}
	}
	return Submesh{}, false
}

// Interleaved packs position, normal and uv per vertex, VertexStride floats
// each, in vertex order. Draw it with Indices.
func (md *MeshData) Interleaved() []float32 {
	out := make([]float32, 0, len(md.Positions)*VertexStride)
	for i, p := range md.Positions {
		n := md.Normals[i]
		uv := md.UVs[i]
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}
	return out
}

// Bounds returns the axis-aligned box around all positions.
func (md *MeshData) Bounds() (min, max mgl32.Vec3) {
	if len(md.Positions) == 0 {
		return
	}
	min, max = md.Positions[0], md.Positions[0]
	for _, p := range md.Positions[1:] {
		for k := 0; k < 3; k++ {
			min[k] = math32.Min(min[k], p[k])
			max[k] = math32.Max(max[k], p[k])
		}
	}
	return min, max
}

// ClampXZ keeps every position inside [inset, size-inset] on the ground
// plane so ribbons do not poke through the tile walls.
func (md *MeshData) ClampXZ(size mgl64.Vec2, inset float32) {
	w, h := float32(size.X()), float32(size.Y())
	for i, p := range md.Positions {
		p[0] = math32.Max(inset, math32.Min(w-inset, p[0]))
		p[2] = math32.Max(inset, math32.Min(h-inset, p[2]))
		md.Positions[i] = p
	}
}

// faceNormal returns normalize(cross(v1-v0, v2-v0)), or zero for a
// degenerate triangle.
func faceNormal(v0, v1, v2 mgl32.Vec3) mgl32.Vec3 {
	n := v1.Sub(v0).Cross(v2.Sub(v0))
	l := math32.Sqrt(n.Dot(n))
	if l == 0 {
		return mgl32.Vec3{}
	}
	return n.Mul(1 / l)
}

func vec32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
