package meshing

import (
	"context"
	"fmt"

	"polyterrain/internal/mesh"
	"polyterrain/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultTrianglesPerChunk keeps chunk vertex counts under the 16-bit index
// limit of most engines (3 vertices per triangle).
const DefaultTrianglesPerChunk = 20000

// point3 lifts mesh vertex id to (x, elevation, y).
func point3(m *mesh.Mesh, elevations []float64, id int) mgl32.Vec3 {
	p := m.Vertices[id].Pos
	return mgl32.Vec3{float32(p.X()), float32(elevations[id]), float32(p.Y())}
}

// buildSurfaceChunk emits triangles [first, first+count) of m. Each
// triangle is written V[2], V[1], V[0] so the face normal points up.
func buildSurfaceChunk(m *mesh.Mesh, elevations []float64, first, count int) *MeshData {
	md := &MeshData{
		Positions: make([]mgl32.Vec3, 0, count*3),
		Normals:   make([]mgl32.Vec3, 0, count*3),
		UVs:       make([]mgl32.Vec2, 0, count*3),
		Indices:   make([]uint32, 0, count*3),
	}
	md.beginSubmesh("surface")
	for t := first; t < first+count; t++ {
		v := m.Triangles[t].V
		md.addFlatTriangle(
			point3(m, elevations, v[2]),
			point3(m, elevations, v[1]),
			point3(m, elevations, v[0]),
		)
	}
	md.endSubmesh()
	return md
}

// BuildSurface splits the terrain into chunks of trianglesPerChunk
// triangles and builds them on a worker pool. Chunks are returned in
// triangle order.
func BuildSurface(ctx context.Context, m *mesh.Mesh, elevations []float64, trianglesPerChunk, workers int) ([]*MeshData, error) {
	defer profiling.Track("meshing.BuildSurface")()

	if len(elevations) != m.VertexCount() {
		return nil, fmt.Errorf("could not build surface: %d elevations for %d vertices", len(elevations), m.VertexCount())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if trianglesPerChunk <= 0 {
		trianglesPerChunk = DefaultTrianglesPerChunk
	}
	total := m.TriangleCount()
	chunks := (total + trianglesPerChunk - 1) / trianglesPerChunk
	if chunks == 0 {
		return nil, nil
	}

	pool := NewWorkerPool(ctx, min(workers, chunks), chunks, func(job ChunkJob) (*MeshData, error) {
		return buildSurfaceChunk(m, elevations, job.First, job.Count), nil
	})
	defer pool.Shutdown()

	results := make(chan ChunkResult, chunks)
	for i := 0; i < chunks; i++ {
		first := i * trianglesPerChunk
		job := ChunkJob{Index: i, First: first, Count: min(trianglesPerChunk, total-first), ResultChan: results}
		if !pool.SubmitJobBlocking(job) {
			return nil, ctx.Err()
		}
	}

	out := make([]*MeshData, chunks)
	for i := 0; i < chunks; i++ {
		select {
		case r := <-results:
			if r.Error != nil {
				return nil, fmt.Errorf("could not build chunk %d: %w", r.Index, r.Error)
			}
			out[r.Index] = r.Mesh
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, nil
}
