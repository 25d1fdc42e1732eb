package meshing

import (
	"polyterrain/internal/mesh"
	"polyterrain/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// BuildBase builds the walls around the tile: a top layer from the surface
// edge down top units and a bottom layer from there down to y = -bottom.
// Each wall quad faces outward.
func BuildBase(m *mesh.Mesh, elevations []float64, top, bottom float64) *MeshData {
	defer profiling.Track("meshing.BuildBase")()

	loop := m.PerimeterLoop()
	md := &MeshData{}
	if len(loop) < 2 {
		return md
	}

	t32, floor := float32(top), float32(-bottom)
	edges := func(emit func(a, b mgl32.Vec3)) {
		for i := range loop {
			a := point3(m, elevations, loop[i])
			b := point3(m, elevations, loop[(i+1)%len(loop)])
			emit(a, b)
		}
	}

	md.beginSubmesh("base_top")
	edges(func(a, b mgl32.Vec3) {
		md.addQuad(a, b, mgl32.Vec3{b[0], b[1] - t32, b[2]}, mgl32.Vec3{a[0], a[1] - t32, a[2]})
	})
	md.endSubmesh()

	md.beginSubmesh("base_bottom")
	edges(func(a, b mgl32.Vec3) {
		md.addQuad(
			mgl32.Vec3{a[0], a[1] - t32, a[2]},
			mgl32.Vec3{b[0], b[1] - t32, b[2]},
			mgl32.Vec3{b[0], floor, b[2]},
			mgl32.Vec3{a[0], floor, a[2]},
		)
	})
	md.endSubmesh()
	return md
}

// addQuad emits a flat quad from its top edge (aTop, bTop) and the bottom
// corners below them.
func (md *MeshData) addQuad(aTop, bTop, bBot, aBot mgl32.Vec3) {
	md.addFlatTriangle(aTop, bTop, aBot)
	md.addFlatTriangle(bTop, bBot, aBot)
}
