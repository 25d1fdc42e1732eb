package meshing

import (
	"polyterrain/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Ribbon vertex layout per centreline point:
//
//	0 left top     1 right top      (top surface)
//	2 left bottom  3 right bottom
//	4..7           copies of 0..3 for the side walls
const ribbonStride = 8

var (
	ribbonTop   = [6]uint32{0, 8, 1, 1, 8, 9}
	ribbonSides = [12]uint32{4, 6, 14, 12, 4, 14, 5, 15, 7, 13, 15, 5}
)

// BuildRibbon extrudes a centreline into a flat strip with side walls and
// end caps. width is measured from the centre line to each edge. The
// submeshes are "top", "caps" and "sides".
func BuildRibbon(points []mgl64.Vec3, width, thickness float64) *MeshData {
	defer profiling.Track("meshing.BuildRibbon")()

	md := &MeshData{}
	n := len(points)
	if n < 2 {
		return md
	}

	up := mgl32.Vec3{0, 1, 0}
	w, th := float32(width), float32(thickness)
	tangents := make([]mgl32.Vec3, n)
	for i := range points {
		a, b := points[max(i-1, 0)], points[min(i+1, n-1)]
		tangents[i] = horizontal(vec32(b.Sub(a)))
	}

	for i, p := range points {
		c := vec32(p)
		right := up.Cross(tangents[i])
		aTop, bTop := c.Sub(right.Mul(w)), c.Add(right.Mul(w))
		aBot, bBot := aTop.Sub(up.Mul(th)), bTop.Sub(up.Mul(th))

		md.addVertex(aTop, up)
		md.addVertex(bTop, up)
		md.addVertex(aBot, up.Mul(-1))
		md.addVertex(bBot, up.Mul(-1))
		md.addVertex(aTop, right.Mul(-1))
		md.addVertex(bTop, right)
		md.addVertex(aBot, right.Mul(-1))
		md.addVertex(bBot, right)
	}

	md.beginSubmesh("top")
	for i := 0; i < n-1; i++ {
		base := uint32(i * ribbonStride)
		for _, k := range ribbonTop {
			md.Indices = append(md.Indices, base+k)
		}
	}
	md.endSubmesh()

	md.beginSubmesh("caps")
	md.addCap(0, tangents[0].Mul(-1), false)
	md.addCap((n-1)*ribbonStride, tangents[n-1], true)
	md.endSubmesh()

	md.beginSubmesh("sides")
	for i := 0; i < n-1; i++ {
		base := uint32(i * ribbonStride)
		for _, k := range ribbonSides {
			md.Indices = append(md.Indices, base+k)
		}
	}
	md.endSubmesh()
	return md
}

// addCap closes the ribbon at the point whose vertices start at base,
// facing along normal.
func (md *MeshData) addCap(base int, normal mgl32.Vec3, back bool) {
	aTop := md.Positions[base]
	bTop := md.Positions[base+1]
	aBot := md.Positions[base+2]
	bBot := md.Positions[base+3]

	at := md.addVertex(aTop, normal)
	bt := md.addVertex(bTop, normal)
	ab := md.addVertex(aBot, normal)
	bb := md.addVertex(bBot, normal)
	if back {
		md.Indices = append(md.Indices, bb, bt, ab, ab, bt, at)
		return
	}
	md.Indices = append(md.Indices, bt, ab, at, bb, ab, bt)
}

// horizontal projects v onto the ground plane and normalises it.
func horizontal(v mgl32.Vec3) mgl32.Vec3 {
	v[1] = 0
	if v.Dot(v) == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return v.Normalize()
}
