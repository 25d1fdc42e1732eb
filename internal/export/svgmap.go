package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"polyterrain/internal/placement"
	"polyterrain/internal/terrain"

	svg "github.com/ajstarks/svgo"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	roadStyle  = "fill:none;stroke:rgb(120,96,64);stroke-width:%d;stroke-linejoin:round"
	riverStyle = "fill:none;stroke:rgb(40,110,200);stroke-width:%d;stroke-linejoin:round"
	edgeStyle  = "stroke:rgb(90,90,90);stroke-width:0.5;stroke-opacity:0.4"
)

var kindColors = map[placement.Kind]string{
	placement.KindTree:   "rgb(30,110,40)",
	placement.KindRock:   "rgb(130,130,130)",
	placement.KindGrass:  "rgb(120,190,70)",
	placement.KindFlower: "rgb(230,120,180)",
	placement.KindLamp:   "rgb(250,220,60)",
	placement.KindHouse:  "rgb(180,40,40)",
}

// mapper converts world (x, z) to canvas pixels. The canvas y axis points
// down, so z is flipped.
type mapper struct {
	scale  float64
	height float64
}

func (m mapper) point(x, z float64) (int, int) {
	return int(math.Round(x * m.scale)), int(math.Round((m.height - z) * m.scale))
}

func (m mapper) line(points []mgl64.Vec3) ([]int, []int) {
	xs := make([]int, len(points))
	ys := make([]int, len(points))
	for i, p := range points {
		xs[i], ys[i] = m.point(p.X(), p.Z())
	}
	return xs, ys
}

// shade maps t in [0, 1] from low green to high white.
func shade(t float64) string {
	t = math.Max(0, math.Min(1, t))
	lo := [3]float64{70, 120, 60}
	hi := [3]float64{235, 235, 225}
	var c [3]int
	for k := range c {
		c[k] = int(lo[k] + (hi[k]-lo[k])*t)
	}
	return fmt.Sprintf("rgb(%d,%d,%d)", c[0], c[1], c[2])
}

// RenderMap draws a top-down overview of gc: triangles shaded by mean
// elevation, then river, road and instance markers. scale is pixels per
// world unit.
func RenderMap(w io.Writer, gc *terrain.GenerationContext, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	m := mapper{scale: scale, height: gc.Size.Y()}
	width, height := m.point(gc.Size.X(), 0)

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Title(fmt.Sprintf("terrain seed %d", gc.Params.Seed))
	canvas.Rect(0, 0, width, height, "fill:rgb(255,255,255)")

	if gc.Mesh != nil && len(gc.Elevations) == gc.Mesh.VertexCount() {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, e := range gc.Elevations {
			lo, hi = math.Min(lo, e), math.Max(hi, e)
		}
		span := hi - lo
		if span == 0 {
			span = 1
		}
		canvas.Gid("surface")
		xs, ys := make([]int, 3), make([]int, 3)
		for _, tri := range gc.Mesh.Triangles {
			mean := 0.0
			for k, id := range tri.V {
				p := gc.Mesh.Vertices[id].Pos
				xs[k], ys[k] = m.point(p.X(), p.Y())
				mean += gc.Elevations[id] / 3
			}
			canvas.Polygon(xs, ys, "fill:"+shade((mean-lo)/span)+";"+edgeStyle)
		}
		canvas.Gend()
	}

	stroke := max(1, int(math.Round(scale)))
	if gc.River != nil && len(gc.River.Points) > 1 {
		xs, ys := m.line(gc.River.Points)
		canvas.Polyline(xs, ys, fmt.Sprintf(riverStyle, stroke*int(math.Max(1, 2*gc.Params.River.Width))))
	}
	if gc.Road != nil && len(gc.Road.Points) > 1 {
		xs, ys := m.line(gc.Road.Points)
		canvas.Polyline(xs, ys, fmt.Sprintf(roadStyle, stroke*int(math.Max(1, 2*gc.Params.Road.Width))))
	}

	canvas.Gid("instances")
	r := max(1, int(math.Round(scale)))
	for _, inst := range gc.Instances {
		x, y := m.point(inst.Position.X(), inst.Position.Z())
		fill := "fill:" + kindColors[inst.Kind]
		if inst.Kind == placement.KindHouse {
			canvas.Rect(x-3*r, y-3*r, 6*r, 6*r, fill)
			continue
		}
		canvas.Circle(x, y, r, fill)
	}
	canvas.Gend()
	canvas.End()
}

// WriteMap renders the overview map to path.
func WriteMap(path string, gc *terrain.GenerationContext, scale float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	RenderMap(f, gc, scale)
	return f.Close()
}
