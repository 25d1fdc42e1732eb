package export

import (
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/tiff"
)

// HeightSource answers the ground height below a planar point.
type HeightSource interface {
	HeightAt(p mgl64.Vec2) (y float64, normal mgl64.Vec3, ok bool)
}

// HeightmapInfo maps the 16-bit samples back to world heights:
// y = Min + v/65535*(Max-Min).
type HeightmapInfo struct {
	Resolution int     `json:"resolution"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
}

var errResolution = errors.New("export: heightmap resolution must be at least 2")

// SampleHeightmap samples src on a res x res grid over size. Pixel (0, 0)
// is the corner at (0, size.Y); columns run along +x and rows along -y.
// Points the source misses are written as 0.
func SampleHeightmap(src HeightSource, size mgl64.Vec2, res int) (*image.Gray16, HeightmapInfo, error) {
	if res < 2 {
		return nil, HeightmapInfo{}, errResolution
	}
	heights := make([]float64, res*res)
	lo, hi := math.Inf(1), math.Inf(-1)
	for row := 0; row < res; row++ {
		z := size.Y() * (1 - float64(row)/float64(res-1))
		for col := 0; col < res; col++ {
			x := size.X() * float64(col) / float64(res-1)
			y, _, ok := src.HeightAt(mgl64.Vec2{x, z})
			if !ok {
				y = math.NaN()
			} else {
				lo = math.Min(lo, y)
				hi = math.Max(hi, y)
			}
			heights[row*res+col] = y
		}
	}
	info := HeightmapInfo{Resolution: res, Min: lo, Max: hi}
	if math.IsInf(lo, 1) {
		info.Min, info.Max = 0, 0
	}

	img := image.NewGray16(image.Rect(0, 0, res, res))
	span := info.Max - info.Min
	for i, y := range heights {
		var v uint16
		if !math.IsNaN(y) && span > 0 {
			v = uint16(math.Round((y - info.Min) / span * math.MaxUint16))
		}
		img.SetGray16(i%res, i/res, color.Gray16{Y: v})
	}
	return img, info, nil
}

// WriteHeightmap samples src and writes a deflate-compressed 16-bit
// grayscale TIFF.
func WriteHeightmap(path string, src HeightSource, size mgl64.Vec2, res int) (HeightmapInfo, error) {
	img, info, err := SampleHeightmap(src, size, res)
	if err != nil {
		return info, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return info, err
	}
	f, err := os.Create(path)
	if err != nil {
		return info, err
	}
	if err := tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		f.Close()
		return info, err
	}
	return info, f.Close()
}
