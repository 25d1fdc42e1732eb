package export

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"polyterrain/internal/meshing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/klauspost/compress/zstd"
)

// Mesh bundle layout, little endian, zstd compressed:
//
//	magic "PTMB", version u32, mesh count u32
//	per mesh: name, vertex count u32, index count u32, submesh count u32,
//	          submeshes (name, start u32, count u32),
//	          positions [3]f32, normals [3]f32, uvs [2]f32, indices u32
//
// Names are a u16 length followed by the bytes.
const (
	bundleMagic   = "PTMB"
	bundleVersion = 1
)

// ErrBadBundle is returned for a stream that is not a mesh bundle.
var ErrBadBundle = errors.New("export: not a mesh bundle")

// NamedMesh is one entry of a mesh bundle.
type NamedMesh struct {
	Name string
	Mesh *meshing.MeshData
}

// WriteMeshes writes a zstd-compressed mesh bundle to path.
func WriteMeshes(path string, meshes []NamedMesh) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)
	if err := encodeMeshes(bw, meshes); err != nil {
		enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

// ReadMeshes loads a bundle written by WriteMeshes.
func ReadMeshes(path string) ([]NamedMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	meshes, err := decodeMeshes(bufio.NewReaderSize(dec, 256*1024))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return meshes, nil
}

func encodeMeshes(w io.Writer, meshes []NamedMesh) error {
	le := binary.LittleEndian
	if _, err := io.WriteString(w, bundleMagic); err != nil {
		return err
	}
	if err := binary.Write(w, le, [2]uint32{bundleVersion, uint32(len(meshes))}); err != nil {
		return err
	}
	for _, nm := range meshes {
		md := nm.Mesh
		if md == nil {
			md = &meshing.MeshData{}
		}
		if len(md.Normals) != len(md.Positions) || len(md.UVs) != len(md.Positions) {
			return fmt.Errorf("mesh %q: attribute lengths differ", nm.Name)
		}
		if err := writeName(w, nm.Name); err != nil {
			return err
		}
		head := [3]uint32{uint32(len(md.Positions)), uint32(len(md.Indices)), uint32(len(md.Submeshes))}
		if err := binary.Write(w, le, head); err != nil {
			return err
		}
		for _, s := range md.Submeshes {
			if err := writeName(w, s.Name); err != nil {
				return err
			}
			if err := binary.Write(w, le, [2]uint32{uint32(s.Start), uint32(s.Count)}); err != nil {
				return err
			}
		}
		for _, data := range []any{md.Positions, md.Normals, md.UVs, md.Indices} {
			if err := binary.Write(w, le, data); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeMeshes(r io.Reader) ([]NamedMesh, error) {
	le := binary.LittleEndian
	magic := make([]byte, len(bundleMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != bundleMagic {
		return nil, ErrBadBundle
	}
	var head [2]uint32
	if err := binary.Read(r, le, &head); err != nil {
		return nil, err
	}
	if head[0] != bundleVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadBundle, head[0])
	}
	out := make([]NamedMesh, 0, head[1])
	for i := uint32(0); i < head[1]; i++ {
		name, err := readName(r)
		if err != nil {
			return nil, err
		}
		var counts [3]uint32
		if err := binary.Read(r, le, &counts); err != nil {
			return nil, err
		}
		md := &meshing.MeshData{
			Positions: make([]mgl32.Vec3, counts[0]),
			Normals:   make([]mgl32.Vec3, counts[0]),
			UVs:       make([]mgl32.Vec2, counts[0]),
			Indices:   make([]uint32, counts[1]),
		}
		for s := uint32(0); s < counts[2]; s++ {
			sname, err := readName(r)
			if err != nil {
				return nil, err
			}
			var rng [2]uint32
			if err := binary.Read(r, le, &rng); err != nil {
				return nil, err
			}
			md.Submeshes = append(md.Submeshes, meshing.Submesh{Name: sname, Start: int(rng[0]), Count: int(rng[1])})
		}
		for _, data := range []any{md.Positions, md.Normals, md.UVs, md.Indices} {
			if err := binary.Read(r, le, data); err != nil {
				return nil, fmt.Errorf("mesh %q: %w", name, err)
			}
		}
		out = append(out, NamedMesh{Name: name, Mesh: md})
	}
	return out, nil
}

func writeName(w io.Writer, name string) error {
	if len(name) > 0xffff {
		return fmt.Errorf("name too long: %d bytes", len(name))
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(name))); err != nil {
		return err
	}
	_, err := io.WriteString(w, name)
	return err
}

func readName(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
