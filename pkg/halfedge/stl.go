package halfedge

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/chewxy/math32"
)

// stlHeader is the 80-byte comment plus triangle count of a binary STL.
type stlHeader struct {
	_     [80]uint8
	Count uint32
}

// WriteSTL writes the mesh as binary STL with per-face normals.
func WriteSTL(w io.Writer, m *Mesh) error {
	if m.IsEmpty() {
		return errors.New("halfedge: cannot write empty mesh as STL")
	}
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, &stlHeader{Count: uint32(len(m.Faces))}); err != nil {
		return err
	}
	var b [50]byte
	for f := range m.Faces {
		n := m.Faces[f].Normal
		put3F32(b[0:], [3]float32{float32(n.X), float32(n.Y), float32(n.Z)})
		for i, p := range m.FacePositions(uint32(f)) {
			v := [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
			if bad3F32(v) {
				return errors.New("halfedge: inf/NaN vertex in STL output")
			}
			put3F32(b[12+12*i:], v)
		}
		binary.LittleEndian.PutUint16(b[48:], 0)
		if _, err := bw.Write(b[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}
