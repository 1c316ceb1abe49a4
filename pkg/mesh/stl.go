package mesh

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// stlHeaderSize is the fixed header length of a binary STL file.
const stlHeaderSize = 80

// SaveToSTL writes the surface to the given path as a binary STL file:
// an 80-byte header, a uint32 triangle count, and one 50-byte record per
// facet (normal, three vertices, attribute word).
func SaveToSTL(path string, s *Surface) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating STL file")
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	var header [stlHeaderSize]byte
	copy(header[:], "rtstruct2stl binary STL")
	if _, err := w.Write(header[:]); err != nil {
		return errors.Wrap(err, "writing STL header")
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.Faces))); err != nil {
		return errors.Wrap(err, "writing STL triangle count")
	}

	for _, face := range s.Faces {
		record := [12]float32{}
		n := facetNormal(s, face)
		copy(record[0:3], n[:])
		for i, vi := range face {
			v := s.Vertices[vi]
			record[3+3*i] = float32(v.X)
			record[4+3*i] = float32(v.Y)
			record[5+3*i] = float32(v.Z)
		}
		if err := binary.Write(w, binary.LittleEndian, record); err != nil {
			return errors.Wrap(err, "writing STL facet")
		}
		// Attribute byte count, unused.
		if err := binary.Write(w, binary.LittleEndian, uint16(0)); err != nil {
			return errors.Wrap(err, "writing STL facet")
		}
	}

	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "flushing STL file")
	}
	return errors.Wrap(f.Close(), "closing STL file")
}

// facetNormal returns the facet normal as the normalized mean of the three
// vertex normals, keeping the facet oriented with the extracted surface.
func facetNormal(s *Surface, face [3]int) [3]float32 {
	var n [3]float32
	for _, vi := range face {
		n[0] += float32(s.Normals[vi].X)
		n[1] += float32(s.Normals[vi].Y)
		n[2] += float32(s.Normals[vi].Z)
	}
	mag := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if mag > 0 {
		n[0] /= mag
		n[1] /= mag
		n[2] /= mag
	}
	return n
}

// STLExporter persists surfaces as binary STL files. It satisfies the
// pipeline's export capability.
type STLExporter struct{}

// Export writes the surface to path.
func (STLExporter) Export(s *Surface, path string) error {
	return SaveToSTL(path, s)
}
