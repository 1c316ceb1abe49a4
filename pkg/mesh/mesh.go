// Package mesh holds the triangulated surface representation produced by
// isosurface extraction and its STL export.
package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Surface is an indexed triangle mesh. Faces reference Vertices by index
// and Normals holds one outward unit normal per vertex.
type Surface struct {
	Vertices []r3.Vec
	Faces    [][3]int
	Normals  []r3.Vec
}

// Centroid returns the arithmetic mean of the vertex positions.
func (s *Surface) Centroid() r3.Vec {
	if len(s.Vertices) == 0 {
		return r3.Vec{}
	}
	var sum r3.Vec
	for _, v := range s.Vertices {
		sum = r3.Add(sum, v)
	}
	return r3.Scale(1/float64(len(s.Vertices)), sum)
}

// Translate moves every vertex by d. Faces and normals are untouched; no
// vertex is added, removed, or reordered.
func (s *Surface) Translate(d r3.Vec) {
	for i := range s.Vertices {
		s.Vertices[i] = r3.Add(s.Vertices[i], d)
	}
}

// Center translates the surface so its centroid coincides with the origin
// and returns the offset that was applied.
func (s *Surface) Center() r3.Vec {
	d := r3.Scale(-1, s.Centroid())
	s.Translate(d)
	return d
}
