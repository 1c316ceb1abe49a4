// Package marching extracts a triangulated isosurface from a regular 3D
// scalar grid. It walks the grid cell by cell, splitting each cell into six
// tetrahedra around its main diagonal, which keeps the surface watertight
// on a uniform grid without the full 256-case cube table.
package marching

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"rtstruct2stl/pkg/mesh"
)

// EmptyVolumeError reports a grid with no isovalue crossing anywhere, such
// as an all-zero or all-one occupancy grid. No surface exists in that case.
type EmptyVolumeError struct {
	NX, NY, NZ int
}

func (e *EmptyVolumeError) Error() string {
	return fmt.Sprintf("no isosurface crossing found in %dx%dx%d volume", e.NX, e.NY, e.NZ)
}

// Extractor runs an isosurface extraction over a scalar grid stored in a
// flat array with x varying fastest: data[z*nx*ny + y*nx + x].
type Extractor struct {
	data       []float64
	nx, ny, nz int
	iso        float64
	sx, sy, sz float64
}

// New creates an extractor for the given grid and isovalue. Spacing
// defaults to unit voxels.
func New(data []float64, nx, ny, nz int, iso float64) *Extractor {
	return &Extractor{
		data: data,
		nx:   nx, ny: ny, nz: nz,
		iso: iso,
		sx:  1, sy: 1, sz: 1,
	}
}

// SetSpacing sets the anisotropic voxel spacing used to scale output
// vertex coordinates into physical units.
func (e *Extractor) SetSpacing(sx, sy, sz float64) {
	e.sx, e.sy, e.sz = sx, sy, sz
}

// cellCorners enumerates the eight corners of a grid cell.
var cellCorners = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// cellTets splits a cell into six tetrahedra sharing the 0-6 diagonal.
// Opposite cell faces receive parallel diagonals, so adjacent cells agree
// on their shared face and the extracted surface has no cracks.
var cellTets = [6][4]int{
	{0, 5, 1, 6}, {0, 1, 2, 6}, {0, 2, 3, 6},
	{0, 3, 7, 6}, {0, 7, 4, 6}, {0, 4, 5, 6},
}

// Run sweeps the grid and returns the extracted surface. Vertices shared
// between neighboring tetrahedra are emitted once, per-vertex normals come
// from the negated field gradient (outward for occupancy grids), and the
// sweep order is fixed so identical inputs produce identical meshes.
func (e *Extractor) Run() (*mesh.Surface, error) {
	if len(e.data) != e.nx*e.ny*e.nz {
		return nil, fmt.Errorf("grid data length %d does not match %dx%dx%d", len(e.data), e.nx, e.ny, e.nz)
	}

	b := &builder{
		ex:    e,
		cache: make(map[[2]int]int),
		surf:  &mesh.Surface{},
	}

	var corner [8][3]int
	var value [8]float64
	for z := 0; z < e.nz-1; z++ {
		for y := 0; y < e.ny-1; y++ {
			for x := 0; x < e.nx-1; x++ {
				for i, c := range cellCorners {
					corner[i] = [3]int{x + c[0], y + c[1], z + c[2]}
					value[i] = e.at(corner[i][0], corner[i][1], corner[i][2])
				}
				for _, tet := range cellTets {
					b.emitTet(tet, &corner, &value)
				}
			}
		}
	}

	if len(b.surf.Faces) == 0 {
		return nil, &EmptyVolumeError{NX: e.nx, NY: e.ny, NZ: e.nz}
	}
	return b.surf, nil
}

func (e *Extractor) lin(x, y, z int) int {
	return z*e.nx*e.ny + y*e.nx + x
}

func (e *Extractor) at(x, y, z int) float64 {
	return e.data[e.lin(x, y, z)]
}

// gradient estimates the field gradient at a grid node with central
// differences, falling back to one-sided differences at the boundary.
func (e *Extractor) gradient(x, y, z int) r3.Vec {
	return r3.Vec{
		X: e.diff(x, y, z, 0),
		Y: e.diff(x, y, z, 1),
		Z: e.diff(x, y, z, 2),
	}
}

func (e *Extractor) diff(x, y, z, axis int) float64 {
	dims := [3]int{e.nx, e.ny, e.nz}
	spacing := [3]float64{e.sx, e.sy, e.sz}
	p0 := [3]int{x, y, z}
	p1 := p0
	if p0[axis] > 0 {
		p0[axis]--
	}
	if p1[axis] < dims[axis]-1 {
		p1[axis]++
	}
	span := p1[axis] - p0[axis]
	if span == 0 {
		return 0
	}
	return (e.at(p1[0], p1[1], p1[2]) - e.at(p0[0], p0[1], p0[2])) /
		(float64(span) * spacing[axis])
}

// builder accumulates the surface during a sweep, deduplicating vertices
// per crossed grid edge.
type builder struct {
	ex    *Extractor
	cache map[[2]int]int
	surf  *mesh.Surface
}

// emitTet classifies the four tetrahedron corners against the isovalue and
// emits the crossing triangle or quad.
func (b *builder) emitTet(tet [4]int, corner *[8][3]int, value *[8]float64) {
	var inside, outside []int
	for _, ci := range tet {
		if value[ci] > b.ex.iso {
			inside = append(inside, ci)
		} else {
			outside = append(outside, ci)
		}
	}

	switch len(inside) {
	case 0, 4:
		// Fully outside or fully inside, no crossing.
	case 1:
		a := inside[0]
		v0 := b.edgeVertex(corner[a], corner[outside[0]], value[a], value[outside[0]])
		v1 := b.edgeVertex(corner[a], corner[outside[1]], value[a], value[outside[1]])
		v2 := b.edgeVertex(corner[a], corner[outside[2]], value[a], value[outside[2]])
		b.addTriangle(v0, v1, v2)
	case 3:
		a := outside[0]
		v0 := b.edgeVertex(corner[inside[0]], corner[a], value[inside[0]], value[a])
		v1 := b.edgeVertex(corner[inside[1]], corner[a], value[inside[1]], value[a])
		v2 := b.edgeVertex(corner[inside[2]], corner[a], value[inside[2]], value[a])
		b.addTriangle(v0, v1, v2)
	case 2:
		a, c := inside[0], inside[1]
		p, q := outside[0], outside[1]
		// Quad cycle: the edge midcrossings around the separating plane.
		v0 := b.edgeVertex(corner[a], corner[p], value[a], value[p])
		v1 := b.edgeVertex(corner[a], corner[q], value[a], value[q])
		v2 := b.edgeVertex(corner[c], corner[q], value[c], value[q])
		v3 := b.edgeVertex(corner[c], corner[p], value[c], value[p])
		b.addTriangle(v0, v1, v2)
		b.addTriangle(v0, v2, v3)
	}
}

// edgeVertex returns the surface vertex on the grid edge between nodes a
// and b, creating it on first use. The vertex position is interpolated to
// the isovalue crossing and scaled by the voxel spacing; its normal is the
// interpolated negated gradient.
func (b *builder) edgeVertex(a, bn [3]int, va, vb float64) int {
	la := b.ex.lin(a[0], a[1], a[2])
	lb := b.ex.lin(bn[0], bn[1], bn[2])
	key := [2]int{la, lb}
	if la > lb {
		key = [2]int{lb, la}
	}
	if idx, ok := b.cache[key]; ok {
		return idx
	}

	t := 0.5
	if d := vb - va; d != 0 {
		t = (b.ex.iso - va) / d
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	pos := r3.Vec{
		X: (float64(a[0]) + t*float64(bn[0]-a[0])) * b.ex.sx,
		Y: (float64(a[1]) + t*float64(bn[1]-a[1])) * b.ex.sy,
		Z: (float64(a[2]) + t*float64(bn[2]-a[2])) * b.ex.sz,
	}

	ga := b.ex.gradient(a[0], a[1], a[2])
	gb := b.ex.gradient(bn[0], bn[1], bn[2])
	n := r3.Vec{
		X: -(ga.X + t*(gb.X-ga.X)),
		Y: -(ga.Y + t*(gb.Y-ga.Y)),
		Z: -(ga.Z + t*(gb.Z-ga.Z)),
	}
	if mag := r3.Norm(n); mag > 1e-12 {
		n = r3.Scale(1/mag, n)
	} else {
		n = r3.Vec{Z: 1}
	}

	idx := len(b.surf.Vertices)
	b.surf.Vertices = append(b.surf.Vertices, pos)
	b.surf.Normals = append(b.surf.Normals, n)
	b.cache[key] = idx
	return idx
}

// addTriangle appends a face, dropping degenerate triangles and orienting
// the winding to agree with the vertex normals.
func (b *builder) addTriangle(v0, v1, v2 int) {
	if v0 == v1 || v1 == v2 || v0 == v2 {
		return
	}
	p0 := b.surf.Vertices[v0]
	e1 := r3.Sub(b.surf.Vertices[v1], p0)
	e2 := r3.Sub(b.surf.Vertices[v2], p0)
	face := r3.Cross(e1, e2)
	ref := r3.Add(r3.Add(b.surf.Normals[v0], b.surf.Normals[v1]), b.surf.Normals[v2])
	if r3.Dot(face, ref) < 0 {
		v1, v2 = v2, v1
	}
	if math.IsNaN(face.X) || math.IsNaN(face.Y) || math.IsNaN(face.Z) {
		return
	}
	b.surf.Faces = append(b.surf.Faces, [3]int{v0, v1, v2})
}
