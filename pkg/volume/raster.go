package volume

import (
	"math"

	"rtstruct2stl/internal/models"
)

// Rasterize converts one contour into the index of the slice it belongs to
// and a rows x cols boolean occupancy plane for that slice.
//
// The slice is chosen by nearest through-plane distance, which tolerates
// floating-point misalignment between contour and slice coordinates. When
// maxSliceDist is positive and the nearest slice is farther than that, the
// contour is rejected with SliceAssignmentError instead of being silently
// merged onto the wrong slice; maxSliceDist <= 0 leaves the assignment
// unbounded.
//
// In-plane points are mapped to continuous (col, row) index coordinates via
// (x-origin)/spacing, and every integer cell center of the full grid is
// classified with the even-odd rule. A contour with fewer than three points
// has no interior and yields an all-false plane. The function is pure.
func Rasterize(c models.Contour, st *Stack, maxSliceDist float64) (int, []bool, error) {
	plane := make([]bool, st.Rows*st.Cols)
	if len(c.Points) == 0 {
		return 0, plane, nil
	}

	slice, dist := st.NearestSlice(c.Z())
	if maxSliceDist > 0 && dist > maxSliceDist {
		nearest := st.Positions[slice]
		return 0, nil, &SliceAssignmentError{
			Z:        c.Z(),
			Nearest:  nearest,
			Distance: dist,
			Limit:    maxSliceDist,
		}
	}
	if len(c.Points) < 3 {
		return slice, plane, nil
	}

	// Transform the polygon into continuous index coordinates.
	xs := make([]float64, len(c.Points))
	ys := make([]float64, len(c.Points))
	for i, p := range c.Points {
		xs[i] = (p.X - st.OriginX) / st.ColSpacing
		ys[i] = (p.Y - st.OriginY) / st.RowSpacing
	}

	// Restrict the scan to the polygon's bounding box; everything outside
	// it is trivially exterior.
	minCol, maxCol := boundCells(xs, st.Cols)
	minRow, maxRow := boundCells(ys, st.Rows)

	for row := minRow; row <= maxRow; row++ {
		y := float64(row)
		for col := minCol; col <= maxCol; col++ {
			if pointInPolygon(float64(col), y, xs, ys) {
				plane[row*st.Cols+col] = true
			}
		}
	}

	return slice, plane, nil
}

// boundCells returns the inclusive integer cell range covered by the given
// coordinates, clamped to [0, n-1].
func boundCells(coords []float64, n int) (int, int) {
	lo, hi := coords[0], coords[0]
	for _, v := range coords[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	min := int(math.Floor(lo))
	max := int(math.Ceil(hi))
	if min < 0 {
		min = 0
	}
	if max > n-1 {
		max = n - 1
	}
	return min, max
}

// pointInPolygon classifies a point against a polygon using the even-odd
// ray-casting rule. Self-intersecting or multiply-wound polygons follow
// the same rule rather than being rejected.
func pointInPolygon(x, y float64, xs, ys []float64) bool {
	inside := false
	n := len(xs)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		if (ys[i] > y) != (ys[j] > y) &&
			x < (xs[j]-xs[i])*(y-ys[i])/(ys[j]-ys[i])+xs[i] {
			inside = !inside
		}
	}
	return inside
}
