package volume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"rtstruct2stl/internal/models"
)

// rasterStack returns a stack with unit pixel spacing and origin at zero,
// so patient and index coordinates coincide in-plane.
func rasterStack(t *testing.T, rows, cols int) *Stack {
	t.Helper()
	mk := func(z float64) models.ImageSlice {
		return models.ImageSlice{
			Position:   z,
			RowSpacing: 1,
			ColSpacing: 1,
			Rows:       rows,
			Cols:       cols,
		}
	}
	stack, err := NewStack([]models.ImageSlice{mk(0), mk(5), mk(10)})
	require.NoError(t, err)
	return stack
}

func square(roi int, z, lo, hi float64) models.Contour {
	return models.Contour{
		ROINumber: roi,
		Points: []r3.Vec{
			{X: lo, Y: lo, Z: z},
			{X: hi, Y: lo, Z: z},
			{X: hi, Y: hi, Z: z},
			{X: lo, Y: hi, Z: z},
		},
	}
}

func countPlane(plane []bool) int {
	n := 0
	for _, v := range plane {
		if v {
			n++
		}
	}
	return n
}

func TestRasterizeConvexPolygonArea(t *testing.T) {
	stack := rasterStack(t, 30, 30)

	// A 20x20 mm square with half-integer corners covers exactly 400 cell
	// centers at unit spacing, matching area / (rowSpacing * colSpacing).
	slice, plane, err := Rasterize(square(1, 5, 2.5, 22.5), stack, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, slice)
	assert.Equal(t, 400, countPlane(plane))
}

func TestRasterizeNearestSliceAssignment(t *testing.T) {
	stack := rasterStack(t, 10, 10)

	// z=4.9 is closest to the slice at z=5; tolerated without error.
	slice, _, err := Rasterize(square(1, 4.9, 1.5, 4.5), stack, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, slice)

	// Unbounded assignment merges even a distant contour onto the nearest
	// slice.
	slice, _, err = Rasterize(square(1, 200, 1.5, 4.5), stack, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, slice)
}

func TestRasterizeSliceDistanceBound(t *testing.T) {
	stack := rasterStack(t, 10, 10)

	_, _, err := Rasterize(square(1, 13, 1.5, 4.5), stack, 1.0)

	var assign *SliceAssignmentError
	require.ErrorAs(t, err, &assign)
	assert.Equal(t, 13.0, assign.Z)
	assert.Equal(t, 10.0, assign.Nearest)
	assert.InDelta(t, 3.0, assign.Distance, 1e-9)
	assert.Equal(t, 1.0, assign.Limit)

	// The same contour passes with a looser bound.
	_, _, err = Rasterize(square(1, 13, 1.5, 4.5), stack, 5.0)
	assert.NoError(t, err)
}

func TestRasterizeDegenerateContours(t *testing.T) {
	stack := rasterStack(t, 10, 10)

	for _, contour := range []models.Contour{
		{ROINumber: 1},
		{ROINumber: 1, Points: []r3.Vec{{X: 2, Y: 2, Z: 5}}},
		{ROINumber: 1, Points: []r3.Vec{{X: 2, Y: 2, Z: 5}, {X: 7, Y: 7, Z: 5}}},
	} {
		_, plane, err := Rasterize(contour, stack, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, countPlane(plane))
	}
}

func TestRasterizeOutsideGrid(t *testing.T) {
	stack := rasterStack(t, 10, 10)

	// A polygon entirely left of the grid marks nothing.
	_, plane, err := Rasterize(square(1, 0, -30.5, -20.5), stack, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, countPlane(plane))
}

func TestPointInPolygonConcave(t *testing.T) {
	// L-shaped polygon: the notch in the upper right is outside.
	xs := []float64{0, 10, 10, 5, 5, 0}
	ys := []float64{0, 0, 5, 5, 10, 10}

	assert.True(t, pointInPolygon(2, 2, xs, ys))
	assert.True(t, pointInPolygon(2, 8, xs, ys))
	assert.True(t, pointInPolygon(8, 2, xs, ys))
	assert.False(t, pointInPolygon(8, 8, xs, ys))
	assert.False(t, pointInPolygon(-1, 5, xs, ys))
}
