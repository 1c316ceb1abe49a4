// Package volume turns per-slice polygonal contours into a 3D binary
// occupancy grid aligned with a reference CT stack.
package volume

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"rtstruct2stl/internal/models"
)

// spacingTolerance is the maximum disagreement in mm allowed between the
// pixel spacings of two slices before they are treated as mismatched.
const spacingTolerance = 1e-6

// Stack is an ordered CT slice collection together with the sampling
// geometry derived from it. Slices are sorted by through-plane position
// ascending and are assumed immutable once the stack is built.
type Stack struct {
	// Slices holds the descriptors in sorted order.
	Slices []models.ImageSlice

	// Positions are the sorted through-plane coordinates in mm, used for
	// nearest-slice lookup.
	Positions []float64

	// Thickness is the inter-slice spacing in mm, measured between the
	// first two sorted slices. The stack is assumed uniformly spaced.
	Thickness float64

	// In-plane geometry, shared by every slice in the stack.
	OriginX    float64
	OriginY    float64
	RowSpacing float64
	ColSpacing float64
	Rows       int
	Cols       int
}

// NewStack sorts the given slice descriptors by position and derives the
// stack geometry. It fails with InsufficientDataError when fewer than two
// slices are supplied and with GeometryMismatchError when any slice
// disagrees with the first on rows, columns, or pixel spacing.
func NewStack(slices []models.ImageSlice) (*Stack, error) {
	if len(slices) < 2 {
		return nil, &InsufficientDataError{Slices: len(slices)}
	}

	sorted := make([]models.ImageSlice, len(slices))
	copy(sorted, slices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	first := sorted[0]
	for i, s := range sorted {
		switch {
		case s.Rows != first.Rows || s.Cols != first.Cols:
			return nil, &GeometryMismatchError{
				Slice:  i,
				Reason: fmt.Sprintf("grid is %dx%d, stack is %dx%d", s.Rows, s.Cols, first.Rows, first.Cols),
			}
		case math.Abs(s.RowSpacing-first.RowSpacing) > spacingTolerance ||
			math.Abs(s.ColSpacing-first.ColSpacing) > spacingTolerance:
			return nil, &GeometryMismatchError{
				Slice: i,
				Reason: fmt.Sprintf("pixel spacing is (%g, %g), stack is (%g, %g)",
					s.RowSpacing, s.ColSpacing, first.RowSpacing, first.ColSpacing),
			}
		}
	}

	positions := make([]float64, len(sorted))
	for i, s := range sorted {
		positions[i] = s.Position
	}

	return &Stack{
		Slices:     sorted,
		Positions:  positions,
		Thickness:  math.Abs(positions[1] - positions[0]),
		OriginX:    first.OriginX,
		OriginY:    first.OriginY,
		RowSpacing: first.RowSpacing,
		ColSpacing: first.ColSpacing,
		Rows:       first.Rows,
		Cols:       first.Cols,
	}, nil
}

// Shape returns the occupancy grid dimensions as (slices, rows, cols).
func (s *Stack) Shape() (int, int, int) {
	return len(s.Slices), s.Rows, s.Cols
}

// NearestSlice returns the index of the slice closest to the given
// through-plane coordinate and the absolute distance to it in mm.
func (s *Stack) NearestSlice(z float64) (int, float64) {
	dist := make([]float64, len(s.Positions))
	for i, p := range s.Positions {
		dist[i] = math.Abs(p - z)
	}
	idx := floats.MinIdx(dist)
	return idx, dist[idx]
}
