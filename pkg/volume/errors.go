package volume

import "fmt"

// InsufficientDataError reports that too few image slices were supplied to
// derive the stack geometry.
type InsufficientDataError struct {
	Slices int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("need at least 2 image slices to derive stack geometry, got %d", e.Slices)
}

// GeometryMismatchError reports a slice whose in-plane geometry disagrees
// with the first slice of the sorted stack.
type GeometryMismatchError struct {
	// Slice is the index of the offending slice in sorted order.
	Slice  int
	Reason string
}

func (e *GeometryMismatchError) Error() string {
	return fmt.Sprintf("slice %d does not match stack geometry: %s", e.Slice, e.Reason)
}

// SliceAssignmentError reports a contour whose through-plane coordinate is
// farther from every slice than the configured limit allows.
type SliceAssignmentError struct {
	// Z is the contour's through-plane coordinate in mm.
	Z float64

	// Nearest is the position of the closest slice and Distance the gap to
	// it, both in mm.
	Nearest  float64
	Distance float64

	// Limit is the configured maximum assignment distance in mm.
	Limit float64
}

func (e *SliceAssignmentError) Error() string {
	return fmt.Sprintf("contour at z=%.3f mm is %.3f mm from the nearest slice (z=%.3f), exceeding the %.3f mm limit",
		e.Z, e.Distance, e.Nearest, e.Limit)
}
