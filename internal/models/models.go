package models

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// ImageSlice describes the geometry of a single CT slice as read from its
// DICOM header. Pixel data is never needed; only the placement of the slice
// in patient space matters for reconstruction.
type ImageSlice struct {
	// Position is the through-plane (z) coordinate of the slice in mm,
	// taken from ImagePositionPatient.
	Position float64

	// OriginX and OriginY are the in-plane coordinates of the first pixel
	// (top-left corner) in mm, taken from ImagePositionPatient.
	OriginX float64
	OriginY float64

	// RowSpacing is the distance between adjacent rows in mm (the y pixel
	// spacing); ColSpacing is the distance between adjacent columns (x).
	RowSpacing float64
	ColSpacing float64

	// Rows and Cols are the pixel grid dimensions of the slice.
	Rows int
	Cols int
}

// ROIDescriptor names one structure of a structure set and carries the
// number that its contours reference.
type ROIDescriptor struct {
	// Name is the human-readable structure name (ROIName).
	Name string

	// Number is the identifier contours use to reference this structure
	// (ROINumber / ReferencedROINumber).
	Number int
}

// Contour is one closed polygon outlining a structure on a single slice.
// All points share one through-plane coordinate.
type Contour struct {
	// ROINumber identifies the structure this contour belongs to.
	ROINumber int

	// Points are the polygon vertices in patient coordinates (mm), in
	// tracing order.
	Points []r3.Vec
}

// Z returns the through-plane coordinate of the contour, or 0 for an empty
// contour.
func (c Contour) Z() float64 {
	if len(c.Points) == 0 {
		return 0
	}
	return c.Points[0].Z
}

// StructureSet is the full content of one RTSTRUCT record: the named
// structures and every contour belonging to any of them.
type StructureSet struct {
	ROIs     []ROIDescriptor
	Contours []Contour
}
