package volume

import (
	"rtstruct2stl/internal/models"
)

// BuildMask rasterizes every contour belonging to the given ROI and unions
// the results into one occupancy grid matching the stack's shape.
//
// Contours mapping to the same slice combine by logical OR: occupied cells
// are never cleared by a later contour, so nested contours intended as
// holes are unioned rather than subtracted. An ROI with no contours yields
// an all-zero mask, not an error.
func BuildMask(roiNumber int, contours []models.Contour, st *Stack, maxSliceDist float64) (*Mask, error) {
	mask := NewMask(st.Shape())

	for _, c := range contours {
		if c.ROINumber != roiNumber {
			continue
		}
		slice, plane, err := Rasterize(c, st, maxSliceDist)
		if err != nil {
			return nil, err
		}
		mask.Or(slice, plane)
	}

	return mask, nil
}
