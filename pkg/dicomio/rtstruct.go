// Package dicomio reads the two DICOM inputs of the pipeline: the RTSTRUCT
// structure set and the reference CT series geometry. Only headers are
// consumed; pixel data is skipped.
package dicomio

import (
	"github.com/pkg/errors"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
	"gonum.org/v1/gonum/spatial/r3"

	"rtstruct2stl/internal/models"
)

// RTStructReader reads an RTSTRUCT file into a StructureSet record.
type RTStructReader struct{}

// ReadStructureSet parses the RTSTRUCT at path, collecting one descriptor
// per entry of the StructureSetROISequence and every contour of the
// ROIContourSequence. Contours with unparseable geometry fail the read;
// the caller gets either the complete record or an error.
func (RTStructReader) ReadStructureSet(path string) (*models.StructureSet, error) {
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing RTSTRUCT %s", path)
	}

	set := &models.StructureSet{}

	roiSeq, err := ds.FindElementByTag(tag.StructureSetROISequence)
	if err != nil {
		return nil, errors.Wrap(err, "RTSTRUCT has no StructureSetROISequence")
	}
	for _, item := range sequenceItems(roiSeq) {
		nameEl, ok := itemElement(item, tag.ROIName)
		if !ok {
			continue
		}
		numberEl, ok := itemElement(item, tag.ROINumber)
		if !ok {
			continue
		}
		name, err := elementString(nameEl)
		if err != nil {
			return nil, err
		}
		number, err := elementInt(numberEl)
		if err != nil {
			return nil, err
		}
		set.ROIs = append(set.ROIs, models.ROIDescriptor{Name: name, Number: number})
	}

	contourSeq, err := ds.FindElementByTag(tag.ROIContourSequence)
	if err != nil {
		// A structure set without contours is unusual but legal; every
		// extraction from it yields an empty grid.
		return set, nil
	}
	for _, roiItem := range sequenceItems(contourSeq) {
		refEl, ok := itemElement(roiItem, tag.ReferencedROINumber)
		if !ok {
			continue
		}
		roiNumber, err := elementInt(refEl)
		if err != nil {
			return nil, err
		}

		seqEl, ok := itemElement(roiItem, tag.ContourSequence)
		if !ok {
			continue
		}
		for _, contourItem := range sequenceItems(seqEl) {
			dataEl, ok := itemElement(contourItem, tag.ContourData)
			if !ok {
				continue
			}
			coords, err := elementFloats(dataEl)
			if err != nil {
				return nil, err
			}
			points, err := groupPoints(coords)
			if err != nil {
				return nil, err
			}
			set.Contours = append(set.Contours, models.Contour{
				ROINumber: roiNumber,
				Points:    points,
			})
		}
	}

	return set, nil
}

// groupPoints folds a flat x,y,z,... coordinate list into 3D points.
func groupPoints(coords []float64) ([]r3.Vec, error) {
	if len(coords)%3 != 0 {
		return nil, errors.Errorf("contour data has %d values, not a multiple of 3", len(coords))
	}
	points := make([]r3.Vec, 0, len(coords)/3)
	for i := 0; i+2 < len(coords); i += 3 {
		points = append(points, r3.Vec{X: coords[i], Y: coords[i+1], Z: coords[i+2]})
	}
	return points, nil
}
