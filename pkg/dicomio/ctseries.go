package dicomio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"rtstruct2stl/internal/models"
)

// CTSeriesReader reads the geometry of every CT slice in a directory.
type CTSeriesReader struct{}

// ReadImageStack parses each .dcm file under dir and returns one
// ImageSlice per file, in no particular order. Pixel data is skipped;
// only placement, spacing, and grid dimensions are read.
func (CTSeriesReader) ReadImageStack(dir string) ([]models.ImageSlice, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading CT directory %s", dir)
	}

	var slices []models.ImageSlice
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".dcm") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		slice, err := readSliceGeometry(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading CT slice %s", entry.Name())
		}
		slices = append(slices, slice)
	}

	if len(slices) == 0 {
		return nil, errors.Errorf("no .dcm files found in %s", dir)
	}
	return slices, nil
}

func readSliceGeometry(path string) (models.ImageSlice, error) {
	ds, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
	if err != nil {
		return models.ImageSlice{}, err
	}

	position, err := findFloats(ds, tag.ImagePositionPatient, 3)
	if err != nil {
		return models.ImageSlice{}, err
	}
	spacing, err := findFloats(ds, tag.PixelSpacing, 2)
	if err != nil {
		return models.ImageSlice{}, err
	}
	rows, err := findInt(ds, tag.Rows)
	if err != nil {
		return models.ImageSlice{}, err
	}
	cols, err := findInt(ds, tag.Columns)
	if err != nil {
		return models.ImageSlice{}, err
	}

	return models.ImageSlice{
		Position: position[2],
		OriginX:  position[0],
		OriginY:  position[1],
		// PixelSpacing is (row spacing, column spacing) by definition.
		RowSpacing: spacing[0],
		ColSpacing: spacing[1],
		Rows:       rows,
		Cols:       cols,
	}, nil
}

func findFloats(ds dicom.Dataset, t tag.Tag, want int) ([]float64, error) {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return nil, errors.Wrapf(err, "missing element %s", t)
	}
	vals, err := elementFloats(el)
	if err != nil {
		return nil, err
	}
	if len(vals) < want {
		return nil, errors.Errorf("element %s has %d values, want %d", t, len(vals), want)
	}
	return vals, nil
}

func findInt(ds dicom.Dataset, t tag.Tag) (int, error) {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return 0, errors.Wrapf(err, "missing element %s", t)
	}
	return elementInt(el)
}
