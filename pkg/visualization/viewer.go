// Package visualization renders planes of an occupancy grid as images so a
// reconstruction can be inspected slice by slice.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	"rtstruct2stl/pkg/volume"
)

// Viewer extracts 2D views of a binary occupancy grid along any axis.
type Viewer struct {
	mask *volume.Mask
}

// NewViewer creates a viewer over the given mask.
func NewViewer(mask *volume.Mask) *Viewer {
	return &Viewer{mask: mask}
}

// ExtractSlice returns one plane of the mask as a grayscale image.
// Axis "x" cuts across columns, "y" across rows, and "z" across slices;
// occupied cells render white.
func (v *Viewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	m := v.mask
	var img *image.Gray16

	switch axis {
	case "x", "X":
		if position >= m.Cols {
			return nil, fmt.Errorf("position %d exceeds column count %d", position, m.Cols)
		}
		img = image.NewGray16(image.Rect(0, 0, m.Slices, m.Rows))
		for row := 0; row < m.Rows; row++ {
			for slice := 0; slice < m.Slices; slice++ {
				img.SetGray16(slice, row, cellColor(m.At(slice, row, position)))
			}
		}

	case "y", "Y":
		if position >= m.Rows {
			return nil, fmt.Errorf("position %d exceeds row count %d", position, m.Rows)
		}
		img = image.NewGray16(image.Rect(0, 0, m.Cols, m.Slices))
		for slice := 0; slice < m.Slices; slice++ {
			for col := 0; col < m.Cols; col++ {
				img.SetGray16(col, slice, cellColor(m.At(slice, position, col)))
			}
		}

	case "z", "Z":
		if position >= m.Slices {
			return nil, fmt.Errorf("position %d exceeds slice count %d", position, m.Slices)
		}
		img = image.NewGray16(image.Rect(0, 0, m.Cols, m.Rows))
		for row := 0; row < m.Rows; row++ {
			for col := 0; col < m.Cols; col++ {
				img.SetGray16(col, row, cellColor(m.At(position, row, col)))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

func cellColor(occupied bool) color.Gray16 {
	if occupied {
		return color.Gray16{Y: 65535}
	}
	return color.Gray16{}
}

// SaveSlice saves an extracted plane as a JPEG image.
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence extracts and saves every plane along the given axis as
// numbered JPEG files under outputDir.
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.mask.Cols
	case "y", "Y":
		maxPos = v.mask.Rows
	case "z", "Z":
		maxPos = v.mask.Slices
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.jpg", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
