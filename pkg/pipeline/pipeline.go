// Package pipeline converts one named structure of an RTSTRUCT record into
// a centered triangulated surface. It strings together the slice stack
// index, the contour rasterizer, the volume assembler, the isosurface
// extractor, and the mesh exporter, and is the single entry point shared by
// every caller.
package pipeline

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"rtstruct2stl/internal/models"
	"rtstruct2stl/pkg/dicomio"
	"rtstruct2stl/pkg/marching"
	"rtstruct2stl/pkg/mesh"
	"rtstruct2stl/pkg/volume"
)

// StructureSetReader yields the structures and contours of one
// structure-set source.
type StructureSetReader interface {
	ReadStructureSet(path string) (*models.StructureSet, error)
}

// ImageStackReader yields the slice descriptors of one reference image
// stack.
type ImageStackReader interface {
	ReadImageStack(dir string) ([]models.ImageSlice, error)
}

// Exporter persists a surface in a triangulated-surface interchange
// format. Format correctness is the exporter's responsibility.
type Exporter interface {
	Export(s *mesh.Surface, path string) error
}

// Params holds one extraction request. Callers pass it in explicitly;
// the pipeline keeps no global state between requests.
type Params struct {
	// StructurePath is the RTSTRUCT file to read.
	StructurePath string

	// ImageDir is the directory holding the reference CT series.
	ImageDir string

	// ROIName selects the structure to extract, matched
	// case-insensitively.
	ROIName string

	// OutputFile is where the exported surface is written.
	OutputFile string

	// MaxSliceDistance bounds the contour-to-slice assignment distance in
	// mm. Zero leaves nearest-slice assignment unbounded.
	MaxSliceDistance float64

	// IsoLevel is the extraction isovalue. Zero selects the occupancy
	// midpoint of 0.5.
	IsoLevel float64
}

// Extractor runs the extraction pipeline for one request at a time.
// Concurrent invocations against the same output path must be serialized
// by the caller. The reader and exporter fields default to the DICOM
// readers and the binary STL exporter and may be replaced before use.
type Extractor struct {
	Structures StructureSetReader
	Images     ImageStackReader
	Exporter   Exporter

	params  *Params
	log     logrus.FieldLogger
	mask    *volume.Mask
	surface *mesh.Surface
}

// New creates an extractor wired to the DICOM readers and STL exporter.
func New(params *Params) *Extractor {
	return &Extractor{
		Structures: dicomio.RTStructReader{},
		Images:     dicomio.CTSeriesReader{},
		Exporter:   mesh.STLExporter{},
		params:     params,
		log:        logrus.StandardLogger(),
	}
}

// SetLogger replaces the extractor's logger.
func (e *Extractor) SetLogger(log logrus.FieldLogger) {
	e.log = log
}

// ResolveROI maps a structure name to its contour-set number by
// case-insensitive exact match.
func ResolveROI(rois []models.ROIDescriptor, name string) (int, error) {
	for _, roi := range rois {
		if strings.EqualFold(roi.Name, name) {
			return roi.Number, nil
		}
	}
	return 0, &StructureNotFoundError{Name: name}
}

// ListROINames returns the structure names of the request's structure set
// in record order, for interactive selection.
func (e *Extractor) ListROINames() ([]string, error) {
	set, err := e.Structures.ReadStructureSet(e.params.StructurePath)
	if err != nil {
		return nil, errors.Wrap(err, "reading structure set")
	}
	names := make([]string, len(set.ROIs))
	for i, roi := range set.ROIs {
		names[i] = roi.Name
	}
	return names, nil
}

// ExtractSurface runs the pipeline up to the centered surface: read the
// structure set and image stack, resolve the ROI, assemble the occupancy
// grid, extract the isosurface with the stack's anisotropic spacing, and
// translate the mesh so its centroid sits at the origin.
func (e *Extractor) ExtractSurface() (*mesh.Surface, error) {
	set, err := e.Structures.ReadStructureSet(e.params.StructurePath)
	if err != nil {
		return nil, errors.Wrap(err, "reading structure set")
	}

	slices, err := e.Images.ReadImageStack(e.params.ImageDir)
	if err != nil {
		return nil, errors.Wrap(err, "reading image stack")
	}

	stack, err := volume.NewStack(slices)
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"slices":    len(stack.Slices),
		"rows":      stack.Rows,
		"cols":      stack.Cols,
		"thickness": stack.Thickness,
	}).Info("built slice stack")

	roiNumber, err := ResolveROI(set.ROIs, e.params.ROIName)
	if err != nil {
		return nil, err
	}

	mask, err := volume.BuildMask(roiNumber, set.Contours, stack, e.params.MaxSliceDistance)
	if err != nil {
		return nil, err
	}
	e.mask = mask
	e.log.WithFields(logrus.Fields{
		"roi":      e.params.ROIName,
		"occupied": mask.Count(),
	}).Info("assembled occupancy grid")

	iso := e.params.IsoLevel
	if iso == 0 {
		iso = 0.5
	}
	ex := marching.New(mask.Floats(), stack.Cols, stack.Rows, mask.Slices, iso)
	ex.SetSpacing(stack.ColSpacing, stack.RowSpacing, stack.Thickness)
	surface, err := ex.Run()
	if err != nil {
		return nil, err
	}

	offset := surface.Center()
	e.surface = surface
	e.log.WithFields(logrus.Fields{
		"vertices": len(surface.Vertices),
		"faces":    len(surface.Faces),
		"offset":   offset,
	}).Info("extracted and centered surface")

	return surface, nil
}

// Process runs ExtractSurface and hands the surface to the exporter.
func (e *Extractor) Process() error {
	surface, err := e.ExtractSurface()
	if err != nil {
		return err
	}
	if err := e.Exporter.Export(surface, e.params.OutputFile); err != nil {
		return errors.Wrap(err, "exporting surface")
	}
	e.log.WithField("output", e.params.OutputFile).Info("surface exported")
	return nil
}

// Mask returns the occupancy grid of the last extraction, or nil before
// the first successful run. Used for inspection output.
func (e *Extractor) Mask() *volume.Mask {
	return e.mask
}

// Surface returns the centered surface of the last extraction, or nil
// before the first successful run.
func (e *Extractor) Surface() *mesh.Surface {
	return e.surface
}
