// Command rtstruct2stl converts a single structure of a DICOM RTSTRUCT
// record into a binary STL surface model centered at the origin.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"rtstruct2stl/pkg/config"
	"rtstruct2stl/pkg/pipeline"
	"rtstruct2stl/pkg/visualization"
)

var log = logrus.New()

func main() {
	root := &cobra.Command{
		Use:           "rtstruct2stl",
		Short:         "Convert DICOM RTSTRUCT contours into centered STL surface models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newListCmd(), newConvertCmd())

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newListCmd() *cobra.Command {
	var rtstructPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the structure names available in an RTSTRUCT file",
		RunE: func(cmd *cobra.Command, args []string) error {
			e := pipeline.New(&pipeline.Params{StructurePath: rtstructPath})
			e.SetLogger(log)

			names, err := e.ListROINames()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rtstructPath, "rtstruct", "", "RTSTRUCT (.dcm) file to read")
	cmd.MarkFlagRequired("rtstruct")
	return cmd
}

func newConvertCmd() *cobra.Command {
	var (
		rtstructPath string
		ctDir        string
		roiName      string
		outputFile   string
		configPath   string
		isoLevel     float64
		maxSliceDist float64
		saveSlices   bool
		slicesDir    string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Extract one structure and export it as a centered STL model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			// Explicit flags win over config-file values.
			if cmd.Flags().Changed("iso-level") {
				cfg.Pipeline.IsoLevel = isoLevel
			}
			if cmd.Flags().Changed("max-slice-distance") {
				cfg.Pipeline.MaxSliceDistance = maxSliceDist
			}
			if cmd.Flags().Changed("save-mask-slices") {
				cfg.Output.SaveMaskSlices = saveSlices
			}
			if cmd.Flags().Changed("slices-dir") {
				cfg.Output.MaskSlicesDir = slicesDir
			}
			if cmd.Flags().Changed("verbose") {
				cfg.Output.Verbose = verbose
			}
			if cfg.Output.Verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			e := pipeline.New(&pipeline.Params{
				StructurePath:    rtstructPath,
				ImageDir:         ctDir,
				ROIName:          roiName,
				OutputFile:       outputFile,
				MaxSliceDistance: cfg.Pipeline.MaxSliceDistance,
				IsoLevel:         cfg.Pipeline.IsoLevel,
			})
			e.SetLogger(log)

			start := time.Now()
			if err := e.Process(); err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"output":  outputFile,
				"elapsed": time.Since(start).Round(time.Millisecond),
			}).Info("conversion finished")

			if cfg.Output.SaveMaskSlices {
				viewer := visualization.NewViewer(e.Mask())
				for _, axis := range []string{"x", "y", "z"} {
					axisDir := fmt.Sprintf("%s/%s", cfg.Output.MaskSlicesDir, axis)
					if err := viewer.SaveSliceSequence(axis, axisDir); err != nil {
						log.WithField("axis", axis).Warnf("failed to save mask slices: %v", err)
					}
				}
				log.WithField("dir", cfg.Output.MaskSlicesDir).Info("mask slices saved")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rtstructPath, "rtstruct", "", "RTSTRUCT (.dcm) file to read")
	cmd.Flags().StringVar(&ctDir, "ct-dir", "", "directory containing the reference CT series")
	cmd.Flags().StringVar(&roiName, "roi", "", "structure name to extract (case-insensitive)")
	cmd.Flags().StringVar(&outputFile, "output", "output.stl", "output STL filename")
	cmd.Flags().StringVar(&configPath, "config", "rtstruct2stl.yaml", "configuration file")
	cmd.Flags().Float64Var(&isoLevel, "iso-level", 0.5, "isosurface extraction threshold")
	cmd.Flags().Float64Var(&maxSliceDist, "max-slice-distance", 0, "max contour-to-slice distance in mm (0 = unbounded)")
	cmd.Flags().BoolVar(&saveSlices, "save-mask-slices", false, "save the occupancy grid as per-axis image sequences")
	cmd.Flags().StringVar(&slicesDir, "slices-dir", "mask_slices", "directory for saved mask slices")
	cmd.Flags().BoolVar(&verbose, "verbose", true, "verbose logging")
	cmd.MarkFlagRequired("rtstruct")
	cmd.MarkFlagRequired("ct-dir")
	cmd.MarkFlagRequired("roi")
	return cmd
}
