package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/vecprep/internal/colour"
	"github.com/jmylchreest/vecprep/internal/pipeline"
	"github.com/jmylchreest/vecprep/internal/region"
)

// extractorFlagSet binds the palette extraction flags to cfg. The algorithm is
// bound as a string and copied into cfg when the command runs.
func extractorFlagSet(cfg *colour.ExtractorConfig, algorithm *string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("palette", pflag.ContinueOnError)
	fs.IntVarP(&cfg.ColorCount, "colours", "c", cfg.ColorCount, "maximum number of colours")
	fs.StringVarP(algorithm, "algorithm", "a", string(cfg.Algorithm), "extraction algorithm (mediancut, snap, kmeans)")
	fs.StringVar(&cfg.FixedPalette, "fixed", "", "fixed palette for the snap algorithm (preset, hex list or .pal file)")
	fs.Float64Var(&cfg.Tolerance, "tolerance", cfg.Tolerance, "snap distance limit")
	return fs
}

// prepareFlags holds the flags of commands that run the full batch path.
type prepareFlags struct {
	extract   colour.ExtractorConfig
	algorithm string
	minArea   int
}

func newPrepareFlags() *prepareFlags {
	return &prepareFlags{extract: colour.DefaultExtractorConfig()}
}

func (f *prepareFlags) register(cmd *cobra.Command) {
	cmd.Flags().AddFlagSet(extractorFlagSet(&f.extract, &f.algorithm))
	cmd.Flags().IntVar(&f.minArea, "min-area", 0, "drop regions smaller than this (default: $VECPREP_MIN_AREA or 2)")
}

// options resolves pipeline options from the flags and the global configuration.
func (f *prepareFlags) options(cmd *cobra.Command, opts *globalOptions) pipeline.PrepareOptions {
	f.extract.Algorithm = colour.Algorithm(f.algorithm)

	minArea := opts.config.MinArea
	if cmd.Flags().Changed("min-area") {
		minArea = f.minArea
	}

	return pipeline.PrepareOptions{
		Extractor: f.extract,
		Workers:   opts.config.Workers,
		MaxPixels: opts.config.MaxPixels,
		Segment:   region.Options{MinArea: minArea},
		Logger:    opts.logger.Named("pipeline"),
	}
}

// prepare loads path and runs the batch path on it.
func (f *prepareFlags) prepare(cmd *cobra.Command, opts *globalOptions, path string) (*pipeline.Prepared, error) {
	buf, err := loadImage(cmd, opts, path)
	if err != nil {
		return nil, err
	}
	return pipeline.Prepare(cmd.Context(), buf, f.options(cmd, opts))
}
