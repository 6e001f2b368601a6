// Package cli provides the command-line interface for vecprep.
package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/vecprep/internal/config"
	"github.com/jmylchreest/vecprep/internal/version"
)

// globalOptions holds state shared by every subcommand of one root command.
type globalOptions struct {
	verbose   bool
	quiet     bool
	workers   int
	maxPixels int

	config config.Config
	logger hclog.Logger
}

// NewRootCmd builds the vecprep command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{logger: hclog.NewNullLogger()}

	rootCmd := &cobra.Command{
		Use:   "vecprep",
		Short: "Prepare raster images for vector tracing",
		Long: `vecprep reduces raster images to a small palette, segments them into
connected single-colour regions for a vector tracer, and provides selection
tools (magic wand, colour erase, brush, lasso) for cleaning up backgrounds
before tracing.

Environment:
  VECPREP_WORKERS     classification goroutines (default: one per CPU)
  VECPREP_MAX_PIXELS  downscale inputs above this many pixels (0 disables)
  VECPREP_MIN_AREA    smallest region kept by segmentation
  VECPREP_TRACER      default tracer plugin for "vecprep trace"`,
		Version:      version.Short(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().IntVar(&opts.workers, "workers", 0, "classification goroutines (default: $VECPREP_WORKERS or one per CPU)")
	rootCmd.PersistentFlags().IntVar(&opts.maxPixels, "max-pixels", 0, "downscale inputs above this many pixels (default: $VECPREP_MAX_PIXELS or 4096x4096)")

	rootCmd.SetVersionTemplate(version.String() + "\n")

	rootCmd.AddCommand(
		newVersionCmd(),
		newPaletteCmd(opts),
		newClassifyCmd(opts),
		newSegmentCmd(opts),
		newWandCmd(opts),
		newEraseCmd(opts),
		newBrushCmd(opts),
		newLassoCmd(opts),
		newMorphCmd(opts),
		newApplyCmd(opts),
		newTraceCmd(opts),
	)

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// init builds the logger and resolves configuration from the environment and flags.
func (o *globalOptions) init(cmd *cobra.Command) error {
	level := hclog.Info
	switch {
	case o.quiet:
		level = hclog.Error
	case o.verbose:
		level = hclog.Debug
	}
	o.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "vecprep",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})

	cfg, err := config.NewBuilder().WithEnvConfig().Build()
	if err != nil {
		return fmt.Errorf("invalid environment configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("max-pixels") {
		cfg.MaxPixels = o.maxPixels
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	o.config = cfg
	o.logger.Trace("configuration", "workers", cfg.Workers, "max_pixels", cfg.MaxPixels, "min_area", cfg.MinArea)
	return nil
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
