package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/vecprep/internal/colour"
	"github.com/jmylchreest/vecprep/internal/image"
)

type paletteOptions struct {
	extract colour.ExtractorConfig
	format  string
	preview bool
	output  string
	savePal string
}

func newPaletteCmd(opts *globalOptions) *cobra.Command {
	po := &paletteOptions{extract: colour.DefaultExtractorConfig()}
	var algorithm string

	cmd := &cobra.Command{
		Use:   "palette <image>",
		Short: "Extract a reduced palette from an image",
		Long: `Extract a reduced palette from an image.

Opaque pixels are pre-quantised to a step of 8 per channel and counted. The
median-cut algorithm then splits the colour space into at most --colours
buckets. The snap algorithm instead keeps the colours of a fixed palette that
the image actually uses, within --tolerance.

Fixed palettes may be a preset name (` + strings.Join(colour.PresetNames(), ", ") + `),
a comma-separated hex list, or a RIFF .pal file.`,
		Example: `  # Extract up to 8 colours
  vecprep palette logo.png -c 8

  # Snap to black and white, as JSON
  vecprep palette scan.png -a snap --fixed bw --format json

  # Save the palette for other tools
  vecprep palette logo.png --save-pal logo.pal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			po.extract.Algorithm = colour.Algorithm(algorithm)
			return runPalette(cmd, opts, po, args[0])
		},
	}

	cmd.Flags().AddFlagSet(extractorFlagSet(&po.extract, &algorithm))
	cmd.Flags().StringVar(&po.format, "format", "hex", "output format (hex, rgb, json)")
	cmd.Flags().BoolVar(&po.preview, "preview", false, "show colour swatches")
	cmd.Flags().StringVarP(&po.output, "output", "o", "", "write the output to a file instead of stdout")
	cmd.Flags().StringVar(&po.savePal, "save-pal", "", "also save the palette as a RIFF .pal file")

	return cmd
}

func runPalette(cmd *cobra.Command, opts *globalOptions, po *paletteOptions, path string) error {
	extractor, err := colour.NewExtractor(po.extract)
	if err != nil {
		return err
	}

	buf, err := loadImage(cmd, opts, path)
	if err != nil {
		return err
	}
	buf = image.DownscaleBuffer(buf, opts.config.MaxPixels)

	pal, err := extractor.Extract(buf, po.extract.ColorCount)
	if err != nil {
		return fmt.Errorf("failed to extract palette: %w", err)
	}
	opts.logger.Debug("palette extracted", "algorithm", po.extract.Algorithm, "colours", pal.Len())

	out := cmd.OutOrStdout()
	if po.output != "" {
		f, err := os.Create(po.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	preview := po.preview && po.output == "" && isTerminal(out)
	colour.DisableColourOutput = !preview

	switch po.format {
	case "hex":
		for _, c := range pal.Colors {
			fmt.Fprintln(out, formatHex(c, preview))
		}
	case "rgb":
		for _, c := range pal.Colors {
			fmt.Fprintln(out, formatRGB(c, preview))
		}
	case "json":
		data, err := pal.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to encode palette: %w", err)
		}
		fmt.Fprintln(out, string(data))
	default:
		return fmt.Errorf("invalid format: %s (valid formats: hex, rgb, json)", po.format)
	}

	if po.savePal != "" {
		f, err := os.Create(po.savePal)
		if err != nil {
			return fmt.Errorf("failed to create palette file: %w", err)
		}
		if err := colour.WriteRIFFPalette(f, pal); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close palette file: %w", err)
		}
		opts.logger.Info("palette saved", "path", po.savePal)
	}
	return nil
}
