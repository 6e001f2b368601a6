package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/vecprep/internal/colour"
	"github.com/jmylchreest/vecprep/internal/image"
)

func newClassifyCmd(opts *globalOptions) *cobra.Command {
	pf := newPrepareFlags()
	var (
		output string
		dither bool
	)

	cmd := &cobra.Command{
		Use:   "classify <image>",
		Short: "Reduce an image to its extracted palette",
		Long: `Reduce an image to its extracted palette.

Every opaque pixel is replaced by its nearest palette colour; pixels with alpha
below 128 become fully transparent. With --dither the palette is applied with
Floyd-Steinberg error diffusion instead, which looks better but produces noisy
regions for tracing.`,
		Example: `  vecprep classify logo.png -c 6 -o logo-6.png
  vecprep classify photo.jpg -c 16 --dither -o poster.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}

			prepared, err := pf.prepare(cmd, opts, args[0])
			if err != nil {
				return err
			}

			out := prepared.Classification.Render(prepared.Palette)
			if dither {
				out = colour.Dither(prepared.Buffer, prepared.Palette)
			}
			if err := image.SaveBuffer(output, out); err != nil {
				return err
			}

			opts.logger.Info("image written", "path", output, "colours", prepared.Palette.Len())
			if !opts.quiet {
				w := cmd.OutOrStdout()
				swatch := isTerminal(w)
				colour.DisableColourOutput = !swatch
				counts := prepared.Classification.Counts(prepared.Palette.Len())
				for idx, c := range prepared.Palette.All() {
					label := c.Hex()
					if swatch {
						label = colour.ColourPreviewWithText(c, label, 9)
					}
					fmt.Fprintf(w, "%s %d\n", label, counts[idx])
				}
			}
			return nil
		},
	}

	pf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output image path")
	cmd.Flags().BoolVar(&dither, "dither", false, "apply the palette with error diffusion")

	return cmd
}
