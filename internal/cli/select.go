package cli

import (
	"fmt"
	goimage "image"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/vecprep/internal/colour"
	"github.com/jmylchreest/vecprep/internal/image"
	"github.com/jmylchreest/vecprep/internal/mask"
	"github.com/jmylchreest/vecprep/internal/selection"
)

const selectionHelp = `
The selection starts empty, or from --mask-in. Use --mask to save it and
--apply to write the image with the selection erased (or, with --keep, with
everything else erased).`

func newWandCmd(opts *globalOptions) *cobra.Command {
	sf := &selectionFlags{}
	var (
		seeds     []string
		tolerance float64
		global    bool
		opName    string
	)

	cmd := &cobra.Command{
		Use:   "wand <image>",
		Short: "Select pixels similar to a seed pixel",
		Long: `Select pixels whose colour is within --tolerance of a seed pixel.

By default the selection grows from the seed through 4-connected neighbours.
With --global every matching pixel in the image is selected. Repeat --at to
apply several seeds in order.` + selectionHelp,
		Example: `  # Erase the white background around a logo
  vecprep wand logo.png --at 0,0 --tolerance 24 --apply logo-cut.png

  # Select two areas and save the mask
  vecprep wand scan.png --at 10,10 --at 200,40 --op add -m selection.vpmk`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(seeds) == 0 {
				return fmt.Errorf("at least one --at seed is required")
			}
			op, err := selection.ParseOp(opName)
			if err != nil {
				return err
			}
			points := make([]goimage.Point, len(seeds))
			for i, s := range seeds {
				if points[i], err = parsePoint(s); err != nil {
					return err
				}
			}

			engine, err := sf.openEngine(cmd, opts, args[0])
			if err != nil {
				return err
			}
			for _, p := range points {
				if err := engine.MagicWand(p, tolerance, !global, op); err != nil {
					return err
				}
			}
			return sf.finish(cmd, opts, engine)
		},
	}

	cmd.Flags().StringArrayVar(&seeds, "at", nil, "seed pixel as x,y (repeatable)")
	cmd.Flags().Float64VarP(&tolerance, "tolerance", "t", 32, "maximum RGB distance from the seed colour")
	cmd.Flags().BoolVar(&global, "global", false, "select matching pixels anywhere in the image")
	cmd.Flags().StringVar(&opName, "op", "replace", "combine with the existing selection (replace, add, subtract)")
	cmd.Flags().AddFlagSet(sf.flagSet())

	return cmd
}

func newEraseCmd(opts *globalOptions) *cobra.Command {
	var (
		colours   []string
		tolerance float64
		output    string
	)

	cmd := &cobra.Command{
		Use:   "erase <image>",
		Short: "Make every pixel of a colour transparent",
		Long: `Make every pixel within --tolerance of a colour fully transparent.

Colours may carry alpha (#rrggbbaa); the distance includes the alpha channel.
Pixels that are already transparent are left alone.`,
		Example: `  vecprep erase logo.jpg --colour '#ffffff' --tolerance 40 -o logo.png
  vecprep erase sprite.png --colour '#ff00ff' --colour '#00ff00' -o sprite-clean.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			if len(colours) == 0 {
				return fmt.Errorf("at least one --colour is required")
			}
			targets := make([]colour.RGBA, len(colours))
			for i, s := range colours {
				c, err := colour.ParseHex(s)
				if err != nil {
					return err
				}
				targets[i] = c
			}

			buf, err := loadImage(cmd, opts, args[0])
			if err != nil {
				return err
			}
			engine, err := selection.New(buf, selection.WithLogger(opts.logger.Named("selection")))
			if err != nil {
				return err
			}

			total := 0
			for _, c := range targets {
				n, err := engine.BulkColorErase(c, tolerance)
				if err != nil {
					return err
				}
				total += n
			}
			// The mask is still empty, so committing leaves alpha outside the erased colours alone.
			result, err := engine.Commit()
			if err != nil {
				return err
			}

			if err := image.SaveBuffer(output, result); err != nil {
				return err
			}
			if !opts.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "Erased %d pixels\n", total)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&colours, "colour", nil, "colour to erase as hex (repeatable)")
	cmd.Flags().Float64VarP(&tolerance, "tolerance", "t", 32, "maximum RGBA distance from the colour")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output image path")

	return cmd
}

func newBrushCmd(opts *globalOptions) *cobra.Command {
	sf := &selectionFlags{}
	var (
		path     string
		radius   int
		hardness float64
		erase    bool
	)

	cmd := &cobra.Command{
		Use:   "brush <image>",
		Short: "Paint or erase the selection along a path",
		Long: `Paint or erase the selection with a round brush along a path of points.

Hardness is a percentage: at 100 the brush is solid, lower values fade towards
the rim. A single point stamps the brush once.` + selectionHelp,
		Example: `  vecprep brush logo.png --path "10,10 80,10 80,60" --radius 6 -m stroke.png
  vecprep brush logo.png --mask-in sel.vpmk --path "40,40" --radius 12 --erase -m sel.vpmk`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := parsePoints(path)
			if err != nil {
				return err
			}
			if len(points) == 0 {
				return fmt.Errorf("--path needs at least one point")
			}
			mode := mask.Paint
			if erase {
				mode = mask.Erase
			}

			engine, err := sf.openEngine(cmd, opts, args[0])
			if err != nil {
				return err
			}
			if len(points) == 1 {
				points = append(points, points[0])
			}
			for i := 1; i < len(points); i++ {
				if err := engine.BrushStroke(points[i-1], points[i], radius, hardness, mode); err != nil {
					return err
				}
			}
			return sf.finish(cmd, opts, engine)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "brush path as space separated x,y points")
	cmd.Flags().IntVarP(&radius, "radius", "r", 8, "brush radius in pixels")
	cmd.Flags().Float64Var(&hardness, "hardness", 100, "brush hardness, 0-100")
	cmd.Flags().BoolVar(&erase, "erase", false, "remove from the selection instead of adding")
	cmd.Flags().AddFlagSet(sf.flagSet())

	return cmd
}

func newLassoCmd(opts *globalOptions) *cobra.Command {
	sf := &selectionFlags{}
	var points string

	cmd := &cobra.Command{
		Use:   "lasso <image>",
		Short: "Add a polygon to the selection",
		Long: `Add a closed polygon to the selection. The last point joins the first.
Pixels whose centres fall inside the polygon (even-odd rule) are selected.` + selectionHelp,
		Example: `  vecprep lasso logo.png --points "0,0 120,0 60,90" --keep --apply triangle.png`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pts, err := parsePoints(points)
			if err != nil {
				return err
			}
			if len(pts) < 3 {
				return fmt.Errorf("--points needs at least three points, got %d", len(pts))
			}

			engine, err := sf.openEngine(cmd, opts, args[0])
			if err != nil {
				return err
			}
			if err := engine.LassoClose(pts); err != nil {
				return err
			}
			return sf.finish(cmd, opts, engine)
		},
	}

	cmd.Flags().StringVar(&points, "points", "", "polygon vertices as space separated x,y points")
	cmd.Flags().AddFlagSet(sf.flagSet())

	return cmd
}
