package cli

import (
	"fmt"
	goimage "image"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/jmylchreest/vecprep/internal/colour"
	"github.com/jmylchreest/vecprep/internal/image"
	"github.com/jmylchreest/vecprep/internal/mask"
	"github.com/jmylchreest/vecprep/internal/selection"
	"github.com/jmylchreest/vecprep/internal/util/imagecache"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// parsePoint parses "x,y".
func parsePoint(s string) (goimage.Point, error) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return goimage.Point{}, fmt.Errorf("invalid point %q (expected x,y)", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return goimage.Point{}, fmt.Errorf("invalid x in point %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return goimage.Point{}, fmt.Errorf("invalid y in point %q: %w", s, err)
	}
	return goimage.Pt(x, y), nil
}

// parsePoints parses a space or semicolon separated list of "x,y" points.
func parsePoints(s string) ([]goimage.Point, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ' ' })
	points := make([]goimage.Point, 0, len(fields))
	for _, f := range fields {
		p, err := parsePoint(f)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// selectionFlags are shared by the commands that edit a selection mask.
type selectionFlags struct {
	maskIn    string
	maskOut   string
	applyOut  string
	keep      bool
	history   int
	undoSteps int
}

// flagSet returns the selection flags as a set that commands add with AddFlagSet.
func (f *selectionFlags) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("selection", pflag.ContinueOnError)
	fs.StringVar(&f.maskIn, "mask-in", "", "start from an existing mask (raw .vpmk[.xz|.gz] or greyscale image)")
	fs.StringVarP(&f.maskOut, "mask", "m", "", "write the resulting mask to this file ('-' for stdout)")
	fs.StringVar(&f.applyOut, "apply", "", "commit the selection and write the resulting image to this file")
	fs.BoolVar(&f.keep, "keep", false, "with --apply, keep the selection and make everything else transparent")
	fs.IntVar(&f.history, "history", 0, "undo history depth (default: sized to the image)")
	fs.IntVar(&f.undoSteps, "undo", 0, "undo this many steps before writing output")
	return fs
}

// openEngine loads the image and optional starting mask into a selection engine.
func (f *selectionFlags) openEngine(cmd *cobra.Command, opts *globalOptions, imagePath string) (*selection.Engine, error) {
	buf, err := loadImage(cmd, opts, imagePath)
	if err != nil {
		return nil, err
	}

	engineOpts := []selection.Option{selection.WithLogger(opts.logger.Named("selection"))}
	if f.history > 0 {
		engineOpts = append(engineOpts, selection.WithHistoryLimit(f.history))
	}
	if f.keep {
		engineOpts = append(engineOpts, selection.WithApplyMode(mask.ApplyKeep))
	}

	engine, err := selection.New(buf, engineOpts...)
	if err != nil {
		return nil, err
	}

	if f.maskIn != "" {
		m, err := mask.ReadFile(f.maskIn)
		if err != nil {
			return nil, err
		}
		if err := engine.SetMask(m); err != nil {
			return nil, fmt.Errorf("mask %s does not fit image: %w", f.maskIn, err)
		}
	}
	return engine, nil
}

// finish undoes the requested steps, then writes the mask and applied image.
func (f *selectionFlags) finish(cmd *cobra.Command, opts *globalOptions, engine *selection.Engine) error {
	for i := 0; i < f.undoSteps; i++ {
		if !engine.Undo() {
			opts.logger.Warn("undo history exhausted", "requested", f.undoSteps, "undone", i)
			break
		}
	}

	m := engine.Mask()
	if f.maskOut != "" {
		if err := writeMask(cmd, f.maskOut, m); err != nil {
			return err
		}
	}

	if f.applyOut != "" {
		out, err := engine.Commit()
		if err != nil {
			return err
		}
		if err := image.SaveBuffer(f.applyOut, out); err != nil {
			return err
		}
		opts.logger.Info("image written", "path", f.applyOut)
	} else if err := engine.Cancel(); err != nil {
		return err
	}

	if !opts.quiet {
		reportMask(cmd.ErrOrStderr(), m)
	}
	return nil
}

// writeMask writes m to path, or the raw format to stdout for "-".
func writeMask(cmd *cobra.Command, path string, m *mask.Mask) error {
	if path != "-" {
		return mask.WriteFile(path, m)
	}
	out := cmd.OutOrStdout()
	if isTerminal(out) {
		return fmt.Errorf("refusing to write binary mask to a terminal")
	}
	return mask.Encode(out, m)
}

// reportMask prints the selected pixel count and bounds of m.
func reportMask(w io.Writer, m *mask.Mask) {
	b, ok := mask.Bounds(m)
	if !ok {
		fmt.Fprintln(w, "Selection: empty")
		return
	}
	fmt.Fprintf(w, "Selection: %d pixels, bounds %s\n", m.Count(), b)
}

// loadImage reads an image file, or an http(s) URL through the download cache,
// into a buffer.
func loadImage(cmd *cobra.Command, opts *globalOptions, path string) (*image.Buffer, error) {
	if imagecache.IsRemote(path) {
		local, err := imagecache.DownloadAndCache(cmd.Context(), path, imagecache.CacheOptions{})
		if err != nil {
			return nil, err
		}
		opts.logger.Debug("remote image cached", "url", path, "path", local)
		path = local
	}
	if err := image.ValidateImagePath(path); err != nil {
		return nil, err
	}
	buf, err := image.LoadBuffer(image.NewFileLoader(), path)
	if err != nil {
		return nil, err
	}
	opts.logger.Debug("image loaded", "path", path, "width", buf.Width, "height", buf.Height)
	return buf, nil
}

// formatHex formats a colour as hex with an optional terminal preview.
func formatHex(c colour.RGBA, preview bool) string {
	if preview {
		return colour.FormatColourWithPreview(c, 8)
	}
	return c.Hex()
}

// formatRGB formats a colour as rgb(r, g, b) with an optional terminal preview.
func formatRGB(c colour.RGBA, preview bool) string {
	rgb := fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	if preview {
		return colour.ColourPreview(c, 8) + " " + rgb
	}
	return rgb
}
