package colour

import (
	"context"
	"fmt"

	"github.com/jmylchreest/vecprep/internal/image"
	"github.com/jmylchreest/vecprep/internal/parallel"
)

// Classification assigns every pixel of a W x H buffer a palette index or Transparent.
type Classification struct {
	Width   int
	Height  int
	Indices []Index
}

// NewClassification allocates a classification with every pixel Transparent.
func NewClassification(width, height int) *Classification {
	c := &Classification{
		Width:   width,
		Height:  height,
		Indices: make([]Index, width*height),
	}
	for i := range c.Indices {
		c.Indices[i] = Transparent
	}
	return c
}

// At returns the index at (x, y). Out of range coordinates return Transparent.
func (c *Classification) At(x, y int) Index {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return Transparent
	}
	return c.Indices[y*c.Width+x]
}

// Validate checks that the classification is total and consistent with pal: the index
// slice covers every pixel and every index is Transparent or addresses pal.
func (c *Classification) Validate(pal *Palette) error {
	if c.Width < 0 || c.Height < 0 || len(c.Indices) != c.Width*c.Height {
		return fmt.Errorf("classification holds %d indices for %dx%d: %w",
			len(c.Indices), c.Width, c.Height, image.ErrInvalidDimensions)
	}
	for i, idx := range c.Indices {
		if idx != Transparent && int(idx) >= pal.Len() {
			return fmt.Errorf("pixel %d has index %d, palette has %d colors", i, idx, pal.Len())
		}
	}
	return nil
}

// Counts returns the number of pixels per palette index. Transparent pixels are not counted.
func (c *Classification) Counts(paletteLen int) []int {
	counts := make([]int, paletteLen)
	for _, idx := range c.Indices {
		if int(idx) < paletteLen {
			counts[idx]++
		}
	}
	return counts
}

// Render paints every classified pixel with its palette colour at full opacity.
// Transparent pixels stay fully transparent.
func (c *Classification) Render(pal *Palette) *image.Buffer {
	out := image.NewBuffer(c.Width, c.Height)
	for i, idx := range c.Indices {
		if idx == Transparent || int(idx) >= pal.Len() {
			continue
		}
		col := pal.Colors[idx]
		o := i * 4
		out.Pix[o] = col.R
		out.Pix[o+1] = col.G
		out.Pix[o+2] = col.B
		out.Pix[o+3] = 255
	}
	return out
}

// classifyRows classifies rows [y0, y1) of buf into out. Nearest colours are memoised
// per call since images usually repeat a small set of colours.
func classifyRows(buf *image.Buffer, pal *Palette, out []Index, y0, y1 int) {
	cache := make(map[RGBA]Index)
	for i := y0 * buf.Width; i < y1*buf.Width; i++ {
		o := i * 4
		if buf.Pix[o+3] < OpaqueThreshold || pal.Len() == 0 {
			out[i] = Transparent
			continue
		}
		px := RGBA{R: buf.Pix[o], G: buf.Pix[o+1], B: buf.Pix[o+2], A: 255}
		idx, ok := cache[px]
		if !ok {
			idx, _ = pal.Nearest(px)
			cache[px] = idx
		}
		out[i] = idx
	}
}

// Classify maps every pixel of buf to its nearest palette index. Pixels with alpha below
// OpaqueThreshold, and every pixel when pal is empty, become Transparent. Distance
// ties go to the lowest index. A buffer whose pixel data does not match its size
// returns image.ErrInvalidDimensions.
func Classify(buf *image.Buffer, pal *Palette) (*Classification, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("cannot classify: %w", err)
	}
	c := NewClassification(buf.Width, buf.Height)
	classifyRows(buf, pal, c.Indices, 0, buf.Height)
	return c, nil
}

// ClassifyParallel is Classify split across workers by row bands. The result is
// identical to Classify. A cancelled ctx aborts and returns ctx.Err().
func ClassifyParallel(ctx context.Context, buf *image.Buffer, pal *Palette, workers int) (*Classification, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("cannot classify: %w", err)
	}
	c := NewClassification(buf.Width, buf.Height)
	err := parallel.ForEachBand(ctx, buf.Height, workers, func(b parallel.Band) {
		classifyRows(buf, pal, c.Indices, b.Y0, b.Y1)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
