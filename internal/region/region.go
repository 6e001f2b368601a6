// Package region segments a colour classification into 4-connected regions,
// the unit handed to a vector tracer.
package region

import (
	"errors"
	"fmt"
	goimage "image"
	"slices"

	"github.com/jmylchreest/vecprep/internal/colour"
	"github.com/jmylchreest/vecprep/internal/image"
	"github.com/jmylchreest/vecprep/internal/mask"
)

// DefaultMinArea drops single-pixel specks.
const DefaultMinArea = 2

// ErrPaletteMismatch is returned when a classification holds an index the palette lacks.
var ErrPaletteMismatch = errors.New("classification does not match palette")

// Options configures Segment.
type Options struct {
	// MinArea is the smallest pixel count kept. Values below 1 keep every region.
	MinArea int
}

// DefaultOptions returns the default segmentation options.
func DefaultOptions() Options {
	return Options{MinArea: DefaultMinArea}
}

// Region is one 4-connected component of a single palette index.
type Region struct {
	ColorIndex colour.Index
	Color      colour.RGBA
	// Pixels are listed in flood fill discovery order, starting with the
	// first pixel of the region in row-major scan order.
	Pixels []goimage.Point
	Bounds image.Bounds
}

// Area returns the number of pixels in the region.
func (r *Region) Area() int {
	return len(r.Pixels)
}

// Mask rasterises the region into a fully selected mask of the given size.
func (r *Region) Mask(width, height int) *mask.Mask {
	m := mask.New(width, height)
	for _, p := range r.Pixels {
		m.Set(p.X, p.Y, 255)
	}
	return m
}

// Run is a horizontal span of region pixels on row Y covering [X0, X1].
type Run struct {
	Y  int `json:"y"`
	X0 int `json:"x0"`
	X1 int `json:"x1"`
}

// Runs returns the region as row-major horizontal spans.
func (r *Region) Runs() []Run {
	pts := slices.Clone(r.Pixels)
	slices.SortFunc(pts, func(a, b goimage.Point) int {
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})

	var runs []Run
	for _, p := range pts {
		if n := len(runs); n > 0 && runs[n-1].Y == p.Y && runs[n-1].X1+1 == p.X {
			runs[n-1].X1 = p.X
			continue
		}
		runs = append(runs, Run{Y: p.Y, X0: p.X, X1: p.X})
	}
	return runs
}

// bitset is a fixed-size visited set.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) test(i int) bool {
	return b[i>>6]&(1<<(uint(i)&63)) != 0
}

func (b bitset) set(i int) {
	b[i>>6] |= 1 << (uint(i) & 63)
}

// Segment partitions the non-transparent pixels of c into 4-connected regions of equal
// palette index. Regions smaller than opts.MinArea are dropped. The result is sorted by
// descending area; equal areas keep row-major order of their first pixel.
func Segment(c *colour.Classification, pal *colour.Palette, opts Options) ([]Region, error) {
	if err := c.Validate(pal); err != nil {
		if errors.Is(err, image.ErrInvalidDimensions) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrPaletteMismatch, err)
	}

	w, h := c.Width, c.Height
	visited := newBitset(w * h)
	var regions []Region
	var stack []int

	for start, idx := range c.Indices {
		if idx == colour.Transparent || visited.test(start) {
			continue
		}

		sx, sy := start%w, start/w
		r := Region{
			ColorIndex: idx,
			Color:      pal.At(idx),
			Bounds:     image.PointBounds(sx, sy),
		}

		visited.set(start)
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			x, y := i%w, i/w
			r.Pixels = append(r.Pixels, goimage.Point{X: x, Y: y})
			r.Bounds.Extend(x, y)

			if x > 0 {
				stack = push(stack, c, visited, i-1, idx)
			}
			if x < w-1 {
				stack = push(stack, c, visited, i+1, idx)
			}
			if y > 0 {
				stack = push(stack, c, visited, i-w, idx)
			}
			if y < h-1 {
				stack = push(stack, c, visited, i+w, idx)
			}
		}

		if r.Area() < opts.MinArea {
			continue
		}
		regions = append(regions, r)
	}

	slices.SortStableFunc(regions, func(a, b Region) int {
		return b.Area() - a.Area()
	})
	return regions, nil
}

func push(stack []int, c *colour.Classification, visited bitset, i int, idx colour.Index) []int {
	if visited.test(i) || c.Indices[i] != idx {
		return stack
	}
	visited.set(i)
	return append(stack, i)
}
