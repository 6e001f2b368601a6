package colour

import (
	"cmp"
	"slices"

	"github.com/jmylchreest/vecprep/internal/image"
	"github.com/jmylchreest/vecprep/internal/security"
)

// OpaqueThreshold is the alpha below which a pixel counts as transparent.
const OpaqueThreshold = 128

// quantStep is the pre-quantisation step applied before counting colours.
const quantStep = 8

// Histogram maps pre-quantised opaque colours to pixel counts.
type Histogram map[RGBA]int

// HistogramEntry is one colour of a Histogram with its count.
type HistogramEntry struct {
	Color RGBA
	Count int
}

// quantizeChannel rounds v to the nearest multiple of quantStep, clamped to 255.
func quantizeChannel(v uint8) uint8 {
	return security.SafeUint8((int(v) + quantStep/2) / quantStep * quantStep)
}

// QuantizeColor applies histogram pre-quantisation to c and forces it opaque.
func QuantizeColor(c RGBA) RGBA {
	return RGBA{
		R: quantizeChannel(c.R),
		G: quantizeChannel(c.G),
		B: quantizeChannel(c.B),
		A: 255,
	}
}

// BuildHistogram counts the pre-quantised colours of every pixel with alpha >= 128.
// Counted colours are opaque. A buffer with no opaque pixels yields an empty histogram.
func BuildHistogram(buf *image.Buffer) Histogram {
	h := make(Histogram)
	if buf == nil {
		return h
	}
	for i := 0; i+3 < len(buf.Pix); i += 4 {
		if buf.Pix[i+3] < OpaqueThreshold {
			continue
		}
		c := QuantizeColor(RGBA{R: buf.Pix[i], G: buf.Pix[i+1], B: buf.Pix[i+2]})
		h[c]++
	}
	return h
}

// Total returns the number of pixels counted.
func (h Histogram) Total() int {
	total := 0
	for _, n := range h {
		total += n
	}
	return total
}

// Entries returns the histogram in a deterministic order: count descending,
// then packed colour ascending.
func (h Histogram) Entries() []HistogramEntry {
	entries := make([]HistogramEntry, 0, len(h))
	for c, n := range h {
		entries = append(entries, HistogramEntry{Color: c, Count: n})
	}
	slices.SortFunc(entries, func(a, b HistogramEntry) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Color.Pack(), b.Color.Pack())
	})
	return entries
}
