package colour

import (
	"cmp"
	"slices"
)

// bucket is a set of histogram entries produced by median cut splitting.
type bucket []HistogramEntry

// widestChannel returns the red, green or blue channel with the largest value range
// and that range. Ties prefer the lower channel index.
func (b bucket) widestChannel() (channel, spread int) {
	var lo, hi [3]uint8
	lo = [3]uint8{255, 255, 255}
	for _, e := range b {
		for ch := 0; ch < 3; ch++ {
			v := e.Color.Channel(ch)
			lo[ch] = min(lo[ch], v)
			hi[ch] = max(hi[ch], v)
		}
	}
	spread = -1
	for ch := 0; ch < 3; ch++ {
		if r := int(hi[ch]) - int(lo[ch]); r > spread {
			channel, spread = ch, r
		}
	}
	return channel, spread
}

// average returns the count-weighted mean colour of the bucket, rounded to nearest.
func (b bucket) average() RGBA {
	var sum [3]int
	total := 0
	for _, e := range b {
		sum[0] += int(e.Color.R) * e.Count
		sum[1] += int(e.Color.G) * e.Count
		sum[2] += int(e.Color.B) * e.Count
		total += e.Count
	}
	if total == 0 {
		return RGBA{A: 255}
	}
	return RGBA{
		R: uint8((sum[0] + total/2) / total),
		G: uint8((sum[1] + total/2) / total),
		B: uint8((sum[2] + total/2) / total),
		A: 255,
	}
}

// Quantize reduces a histogram to at most maxColors representative colours with median cut.
//
// When the histogram has no more than maxColors distinct colours they are returned as-is,
// in Entries order. Otherwise every step splits the bucket with the widest single-channel
// range at the median of that channel. Ties go to the lower channel index, then to the
// earlier bucket. Splitting stops at maxColors buckets or when every bucket is a single
// colour. Each bucket contributes its count-weighted average.
func Quantize(h Histogram, maxColors int) *Palette {
	if maxColors <= 0 || len(h) == 0 {
		return NewPalette(nil)
	}
	maxColors = min(maxColors, MaxPaletteSize)

	entries := h.Entries()
	if len(entries) <= maxColors {
		colors := make([]RGBA, len(entries))
		for i, e := range entries {
			colors[i] = e.Color
		}
		return NewPalette(colors)
	}

	buckets := []bucket{bucket(entries)}
	for len(buckets) < maxColors {
		target, channel, widest := -1, 0, 0
		for i, b := range buckets {
			ch, spread := b.widestChannel()
			if spread > widest {
				target, channel, widest = i, ch, spread
			}
		}
		if target < 0 {
			break
		}

		b := buckets[target]
		slices.SortFunc(b, func(x, y HistogramEntry) int {
			if c := cmp.Compare(x.Color.Channel(channel), y.Color.Channel(channel)); c != 0 {
				return c
			}
			return cmp.Compare(x.Color.Pack(), y.Color.Pack())
		})

		mid := len(b) / 2
		buckets[target] = b[:mid:mid]
		buckets = append(buckets, b[mid:])
	}

	colors := make([]RGBA, len(buckets))
	for i, b := range buckets {
		colors[i] = b.average()
	}
	return NewPalette(colors)
}
