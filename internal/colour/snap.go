package colour

// SnapToPalette returns the subset of fixed that the histogram actually uses.
//
// Each histogram colour is matched to its nearest fixed colour by unweighted distance,
// with ties going to the lower index. The fixed colour counts as used when that distance
// is within tolerance. The result keeps the fixed palette's order.
func SnapToPalette(h Histogram, fixed *Palette, tolerance float64) *Palette {
	if fixed.Len() == 0 || len(h) == 0 || tolerance < 0 {
		return NewPalette(nil)
	}

	used := make([]bool, fixed.Len())
	for c := range h {
		idx, _ := fixed.Nearest(c)
		if used[idx] {
			continue
		}
		if Distance(c, fixed.Colors[idx], false) <= tolerance {
			used[idx] = true
		}
	}

	out := make([]RGBA, 0, fixed.Len())
	for i, c := range fixed.Colors {
		if used[i] {
			out = append(out, c)
		}
	}
	return NewPalette(out)
}
