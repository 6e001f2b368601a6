package mask

import (
	"math"

	"github.com/jmylchreest/vecprep/internal/image"
	"github.com/jmylchreest/vecprep/internal/security"
)

// The morphology functions are pure: they return a new mask and never modify their input.

// Invert returns a mask with every value replaced by 255 - value.
func Invert(m *Mask) *Mask {
	out := New(m.Width, m.Height)
	for i, v := range m.Data {
		out.Data[i] = 255 - v
	}
	return out
}

var (
	neighbours8 = [8][2]int{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}
	neighbours4 = [4][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
)

// Grow runs n dilation passes. In each pass an unselected pixel becomes fully
// selected when any of its 8 neighbours is selected. Neighbours outside the mask
// count as unselected.
func Grow(m *Mask, n int) *Mask {
	out := m.Clone()
	if n <= 0 || !HasSelection(m) {
		return out
	}

	src := m.Clone()
	for range n {
		changed := false
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				if src.Selected(x, y) {
					continue
				}
				for _, d := range neighbours8 {
					if src.Selected(x+d[0], y+d[1]) {
						out.Data[y*m.Width+x] = 255
						changed = true
						break
					}
				}
			}
		}
		if !changed {
			break
		}
		copy(src.Data, out.Data)
	}
	return out
}

// Shrink runs n erosion passes. In each pass a selected pixel becomes unselected
// when any of its 4 neighbours is unselected. Neighbours outside the mask count as
// selected, so a selection touching the edge is not eaten from the edge.
func Shrink(m *Mask, n int) *Mask {
	out := m.Clone()
	if n <= 0 || !HasSelection(m) {
		return out
	}

	src := m.Clone()
	for range n {
		changed := false
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				if !src.Selected(x, y) {
					continue
				}
				for _, d := range neighbours4 {
					nx, ny := x+d[0], y+d[1]
					if nx < 0 || ny < 0 || nx >= m.Width || ny >= m.Height {
						continue
					}
					if !src.Selected(nx, ny) {
						out.Data[y*m.Width+x] = 0
						changed = true
						break
					}
				}
			}
		}
		if !changed {
			break
		}
		copy(src.Data, out.Data)
	}
	return out
}

// gaussianKernel returns the 2r+1 weights of a Gaussian with sigma r/3.
func gaussianKernel(radius int) []float64 {
	sigma := float64(radius) / 3
	k := make([]float64, 2*radius+1)
	for i := range k {
		d := float64(i - radius)
		k[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
	}
	return k
}

// Feather blurs the mask with a separable Gaussian of size 2*radius+1 and
// sigma radius/3. Near the edges only in-bounds weights are used and the result is
// renormalised by their sum, so the border of a selection is not darkened.
func Feather(m *Mask, radius int) *Mask {
	if radius <= 0 || !HasSelection(m) {
		return m.Clone()
	}

	kernel := gaussianKernel(radius)
	w, h := m.Width, m.Height
	tmp := make([]float64, w*h)

	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			var sum, weight float64
			for k, kv := range kernel {
				sx := x + k - radius
				if sx < 0 || sx >= w {
					continue
				}
				sum += kv * float64(m.Data[row+sx])
				weight += kv
			}
			tmp[row+x] = sum / weight
		}
	}

	out := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum, weight float64
			for k, kv := range kernel {
				sy := y + k - radius
				if sy < 0 || sy >= h {
					continue
				}
				sum += kv * tmp[sy*w+x]
				weight += kv
			}
			out.Data[y*w+x] = security.SafeUint8FromFloat(sum / weight)
		}
	}
	return out
}

// Bounds returns the inclusive bounding box of all pixels with a value above zero.
// The boolean is false for an empty mask.
func Bounds(m *Mask) (image.Bounds, bool) {
	b := image.Bounds{MinX: m.Width, MinY: m.Height, MaxX: -1, MaxY: -1}
	for y := 0; y < m.Height; y++ {
		row := m.Data[y*m.Width : (y+1)*m.Width]
		for x, v := range row {
			if v > 0 {
				b.Extend(x, y)
			}
		}
	}
	if b.MaxX < 0 {
		return image.Bounds{}, false
	}
	return b, true
}

// HasSelection reports whether any mask value is above zero.
func HasSelection(m *Mask) bool {
	for _, v := range m.Data {
		if v > 0 {
			return true
		}
	}
	return false
}
