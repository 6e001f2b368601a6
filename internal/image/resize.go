package image

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// DefaultMaxPixels is the pixel count above which callers are advised to downscale
// before segmenting. It matches a 4096x4096 image.
const DefaultMaxPixels = 4096 * 4096

// NeedsDownscale reports whether a w x h image exceeds maxPixels. A non-positive
// maxPixels disables the check.
func NeedsDownscale(w, h, maxPixels int) bool {
	return maxPixels > 0 && w*h > maxPixels
}

// Downscale shrinks img proportionally so that it holds at most maxPixels pixels.
// Images already within the limit are returned unchanged. Downscaling uses a
// Lanczos filter, so edges are antialiased and should be re-quantised afterwards.
func Downscale(img image.Image, maxPixels int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if !NeedsDownscale(w, h, maxPixels) {
		return img
	}

	scale := math.Sqrt(float64(maxPixels) / float64(w*h))
	nw := max(1, int(math.Floor(float64(w)*scale)))
	nh := max(1, int(math.Floor(float64(h)*scale)))

	return imaging.Resize(img, nw, nh, imaging.Lanczos)
}

// DownscaleBuffer is Downscale for a Buffer.
func DownscaleBuffer(buf *Buffer, maxPixels int) *Buffer {
	if !NeedsDownscale(buf.Width, buf.Height, maxPixels) {
		return buf
	}
	return FromImage(Downscale(buf.ToNRGBA(), maxPixels))
}
