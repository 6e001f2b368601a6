package colour

import (
	goimage "image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/jmylchreest/vecprep/internal/image"
)

// MedianCutQuantizer implements draw.Quantizer on top of Quantize, so a median cut
// palette can drive image.Paletted conversion and Floyd-Steinberg dithering.
type MedianCutQuantizer struct {
	// MaxColors caps the palette size. Zero uses the spare capacity of the
	// palette passed to Quantize, or 256 when it has none.
	MaxColors int
}

var _ draw.Quantizer = MedianCutQuantizer{}

// Quantize appends up to MaxColors median cut colours of m to p.
func (q MedianCutQuantizer) Quantize(p color.Palette, m goimage.Image) color.Palette {
	n := q.MaxColors
	if n <= 0 {
		n = cap(p) - len(p)
	}
	if n <= 0 {
		n = 256
	}

	pal := Quantize(BuildHistogram(image.FromImage(m)), n)
	for _, c := range pal.Colors {
		p = append(p, c)
	}
	return p
}

// Dither renders buf onto pal with Floyd-Steinberg error diffusion. Pixels with
// alpha below OpaqueThreshold stay fully transparent.
func Dither(buf *image.Buffer, pal *Palette) *image.Buffer {
	if pal.Len() == 0 {
		return image.NewBuffer(buf.Width, buf.Height)
	}

	src := buf.ToNRGBA()
	dst := goimage.NewPaletted(src.Bounds(), pal.ColorPalette())
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), src, goimage.Point{})

	out := image.NewBuffer(buf.Width, buf.Height)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			i := buf.Offset(x, y)
			if buf.Pix[i+3] < OpaqueThreshold {
				continue
			}
			c := pal.Colors[dst.ColorIndexAt(x, y)]
			out.Set(x, y, c.R, c.G, c.B, 255)
		}
	}
	return out
}
