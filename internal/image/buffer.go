package image

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrInvalidDimensions is returned when two inputs of one operation disagree on size,
// or when a pixel slice does not match its declared width and height.
var ErrInvalidDimensions = errors.New("invalid dimensions")

// Buffer is a row-major RGBA pixel buffer with 8 bits per channel.
// Pixel (x, y) occupies Pix[(y*Width+x)*4 : (y*Width+x)*4+4].
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBuffer allocates a fully transparent buffer.
func NewBuffer(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// NewBufferFromPix wraps an existing pixel slice. The slice is not copied.
func NewBufferFromPix(width, height int, pix []uint8) (*Buffer, error) {
	b := &Buffer{Width: width, Height: height, Pix: pix}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks that the pixel slice length matches the dimensions.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("nil buffer: %w", ErrInvalidDimensions)
	}
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("negative size %dx%d: %w", b.Width, b.Height, ErrInvalidDimensions)
	}
	if len(b.Pix) != b.Width*b.Height*4 {
		return fmt.Errorf("pixel data holds %d bytes, %dx%d needs %d: %w",
			len(b.Pix), b.Width, b.Height, b.Width*b.Height*4, ErrInvalidDimensions)
	}
	return nil
}

// Len returns the number of pixels.
func (b *Buffer) Len() int {
	return b.Width * b.Height
}

// InBounds reports whether (x, y) addresses a pixel of the buffer.
func (b *Buffer) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// Offset returns the index of the red channel of pixel (x, y) in Pix.
func (b *Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * 4
}

// At returns the channels of pixel (x, y). Out of range coordinates yield zeros.
func (b *Buffer) At(x, y int) (r, g, bl, a uint8) {
	if !b.InBounds(x, y) {
		return 0, 0, 0, 0
	}
	i := b.Offset(x, y)
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]
}

// Set writes pixel (x, y). Out of range coordinates are ignored.
func (b *Buffer) Set(x, y int, r, g, bl, a uint8) {
	if !b.InBounds(x, y) {
		return
	}
	i := b.Offset(x, y)
	b.Pix[i] = r
	b.Pix[i+1] = g
	b.Pix[i+2] = bl
	b.Pix[i+3] = a
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Equal reports whether both buffers have the same size and bytes.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.Width == other.Width && b.Height == other.Height && bytes.Equal(b.Pix, other.Pix)
}

// SameSize reports whether a w x h raster can be paired with this buffer.
func (b *Buffer) SameSize(w, h int) bool {
	return b.Width == w && b.Height == h
}

// FromImage converts any image to a Buffer with straight (non-premultiplied) alpha.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := NewBuffer(w, h)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := w * 4
		for y := 0; y < h; y++ {
			si := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(dst.Pix[y*rowSize:(y+1)*rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		di := 0
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				sx, sy := bounds.Min.X+x, bounds.Min.Y+y
				yi := src.YOffset(sx, sy)
				ci := src.COffset(sx, sy)
				r, g, b := color.YCbCrToRGB(src.Y[yi], src.Cb[ci], src.Cr[ci])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		di := 0
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}

	return dst
}

// ToNRGBA returns an image.NRGBA sharing a copy of the buffer's pixels.
func (b *Buffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}

// ContentHash returns a SHA-256 digest over the dimensions and every pixel.
// Callers use it as a memoisation key for palettes and regions derived from the buffer.
func (b *Buffer) ContentHash() [32]byte {
	hasher := sha256.New()

	dimBytes := make([]byte, 8)
	binary.LittleEndian.PutUint32(dimBytes[0:4], uint32(b.Width))  // #nosec G115 - dimensions are non-negative
	binary.LittleEndian.PutUint32(dimBytes[4:8], uint32(b.Height)) // #nosec G115 - dimensions are non-negative
	hasher.Write(dimBytes)
	hasher.Write(b.Pix)

	var sum [32]byte
	copy(sum[:], hasher.Sum(nil))
	return sum
}

// Seed folds the content hash into an int64, for deterministic randomised algorithms.
func (b *Buffer) Seed() int64 {
	sum := b.ContentHash()
	return int64(binary.LittleEndian.Uint64(sum[:8])) // #nosec G115 - wraparound is fine for a seed
}
