package mask

import (
	"bufio"
	"encoding/binary"
	"fmt"
	goimage "image"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jmylchreest/vecprep/internal/compression"
	"github.com/jmylchreest/vecprep/internal/image"
)

// magic identifies the raw mask format: "VPMK", uint32 width, uint32 height
// (both little-endian), then width*height bytes in row-major order.
var magic = [4]byte{'V', 'P', 'M', 'K'}

// maxDecodePixels bounds the header dimensions accepted by Decode.
const maxDecodePixels = 1 << 30

// Encode writes m in the raw mask format.
func Encode(w io.Writer, m *Mask) error {
	var header [12]byte
	copy(header[:4], magic[:])
	binary.LittleEndian.PutUint32(header[4:8], uint32(m.Width))   // #nosec G115 - dimensions are non-negative
	binary.LittleEndian.PutUint32(header[8:12], uint32(m.Height)) // #nosec G115 - dimensions are non-negative

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write mask header: %w", err)
	}
	if _, err := w.Write(m.Data); err != nil {
		return fmt.Errorf("failed to write mask data: %w", err)
	}
	return nil
}

// Decode reads a mask in the raw mask format.
func Decode(r io.Reader) (*Mask, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("failed to read mask header: %w", err)
	}
	if [4]byte(header[:4]) != magic {
		return nil, fmt.Errorf("not a mask file: bad magic %q", header[:4])
	}

	w := int(binary.LittleEndian.Uint32(header[4:8]))
	h := int(binary.LittleEndian.Uint32(header[8:12]))
	if w < 0 || h < 0 || (w > 0 && h > maxDecodePixels/w) {
		return nil, fmt.Errorf("mask size %dx%d too large: %w", w, h, ErrInvalidDimensions)
	}

	m := New(w, h)
	if _, err := io.ReadFull(r, m.Data); err != nil {
		return nil, fmt.Errorf("failed to read mask data: %w", err)
	}
	return m, nil
}

// ToImage returns the mask as an 8-bit greyscale image.
func (m *Mask) ToImage() *goimage.Gray {
	img := goimage.NewGray(goimage.Rect(0, 0, m.Width, m.Height))
	copy(img.Pix, m.Data)
	return img
}

// FromImage builds a mask from the luminance of img. Fully transparent pixels
// are unselected.
func FromImage(img goimage.Image) *Mask {
	buf := image.FromImage(img)
	m := New(buf.Width, buf.Height)
	for i := range m.Data {
		o := i * 4
		if buf.Pix[o+3] == 0 {
			continue
		}
		// Rec. 601 luma, as used by color.GrayModel.
		y := (19595*int(buf.Pix[o]) + 38470*int(buf.Pix[o+1]) + 7471*int(buf.Pix[o+2]) + 1<<15) >> 16
		m.Data[i] = uint8(y)
	}
	return m
}

// isImagePath reports whether a mask path names an image rather than the raw format.
func isImagePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(compression.InnerName(path)))
	return slices.Contains(image.SupportedImageExtensions(), ext)
}

// WriteFile writes m to path. An image extension writes a greyscale image in that
// format, anything else the raw mask format. A trailing ".xz" or ".gz" compresses the file.
func WriteFile(path string, m *Mask) error {
	w, err := compression.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create mask file: %w", err)
	}

	bw := bufio.NewWriter(w)
	if isImagePath(path) {
		err = image.Encode(bw, m.ToImage(), filepath.Ext(compression.InnerName(path)))
	} else {
		err = Encode(bw, m)
	}
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		w.Close()
		return fmt.Errorf("failed to write mask %s: %w", path, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close mask file: %w", err)
	}
	return nil
}

// ReadFile reads a mask written by WriteFile. Paths with an image extension are
// decoded with the image loader and converted by luminance.
func ReadFile(path string) (*Mask, error) {
	if isImagePath(path) {
		img, err := image.NewFileLoader().Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read mask image: %w", err)
		}
		return FromImage(img), nil
	}

	r, err := compression.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mask file: %w", err)
	}
	defer r.Close()

	m, err := Decode(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("failed to decode mask %s: %w", path, err)
	}
	return m, nil
}
