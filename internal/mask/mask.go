// Package mask provides selection masks and the morphology, rasterisation and
// compositing operations applied to them.
package mask

import (
	"bytes"
	"fmt"

	"github.com/jmylchreest/vecprep/internal/image"
)

// ErrInvalidDimensions is returned when a mask and a buffer or another mask disagree on size.
var ErrInvalidDimensions = image.ErrInvalidDimensions

// SelectedThreshold is the value above which a mask pixel counts as selected.
const SelectedThreshold = 127

// Mask is a W x H array of selection strengths. 0 is unselected, 255 fully
// selected; values between are partial, as produced by feathering.
type Mask struct {
	Width  int
	Height int
	Data   []uint8
}

// New creates an empty mask with the given dimensions.
func New(width, height int) *Mask {
	width, height = max(width, 0), max(height, 0)
	return &Mask{
		Width:  width,
		Height: height,
		Data:   make([]uint8, width*height),
	}
}

// FromData wraps a byte slice as a mask. The slice is not copied.
func FromData(width, height int, data []uint8) (*Mask, error) {
	m := &Mask{Width: width, Height: height, Data: data}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that the data length matches the dimensions.
func (m *Mask) Validate() error {
	if m == nil {
		return fmt.Errorf("nil mask: %w", ErrInvalidDimensions)
	}
	if m.Width < 0 || m.Height < 0 || len(m.Data) != m.Width*m.Height {
		return fmt.Errorf("mask holds %d bytes for %dx%d: %w", len(m.Data), m.Width, m.Height, ErrInvalidDimensions)
	}
	return nil
}

// CheckSize returns ErrInvalidDimensions unless the mask is width x height.
func (m *Mask) CheckSize(width, height int) error {
	if m.Width != width || m.Height != height {
		return fmt.Errorf("mask is %dx%d, expected %dx%d: %w", m.Width, m.Height, width, height, ErrInvalidDimensions)
	}
	return nil
}

// At returns the mask value at (x, y).
// Returns 0 for coordinates outside the mask bounds.
func (m *Mask) At(x, y int) uint8 {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return 0
	}
	return m.Data[y*m.Width+x]
}

// Set sets the mask value at (x, y).
// Coordinates outside the mask bounds are ignored.
func (m *Mask) Set(x, y int, value uint8) {
	if x < 0 || x >= m.Width || y < 0 || y >= m.Height {
		return
	}
	m.Data[y*m.Width+x] = value
}

// Selected reports whether (x, y) is selected. Out of bounds pixels are not.
func (m *Mask) Selected(x, y int) bool {
	return m.At(x, y) > SelectedThreshold
}

// Fill fills the entire mask with a value.
func (m *Mask) Fill(value uint8) {
	for i := range m.Data {
		m.Data[i] = value
	}
}

// Clear clears the mask (sets all values to 0).
func (m *Mask) Clear() {
	clear(m.Data)
}

// Clone creates a copy of the mask.
func (m *Mask) Clone() *Mask {
	c := New(m.Width, m.Height)
	copy(c.Data, m.Data)
	return c
}

// Equal reports whether both masks have the same size and values.
func (m *Mask) Equal(other *Mask) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.Width == other.Width && m.Height == other.Height && bytes.Equal(m.Data, other.Data)
}

// Count returns the number of selected pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v > SelectedThreshold {
			n++
		}
	}
	return n
}

// Union sets every pixel to the maximum of m and other. Sizes must match.
func (m *Mask) Union(other *Mask) error {
	if err := other.CheckSize(m.Width, m.Height); err != nil {
		return err
	}
	for i, v := range other.Data {
		m.Data[i] = max(m.Data[i], v)
	}
	return nil
}

// Subtract lowers every pixel by the matching value of other, saturating at 0.
func (m *Mask) Subtract(other *Mask) error {
	if err := other.CheckSize(m.Width, m.Height); err != nil {
		return err
	}
	for i, v := range other.Data {
		if v >= m.Data[i] {
			m.Data[i] = 0
		} else {
			m.Data[i] -= v
		}
	}
	return nil
}
