package mask

import (
	"fmt"

	"github.com/jmylchreest/vecprep/internal/image"
)

// ApplyMode selects how a mask is composited into a buffer's alpha channel.
type ApplyMode int

const (
	// ApplyErase removes the selection: alpha *= 1 - mask/255.
	ApplyErase ApplyMode = iota
	// ApplyKeep keeps only the selection: alpha *= mask/255.
	ApplyKeep
)

// Apply composites m into the alpha channel of a copy of buf. The input buffer is
// not modified. Sizes must match.
func Apply(buf *image.Buffer, m *Mask, mode ApplyMode) (*image.Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	out := buf.Clone()
	if err := ApplyInPlace(out, m, mode); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyInPlace composites m into buf's alpha channel.
func ApplyInPlace(buf *image.Buffer, m *Mask, mode ApplyMode) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	if !buf.SameSize(m.Width, m.Height) {
		return fmt.Errorf("mask is %dx%d, image is %dx%d: %w", m.Width, m.Height, buf.Width, buf.Height, ErrInvalidDimensions)
	}
	for i, v := range m.Data {
		f := int(v)
		if mode == ApplyErase {
			f = 255 - f
		}
		a := &buf.Pix[i*4+3]
		*a = uint8((int(*a)*f + 127) / 255)
	}
	return nil
}
