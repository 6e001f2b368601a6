package colour

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// RGBA is a straight-alpha colour with 8 bits per channel.
type RGBA struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Opaque returns the colour with full alpha.
func Opaque(r, g, b uint8) RGBA {
	return RGBA{R: r, G: g, B: b, A: 255}
}

// FromColor converts any color.Color to a straight-alpha RGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{R: n.R, G: n.G, B: n.B, A: n.A}
}

// RGBA implements color.Color. The returned values are alpha-premultiplied.
func (c RGBA) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// Pack returns the colour as 0xRRGGBBAA. Used as a total order for tie-breaking.
func (c RGBA) Pack() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// Channel returns channel i, where 0 is red, 1 green, 2 blue and 3 alpha.
func (c RGBA) Channel(i int) uint8 {
	switch i {
	case 0:
		return c.R
	case 1:
		return c.G
	case 2:
		return c.B
	}
	return c.A
}

// RGB drops the alpha channel.
func (c RGBA) RGB() RGB {
	return RGB{R: c.R, G: c.G, B: c.B}
}

// Hex returns the colour as "#rrggbb".
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HexAlpha returns the colour as "#rrggbbaa".
func (c RGBA) HexAlpha() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// String returns "rgba(r, g, b, a)".
func (c RGBA) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %d)", c.R, c.G, c.B, c.A)
}

// ParseHex parses "#RGB", "#RGBA", "#RRGGBB" or "#RRGGBBAA". The leading '#' is optional.
func ParseHex(s string) (RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	switch len(hex) {
	case 3, 4:
		// Expand each nibble: "f80" -> "ff8800".
		var sb strings.Builder
		for _, ch := range hex {
			sb.WriteRune(ch)
			sb.WriteRune(ch)
		}
		hex = sb.String()
	case 6, 8:
	default:
		return RGBA{}, fmt.Errorf("invalid hex colour %q: expected 3, 4, 6 or 8 digits", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}

	if len(hex) == 6 {
		return RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
	}
	return RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
