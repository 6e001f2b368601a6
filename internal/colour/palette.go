// Package colour provides palette construction, colour distance and pixel
// classification for the segmentation engine.
package colour

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
)

// Index addresses an entry of a Palette.
type Index uint16

// Transparent is the classification index for pixels with alpha below the
// opacity threshold. No palette entry ever has this index.
const Transparent Index = math.MaxUint16

// MaxPaletteSize is the largest palette Index can address.
const MaxPaletteSize = int(Transparent)

// Palette is an ordered set of distinct colours.
type Palette struct {
	Colors []RGBA
}

// NewPalette creates a Palette, dropping duplicates while keeping first occurrences.
// Colours beyond MaxPaletteSize are discarded.
func NewPalette(colors []RGBA) *Palette {
	seen := make(map[RGBA]struct{}, len(colors))
	out := make([]RGBA, 0, len(colors))
	for _, c := range colors {
		if _, ok := seen[c]; ok {
			continue
		}
		if len(out) == MaxPaletteSize {
			break
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return &Palette{Colors: out}
}

// Len returns the number of colors in the palette.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Colors)
}

// At returns the colour for idx. Transparent and out of range indices return the zero colour.
func (p *Palette) At(idx Index) RGBA {
	if int(idx) >= p.Len() {
		return RGBA{}
	}
	return p.Colors[idx]
}

// Nearest returns the index of the palette colour closest to c by unweighted distance
// and the squared distance to it. Ties go to the lowest index. An empty palette
// returns Transparent.
func (p *Palette) Nearest(c RGBA) (Index, int) {
	best := Transparent
	bestDist := math.MaxInt
	for i, pc := range p.Colors {
		d := DistanceSq(c, pc, false)
		if d < bestDist {
			best = Index(i)
			bestDist = d
		}
	}
	return best, bestDist
}

// ColorPalette converts the palette to a color.Palette for image.Paletted.
func (p *Palette) ColorPalette() color.Palette {
	out := make(color.Palette, p.Len())
	for i, c := range p.Colors {
		out[i] = c
	}
	return out
}

// RGB represents a color in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// ToHex converts the palette colors to hex strings.
func (p *Palette) ToHex() []string {
	hexColors := make([]string, p.Len())
	for i, c := range p.Colors {
		hexColors[i] = c.Hex()
	}
	return hexColors
}

// ColorJSON represents a color in JSON output format.
type ColorJSON struct {
	Index int    `json:"index"`
	Hex   string `json:"hex"`
	RGB   RGB    `json:"rgb"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Count  int         `json:"count"`
	Colors []ColorJSON `json:"colors"`
}

// ToJSON converts the palette to JSON format.
func (p *Palette) ToJSON() ([]byte, error) {
	colors := make([]ColorJSON, p.Len())
	for i, c := range p.Colors {
		colors[i] = ColorJSON{
			Index: i,
			Hex:   c.Hex(),
			RGB:   c.RGB(),
		}
	}

	return json.MarshalIndent(PaletteJSON{
		Count:  p.Len(),
		Colors: colors,
	}, "", "  ")
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if p.Len() == 0 {
		return "Empty palette"
	}

	result := fmt.Sprintf("Palette with %d colors:\n", p.Len())
	for i, c := range p.Colors {
		result += fmt.Sprintf("  %2d: %s (%s)\n", i, c.Hex(), c.RGB().String())
	}
	return result
}

// All returns an iterator over all colors in the palette.
func (p *Palette) All() func(func(Index, RGBA) bool) {
	return func(yield func(Index, RGBA) bool) {
		if p == nil {
			return
		}
		for i, c := range p.Colors {
			if !yield(Index(i), c) {
				return
			}
		}
	}
}
