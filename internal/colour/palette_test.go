package colour

import (
	"encoding/json"
	"image/color"
	"strings"
	"testing"

	"github.com/jmylchreest/vecprep/internal/image"
)

var (
	red   = Opaque(255, 0, 0)
	green = Opaque(0, 255, 0)
	blue  = Opaque(0, 0, 255)
	black = Opaque(0, 0, 0)
	white = Opaque(255, 255, 255)
)

// solidBuffer returns a w x h buffer filled with c.
func solidBuffer(w, h int, c RGBA) *image.Buffer {
	buf := image.NewBuffer(w, h)
	fillRect(buf, 0, 0, w, h, c)
	return buf
}

// fillRect paints the half-open rectangle [x0,x1) x [y0,y1).
func fillRect(buf *image.Buffer, x0, y0, x1, y1 int, c RGBA) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			buf.Set(x, y, c.R, c.G, c.B, c.A)
		}
	}
}

func TestNewPalette(t *testing.T) {
	tests := []struct {
		name   string
		colors []RGBA
		want   []RGBA
	}{
		{
			name:   "empty palette",
			colors: nil,
			want:   []RGBA{},
		},
		{
			name:   "distinct colors keep order",
			colors: []RGBA{red, green, blue},
			want:   []RGBA{red, green, blue},
		},
		{
			name:   "duplicates keep first occurrence",
			colors: []RGBA{blue, red, blue, green, red},
			want:   []RGBA{blue, red, green},
		},
		{
			name:   "alpha makes colors distinct",
			colors: []RGBA{red, {R: 255, A: 10}},
			want:   []RGBA{red, {R: 255, A: 10}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPalette(tt.colors)
			if p.Len() != len(tt.want) {
				t.Fatalf("Len() = %d, want %d", p.Len(), len(tt.want))
			}
			for i, c := range tt.want {
				if p.Colors[i] != c {
					t.Errorf("Colors[%d] = %v, want %v", i, p.Colors[i], c)
				}
			}
		})
	}
}

func TestPaletteAt(t *testing.T) {
	p := NewPalette([]RGBA{red, green})

	if got := p.At(1); got != green {
		t.Errorf("At(1) = %v, want %v", got, green)
	}
	if got := p.At(Transparent); got != (RGBA{}) {
		t.Errorf("At(Transparent) = %v, want zero colour", got)
	}
	if got := p.At(2); got != (RGBA{}) {
		t.Errorf("At(2) = %v, want zero colour", got)
	}

	var nilPalette *Palette
	if nilPalette.Len() != 0 {
		t.Error("nil palette Len() should be 0")
	}
}

func TestPaletteNearest(t *testing.T) {
	tests := []struct {
		name    string
		palette []RGBA
		c       RGBA
		want    Index
	}{
		{"exact match", []RGBA{red, green, blue}, green, 1},
		{"closest", []RGBA{black, white}, Opaque(200, 200, 200), 1},
		{"tie goes to lowest index", []RGBA{Opaque(0, 0, 0), Opaque(2, 0, 0)}, Opaque(1, 0, 0), 0},
		{"empty palette", nil, red, Transparent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := NewPalette(tt.palette).Nearest(tt.c)
			if got != tt.want {
				t.Errorf("Nearest(%v) = %d, want %d", tt.c, got, tt.want)
			}
		})
	}
}

func TestPaletteToHex(t *testing.T) {
	p := NewPalette([]RGBA{red, Opaque(0x1a, 0x2b, 0x3c)})
	got := p.ToHex()
	want := []string{"#ff0000", "#1a2b3c"}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ToHex()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestPaletteToJSON(t *testing.T) {
	p := NewPalette([]RGBA{red, blue})
	data, err := p.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var decoded PaletteJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("ToJSON() produced invalid JSON: %v", err)
	}
	if decoded.Count != 2 {
		t.Errorf("count = %d, want 2", decoded.Count)
	}
	if decoded.Colors[1].Hex != "#0000ff" || decoded.Colors[1].Index != 1 {
		t.Errorf("colors[1] = %+v, want index 1 #0000ff", decoded.Colors[1])
	}
}

func TestPaletteString(t *testing.T) {
	if got := NewPalette(nil).String(); got != "Empty palette" {
		t.Errorf("String() = %q, want %q", got, "Empty palette")
	}

	s := NewPalette([]RGBA{red}).String()
	if !strings.Contains(s, "#ff0000") || !strings.Contains(s, "rgb(255, 0, 0)") {
		t.Errorf("String() = %q, missing colour details", s)
	}
}

func TestPaletteAll(t *testing.T) {
	p := NewPalette([]RGBA{red, green, blue})

	var seen []Index
	for i, c := range p.All() {
		if c != p.Colors[i] {
			t.Errorf("All() yielded %v at %d, want %v", c, i, p.Colors[i])
		}
		seen = append(seen, i)
		if i == 1 {
			break
		}
	}
	if len(seen) != 2 {
		t.Errorf("All() yielded %d items before break, want 2", len(seen))
	}
}

func TestColorPalette(t *testing.T) {
	p := NewPalette([]RGBA{red, {R: 255, G: 255, B: 255, A: 0}})
	cp := p.ColorPalette()

	if len(cp) != 2 {
		t.Fatalf("ColorPalette() len = %d, want 2", len(cp))
	}
	if got := color.NRGBAModel.Convert(cp[0]).(color.NRGBA); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("ColorPalette()[0] = %v, want opaque red", got)
	}
	if _, _, _, a := cp[1].RGBA(); a != 0 {
		t.Errorf("ColorPalette()[1] alpha = %d, want 0", a)
	}
}
