package colour

import (
	goimage "image"
	"image/color"
	"testing"

	"github.com/jmylchreest/vecprep/internal/image"
)

func TestQuantizeChannel(t *testing.T) {
	tests := []struct {
		in, want uint8
	}{
		{0, 0},
		{3, 0},
		{4, 8},
		{11, 8},
		{12, 16},
		{250, 248},
		{252, 255},
		{255, 255},
	}

	for _, tt := range tests {
		if got := quantizeChannel(tt.in); got != tt.want {
			t.Errorf("quantizeChannel(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBuildHistogram(t *testing.T) {
	buf := image.NewBuffer(4, 1)
	buf.Set(0, 0, 255, 0, 0, 255)
	buf.Set(1, 0, 253, 2, 1, 200)
	buf.Set(2, 0, 0, 0, 255, 127)
	buf.Set(3, 0, 0, 0, 255, 128)

	h := BuildHistogram(buf)

	if len(h) != 2 {
		t.Fatalf("BuildHistogram() has %d colours, want 2: %v", len(h), h)
	}
	if h[red] != 2 {
		t.Errorf("red count = %d, want 2", h[red])
	}
	if h[blue] != 1 {
		t.Errorf("blue count = %d, want 1 (alpha 127 pixel excluded)", h[blue])
	}
	if h.Total() != 3 {
		t.Errorf("Total() = %d, want 3", h.Total())
	}
}

func TestBuildHistogramTransparent(t *testing.T) {
	buf := solidBuffer(3, 3, RGBA{R: 10, A: 0})
	if h := BuildHistogram(buf); len(h) != 0 {
		t.Errorf("BuildHistogram() of transparent image = %v, want empty", h)
	}
}

func TestHistogramEntriesOrder(t *testing.T) {
	h := Histogram{
		blue:  5,
		red:   5,
		green: 9,
	}
	entries := h.Entries()
	want := []RGBA{green, blue, red}

	for i, c := range want {
		if entries[i].Color != c {
			t.Errorf("Entries()[%d] = %v, want %v", i, entries[i].Color, c)
		}
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		name      string
		h         Histogram
		maxColors int
		want      []RGBA
	}{
		{
			name:      "empty histogram",
			h:         Histogram{},
			maxColors: 4,
			want:      nil,
		},
		{
			name:      "zero max colors",
			h:         Histogram{red: 1},
			maxColors: 0,
			want:      nil,
		},
		{
			name:      "fewer colours than max returned unchanged",
			h:         Histogram{red: 800, blue: 200},
			maxColors: 2,
			want:      []RGBA{red, blue},
		},
		{
			name: "split at median of widest channel",
			h: Histogram{
				Opaque(0, 0, 0):   1,
				Opaque(16, 0, 0):  1,
				Opaque(240, 0, 0): 1,
				Opaque(255, 0, 0): 1,
			},
			maxColors: 2,
			want:      []RGBA{Opaque(8, 0, 0), Opaque(248, 0, 0)},
		},
		{
			name: "equal ranges prefer red channel",
			h: Histogram{
				Opaque(0, 0, 0):       3,
				Opaque(100, 0, 0):     1,
				Opaque(200, 200, 200): 1,
			},
			maxColors: 2,
			want:      []RGBA{Opaque(0, 0, 0), Opaque(150, 100, 100)},
		},
		{
			name: "single bucket is count weighted",
			h: Histogram{
				Opaque(0, 0, 0):   3,
				Opaque(100, 0, 0): 1,
			},
			maxColors: 1,
			want:      []RGBA{Opaque(25, 0, 0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Quantize(tt.h, tt.maxColors)
			if p.Len() != len(tt.want) {
				t.Fatalf("Quantize() = %v, want %v", p.Colors, tt.want)
			}
			for i, c := range tt.want {
				if p.Colors[i] != c {
					t.Errorf("Quantize()[%d] = %v, want %v", i, p.Colors[i], c)
				}
			}
		})
	}
}

func TestQuantizeFromImage(t *testing.T) {
	// 1000 pixels: 800 red and 200 blue.
	buf := solidBuffer(100, 10, red)
	fillRect(buf, 0, 8, 100, 10, blue)

	p := Quantize(BuildHistogram(buf), 2)
	if p.Len() != 2 || p.Colors[0] != red || p.Colors[1] != blue {
		t.Errorf("Quantize() = %v, want [red blue]", p.Colors)
	}
}

func TestQuantizeBounds(t *testing.T) {
	h := Histogram{}
	for r := 0; r < 256; r += 8 {
		for g := 0; g < 256; g += 32 {
			h[Opaque(uint8(r), uint8(g), uint8(r/2))] = 1 + r%3
		}
	}

	for _, n := range []int{1, 2, 7, 16, 64} {
		p := Quantize(h, n)
		if p.Len() < 1 || p.Len() > n {
			t.Errorf("Quantize(h, %d) returned %d colours", n, p.Len())
		}
		for _, c := range p.Colors {
			if c.A != 255 {
				t.Errorf("Quantize(h, %d) produced non-opaque colour %v", n, c)
			}
		}
	}

	a := Quantize(h, 16)
	b := Quantize(h, 16)
	for i := range a.Colors {
		if a.Colors[i] != b.Colors[i] {
			t.Fatalf("Quantize() not deterministic at %d: %v vs %v", i, a.Colors[i], b.Colors[i])
		}
	}
}

func TestMedianCutQuantizer(t *testing.T) {
	img := goimage.NewNRGBA(goimage.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if x >= 2 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}

	q := MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, 4), img)
	if len(p) != 2 {
		t.Fatalf("Quantize() returned %d colours, want 2", len(p))
	}

	got := FromColor(p[0])
	if got != red && got != blue {
		t.Errorf("Quantize()[0] = %v, want red or blue", got)
	}
}

func TestDither(t *testing.T) {
	buf := solidBuffer(4, 4, Opaque(250, 5, 5))
	buf.Set(0, 0, 0, 0, 0, 0)

	out := Dither(buf, NewPalette([]RGBA{red, blue}))
	if r, g, b, a := out.At(1, 1); r != 255 || g != 0 || b != 0 || a != 255 {
		t.Errorf("Dither() At(1,1) = %d,%d,%d,%d, want opaque red", r, g, b, a)
	}
	if _, _, _, a := out.At(0, 0); a != 0 {
		t.Errorf("Dither() kept transparent pixel alpha %d, want 0", a)
	}

	empty := Dither(buf, NewPalette(nil))
	if _, _, _, a := empty.At(1, 1); a != 0 {
		t.Error("Dither() with empty palette should be transparent")
	}
}
