package colour

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSnapToPalette(t *testing.T) {
	fixed := NewPalette([]RGBA{white, red, black, blue})

	tests := []struct {
		name      string
		h         Histogram
		tolerance float64
		want      []RGBA
	}{
		{
			name:      "keeps fixed order",
			h:         Histogram{Opaque(8, 8, 8): 5, Opaque(248, 0, 8): 1},
			tolerance: 20,
			want:      []RGBA{red, black},
		},
		{
			name:      "outside tolerance dropped",
			h:         Histogram{Opaque(8, 8, 8): 5},
			tolerance: 5,
			want:      nil,
		},
		{
			name:      "zero tolerance needs exact match",
			h:         Histogram{blue: 1, Opaque(0, 0, 248): 1},
			tolerance: 0,
			want:      []RGBA{blue},
		},
		{
			name:      "empty histogram",
			h:         Histogram{},
			tolerance: 100,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SnapToPalette(tt.h, fixed, tt.tolerance)
			if got.Len() != len(tt.want) {
				t.Fatalf("SnapToPalette() = %v, want %v", got.Colors, tt.want)
			}
			for i, c := range tt.want {
				if got.Colors[i] != c {
					t.Errorf("SnapToPalette()[%d] = %v, want %v", i, got.Colors[i], c)
				}
			}
		})
	}

	if got := SnapToPalette(Histogram{red: 1}, NewPalette(nil), 100); got.Len() != 0 {
		t.Errorf("SnapToPalette() with empty fixed palette = %v, want empty", got.Colors)
	}
}

func TestPreset(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"bw", 2},
		{"cga", 16},
		{"VGA16", 16},
		{"gameboy", 4},
		{"pico8", 16},
		{"web-safe", 216},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Preset(tt.name)
			if !ok {
				t.Fatalf("Preset(%q) not found", tt.name)
			}
			if p.Len() != tt.want {
				t.Errorf("Preset(%q) has %d colours, want %d", tt.name, p.Len(), tt.want)
			}
		})
	}

	if _, ok := Preset("nope"); ok {
		t.Error("Preset(nope) should not exist")
	}
}

func TestLoadFixedPalette(t *testing.T) {
	p, err := LoadFixedPalette("#f00, #00ff00 #0000ff")
	if err != nil {
		t.Fatalf("LoadFixedPalette() error = %v", err)
	}
	if p.Len() != 3 || p.Colors[0] != red || p.Colors[2] != blue {
		t.Errorf("LoadFixedPalette() = %v, want [red green blue]", p.Colors)
	}

	if _, err := LoadFixedPalette(""); err == nil {
		t.Error("LoadFixedPalette(\"\") expected error")
	}
	if _, err := LoadFixedPalette("not-a-palette"); err == nil {
		t.Error("LoadFixedPalette(not-a-palette) expected error")
	}
}

func TestRIFFPaletteRoundTrip(t *testing.T) {
	pal := NewPalette([]RGBA{red, green, blue, Opaque(1, 2, 3)})

	var buf bytes.Buffer
	if err := WriteRIFFPalette(&buf, pal); err != nil {
		t.Fatalf("WriteRIFFPalette() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.pal")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := LoadFixedPalette(path)
	if err != nil {
		t.Fatalf("LoadFixedPalette(%s) error = %v", path, err)
	}
	if got.Len() != pal.Len() {
		t.Fatalf("round trip has %d colours, want %d", got.Len(), pal.Len())
	}
	for i := range pal.Colors {
		if got.Colors[i] != pal.Colors[i] {
			t.Errorf("colour %d = %v, want %v", i, got.Colors[i], pal.Colors[i])
		}
	}
}

func TestReadRIFFPaletteRejectsOtherForms(t *testing.T) {
	data := []byte("RIFF\x04\x00\x00\x00WAVE")
	if _, err := ReadRIFFPalette(bytes.NewReader(data)); err == nil {
		t.Error("ReadRIFFPalette() expected error for WAVE form")
	}
}

func TestExtractorConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ExtractorConfig
		wantErr bool
	}{
		{"default", DefaultExtractorConfig(), false},
		{"kmeans", ExtractorConfig{Algorithm: AlgorithmKMeans, ColorCount: 8}, false},
		{"unknown algorithm", ExtractorConfig{Algorithm: "octree", ColorCount: 8}, true},
		{"zero colours", ExtractorConfig{Algorithm: AlgorithmMedianCut, ColorCount: 0}, true},
		{"too many colours", ExtractorConfig{Algorithm: AlgorithmMedianCut, ColorCount: 257}, true},
		{"snap without palette", ExtractorConfig{Algorithm: AlgorithmSnap, ColorCount: 8}, true},
		{"snap", ExtractorConfig{Algorithm: AlgorithmSnap, ColorCount: 8, FixedPalette: "bw"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtractors(t *testing.T) {
	buf := solidBuffer(10, 10, red)
	fillRect(buf, 0, 0, 5, 10, Opaque(0, 0, 250))

	for _, alg := range ValidAlgorithms() {
		t.Run(string(alg), func(t *testing.T) {
			cfg := ExtractorConfig{Algorithm: alg, ColorCount: 4, FixedPalette: "cga", Tolerance: 100}
			ex, err := NewExtractor(cfg)
			if err != nil {
				t.Fatalf("NewExtractor() error = %v", err)
			}
			p, err := ex.Extract(buf, cfg.ColorCount)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if p.Len() != 2 {
				t.Errorf("Extract() = %v, want 2 colours", p.Colors)
			}
		})
	}
}
