package colour

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/image/riff"
)

// presets are the built-in fixed palettes accepted by LoadFixedPalette.
var presets = map[string][]string{
	"bw": {"#000000", "#ffffff"},
	"cga": {
		"#000000", "#0000aa", "#00aa00", "#00aaaa", "#aa0000", "#aa00aa", "#aa5500", "#aaaaaa",
		"#555555", "#5555ff", "#55ff55", "#55ffff", "#ff5555", "#ff55ff", "#ffff55", "#ffffff",
	},
	"vga16": {
		"#000000", "#800000", "#008000", "#808000", "#000080", "#800080", "#008080", "#c0c0c0",
		"#808080", "#ff0000", "#00ff00", "#ffff00", "#0000ff", "#ff00ff", "#00ffff", "#ffffff",
	},
	"gameboy": {"#0f380f", "#306230", "#8bac0f", "#9bbc0f"},
	"pico8": {
		"#000000", "#1d2b53", "#7e2553", "#008751", "#ab5236", "#5f574f", "#c2c3c7", "#fff1e8",
		"#ff004d", "#ffa300", "#ffec27", "#00e436", "#29adff", "#83769c", "#ff77a8", "#ffccaa",
	},
}

// PresetNames returns the names of the built-in fixed palettes, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets)+1)
	for name := range presets {
		names = append(names, name)
	}
	names = append(names, "web-safe")
	slices.Sort(names)
	return names
}

// webSafe returns the 216 colour web-safe cube.
func webSafe() []RGBA {
	steps := []uint8{0x00, 0x33, 0x66, 0x99, 0xcc, 0xff}
	out := make([]RGBA, 0, 216)
	for _, r := range steps {
		for _, g := range steps {
			for _, b := range steps {
				out = append(out, Opaque(r, g, b))
			}
		}
	}
	return out
}

// Preset returns a built-in fixed palette by name.
func Preset(name string) (*Palette, bool) {
	name = strings.ToLower(name)
	if name == "web-safe" || name == "websafe" {
		return NewPalette(webSafe()), true
	}
	hexes, ok := presets[name]
	if !ok {
		return nil, false
	}
	colors := make([]RGBA, len(hexes))
	for i, h := range hexes {
		c, err := ParseHex(h)
		if err != nil {
			panic(fmt.Sprintf("invalid preset colour %s in %s", h, name))
		}
		colors[i] = c
	}
	return NewPalette(colors), true
}

// ParseHexList parses a comma or whitespace separated list of hex colours.
func ParseHexList(s string) (*Palette, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty colour list")
	}

	colors := make([]RGBA, 0, len(fields))
	for _, f := range fields {
		c, err := ParseHex(f)
		if err != nil {
			return nil, err
		}
		colors = append(colors, c)
	}
	return NewPalette(colors), nil
}

// LoadFixedPalette resolves a fixed palette from a preset name, a path to a RIFF .pal
// file, or a list of hex colours, in that order.
func LoadFixedPalette(source string) (*Palette, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("palette cannot be empty")
	}

	if pal, ok := Preset(source); ok {
		return pal, nil
	}

	if strings.EqualFold(filepath.Ext(source), ".pal") {
		file, err := os.Open(source) // #nosec G304 - User-specified palette path, intended to be read
		if err != nil {
			return nil, fmt.Errorf("failed to open palette file: %w", err)
		}
		defer file.Close()

		pal, err := ReadRIFFPalette(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read palette file %s: %w", source, err)
		}
		return pal, nil
	}

	pal, err := ParseHexList(source)
	if err != nil {
		return nil, fmt.Errorf("unknown palette %q (presets: %s): %w", source, strings.Join(PresetNames(), ", "), err)
	}
	return pal, nil
}

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

// riffPalVersion is the LOGPALETTE version word, stored as bytes 0x00 0x03.
const riffPalVersion = 3

// ReadRIFFPalette reads the first palette of a Microsoft RIFF PAL stream.
// Entries are opaque; the flags byte of each PALETTEENTRY is ignored.
func ReadRIFFPalette(r io.Reader) (*Palette, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open RIFF stream: %w", err)
	}
	if formType != palType {
		return nil, fmt.Errorf("unsupported RIFF content type: %s", string(formType[:]))
	}

	for {
		id, _, data, err := rd.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("no data chunk in RIFF palette")
		}
		if err != nil {
			return nil, fmt.Errorf("could not read chunk: %w", err)
		}
		if id != dataType {
			continue
		}
		return readPalEntries(data)
	}
}

func readPalEntries(r io.Reader) (*Palette, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("could not read palette header: %w", err)
	}

	if ver := binary.BigEndian.Uint16(header[0:2]); ver != riffPalVersion {
		return nil, fmt.Errorf("unsupported palette version: %d", ver)
	}

	count := int(binary.LittleEndian.Uint16(header[2:4]))
	colors := make([]RGBA, count)
	var entry [4]byte
	for i := range count {
		if _, err := io.ReadFull(r, entry[:]); err != nil {
			return nil, fmt.Errorf("could not read color %d/%d: %w", i, count, err)
		}
		colors[i] = Opaque(entry[0], entry[1], entry[2])
	}
	return NewPalette(colors), nil
}

// WriteRIFFPalette writes pal as a single-chunk RIFF PAL stream.
func WriteRIFFPalette(w io.Writer, pal *Palette) error {
	chunkSize := 4 + pal.Len()*4
	buf := make([]byte, 0, 20+pal.Len()*4)

	buf = append(buf, riffType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(4+8+chunkSize)) // #nosec G115 - palette size is bounded by MaxPaletteSize
	buf = append(buf, palType[:]...)
	buf = append(buf, dataType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(chunkSize)) // #nosec G115 - palette size is bounded by MaxPaletteSize
	buf = append(buf, 0x00, riffPalVersion)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(pal.Len())) // #nosec G115 - palette size is bounded by MaxPaletteSize
	for _, c := range pal.Colors {
		buf = append(buf, c.R, c.G, c.B, 0x00)
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("could not write palette: %w", err)
	}
	return nil
}
