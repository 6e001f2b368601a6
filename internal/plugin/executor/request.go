package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/jmylchreest/vecprep/internal/pipeline"
	"github.com/jmylchreest/vecprep/internal/plugin/protocol"
	"github.com/jmylchreest/vecprep/internal/security"
)

// BuildRequest converts a prepared image into the request sent to tracers.
// Regions keep their segmentation order and are numbered from zero.
func BuildRequest(p *pipeline.Prepared, args map[string]string, dryRun bool) protocol.TraceRequest {
	req := protocol.TraceRequest{
		Width:   p.Buffer.Width,
		Height:  p.Buffer.Height,
		Palette: make([]protocol.RGBColour, 0, p.Palette.Len()),
		Regions: make([]protocol.RegionData, 0, len(p.Regions)),
		Args:    args,
		DryRun:  dryRun,
	}

	for _, c := range p.Palette.Colors {
		req.Palette = append(req.Palette, protocol.RGBColour{R: c.R, G: c.G, B: c.B})
	}

	for i, r := range p.Regions {
		runs := r.Runs()
		data := protocol.RegionData{
			ID:     i,
			Index:  int(r.ColorIndex),
			Colour: protocol.RGBColour{R: r.Color.R, G: r.Color.G, B: r.Color.B},
			Hex:    r.Color.Hex(),
			Area:   r.Area(),
			Bounds: protocol.BoundsData{
				MinX: r.Bounds.MinX,
				MinY: r.Bounds.MinY,
				MaxX: r.Bounds.MaxX,
				MaxY: r.Bounds.MaxY,
			},
			Runs: make([]protocol.Run, len(runs)),
		}
		for j, run := range runs {
			data.Runs[j] = protocol.Run{Y: run.Y, X0: run.X0, X1: run.X1}
		}
		req.Regions = append(req.Regions, data)
	}
	return req
}

// WriteFiles writes plugin output files under dir and returns their paths in name
// order. Names that would escape dir are rejected before anything is written.
func WriteFiles(dir string, files map[string][]byte) ([]string, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		if err := security.ValidateFilePath(name, dir); err != nil {
			return nil, fmt.Errorf("invalid output file %q: %w", name, err)
		}
		names = append(names, name)
	}
	slices.Sort(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return written, fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(path, files[name], 0o644); err != nil { // #nosec G306 - output files are meant to be readable
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
