// Package svgtrace is the bundled tracer plugin. It turns the regions of a trace
// request into SVG, either as exact pixel outlines built from the region runs or
// as smooth curves traced with potrace.
package svgtrace

import (
	"bytes"
	"context"
	"fmt"
	goimage "image"
	"image/color"
	"slices"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/gotranspile/gotrace"

	pluginapi "github.com/jmylchreest/vecprep/pkg/plugin"
)

const (
	// Name is the plugin name reported by --plugin-info.
	Name = "svgtrace"

	// Version is the plugin version.
	Version = "0.1.0"

	// ModeRuns outlines every run of region pixels exactly.
	ModeRuns = "runs"

	// ModePotrace traces each region into its own smoothed SVG file.
	ModePotrace = "potrace"

	// ImageFile is the output of ModeRuns.
	ImageFile = "image.svg"
)

// Tracer implements pluginapi.TracerPlugin.
type Tracer struct{}

// New returns a Tracer.
func New() *Tracer {
	return &Tracer{}
}

// GetMetadata implements pluginapi.TracerPlugin.
func (t *Tracer) GetMetadata() pluginapi.PluginInfo {
	return pluginapi.PluginInfo{
		Name:            Name,
		Type:            "tracer",
		Version:         Version,
		ProtocolVersion: pluginapi.ProtocolVersion,
		Description:     "Pixel-exact or potrace-smoothed SVG output",
		PluginProtocol:  string(pluginapi.PluginTypeGoPlugin),
	}
}

// GetFlagHelp implements pluginapi.TracerPlugin.
func (t *Tracer) GetFlagHelp() []pluginapi.FlagHelp {
	return []pluginapi.FlagHelp{
		{
			Name:        "mode",
			Type:        "string",
			Default:     ModeRuns,
			Description: "runs writes one pixel-exact image.svg; potrace writes one smoothed SVG per region under regions/",
		},
		{
			Name:        "crisp",
			Type:        "bool",
			Default:     "true",
			Description: "disable antialiasing in runs mode so adjacent regions do not show seams",
		},
	}
}

// Trace implements pluginapi.TracerPlugin.
func (t *Tracer) Trace(ctx context.Context, req pluginapi.TraceRequest) (map[string][]byte, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", req.Width, req.Height)
	}

	mode := req.Args["mode"]
	if mode == "" {
		mode = ModeRuns
	}

	switch mode {
	case ModeRuns:
		crisp := true
		if v, ok := req.Args["crisp"]; ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("invalid crisp value %q: %w", v, err)
			}
			crisp = b
		}
		if req.DryRun {
			return map[string][]byte{ImageFile: nil}, nil
		}
		return map[string][]byte{ImageFile: renderRuns(req, crisp)}, nil

	case ModePotrace:
		files := make(map[string][]byte, len(req.Regions))
		for _, r := range req.Regions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			name := RegionFile(r)
			if req.DryRun {
				files[name] = nil
				continue
			}
			data, err := traceRegion(req.Width, req.Height, r)
			if err != nil {
				return nil, fmt.Errorf("failed to trace region %d: %w", r.ID, err)
			}
			files[name] = data
		}
		return files, nil
	}
	return nil, fmt.Errorf("unknown mode %q (valid modes: %s, %s)", mode, ModeRuns, ModePotrace)
}

// RegionFile returns the potrace output name of a region.
func RegionFile(r pluginapi.RegionData) string {
	return fmt.Sprintf("regions/%04d-%s.svg", r.ID, strings.TrimPrefix(r.Hex, "#"))
}

// runPath returns SVG path data covering every run of r with unit-high rectangles.
func runPath(r pluginapi.RegionData) string {
	var sb strings.Builder
	for _, run := range r.Runs {
		w := run.X1 - run.X0 + 1
		fmt.Fprintf(&sb, "M%d %dh%dv1h-%dz", run.X0, run.Y, w, w)
	}
	return sb.String()
}

// renderRuns draws every region as a path filled with its colour, grouped by
// palette index.
func renderRuns(req pluginapi.TraceRequest, crisp bool) []byte {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(req.Width, req.Height, 0, 0, req.Width, req.Height)

	byIndex := make(map[int][]pluginapi.RegionData)
	for _, r := range req.Regions {
		byIndex[r.Index] = append(byIndex[r.Index], r)
	}
	indices := make([]int, 0, len(byIndex))
	for idx := range byIndex {
		indices = append(indices, idx)
	}
	slices.Sort(indices)

	for _, idx := range indices {
		canvas.Gid("colour-" + strconv.Itoa(idx))
		for _, r := range byIndex[idx] {
			style := "fill:" + r.Hex
			if crisp {
				style += ";shape-rendering:crispEdges"
			}
			canvas.Path(runPath(r), style)
		}
		canvas.Gend()
	}

	canvas.End()
	return buf.Bytes()
}

// regionBitmap draws r black on white, the polarity potrace traces.
func regionBitmap(width, height int, r pluginapi.RegionData) *goimage.Gray {
	img := goimage.NewGray(goimage.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for _, run := range r.Runs {
		for x := run.X0; x <= run.X1; x++ {
			img.SetGray(x, run.Y, color.Gray{Y: 0})
		}
	}
	return img
}

// traceRegion runs potrace over one region and returns the SVG document.
func traceRegion(width, height int, r pluginapi.RegionData) ([]byte, error) {
	bm := gotrace.BitmapFromGray(regionBitmap(width, height, r), nil)

	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := gotrace.Render("svg", nil, &buf, paths, width, height); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
