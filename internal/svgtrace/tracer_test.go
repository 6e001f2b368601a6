package svgtrace

import (
	"context"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/rustyoz/svg"

	pluginapi "github.com/jmylchreest/vecprep/pkg/plugin"
)

// twoRegions is a 4x2 request: a red top row with one extra pixel, and a blue
// remainder.
func twoRegions() pluginapi.TraceRequest {
	return pluginapi.TraceRequest{
		Width:  4,
		Height: 2,
		Palette: []pluginapi.RGBColour{
			{R: 255}, {B: 255},
		},
		Regions: []pluginapi.RegionData{
			{
				ID: 0, Index: 0, Hex: "#ff0000", Area: 5,
				Runs: []pluginapi.Run{{Y: 0, X0: 0, X1: 3}, {Y: 1, X0: 3, X1: 3}},
			},
			{
				ID: 1, Index: 1, Hex: "#0000ff", Area: 3,
				Runs: []pluginapi.Run{{Y: 1, X0: 0, X1: 2}},
			},
		},
	}
}

type svgDoc struct {
	ViewBox string `xml:"viewBox,attr"`
	Groups  []struct {
		ID    string `xml:"id,attr"`
		Paths []struct {
			D     string `xml:"d,attr"`
			Style string `xml:"style,attr"`
		} `xml:"path"`
	} `xml:"g"`
}

func TestTraceRuns(t *testing.T) {
	files, err := New().Trace(context.Background(), twoRegions())
	if err != nil {
		t.Fatalf("Trace() error = %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("Trace() returned %d files, want 1", len(files))
	}

	data := files[ImageFile]
	var doc svgDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not XML: %v\n%s", err, data)
	}

	if len(doc.Groups) != 2 || doc.Groups[0].ID != "colour-0" || doc.Groups[1].ID != "colour-1" {
		t.Fatalf("unexpected groups: %+v", doc.Groups)
	}

	red := doc.Groups[0].Paths[0]
	if red.D != "M0 0h4v1h-4zM3 1h1v1h-1z" {
		t.Errorf("red path = %q", red.D)
	}
	if !strings.Contains(red.Style, "fill:#ff0000") || !strings.Contains(red.Style, "crispEdges") {
		t.Errorf("red style = %q", red.Style)
	}

	parsed, err := svg.ParseSvg(string(data), "runs", 1.0)
	if err != nil {
		t.Fatalf("ParseSvg() error = %v", err)
	}
	if parsed.ViewBox != "0 0 4 2" {
		t.Errorf("viewBox = %q, want %q", parsed.ViewBox, "0 0 4 2")
	}
}

func TestTraceRunsNotCrisp(t *testing.T) {
	req := twoRegions()
	req.Args = map[string]string{"crisp": "false"}

	files, err := New().Trace(context.Background(), req)
	if err != nil {
		t.Fatalf("Trace() error = %v", err)
	}
	if strings.Contains(string(files[ImageFile]), "crispEdges") {
		t.Error("crisp=false still disables antialiasing")
	}
}

func TestTracePotrace(t *testing.T) {
	req := twoRegions()
	req.Args = map[string]string{"mode": ModePotrace}

	files, err := New().Trace(context.Background(), req)
	if err != nil {
		t.Fatalf("Trace() error = %v", err)
	}

	for _, r := range req.Regions {
		name := RegionFile(r)
		if !strings.Contains(string(files[name]), "<svg") {
			t.Errorf("%s is not an SVG document", name)
		}
	}
	if _, ok := files["regions/0000-ff0000.svg"]; !ok {
		t.Errorf("unexpected file names: %v", files)
	}
}

func TestTraceDryRun(t *testing.T) {
	for _, mode := range []string{ModeRuns, ModePotrace} {
		t.Run(mode, func(t *testing.T) {
			req := twoRegions()
			req.DryRun = true
			req.Args = map[string]string{"mode": mode}

			files, err := New().Trace(context.Background(), req)
			if err != nil {
				t.Fatalf("Trace() error = %v", err)
			}
			if len(files) == 0 {
				t.Fatal("dry run listed no files")
			}
			for name, data := range files {
				if len(data) != 0 {
					t.Errorf("dry run wrote %d bytes to %s", len(data), name)
				}
			}
		})
	}
}

func TestTraceErrors(t *testing.T) {
	tests := []struct {
		name string
		req  pluginapi.TraceRequest
	}{
		{"empty image", pluginapi.TraceRequest{}},
		{"unknown mode", pluginapi.TraceRequest{Width: 1, Height: 1, Args: map[string]string{"mode": "bezier"}}},
		{"bad crisp", pluginapi.TraceRequest{Width: 1, Height: 1, Args: map[string]string{"crisp": "maybe"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New().Trace(context.Background(), tt.req); err == nil {
				t.Error("Trace() error = nil")
			}
		})
	}
}

func TestTraceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := twoRegions()
	req.Args = map[string]string{"mode": ModePotrace}
	if _, err := New().Trace(ctx, req); err == nil {
		t.Error("Trace() with cancelled context error = nil")
	}
}

func TestMetadata(t *testing.T) {
	tr := New()
	info := tr.GetMetadata()
	if info.Name != Name || info.ProtocolVersion != pluginapi.ProtocolVersion {
		t.Errorf("GetMetadata() = %+v", info)
	}
	if info.PluginProtocol != string(pluginapi.PluginTypeGoPlugin) {
		t.Errorf("PluginProtocol = %q", info.PluginProtocol)
	}
	if len(tr.GetFlagHelp()) != 2 {
		t.Errorf("GetFlagHelp() returned %d flags", len(tr.GetFlagHelp()))
	}
}
