// Package plugin provides the public API for vecprep tracer plugins.
package plugin

// TraceRequest is the segmented image sent to tracer plugins.
type TraceRequest struct {
	Width   int               `json:"width"`
	Height  int               `json:"height"`
	Palette []RGBColour       `json:"palette"`
	Regions []RegionData      `json:"regions"`
	Args    map[string]string `json:"args,omitempty"`
	DryRun  bool              `json:"dry_run"`
}

// RegionData is one connected region of a single palette colour.
type RegionData struct {
	ID     int        `json:"id"`
	Index  int        `json:"index"`
	Colour RGBColour  `json:"colour"`
	Hex    string     `json:"hex"`
	Area   int        `json:"area"`
	Bounds BoundsData `json:"bounds"`
	Runs   []Run      `json:"runs"`
}

// BoundsData is an inclusive pixel bounding box.
type BoundsData struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// Run is a horizontal span of region pixels on row Y covering [X0, X1].
type Run struct {
	Y  int `json:"y"`
	X0 int `json:"x0"`
	X1 int `json:"x1"`
}

// RGBColour represents an RGB color.
type RGBColour struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}
