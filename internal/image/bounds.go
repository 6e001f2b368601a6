package image

import "fmt"

// Bounds is an inclusive pixel bounding box.
type Bounds struct {
	MinX int `json:"minX"`
	MinY int `json:"minY"`
	MaxX int `json:"maxX"`
	MaxY int `json:"maxY"`
}

// PointBounds returns the bounds of the single pixel (x, y).
func PointBounds(x, y int) Bounds {
	return Bounds{MinX: x, MinY: y, MaxX: x, MaxY: y}
}

// Extend grows the bounds to include (x, y).
func (b *Bounds) Extend(x, y int) {
	b.MinX = min(b.MinX, x)
	b.MinY = min(b.MinY, y)
	b.MaxX = max(b.MaxX, x)
	b.MaxY = max(b.MaxY, y)
}

// Width returns the number of columns covered.
func (b Bounds) Width() int { return b.MaxX - b.MinX + 1 }

// Height returns the number of rows covered.
func (b Bounds) Height() int { return b.MaxY - b.MinY + 1 }

// String returns "minX,minY-maxX,maxY".
func (b Bounds) String() string {
	return fmt.Sprintf("%d,%d-%d,%d", b.MinX, b.MinY, b.MaxX, b.MaxY)
}
