package mask

import (
	goimage "image"
	"math"
	"slices"

	"github.com/jmylchreest/vecprep/internal/security"
)

// BrushMode selects how a brush stamp combines with existing mask values.
type BrushMode int

const (
	// Paint keeps the maximum of the existing and stamped value.
	Paint BrushMode = iota
	// Erase subtracts the stamped value, saturating at 0.
	Erase
)

// String returns the mode name.
func (b BrushMode) String() string {
	if b == Erase {
		return "erase"
	}
	return "paint"
}

// brushOpacity returns the stamp value at distance d from the centre of a brush.
// Hardness is a percentage; at 100 the stamp is solid, lower values fade linearly
// towards the rim.
func brushOpacity(d, radius, hardness float64) uint8 {
	o := 255 * math.Max(0, 1-(d/radius)*(1-hardness/100))
	return security.SafeUint8FromFloat(o)
}

func (m *Mask) apply(i int, v uint8, mode BrushMode) {
	if mode == Erase {
		if v >= m.Data[i] {
			m.Data[i] = 0
		} else {
			m.Data[i] -= v
		}
		return
	}
	m.Data[i] = max(m.Data[i], v)
}

// StampCircle stamps a filled circle of the given radius centred on c. Pixels outside
// the mask are clipped. A radius below 1 stamps the single centre pixel.
func (m *Mask) StampCircle(c goimage.Point, radius int, hardness float64, mode BrushMode) {
	hardness = math.Max(0, math.Min(100, hardness))
	if radius < 1 {
		if c.X >= 0 && c.Y >= 0 && c.X < m.Width && c.Y < m.Height {
			m.apply(c.Y*m.Width+c.X, 255, mode)
		}
		return
	}

	r := float64(radius)
	x0, x1 := max(0, c.X-radius), min(m.Width-1, c.X+radius)
	y0, y1 := max(0, c.Y-radius), min(m.Height-1, c.Y+radius)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			dx, dy := float64(x-c.X), float64(y-c.Y)
			d := math.Sqrt(dx*dx + dy*dy)
			if d > r {
				continue
			}
			m.apply(y*m.Width+x, brushOpacity(d, r, hardness), mode)
		}
	}
}

// StrokePoints returns the stamp centres for a stroke from one point to another on a
// width x height canvas: both end points plus interpolated points at most
// max(1, radius/4) apart. The segment is clipped to the canvas grown by radius first
// and only stamps that reach the canvas are kept, so a stroke entirely off the canvas
// returns none.
func StrokePoints(from, to goimage.Point, radius, width, height int) []goimage.Point {
	if width <= 0 || height <= 0 {
		return nil
	}
	reach := max(radius, 0)
	if from == to {
		if !reaches(to, reach, width, height) {
			return nil
		}
		return []goimage.Point{to}
	}

	from, to, ok := clipSegment(from, to, reach, width, height)
	if !ok {
		return nil
	}

	step := float64(max(1, radius/4))
	dx, dy := float64(to.X-from.X), float64(to.Y-from.Y)
	n := max(1, int(math.Ceil(math.Hypot(dx, dy)/step)))

	var pts []goimage.Point
	prev := goimage.Point{}
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		p := goimage.Point{
			X: from.X + int(math.Round(dx*t)),
			Y: from.Y + int(math.Round(dy*t)),
		}
		if i > 0 && p == prev {
			continue
		}
		prev = p
		if reaches(p, reach, width, height) {
			pts = append(pts, p)
		}
	}
	return pts
}

// reaches reports whether a stamp of the given radius centred on p covers any pixel
// of a width x height canvas.
func reaches(p goimage.Point, radius, width, height int) bool {
	dx := math.Max(0, math.Max(-float64(p.X), float64(p.X)-float64(width-1)))
	dy := math.Max(0, math.Max(-float64(p.Y), float64(p.Y)-float64(height-1)))
	r := float64(radius)
	return dx*dx+dy*dy <= r*r
}

// clipSegment clips the segment a-b to the canvas rectangle grown by reach on every
// side (Liang-Barsky). End points already inside are returned unchanged.
func clipSegment(a, b goimage.Point, reach, width, height int) (goimage.Point, goimage.Point, bool) {
	x0, y0 := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X)-x0, float64(b.Y)-y0
	minX, minY := -float64(reach), -float64(reach)
	maxX, maxY := float64(width-1+reach), float64(height-1+reach)

	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, x0 - minX},
		{dx, maxX - x0},
		{-dy, y0 - minY},
		{dy, maxY - y0},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, r)
		}
	}

	at := func(t float64) goimage.Point {
		return goimage.Point{X: int(math.Round(x0 + t*dx)), Y: int(math.Round(y0 + t*dy))}
	}
	if t0 > 0 {
		a = at(t0)
	}
	if t1 < 1 {
		b = at(t1)
	}
	return a, b, true
}

// Stroke stamps circles along the segment from one point to another.
func (m *Mask) Stroke(from, to goimage.Point, radius int, hardness float64, mode BrushMode) {
	for _, p := range StrokePoints(from, to, radius, m.Width, m.Height) {
		m.StampCircle(p, radius, hardness, mode)
	}
}

// FillPolygon selects every pixel whose centre lies inside the closed polygon, using
// the even-odd rule. The result is unioned into the mask. Fewer than 3 points
// is a no-op.
func (m *Mask) FillPolygon(points []goimage.Point) {
	if len(points) < 3 {
		return
	}

	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	minY, maxY = max(minY, 0), min(maxY, m.Height-1)

	xs := make([]float64, 0, len(points))
	for y := minY; y <= maxY; y++ {
		cy := float64(y) + 0.5
		xs = xs[:0]
		for i := range points {
			a, b := points[i], points[(i+1)%len(points)]
			ay, by := float64(a.Y)+0.5, float64(b.Y)+0.5
			// Half-open test so a vertex on the scanline is counted once.
			if (ay <= cy) == (by <= cy) {
				continue
			}
			ax, bx := float64(a.X)+0.5, float64(b.X)+0.5
			xs = append(xs, ax+(cy-ay)*(bx-ax)/(by-ay))
		}
		slices.Sort(xs)

		for i := 0; i+1 < len(xs); i += 2 {
			// Pixel x is inside when its centre x+0.5 lies in [xs[i], xs[i+1]).
			start := int(math.Ceil(xs[i] - 0.5))
			end := int(math.Ceil(xs[i+1]-0.5)) - 1
			start, end = max(start, 0), min(end, m.Width-1)
			row := y * m.Width
			for x := start; x <= end; x++ {
				m.Data[row+x] = 255
			}
		}
	}
}
