package colour

import "math"

// alphaWeight scales the alpha delta in the weighted metric, so a 50% opacity
// change counts about as much as a full channel swing.
const alphaWeight = 2

// DistanceSq returns the squared Euclidean distance between a and b over red, green and
// blue. When weighted is true the alpha delta is included, multiplied by alphaWeight.
func DistanceSq(a, b RGBA, weighted bool) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	d := dr*dr + dg*dg + db*db
	if weighted {
		da := alphaWeight * (int(a.A) - int(b.A))
		d += da * da
	}
	return d
}

// Distance returns the Euclidean colour distance between a and b.
// Unweighted distances range from 0 to about 441.67.
func Distance(a, b RGBA, weighted bool) float64 {
	return math.Sqrt(float64(DistanceSq(a, b, weighted)))
}

// Within reports whether Distance(a, b, weighted) <= tolerance.
func Within(a, b RGBA, tolerance float64, weighted bool) bool {
	if tolerance < 0 {
		return false
	}
	return Distance(a, b, weighted) <= tolerance
}
